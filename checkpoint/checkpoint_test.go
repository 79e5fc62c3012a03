package checkpoint

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	forkrng "github.com/opd-ai/go-forkrng"
)

func openTemp(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s, path
}

func TestSaveLoad(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	rng := forkrng.NewRng("world").Fork("level 1")
	b2 := forkrng.NewBlake2Rng("world")
	if err := s.Save("xxh", rng); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save("b2", b2); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got forkrng.Rng
	if err := s.Load("xxh", &got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(rng) {
		t.Errorf("loaded %v, want %v", got, rng)
	}
	if got.Uint64() != rng.Uint64() {
		t.Error("a loaded generator should continue with the same values")
	}

	var gotB2 forkrng.Blake2Rng
	if err := s.Load("b2", &gotB2); err != nil || !gotB2.Equal(b2) {
		t.Errorf("Load(b2) = %v, %v", gotB2, err)
	}

	// Loading a state into the wrong family fails.
	if err := s.Load("b2", &got); !errors.Is(err, forkrng.ErrInvalidState) {
		t.Errorf("cross-family Load() error = %v, want ErrInvalidState", err)
	}
}

func TestOverwrite(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	_, next := forkrng.NewRng("resume").Next()
	s.Save("root", forkrng.NewRng("resume"))
	s.Save("root", next)

	var got forkrng.Rng
	if err := s.Load("root", &got); err != nil || !got.Equal(next) {
		t.Errorf("Load() = %v, %v; want the latest state", got, err)
	}
}

func TestNotFoundAndDelete(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	var g forkrng.Rng
	if err := s.Load("missing", &g); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}

	s.Save("gone", forkrng.NewRng(1))
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Load("gone", &g); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("never there"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestNames(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	names, err := s.Names()
	if err != nil || len(names) != 0 {
		t.Fatalf("Names() on empty store = %v, %v", names, err)
	}
	for _, n := range []string{"zeta", "alpha", "mid"} {
		s.Save(n, forkrng.NewRng(n))
	}
	names, err = s.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if want := []string{"alpha", "mid", "zeta"}; !slices.Equal(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}

func TestPersistAndReadOnly(t *testing.T) {
	s, path := openTemp(t)
	g := forkrng.NewRng("persist")
	if err := s.Save("root", g); err != nil {
		t.Fatal(err)
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ro, err := Open(path, WithReadOnly())
	if err != nil {
		t.Fatalf("Open(read-only) error = %v", err)
	}
	defer ro.Close()

	var got forkrng.Rng
	if err := ro.Load("root", &got); err != nil || !got.Equal(g) {
		t.Errorf("Load() after reopen = %v, %v", got, err)
	}
	if err := ro.Save("other", g); !errors.Is(err, bolt.ErrDatabaseReadOnly) {
		t.Errorf("Save() on read-only store error = %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	s, _ := openTemp(t)
	if err := s.Save("root", forkrng.NewRng("closed")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	var g forkrng.Rng
	err := s.Load("root", &g)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() on closed store error = %v, want a database error", err)
	}
	if !errors.Is(err, bolt.ErrDatabaseNotOpen) {
		t.Errorf("Load() error = %v, want ErrDatabaseNotOpen", err)
	}
	if _, err := s.Names(); err == nil {
		t.Error("Names() on closed store should fail")
	}
	if err := s.Save("other", g); err == nil {
		t.Error("Save() on closed store should fail")
	}
}

func TestOpenTimeout(t *testing.T) {
	s, path := openTemp(t)
	defer s.Close()

	_, err := Open(path, WithTimeout(50*time.Millisecond))
	if !errors.Is(err, bolt.ErrTimeout) {
		t.Errorf("second Open() error = %v, want timeout", err)
	}
}
