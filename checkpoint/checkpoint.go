// Package checkpoint persists generator states in a BoltDB file, so a long
// running simulation can stop and later resume exactly where it left off.
//
//	store, err := checkpoint.Open("world.db")
//	...
//	err = store.Save("root", rng)
//	...
//	var rng forkrng.Rng
//	err = store.Load("root", &rng)
//
// Any encoding.BinaryMarshaler can be saved, which includes every
// forkrng.Generator.
package checkpoint

import (
	"encoding"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned by Load when no state is stored under a name.
var ErrNotFound = errors.New("checkpoint: not found")

var generatorsBucket = []byte("generators")

// Store is a named collection of generator states. It is safe for
// concurrent use.
type Store struct {
	db *bolt.DB
}

type options struct {
	timeout  time.Duration
	readOnly bool
}

// Option configures Open.
type Option func(*options)

// WithTimeout sets how long Open waits for the file lock. The default is
// three seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithReadOnly opens the database with a shared lock. Save and Delete fail
// on a read-only store.
func WithReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// Open opens or creates the checkpoint database at path.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{timeout: 3 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: o.timeout, ReadOnly: o.readOnly})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}

	if !o.readOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(generatorsBucket)
			return err
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checkpoint: create bucket: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Save stores the state of m under name, replacing any previous state.
func (s *Store) Save(name string, m encoding.BinaryMarshaler) error {
	state, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("checkpoint: marshal %q: %w", name, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(generatorsBucket).Put([]byte(name), state)
	})
	if err != nil {
		return fmt.Errorf("checkpoint: save %q: %w", name, err)
	}
	return nil
}

// Load restores the state stored under name into u.
func (s *Store) Load(name string, u encoding.BinaryUnmarshaler) error {
	var state []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(generatorsBucket); b != nil {
			// bolt values are only valid inside the transaction
			if v := b.Get([]byte(name)); v != nil {
				state = append([]byte(nil), v...)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("checkpoint: load %q: %w", name, err)
	}
	if state == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := u.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("checkpoint: load %q: %w", name, err)
	}
	return nil
}

// Delete removes the state stored under name. Deleting a missing name is
// not an error.
func (s *Store) Delete(name string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(generatorsBucket).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("checkpoint: delete %q: %w", name, err)
	}
	return nil
}

// Names returns the stored names in byte order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(generatorsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list: %w", err)
	}
	return names, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
