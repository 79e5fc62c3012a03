package forkrng

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const vectorsPath = "testdata/vectors.json"

// TestLoadTestVectors verifies test vector loading functionality.
func TestLoadTestVectors(t *testing.T) {
	suite, err := LoadTestVectors(vectorsPath)
	if err != nil {
		t.Fatalf("LoadTestVectors() error = %v", err)
	}

	if suite.Version == "" {
		t.Error("suite.Version should not be empty")
	}

	if len(suite.Vectors) == 0 {
		t.Fatal("suite.Vectors should not be empty")
	}

	t.Logf("Loaded %d test vectors from version %s", len(suite.Vectors), suite.Version)
}

// TestLoadTestVectors_FileNotFound verifies error handling for missing files.
func TestLoadTestVectors_FileNotFound(t *testing.T) {
	_, err := LoadTestVectors("nonexistent.json")
	if err == nil {
		t.Error("LoadTestVectors() should return error for nonexistent file")
	}
}

// TestLoadTestVectors_InvalidJSON verifies error handling for invalid JSON.
func TestLoadTestVectors_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "invalid.json")

	err := os.WriteFile(tmpFile, []byte("{invalid json}"), 0644)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	_, err = LoadTestVectors(tmpFile)
	if err == nil {
		t.Error("LoadTestVectors() should return error for invalid JSON")
	}
}

// TestVectors checks every conformance vector bit for bit.
func TestVectors(t *testing.T) {
	suite, err := LoadTestVectors(vectorsPath)
	if err != nil {
		t.Fatalf("LoadTestVectors() error = %v", err)
	}

	for _, tv := range suite.Vectors {
		tv := tv
		t.Run(tv.Family+"/"+tv.Name, func(t *testing.T) {
			want, err := tv.GetExpected()
			if err != nil {
				t.Fatalf("GetExpected() error = %v", err)
			}
			wantFill, err := tv.GetExpectedFill()
			if err != nil {
				t.Fatalf("GetExpectedFill() error = %v", err)
			}

			got, fill, err := tv.Run()
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			for i := range want {
				if got[i] != want[i] {
					t.Errorf("draw %d = %016x, want %016x", i, got[i], want[i])
				}
			}
			if !bytes.Equal(fill, wantFill) {
				t.Errorf("fill = %x, want %x", fill, wantFill)
			}
		})
	}
}

// TestScenarioValues pins the documented example: ten forks of a labelled
// sub-generator.
func TestScenarioValues(t *testing.T) {
	want := []uint64{
		0x6d54fd24aed32f22,
		0x845bca4d0b5f2b8b,
		0xd079ebe26c215c5c,
		0xf9be3b06b3397d6e,
		0xac0bdf50f3fe7580,
		0x202e7fc400ead22b,
		0x09fbca7331adff4b,
		0x4c5d407d21349069,
		0x0d196d1e1430b277,
		0x37e4526f9541da2c,
	}

	sub := NewRng("initial seed").Fork("a convenient label to differentiate")
	seen := make(map[uint64]bool)
	for i, w := range want {
		got := sub.Fork(i).Uint64()
		if got != w {
			t.Errorf("sub.Fork(%d).Uint64() = %016x, want %016x", i, got, w)
		}
		if seen[got] {
			t.Errorf("value %016x repeated", got)
		}
		seen[got] = true
	}
}

// TestTestLabel_Decode verifies label decoding from test vectors.
func TestTestLabel_Decode(t *testing.T) {
	tests := []struct {
		name    string
		label   TestLabel
		want    any
		wantErr bool
	}{
		{"string", TestLabel{Kind: "string", Value: "x"}, "x", false},
		{"int", TestLabel{Kind: "int", Value: "-3"}, int64(-3), false},
		{"uint", TestLabel{Kind: "uint", Value: "3"}, uint64(3), false},
		{"bool", TestLabel{Kind: "bool", Value: "true"}, true, false},
		{"float", TestLabel{Kind: "float", Value: "1.5"}, 1.5, false},
		{"nil", TestLabel{Kind: "nil"}, nil, false},
		{"bad int", TestLabel{Kind: "int", Value: "x"}, nil, true},
		{"bad bytes", TestLabel{Kind: "bytes", Value: "zz"}, nil, true},
		{"unknown kind", TestLabel{Kind: "complex"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.label.Decode()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Decode() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}

	b, err := TestLabel{Kind: "bytes", Value: "dead"}.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(b.([]byte), []byte{0xde, 0xad}) {
		t.Errorf("Decode() = %x, want dead", b)
	}
}

func TestTestVector_UnknownFamily(t *testing.T) {
	tv := TestVector{Name: "x", Family: "md5", Draws: []string{"00"}}
	if _, _, err := tv.Run(); err == nil {
		t.Error("Run() should fail for an unknown family")
	}
}

func TestTestVector_GetExpectedFill(t *testing.T) {
	tv := TestVector{FillLen: 3, FillHex: "0102"}
	if _, err := tv.GetExpectedFill(); err == nil {
		t.Error("GetExpectedFill() should reject a length mismatch")
	}
	tv = TestVector{}
	if fill, err := tv.GetExpectedFill(); err != nil || fill != nil {
		t.Errorf("GetExpectedFill() = %x, %v; want nil, nil", fill, err)
	}
}
