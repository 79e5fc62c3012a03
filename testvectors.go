package forkrng

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// TestLabel is a typed seed or label value in a test vector. JSON numbers
// lose integer width, so every value is carried as a string with its kind.
type TestLabel struct {
	Kind  string `json:"kind"` // string, bytes, int, uint, bool, float or nil
	Value string `json:"value"`
}

// TestVector is a single conformance case: a seed and a label path, and the
// values successive Next calls must return.
type TestVector struct {
	Name    string      `json:"name"`
	Family  string      `json:"family"`
	Seed    *TestLabel  `json:"seed,omitempty"` // nil means Default
	Labels  []TestLabel `json:"labels,omitempty"`
	Draws   []string    `json:"draws"`              // Hex-encoded uint64 values
	FillLen int         `json:"fill_len,omitempty"` // Length of the FillBytes check
	FillHex string      `json:"fill_hex,omitempty"` // Expected FillBytes output
}

// TestVectorSuite contains all test vectors with metadata about the encoding
// they pin.
type TestVectorSuite struct {
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Encoding    string       `json:"encoding,omitempty"`
	Vectors     []TestVector `json:"vectors"`
}

// LoadTestVectors loads test vectors from a JSON file.
// Returns an error if the file cannot be read or parsed.
//
// This is used internally for testing but exported for external
// compatibility checks by other implementations.
func LoadTestVectors(path string) (*TestVectorSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test vectors: %w", err)
	}

	var suite TestVectorSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test vectors: %w", err)
	}

	return &suite, nil
}

// Decode returns the Go value the label stands for.
func (l TestLabel) Decode() (any, error) {
	switch l.Kind {
	case "string":
		return l.Value, nil
	case "bytes":
		b, err := hex.DecodeString(l.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes label: %w", err)
		}
		return b, nil
	case "int":
		return strconv.ParseInt(l.Value, 10, 64)
	case "uint":
		return strconv.ParseUint(l.Value, 10, 64)
	case "bool":
		return strconv.ParseBool(l.Value)
	case "float":
		return strconv.ParseFloat(l.Value, 64)
	case "nil":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown label kind: %s", l.Kind)
	}
}

// GetExpected returns the decoded expected draws.
func (tv *TestVector) GetExpected() ([]uint64, error) {
	out := make([]uint64, len(tv.Draws))
	for i, s := range tv.Draws {
		v, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid expected draw %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// GetExpectedFill returns the decoded FillBytes output, or nil if the vector
// has none.
func (tv *TestVector) GetExpectedFill() ([]byte, error) {
	if tv.FillLen == 0 {
		return nil, nil
	}
	b, err := hex.DecodeString(tv.FillHex)
	if err != nil {
		return nil, fmt.Errorf("invalid fill hex: %w", err)
	}
	if len(b) != tv.FillLen {
		return nil, fmt.Errorf("fill hex has %d bytes, want %d", len(b), tv.FillLen)
	}
	return b, nil
}

// Run derives the vector's generator and returns len(Draws) successive
// values and, if FillLen is set, FillBytes output of that length.
func (tv *TestVector) Run() (draws []uint64, fill []byte, err error) {
	switch tv.Family {
	case XXH64{}.Family():
		return runVector[XXH64](tv)
	case Blake2b{}.Family():
		return runVector[Blake2b](tv)
	default:
		return nil, nil, fmt.Errorf("unknown family: %s", tv.Family)
	}
}

func runVector[A Accumulator[A]](tv *TestVector) ([]uint64, []byte, error) {
	g := Default[A]()
	if tv.Seed != nil {
		seed, err := tv.Seed.Decode()
		if err != nil {
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		g = New[A](seed)
	}
	for i, l := range tv.Labels {
		label, err := l.Decode()
		if err != nil {
			return nil, nil, fmt.Errorf("label %d: %w", i, err)
		}
		g = g.Fork(label)
	}

	draws := make([]uint64, len(tv.Draws))
	next := g
	for i := range draws {
		draws[i], next = next.Next()
	}

	var fill []byte
	if tv.FillLen > 0 {
		fill = make([]byte, tv.FillLen)
		g.FillBytes(fill)
	}
	return draws, fill, nil
}
