// Package seq chooses and shuffles elements of slices and iterators with a
// forkrng generator.
//
// As in package sample, every function takes the generator by value and
// never advances the caller's copy. Weighted selection is built on
// gonum.org/v1/gonum/stat/sampleuv.
package seq

import (
	"errors"
	"iter"
	"math"

	"gonum.org/v1/gonum/stat/sampleuv"

	forkrng "github.com/opd-ai/go-forkrng"
)

var (
	// ErrNoItem is returned when there is nothing to choose from.
	ErrNoItem = errors.New("seq: no items to choose from")

	// ErrInvalidWeight is returned for a negative, NaN or infinite weight,
	// or for weights whose sum overflows.
	ErrInvalidWeight = errors.New("seq: invalid weight")

	// ErrAllWeightsZero is returned when every weight is zero.
	ErrAllWeightsZero = errors.New("seq: all weights are zero")

	// ErrTooMany is returned when more distinct items are requested than exist.
	ErrTooMany = errors.New("seq: too many items requested")
)

// Choose returns a uniformly chosen element of s, or false if s is empty.
func Choose[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T) (T, bool) {
	i, ok := ChooseIndex(g, len(s))
	if !ok {
		var zero T
		return zero, false
	}
	return s[i], true
}

// ChooseIndex returns a uniform index in [0, n), or false if n <= 0.
func ChooseIndex[A forkrng.Accumulator[A]](g forkrng.Generator[A], n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	return g.Rand().IntN(n), true
}

// ChooseIter returns a uniformly chosen element of seq in a single pass,
// using reservoir sampling. It returns false if seq yields nothing.
//
// The result depends only on g and the sequence of yielded values, never
// on how the sequence is produced.
func ChooseIter[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], seq iter.Seq[T]) (T, bool) {
	var (
		chosen T
		seen   uint64
	)
	r := g.Rand()
	for v := range seq {
		seen++
		if seen == 1 || r.Uint64N(seen) == 0 {
			chosen = v
		}
	}
	return chosen, seen > 0
}

// ChooseMultiple returns n distinct elements of s in random order. n is
// clamped to len(s).
func ChooseMultiple[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T, n int) []T {
	n = min(n, len(s))
	if n <= 0 {
		return nil
	}
	idxs := make([]int, n)
	sampleuv.WithoutReplacement(idxs, len(s), g.Stream())

	out := make([]T, n)
	for i, j := range idxs {
		out[i] = s[j]
	}
	return out
}

// ChooseMultipleIter returns up to n elements of seq, chosen uniformly in a
// single pass. The order of the result is not random.
func ChooseMultipleIter[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], seq iter.Seq[T], n int) []T {
	if n <= 0 {
		return nil
	}
	buf := make([]T, n)
	return buf[:ChooseMultipleFill(g, seq, buf)]
}

// ChooseMultipleFill fills buf with elements of seq chosen uniformly in a
// single pass and returns the number written, which is less than len(buf)
// only if seq is shorter.
func ChooseMultipleFill[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], seq iter.Seq[T], buf []T) int {
	if len(buf) == 0 {
		return 0
	}
	r := g.Rand()
	var seen uint64
	for v := range seq {
		if seen < uint64(len(buf)) {
			buf[seen] = v
		} else if j := r.Uint64N(seen + 1); j < uint64(len(buf)) {
			buf[j] = v
		}
		seen++
	}
	return int(min(seen, uint64(len(buf))))
}

// ChooseWeighted returns an element of s chosen with probability
// proportional to weight(element).
func ChooseWeighted[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T, weight func(T) float64) (T, error) {
	i, err := ChooseWeightedIndex(g, s, weight)
	if err != nil {
		var zero T
		return zero, err
	}
	return s[i], nil
}

// ChooseWeightedIndex returns an index of s chosen with probability
// proportional to weight(s[i]).
func ChooseWeightedIndex[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T, weight func(T) float64) (int, error) {
	if len(s) == 0 {
		return 0, ErrNoItem
	}
	w, err := weights(s, weight)
	if err != nil {
		return 0, err
	}
	if err := CheckWeights(w); err != nil {
		return 0, err
	}
	i, _ := sampleuv.NewWeighted(w, g.Stream()).Take()
	return i, nil
}

// ChooseMultipleWeighted returns up to n distinct elements of s chosen
// without replacement, each step with probability proportional to the
// remaining weights. Fewer than n elements are returned when the elements
// with positive weight run out.
func ChooseMultipleWeighted[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T, n int, weight func(T) float64) ([]T, error) {
	w, err := weights(s, weight)
	if err != nil {
		return nil, err
	}
	idxs, err := TakeWeighted(g, w, n)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(idxs))
	for i, j := range idxs {
		out[i] = s[j]
	}
	return out, nil
}

// TakeWeighted draws up to n distinct indices of w without replacement,
// weighted by w. It stops early when no positive weight remains. w is not
// modified.
func TakeWeighted[A forkrng.Accumulator[A]](g forkrng.Generator[A], w []float64, n int) ([]int, error) {
	if _, err := totalWeight(w); err != nil {
		return nil, err
	}
	if n <= 0 || len(w) == 0 {
		return nil, nil
	}

	ws := sampleuv.NewWeighted(w, g.Stream())
	idxs := make([]int, 0, min(n, len(w)))
	for misses := 0; len(idxs) < n && misses <= len(w); {
		i, ok := ws.Take()
		if !ok {
			break
		}
		// Rounding in the weight heap can land on an exhausted leaf.
		if w[i] == 0 {
			misses++
			continue
		}
		idxs = append(idxs, i)
	}
	return idxs, nil
}

// CheckWeights reports whether w can be used for weighted selection of a
// single item.
func CheckWeights(w []float64) error {
	if len(w) == 0 {
		return ErrNoItem
	}
	total, err := totalWeight(w)
	if err != nil {
		return err
	}
	if total == 0 {
		return ErrAllWeightsZero
	}
	return nil
}

// totalWeight sums w. Every weight and the sum itself must be finite and
// non-negative.
func totalWeight(w []float64) (float64, error) {
	var total float64
	for _, x := range w {
		if !validWeight(x) {
			return 0, ErrInvalidWeight
		}
		total += x
	}
	if math.IsInf(total, 0) {
		return 0, ErrInvalidWeight
	}
	return total, nil
}

// Shuffle randomizes the order of s in place.
func Shuffle[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T) {
	g.Rand().Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// PartialShuffle moves n uniformly chosen elements of s, in random order,
// to the front of s. It returns the chosen elements and the rest, both
// views into s. n is clamped to len(s).
func PartialShuffle[T any, A forkrng.Accumulator[A]](g forkrng.Generator[A], s []T, n int) (chosen, rest []T) {
	n = max(0, min(n, len(s)))
	r := g.Rand()
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(s)-i)
		s[i], s[j] = s[j], s[i]
	}
	return s[:n], s[n:]
}

func weights[T any](s []T, weight func(T) float64) ([]float64, error) {
	w := make([]float64, len(s))
	for i, v := range s {
		x := weight(v)
		if !validWeight(x) {
			return nil, ErrInvalidWeight
		}
		w[i] = x
	}
	return w, nil
}

func validWeight(x float64) bool {
	return x >= 0 && !math.IsInf(x, 1)
}
