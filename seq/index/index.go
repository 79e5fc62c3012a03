// Package index samples distinct indices from a range.
package index

import (
	"fmt"

	"gonum.org/v1/gonum/stat/sampleuv"

	forkrng "github.com/opd-ai/go-forkrng"
	"github.com/opd-ai/go-forkrng/seq"
)

// Sample returns amount distinct indices from [0, length) in random order.
func Sample[A forkrng.Accumulator[A]](g forkrng.Generator[A], length, amount int) ([]int, error) {
	if length < 0 || amount < 0 {
		return nil, fmt.Errorf("index: negative length %d or amount %d", length, amount)
	}
	if amount > length {
		return nil, fmt.Errorf("%w: %d of %d", seq.ErrTooMany, amount, length)
	}
	idxs := make([]int, amount)
	if amount == 0 {
		return idxs, nil
	}
	sampleuv.WithoutReplacement(idxs, length, g.Stream())
	return idxs, nil
}

// SampleWeighted returns amount distinct indices from [0, length), chosen
// without replacement with probability proportional to weight(i). It fails
// with seq.ErrTooMany if fewer than amount indices have a positive weight.
func SampleWeighted[A forkrng.Accumulator[A]](g forkrng.Generator[A], length int, weight func(int) float64, amount int) ([]int, error) {
	if length < 0 || amount < 0 {
		return nil, fmt.Errorf("index: negative length %d or amount %d", length, amount)
	}
	if amount > length {
		return nil, fmt.Errorf("%w: %d of %d", seq.ErrTooMany, amount, length)
	}

	w := make([]float64, length)
	for i := range w {
		w[i] = weight(i)
	}
	idxs, err := seq.TakeWeighted(g, w, amount)
	if err != nil {
		return nil, err
	}
	if len(idxs) < amount {
		return nil, fmt.Errorf("%w: only %d indices have positive weight", seq.ErrTooMany, len(idxs))
	}
	if idxs == nil {
		idxs = []int{}
	}
	return idxs, nil
}
