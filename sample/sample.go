// Package sample draws values from probability distributions using a
// forkrng generator.
//
// Every function takes the generator by value and draws from its own Stream,
// so the caller's generator is never advanced. Calling a function twice with
// the same generator returns the same result; fork the generator to get an
// independent one.
//
//	hp, err := sample.Normal(rng.Fork("health"), 20, 6)
//
// Distributions come from gonum.org/v1/gonum/stat/distuv.
package sample

import (
	"errors"
	"iter"
	"math"
	"math/rand/v2"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat/distuv"

	forkrng "github.com/opd-ai/go-forkrng"
)

var (
	// ErrEmptyRange is returned when a range contains no values.
	ErrEmptyRange = errors.New("sample: empty range")

	// ErrInvalidProbability is returned for probabilities outside [0, 1].
	ErrInvalidProbability = errors.New("sample: probability must be in [0, 1]")

	// ErrInvalidParameter is returned for distribution parameters that are
	// NaN, infinite, or out of the distribution's domain.
	ErrInvalidParameter = errors.New("sample: invalid distribution parameter")
)

// Float64 returns a uniform value in [0, 1).
func Float64[A forkrng.Accumulator[A]](g forkrng.Generator[A]) float64 {
	return g.Rand().Float64()
}

// Range returns a uniform integer in [lo, hi).
func Range[T constraints.Integer, A forkrng.Accumulator[A]](g forkrng.Generator[A], lo, hi T) (T, error) {
	if lo >= hi {
		return 0, ErrEmptyRange
	}
	span := uint64(hi) - uint64(lo)
	return T(uint64(lo) + g.Rand().Uint64N(span)), nil
}

// RangeInclusive returns a uniform integer in [lo, hi].
func RangeInclusive[T constraints.Integer, A forkrng.Accumulator[A]](g forkrng.Generator[A], lo, hi T) (T, error) {
	if lo > hi {
		return 0, ErrEmptyRange
	}
	span := uint64(hi) - uint64(lo) + 1
	if span == 0 {
		// The range covers all 64-bit values.
		return T(g.Uint64()), nil
	}
	return T(uint64(lo) + g.Rand().Uint64N(span)), nil
}

// Uniform returns a uniform float in [lo, hi).
func Uniform[F constraints.Float, A forkrng.Accumulator[A]](g forkrng.Generator[A], lo, hi F) (F, error) {
	l, h := float64(lo), float64(hi)
	if !finite(l) || !finite(h) || !finite(h-l) {
		return 0, ErrInvalidParameter
	}
	if l >= h {
		return 0, ErrEmptyRange
	}
	v := F(distuv.Uniform{Min: l, Max: h, Src: g.Stream()}.Rand())
	if v >= hi {
		// Rounding can land on the upper bound.
		v = F(math.Nextafter(h, l))
		if float64(v) >= h || v < lo {
			v = lo
		}
	}
	return v, nil
}

// Bool returns true with probability p.
func Bool[A forkrng.Accumulator[A]](g forkrng.Generator[A], p float64) (bool, error) {
	if !(p >= 0 && p <= 1) {
		return false, ErrInvalidProbability
	}
	return distuv.Bernoulli{P: p, Src: g.Stream()}.Rand() == 1, nil
}

// Ratio returns true with probability num/den.
func Ratio[A forkrng.Accumulator[A]](g forkrng.Generator[A], num, den uint32) (bool, error) {
	if den == 0 || num > den {
		return false, ErrInvalidProbability
	}
	return g.Rand().Uint32N(den) < num, nil
}

// Normal returns a normally distributed value with mean mu and standard
// deviation sigma.
func Normal[A forkrng.Accumulator[A]](g forkrng.Generator[A], mu, sigma float64) (float64, error) {
	if !finite(mu) || !finite(sigma) || sigma < 0 {
		return 0, ErrInvalidParameter
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.Stream()}.Rand(), nil
}

// From draws one value from a gonum distribution. build receives the
// random source the distribution must use:
//
//	v := sample.From(g, func(src rand.Source) distuv.Rander {
//	    return distuv.Exponential{Rate: 2, Src: src}
//	})
func From[A forkrng.Accumulator[A]](g forkrng.Generator[A], build func(src rand.Source) distuv.Rander) float64 {
	return build(g.Stream()).Rand()
}

// Iter returns an endless sequence of draws from a gonum distribution,
// all taken from one evolving stream of g. The sequence is the same every
// time it is ranged over.
func Iter[A forkrng.Accumulator[A]](g forkrng.Generator[A], build func(src rand.Source) distuv.Rander) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		d := build(g.Stream())
		for {
			if !yield(d.Rand()) {
				return
			}
		}
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
