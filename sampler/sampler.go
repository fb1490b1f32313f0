// SPDX-License-Identifier: MIT

// Package sampler draws landmark points proportionally to their sigma.
//
// A larger sigma marks a point whose neighbourhood is sparser, so a point
// that represents more of the space. Sampling runs in three steps:
//
//  1. p_i = sigma_i / Σ sigma
//  2. q = softmax(p), computed stably (max subtracted before exp)
//  3. k distinct indices drawn from q without replacement (rng.WeightedSample)
//
// The result is checked explicitly for size and uniqueness before it is
// returned, and Order sorts landmarks by descending sigma so the last one
// carries the smallest sigma of the set.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/humap/rng"
)

// Target returns the number of landmarks for a level of n points kept at
// the given fraction: int(percent * n), truncated toward zero.
func Target(percent float64, n int) int {
	return int(percent * float64(n))
}

// Probabilities maps sigmas to the softmax sampling distribution.
// ErrInvalidDistribution is returned for an empty input, a negative, NaN or
// Inf sigma, or an all-zero sum; no value is computed in that case.
//
// Complexity: O(n) time, O(n) space.
func Probabilities(sigmas []float64, opts ...Option) ([]float64, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Validate before any transform
	if len(sigmas) == 0 {
		return nil, fmt.Errorf("Probabilities: no sigmas: %w", ErrInvalidDistribution)
	}
	for i, s := range sigmas {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("Probabilities: sigma %d = %v: %w", i, s, ErrInvalidDistribution)
		}
	}
	sum := floats.Sum(sigmas)
	if sum == 0 || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("Probabilities: sigma sum %v: %w", sum, ErrInvalidDistribution)
	}

	// 2. Normalise, then softmax with the max subtracted
	p := make([]float64, len(sigmas))
	floats.ScaleTo(p, 1/sum, sigmas)
	peak := floats.Max(p)
	if err := transform(p, o, func(x float64) float64 { return math.Exp(x - peak) }); err != nil {
		return nil, err
	}
	floats.Scale(1/floats.Sum(p), p)

	return p, nil
}

// transform applies fn to every element of p, splitting the slice into
// contiguous chunks across workers when p is large enough.
func transform(p []float64, o Options, fn func(float64) float64) error {
	if o.Workers <= 1 || len(p) < o.ParallelThreshold {
		for i := range p {
			p[i] = fn(p[i])
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(o.Workers)
	chunk := (len(p) + o.Workers - 1) / o.Workers
	for lo := 0; lo < len(p); lo += chunk {
		part := p[lo:min(lo+chunk, len(p))]
		g.Go(func() error {
			for i := range part {
				part[i] = fn(part[i])
			}
			return nil
		})
	}
	return g.Wait()
}

// Sample draws k distinct landmark indices from [0, len(sigmas)) weighted by
// the softmax of the normalised sigmas, consuming src. The distribution is
// validated before any draw.
//
// Errors:
//   - ErrInvalidDistribution for degenerate sigmas or k outside [0, n].
//   - ErrDuplicateLandmark if the drawn set fails the uniqueness/size check.
func Sample(sigmas []float64, k int, src rng.Source, opts ...Option) ([]int, error) {
	// 1. Distribution
	p, err := Probabilities(sigmas, opts...)
	if err != nil {
		return nil, fmt.Errorf("Sample: %w", err)
	}
	if k < 0 || k > len(sigmas) {
		return nil, fmt.Errorf("Sample: k=%d outside [0,%d]: %w", k, len(sigmas), ErrInvalidDistribution)
	}

	// 2. Draw without replacement
	idx, err := rng.WeightedSample(p, k, src)
	if err != nil {
		if errors.Is(err, rng.ErrInsufficientSupport) {
			return nil, fmt.Errorf("Sample: %v: %w", err, ErrInvalidDistribution)
		}
		return nil, fmt.Errorf("Sample: %w", err)
	}

	// 3. Postcondition
	if err = Check(idx, k, len(sigmas)); err != nil {
		return nil, fmt.Errorf("Sample: %w", err)
	}
	return idx, nil
}

// Check verifies that landmarks holds exactly k distinct indices in [0, n).
func Check(landmarks []int, k, n int) error {
	if len(landmarks) != k {
		return fmt.Errorf("Check: got %d landmarks, want %d: %w", len(landmarks), k, ErrDuplicateLandmark)
	}
	seen := make([]bool, n)
	for _, l := range landmarks {
		if l < 0 || l >= n {
			return fmt.Errorf("Check: landmark %d outside [0,%d): %w", l, n, ErrInvalidDistribution)
		}
		if seen[l] {
			return fmt.Errorf("Check: landmark %d drawn twice: %w", l, ErrDuplicateLandmark)
		}
		seen[l] = true
	}
	return nil
}

// Order returns a copy of landmarks sorted by descending sigma. Ties keep
// their draw order, so the result is deterministic.
func Order(landmarks []int, sigmas []float64) []int {
	out := append([]int(nil), landmarks...)
	sort.SliceStable(out, func(a, b int) bool {
		return sigmas[out[a]] > sigmas[out[b]]
	})
	return out
}
