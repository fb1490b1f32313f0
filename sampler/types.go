// SPDX-License-Identifier: MIT

package sampler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDistribution indicates sigmas that cannot form a sampling
	// distribution: an all-zero sum, a negative, NaN or Inf sigma, or a
	// landmark count outside [0, n].
	ErrInvalidDistribution = errors.New("sampler: invalid distribution")

	// ErrDuplicateLandmark indicates a drawn landmark set containing the same
	// index twice or having the wrong size. It signals a broken RNG provider.
	ErrDuplicateLandmark = errors.New("sampler: duplicate landmark")
)

// DefaultParallelThreshold is the point count from which the probability
// transform is split across workers.
const DefaultParallelThreshold = 1 << 16

// Option configures Sample and Probabilities.
type Option func(*Options)

// Options holds sampling parameters.
type Options struct {
	// Workers bounds the goroutines used by the probability transform.
	// Values < 1 mean 1.
	Workers int

	// ParallelThreshold is the minimum n for which the transform fans out.
	ParallelThreshold int
}

// DefaultOptions returns single-worker sampling with DefaultParallelThreshold.
func DefaultOptions() Options {
	return Options{
		Workers:           1,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

// WithWorkers sets the worker bound of the probability transform.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("sampler: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *Options) { o.Workers = n }
}

// WithParallelThreshold sets the minimum n for the parallel transform.
// Panics if n < 1.
func WithParallelThreshold(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("sampler: WithParallelThreshold(%d): must be positive", n))
	}
	return func(o *Options) { o.ParallelThreshold = n }
}
