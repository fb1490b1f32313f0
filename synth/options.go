// SPDX-License-Identifier: MIT

package synth

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTooFewPoints indicates fewer points than groups, or no groups.
	ErrTooFewPoints = errors.New("synth: too few points")

	// ErrBadSize indicates a dimension below the generator's minimum.
	ErrBadSize = errors.New("synth: invalid dimension")
)

// Deterministic defaults.
const (
	DefaultSeed   int64 = 42
	DefaultSpread       = 1.0
	DefaultBox          = 10.0
	minRingDim          = 2
)

// Option customises a generator.
type Option func(*config)

type config struct {
	seed    int64
	spread  float64
	box     float64
	shuffle bool
}

func newConfig(opts ...Option) config {
	cfg := config{seed: DefaultSeed, spread: DefaultSpread, box: DefaultBox}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSeed sets the generator seed.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithSpread sets the Gaussian noise standard deviation. Panics if s < 0.
func WithSpread(s float64) Option {
	if !(s >= 0) || math.IsInf(s, 0) {
		panic(fmt.Sprintf("synth: WithSpread(%v): must be finite and non-negative", s))
	}
	return func(c *config) { c.spread = s }
}

// WithBox sets the half-width of the box blob centres are drawn from, or the
// radius step between rings. Panics unless b > 0.
func WithBox(b float64) Option {
	if !(b > 0) || math.IsInf(b, 0) {
		panic(fmt.Sprintf("synth: WithBox(%v): must be finite and positive", b))
	}
	return func(c *config) { c.box = b }
}

// WithShuffle permutes the generated rows, keeping each label with its row.
func WithShuffle(on bool) Option {
	return func(c *config) { c.shuffle = on }
}
