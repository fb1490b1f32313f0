// SPDX-License-Identifier: MIT

package hierarchy

import (
	"fmt"
	"math"

	"github.com/katalvlaran/humap/layout"
)

// Mode selects how a level's dataset is derived from its landmarks.
type Mode string

// Modes.
const (
	// Similarity moves every landmark by the neighbour-weighted mean shift
	// of its parent neighbourhood (dense).
	Similarity Mode = "similarity"

	// Precomputed fuses shared-neighbour dissimilarities between landmarks
	// (sparse).
	Precomputed Mode = "precomputed"

	// Raw keeps the landmarks' parent rows.
	Raw Mode = "raw"
)

// Defaults.
const (
	// DefaultNeighbors is the neighbour count of every level, self included.
	DefaultNeighbors = 15

	// DefaultMode is the dataset derivation of levels >= 1.
	DefaultMode = Precomputed

	// densityFactor sizes SparseData's working storage per neighbour.
	densityFactor = 2.5
)

// DefaultPercents are the landmark fractions of levels 1 and 2.
var DefaultPercents = []float64{0.22, 0.19}

// Option configures a Builder.
type Option func(*Options)

// Options holds the builder parameters.
type Options struct {
	// Percents[ℓ-1] is the fraction of level ℓ-1 kept as landmarks in level ℓ.
	Percents []float64

	// Neighbors is the kNN size of every level, self included.
	Neighbors int

	Mode Mode

	// Epochs <= 0 selects layout.DefaultEpochs per level.
	Epochs int

	Components int
	Seed       int64
	Workers    int

	// MaxDepth bounds association traversals; 0 means unlimited.
	MaxDepth int

	// GraphBuilder nil selects knn.New(Neighbors).
	GraphBuilder GraphBuilder

	// Observer nil selects NopObserver.
	Observer Observer

	// Layout options are applied after the ones derived from the fields above.
	Layout []layout.Option
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Percents:   append([]float64(nil), DefaultPercents...),
		Neighbors:  DefaultNeighbors,
		Mode:       DefaultMode,
		Epochs:     0,
		Components: layout.DefaultComponents,
		Seed:       0,
		Workers:    1,
	}
}

// validate checks the fields that have no panicking setter.
func (o Options) validate() error {
	if o.Neighbors < 2 {
		return fmt.Errorf("neighbors=%d, need at least 2: %w", o.Neighbors, ErrInvalidOptions)
	}
	for l, p := range o.Percents {
		if !(p > 0 && p < 1) {
			return fmt.Errorf("percent[%d]=%v outside (0,1): %w", l, p, ErrInvalidOptions)
		}
	}
	if o.Components < 1 || o.Workers < 1 || o.MaxDepth < 0 {
		return fmt.Errorf("components=%d workers=%d maxDepth=%d: %w",
			o.Components, o.Workers, o.MaxDepth, ErrInvalidOptions)
	}
	return nil
}

// WithPercents sets the landmark fraction of every level after the first.
// No percents builds level 0 only. Panics unless every p lies in (0, 1).
func WithPercents(p ...float64) Option {
	for _, x := range p {
		if !(x > 0 && x < 1) || math.IsNaN(x) {
			panic(fmt.Sprintf("hierarchy: WithPercents(%v): each fraction must lie in (0,1)", p))
		}
	}
	cp := append([]float64(nil), p...)
	return func(o *Options) { o.Percents = cp }
}

// WithNeighbors sets the neighbour count. Panics if k < 2.
func WithNeighbors(k int) Option {
	if k < 2 {
		panic(fmt.Sprintf("hierarchy: WithNeighbors(%d): need at least two", k))
	}
	return func(o *Options) { o.Neighbors = k }
}

// WithMode sets the dataset derivation. Unknown modes behave as Raw.
func WithMode(m Mode) Option {
	return func(o *Options) { o.Mode = m }
}

// WithEpochs sets the layout epochs; n <= 0 selects the size-based default.
func WithEpochs(n int) Option {
	return func(o *Options) { o.Epochs = n }
}

// WithComponents sets the embedding dimension. Panics if d < 1.
func WithComponents(d int) Option {
	if d < 1 {
		panic(fmt.Sprintf("hierarchy: WithComponents(%d): must be positive", d))
	}
	return func(o *Options) { o.Components = d }
}

// WithSeed sets the seed of sampling and layout.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithWorkers bounds the goroutines of every phase. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("hierarchy: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *Options) { o.Workers = n }
}

// WithMaxDepth bounds association traversals. Panics if d < 0.
func WithMaxDepth(d int) Option {
	if d < 0 {
		panic(fmt.Sprintf("hierarchy: WithMaxDepth(%d): must be non-negative", d))
	}
	return func(o *Options) { o.MaxDepth = d }
}

// WithGraphBuilder replaces the default kNN graph builder.
func WithGraphBuilder(gb GraphBuilder) Option {
	return func(o *Options) { o.GraphBuilder = gb }
}

// WithObserver sets the phase observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

// WithLayout appends layout engine options.
func WithLayout(opts ...layout.Option) Option {
	return func(o *Options) { o.Layout = append(o.Layout, opts...) }
}
