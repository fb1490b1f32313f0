// SPDX-License-Identifier: MIT

package fusion

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/humap/graph"
)

var (
	// ErrTooFewNeighbors indicates a neighbour count below two; the
	// similarity formula divides by k-1.
	ErrTooFewNeighbors = errors.New("fusion: need at least two neighbours")

	// ErrNilInput indicates a missing parent graph or neighbour list.
	ErrNilInput = errors.New("fusion: nil graph or neighbours")

	// ErrBadLandmark indicates a landmark outside the parent level or listed twice.
	ErrBadLandmark = errors.New("fusion: invalid landmark")
)

const (
	// DefaultDenseLimit is the largest landmark count stored in a dense
	// symmetric matrix (m² / 2 float64 cells).
	DefaultDenseLimit = 4096

	// DefaultShards is the number of lock shards per lock family.
	DefaultShards = 64

	// fillerSpan is how many columns past k get structural filler entries.
	fillerSpan = 5
)

// Input is the parent-level state fusion reads. Nothing in it is modified.
type Input struct {
	// Graph is the parent membership graph.
	Graph *graph.Graph

	// Neighbors are the parent k nearest neighbours with their distances.
	Neighbors *graph.Neighbors

	// Landmarks lists the parent indices of the new level's points, in the
	// order that defines the new level's indexing.
	Landmarks []int
}

// validate checks the Input against itself.
func (in Input) validate() error {
	if in.Graph == nil || in.Neighbors == nil {
		return ErrNilInput
	}
	if in.Neighbors.K < 2 {
		return fmt.Errorf("k=%d: %w", in.Neighbors.K, ErrTooFewNeighbors)
	}
	n := in.Graph.N()
	if err := in.Neighbors.Validate(n); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(in.Landmarks))
	for pos, l := range in.Landmarks {
		if l < 0 || l >= n {
			return fmt.Errorf("landmark %d (=%d) outside [0,%d): %w", pos, l, n, ErrBadLandmark)
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("landmark %d (=%d) listed twice: %w", pos, l, ErrBadLandmark)
		}
		seen[l] = struct{}{}
	}
	return nil
}

// Option configures Fuse.
type Option func(*Options)

// Options holds fusion parameters.
type Options struct {
	// Ctx allows cancellation; checked once per landmark.
	Ctx context.Context

	// Workers bounds the goroutines of the landmark loop. Values < 1 mean 1.
	Workers int

	// DenseLimit is the largest landmark count using dense storage.
	DenseLimit int

	// Shards is the number of mutexes per lock family.
	Shards int
}

// DefaultOptions returns Background context, one worker, DefaultDenseLimit
// and DefaultShards.
func DefaultOptions() Options {
	return Options{
		Ctx:        context.Background(),
		Workers:    1,
		DenseLimit: DefaultDenseLimit,
		Shards:     DefaultShards,
	}
}

// WithContext sets the cancellation context. A nil ctx is ignored.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithWorkers sets the worker bound. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("fusion: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *Options) { o.Workers = n }
}

// WithDenseLimit sets the largest landmark count stored densely.
// Zero forces sparse storage. Panics if m < 0.
func WithDenseLimit(m int) Option {
	if m < 0 {
		panic(fmt.Sprintf("fusion: WithDenseLimit(%d): must be non-negative", m))
	}
	return func(o *Options) { o.DenseLimit = m }
}

// WithShards sets the number of lock shards. Panics if n < 1.
func WithShards(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("fusion: WithShards(%d): must be positive", n))
	}
	return func(o *Options) { o.Shards = n }
}
