// SPDX-License-Identifier: MIT

package knn

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBadK indicates a neighbour count below 2 or above the point count.
	ErrBadK = errors.New("knn: invalid neighbour count")

	// ErrUnknownMetric indicates an unsupported metric name.
	ErrUnknownMetric = errors.New("knn: unknown metric")

	// ErrNilDataset indicates a nil dataset.
	ErrNilDataset = errors.New("knn: nil dataset")
)

// Metric names a distance between dense points.
type Metric string

// Supported metrics.
const (
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
	Cosine    Metric = "cosine"
)

// Defaults.
const (
	// DefaultK is the neighbour count, self included.
	DefaultK = 15

	// DefaultLocalConnectivity is the number of neighbours assumed connected
	// at full strength.
	DefaultLocalConnectivity = 1.0

	// DefaultSetOpMixRatio blends fuzzy union (1) and intersection (0).
	DefaultSetOpMixRatio = 1.0

	// smoothing search parameters
	smoothIter    = 64
	smoothTol     = 1e-5
	minKDistScale = 1e-3
	bandwidth     = 1.0
)

// Option configures a Builder.
type Option func(*Builder)

// WithMetric sets the dense distance. Panics on an unknown name.
func WithMetric(m Metric) Option {
	if _, err := distanceFunc(m); err != nil {
		panic(fmt.Sprintf("knn: WithMetric(%q): %v", m, err))
	}
	return func(b *Builder) { b.Metric = m }
}

// WithLocalConnectivity sets the local connectivity. Panics if c < 0 or c is
// not finite.
func WithLocalConnectivity(c float64) Option {
	if !(c >= 0) || math.IsInf(c, 0) {
		panic(fmt.Sprintf("knn: WithLocalConnectivity(%v): must be finite and non-negative", c))
	}
	return func(b *Builder) { b.LocalConnectivity = c }
}

// WithSetOpMixRatio sets the union/intersection blend. Panics outside [0, 1].
func WithSetOpMixRatio(r float64) Option {
	if !(r >= 0 && r <= 1) {
		panic(fmt.Sprintf("knn: WithSetOpMixRatio(%v): must lie in [0,1]", r))
	}
	return func(b *Builder) { b.SetOpMixRatio = r }
}

// WithWorkers bounds the goroutines of the neighbour search. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("knn: WithWorkers(%d): need at least one worker", n))
	}
	return func(b *Builder) { b.Workers = n }
}
