// SPDX-License-Identifier: MIT

package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/humap/graph"
)

var (
	// ErrNilGraph indicates a nil graph.
	ErrNilGraph = errors.New("layout: nil graph")

	// ErrSizeMismatch indicates a graph, dataset or embedding of different sizes.
	ErrSizeMismatch = errors.New("layout: size mismatch")

	// ErrBadDimension indicates a non-positive number of output components.
	ErrBadDimension = errors.New("layout: invalid dimension")

	// ErrLengthMismatch indicates edge and schedule slices of different lengths.
	ErrLengthMismatch = errors.New("layout: length mismatch")

	// ErrBadSchedule indicates a non-positive or NaN epochs-per-sample entry.
	ErrBadSchedule = errors.New("layout: invalid sampling schedule")

	// ErrSpectralFailed indicates that no eigen decomposition converged.
	// Spectral falls back to a random layout instead of returning it.
	ErrSpectralFailed = errors.New("layout: spectral decomposition failed")
)

// Defaults.
const (
	// DefaultComponents is the output dimension.
	DefaultComponents = 2

	// DefaultSmallEpochs and DefaultLargeEpochs are used when n_epochs <= 0:
	// the small value for graphs up to DefaultEpochsCutoff rows.
	DefaultSmallEpochs  = 500
	DefaultLargeEpochs  = 200
	DefaultEpochsCutoff = 10000

	// DefaultLearningRate is the initial alpha.
	DefaultLearningRate = 1.0

	// DefaultRepulsion is gamma, the weight of negative samples.
	DefaultRepulsion = 1.0

	// DefaultNegativeSampleRate is the number of negative samples per edge sample.
	DefaultNegativeSampleRate = 5

	// DefaultSpread and DefaultMinDist shape the low-dimensional kernel.
	DefaultSpread  = 1.0
	DefaultMinDist = 0.1

	// DefaultDenseSpectralLimit is the largest component solved densely.
	DefaultDenseSpectralLimit = 2000

	// DefaultInitNoise is the standard deviation of the noise added to the
	// initial layout.
	DefaultInitNoise = 1e-4

	// Scale is the upper bound of every rescaled dimension.
	Scale = 10.0

	// gradClip bounds every gradient component.
	gradClip = 4.0
)

// SpectralInitializer produces initial coordinates for the points of g.
type SpectralInitializer interface {
	Init(ctx context.Context, ds *graph.Dataset, g *graph.Graph, dim int) ([][]float64, error)
}

// Optimizer refines init along edges, sampling edge e every eps[e] epochs.
// init must not be modified; the result is a new embedding.
type Optimizer interface {
	Optimize(ctx context.Context, init [][]float64, edges graph.Triplets, eps []float64, nEpochs int, seed int64) ([][]float64, error)
}

// DefaultEpochs returns the epoch count used when none is configured:
// DefaultSmallEpochs for graphs with at most DefaultEpochsCutoff rows,
// DefaultLargeEpochs above.
func DefaultEpochs(rows int) int {
	if rows <= DefaultEpochsCutoff {
		return DefaultSmallEpochs
	}
	return DefaultLargeEpochs
}

// ResolveEpochs returns nEpochs when positive, DefaultEpochs(rows) otherwise.
func ResolveEpochs(nEpochs, rows int) int {
	if nEpochs > 0 {
		return nEpochs
	}
	return DefaultEpochs(rows)
}

// Prune drops the edges of g lighter than max_weight / nEpochs.
func Prune(g *graph.Graph, nEpochs int) *graph.Graph {
	if nEpochs <= 0 {
		nEpochs = DefaultEpochs(g.N())
	}
	return g.Prune(g.MaxWeight() / float64(nEpochs))
}

// EpochsPerSample returns, for every weight, the number of epochs between two
// samples of its edge: max_w / w, the inverse of how often the edge would be
// drawn in nEpochs epochs. Non-positive weights (or a non-positive maximum)
// give +Inf: the edge is never sampled. Output has the input's length and
// order and is non-increasing in weight.
//
// Complexity: O(E).
func EpochsPerSample(weights []float64, nEpochs int) []float64 {
	out := make([]float64, len(weights))
	maxW := 0.0
	for _, w := range weights {
		if w > maxW {
			maxW = w
		}
	}
	for e, w := range weights {
		if w <= 0 || maxW <= 0 || nEpochs <= 0 {
			out[e] = math.Inf(1)
			continue
		}
		out[e] = maxW / w
	}
	return out
}

// ---------- Options ----------

// Option configures an Engine.
type Option func(*Options)

// Options holds the layout parameters.
type Options struct {
	Components         int
	Epochs             int // <= 0 selects DefaultEpochs
	Seed               int64
	LearningRate       float64
	Repulsion          float64
	NegativeSampleRate int
	Spread             float64
	MinDist            float64
	Workers            int
	Spectral           SpectralInitializer // nil selects Spectral
	Optimizer          Optimizer           // nil selects SGD
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Components:         DefaultComponents,
		Epochs:             0,
		Seed:               0,
		LearningRate:       DefaultLearningRate,
		Repulsion:          DefaultRepulsion,
		NegativeSampleRate: DefaultNegativeSampleRate,
		Spread:             DefaultSpread,
		MinDist:            DefaultMinDist,
		Workers:            1,
	}
}

// WithComponents sets the output dimension. Panics if d < 1.
func WithComponents(d int) Option {
	if d < 1 {
		panic(fmt.Sprintf("layout: WithComponents(%d): must be positive", d))
	}
	return func(o *Options) { o.Components = d }
}

// WithEpochs sets the number of epochs; n <= 0 selects DefaultEpochs.
func WithEpochs(n int) Option {
	return func(o *Options) { o.Epochs = n }
}

// WithSeed sets the random seed (0 follows the rng.DefaultSeed policy).
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithLearningRate sets the initial alpha. Panics unless finite and positive.
func WithLearningRate(alpha float64) Option {
	if !(alpha > 0) || math.IsInf(alpha, 0) {
		panic(fmt.Sprintf("layout: WithLearningRate(%v): must be finite and positive", alpha))
	}
	return func(o *Options) { o.LearningRate = alpha }
}

// WithRepulsion sets gamma. Panics unless finite and non-negative.
func WithRepulsion(gamma float64) Option {
	if !(gamma >= 0) || math.IsInf(gamma, 0) {
		panic(fmt.Sprintf("layout: WithRepulsion(%v): must be finite and non-negative", gamma))
	}
	return func(o *Options) { o.Repulsion = gamma }
}

// WithNegativeSampleRate sets the negative samples per edge sample.
// Panics if r < 0.
func WithNegativeSampleRate(r int) Option {
	if r < 0 {
		panic(fmt.Sprintf("layout: WithNegativeSampleRate(%d): must be non-negative", r))
	}
	return func(o *Options) { o.NegativeSampleRate = r }
}

// WithKernel sets spread and min_dist of the low-dimensional kernel.
// Panics unless 0 <= minDist and 0 < spread.
func WithKernel(spread, minDist float64) Option {
	if !(spread > 0) || !(minDist >= 0) || math.IsInf(spread, 0) || math.IsInf(minDist, 0) {
		panic(fmt.Sprintf("layout: WithKernel(%v, %v): need spread > 0 and min_dist >= 0", spread, minDist))
	}
	return func(o *Options) {
		o.Spread = spread
		o.MinDist = minDist
	}
}

// WithWorkers enables buffered parallel SGD for n > 1. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("layout: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *Options) { o.Workers = n }
}

// WithSpectral replaces the spectral initialiser.
func WithSpectral(s SpectralInitializer) Option {
	return func(o *Options) { o.Spectral = s }
}

// WithOptimizer replaces the layout optimiser.
func WithOptimizer(opt Optimizer) Option {
	return func(o *Options) { o.Optimizer = opt }
}
