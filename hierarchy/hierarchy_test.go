// SPDX-License-Identifier: MIT

package hierarchy_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/humap/associate"
	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/hierarchy"
	"github.com/katalvlaran/humap/layout"
	"github.com/katalvlaran/humap/synth"
)

// blobs returns 300 points in three well separated clusters.
func blobs(t testing.TB) ([][]float64, []int) {
	X, y, err := synth.Blobs(300, 5, 3, synth.WithSeed(3), synth.WithBox(20))
	require.NoError(t, err)
	return X, y
}

func newBuilder(t testing.TB, opts ...hierarchy.Option) *hierarchy.Builder {
	base := []hierarchy.Option{
		hierarchy.WithPercents(0.3, 0.3),
		hierarchy.WithNeighbors(10),
		hierarchy.WithEpochs(30),
		hierarchy.WithSeed(5),
	}
	b, err := hierarchy.New(append(base, opts...)...)
	require.NoError(t, err)
	return b
}

func TestFit_AllModes(t *testing.T) {
	X, y := blobs(t)
	for _, mode := range []hierarchy.Mode{hierarchy.Precomputed, hierarchy.Similarity, hierarchy.Raw} {
		t.Run(string(mode), func(t *testing.T) {
			b := newBuilder(t, hierarchy.WithMode(mode))
			require.NoError(t, b.Fit(context.Background(), X, y))
			require.Equal(t, 3, b.NumLevels())

			sizes := []int{300, 90, 27}
			for l, n := range sizes {
				emb, err := b.Embedding(l)
				require.NoError(t, err)
				require.Len(t, emb, n)
				assert.True(t, layout.InBounds(emb), "level %d", l)
				for d := 0; d < layout.DefaultComponents; d++ {
					lo, hi := layout.Scale, 0.0
					for _, row := range emb {
						lo, hi = min(lo, row[d]), max(hi, row[d])
					}
					assert.Equal(t, 0.0, lo, "level %d dim %d", l, d)
					assert.Equal(t, layout.Scale, hi, "level %d dim %d", l, d)
				}

				g, err := b.Graph(l)
				require.NoError(t, err)
				assert.Equal(t, n, g.N())
				assert.True(t, g.IsSymmetric(1e-9))
			}

			for l := 0; l < 2; l++ {
				idx, err := b.LandmarkIndices(l)
				require.NoError(t, err)
				require.Len(t, idx, sizes[l+1])
				seen := make(map[int]bool)
				for _, i := range idx {
					assert.False(t, seen[i], "landmark %d repeated", i)
					assert.True(t, i >= 0 && i < sizes[l])
					seen[i] = true
				}

				sig, err := b.Sigmas(l)
				require.NoError(t, err)
				require.Len(t, sig, sizes[l])
				// ordered by descending sigma
				for p := 1; p < len(idx); p++ {
					assert.GreaterOrEqual(t, sig[idx[p-1]], sig[idx[p]])
				}
			}

			// labels follow the landmarks
			idx0, _ := b.LandmarkIndices(0)
			idx1, _ := b.LandmarkIndices(1)
			lab1, err := b.Labels(1)
			require.NoError(t, err)
			lab2, err := b.Labels(2)
			require.NoError(t, err)
			for p, i := range idx0 {
				assert.Equal(t, y[i], lab1[p])
			}
			for p, i := range idx1 {
				assert.Equal(t, lab1[i], lab2[p])
			}

			// every non-final level is fully associated to its landmarks
			for l := 0; l < 2; l++ {
				idx, _ := b.LandmarkIndices(l)
				isLandmark := make(map[int]bool)
				for _, i := range idx {
					isLandmark[i] = true
				}
				g, _ := b.Graph(l)
				assoc, err := b.Associations(l)
				require.NoError(t, err)
				for _, a := range assoc {
					require.True(t, a.Resolved, "level %d point %d", l, a.Index)
					assert.True(t, isLandmark[a.Owner])
					if isLandmark[a.Index] {
						assert.Equal(t, a.Index, a.Owner)
						assert.Equal(t, 1.0, a.Strength)
					} else {
						assert.Equal(t, g.Weight(a.Owner, a.Index), a.Strength)
					}
				}
			}

			sparse, err := b.SparseData(1, 0)
			if mode == hierarchy.Precomputed {
				require.NoError(t, err)
				assert.Equal(t, 90, sparse.N())
				assert.True(t, sparse.IsSymmetric(0))
			} else {
				assert.ErrorIs(t, err, hierarchy.ErrUnsupported)
			}
		})
	}
}

func TestAccessors_Bounds(t *testing.T) {
	X, y := blobs(t)
	b := newBuilder(t)

	_, err := b.Embedding(0)
	assert.ErrorIs(t, err, hierarchy.ErrNotFitted)
	assert.Equal(t, 0, b.NumLevels())

	require.NoError(t, b.Fit(context.Background(), X, y))
	last := b.NumLevels() - 1

	for _, l := range []int{-1, b.NumLevels()} {
		_, err = b.Embedding(l)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
		_, err = b.Labels(l)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
		_, err = b.Sigmas(l)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
		_, err = b.LandmarkIndices(l)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
		_, err = b.SparseData(l, 0)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
		_, err = b.Associations(l)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
		_, err = b.Graph(l)
		assert.ErrorIs(t, err, hierarchy.ErrOutOfRange)
	}

	_, err = b.Labels(0)
	assert.ErrorIs(t, err, hierarchy.ErrUnsupported)
	_, err = b.Sigmas(last)
	assert.ErrorIs(t, err, hierarchy.ErrUnsupported)
	_, err = b.LandmarkIndices(last)
	assert.ErrorIs(t, err, hierarchy.ErrUnsupported)
	_, err = b.SparseData(0, 0)
	assert.ErrorIs(t, err, hierarchy.ErrUnsupported)

	// accessors hand out copies
	emb, err := b.Embedding(1)
	require.NoError(t, err)
	emb[0][0] = -1
	again, err := b.Embedding(1)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, again[0][0])
}

func TestFit_Deterministic(t *testing.T) {
	X, y := blobs(t)
	a, b := newBuilder(t), newBuilder(t)
	require.NoError(t, a.Fit(context.Background(), X, y))
	require.NoError(t, b.Fit(context.Background(), X, y))
	for l := 0; l < a.NumLevels(); l++ {
		ea, _ := a.Embedding(l)
		eb, _ := b.Embedding(l)
		assert.Equal(t, ea, eb, "level %d", l)
	}
}

func TestFit_ParallelWorkers(t *testing.T) {
	X, y := blobs(t)
	b := newBuilder(t, hierarchy.WithWorkers(4))
	require.NoError(t, b.Fit(context.Background(), X, y))
	assert.Equal(t, 3, b.NumLevels())
	for l := 0; l < b.NumLevels(); l++ {
		emb, err := b.Embedding(l)
		require.NoError(t, err)
		assert.True(t, layout.InBounds(emb))
	}
}

// ringBuilder is a GraphBuilder over a ring: point i neighbours i±1, i±2, …
// with weight 1/offset. The last Isolated points of a level with IsolateAt
// points have only themselves as neighbours and no edges.
type ringBuilder struct {
	K         int
	IsolateAt int
	Isolated  int
	ZeroSigma bool
}

func (rb *ringBuilder) Fit(_ context.Context, ds *graph.Dataset) (*graph.Fit, error) {
	n := ds.Len()
	linked := n
	if n == rb.IsolateAt {
		linked = n - rb.Isolated
	}
	nb, err := graph.NewNeighbors(n, rb.K)
	if err != nil {
		return nil, err
	}
	tr := graph.NewTriplets(n * rb.K)
	for i := 0; i < n; i++ {
		cols, dists := nb.Of(i)
		cols[0] = i
		for p := 1; p < rb.K; p++ {
			if i >= linked {
				cols[p], dists[p] = i, 0
				continue
			}
			off := (p + 1) / 2
			if p%2 == 0 {
				off = -off
			}
			j := ((i+off)%linked + linked) % linked
			cols[p], dists[p] = j, float64(abs(off))
		}
	}
	for i := 0; i < linked; i++ {
		for off := 1; off <= rb.K/2; off++ {
			tr.Append(i, (i+off)%linked, 1/float64(off))
			tr.Append(i, ((i-off)%linked+linked)%linked, 1/float64(off))
		}
	}
	for i := linked; i < n; i++ {
		tr.Append(i, i, 0)
	}
	g, err := graph.FromTriplets(n, tr)
	if err != nil {
		return nil, err
	}
	sigmas := make([]float64, n)
	if !rb.ZeroSigma {
		for i := range sigmas {
			sigmas[i] = 1
		}
	}
	return &graph.Fit{Graph: g, Sigmas: sigmas, Neighbors: nb}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func linePoints(n int) [][]float64 {
	X := make([][]float64, n)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 7)}
	}
	return X
}

func TestFit_AssociationFailureKeepsState(t *testing.T) {
	rb := &ringBuilder{K: 5}
	b, err := hierarchy.New(
		hierarchy.WithPercents(0.5),
		hierarchy.WithNeighbors(5),
		hierarchy.WithEpochs(20),
		hierarchy.WithGraphBuilder(rb),
	)
	require.NoError(t, err)

	X := linePoints(60)
	require.NoError(t, b.Fit(context.Background(), X, nil))
	before, err := b.Embedding(0)
	require.NoError(t, err)

	// ten points without neighbours: at least one is not drawn as a landmark
	rb.IsolateAt, rb.Isolated = 60, 10
	err = b.Fit(context.Background(), X, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, hierarchy.ErrAssociationFailure)

	var be *hierarchy.BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, hierarchy.PhaseAssociate, be.Phase)
	assert.Equal(t, 0, be.Level)

	var fe *associate.FailureError
	require.True(t, errors.As(err, &fe))
	assert.GreaterOrEqual(t, fe.Point, 50)

	after, err := b.Embedding(0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, b.NumLevels())
}

func TestFit_ZeroSigmas(t *testing.T) {
	b, err := hierarchy.New(
		hierarchy.WithPercents(0.5),
		hierarchy.WithNeighbors(5),
		hierarchy.WithGraphBuilder(&ringBuilder{K: 5, ZeroSigma: true}),
	)
	require.NoError(t, err)

	err = b.Fit(context.Background(), linePoints(40), nil)
	assert.ErrorIs(t, err, hierarchy.ErrInvalidDistribution)
	var be *hierarchy.BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, hierarchy.PhaseSample, be.Phase)
	assert.Equal(t, 1, be.Level)
	assert.Equal(t, 0, b.NumLevels())
}

func TestFit_LevelTooSmall(t *testing.T) {
	X, y := blobs(t)
	b, err := hierarchy.New(hierarchy.WithPercents(0.04), hierarchy.WithNeighbors(15))
	require.NoError(t, err)
	err = b.Fit(context.Background(), X, y)
	assert.ErrorIs(t, err, hierarchy.ErrLevelTooSmall)
}

func TestFit_InputErrors(t *testing.T) {
	b := newBuilder(t)
	err := b.Fit(context.Background(), nil, nil)
	assert.ErrorIs(t, err, graph.ErrEmptyDataset)

	X, _ := blobs(t)
	err = b.Fit(context.Background(), X, []int{1, 2})
	assert.ErrorIs(t, err, hierarchy.ErrLabelMismatch)

	err = b.Fit(context.Background(), [][]float64{{1, 2}, {3}}, nil)
	assert.ErrorIs(t, err, graph.ErrRaggedRows)
}

func TestFit_Cancelled(t *testing.T) {
	X, y := blobs(t)
	b := newBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.NumLevels())
}

func TestFit_SingleLevel(t *testing.T) {
	X, y := blobs(t)
	b, err := hierarchy.New(hierarchy.WithPercents(), hierarchy.WithEpochs(20))
	require.NoError(t, err)
	require.NoError(t, b.Fit(context.Background(), X, y))
	assert.Equal(t, 1, b.NumLevels())
	_, err = b.Sigmas(0)
	assert.ErrorIs(t, err, hierarchy.ErrUnsupported)
}

// recorder is an Observer that logs phase events.
type recorder struct {
	mu     sync.Mutex
	events []string
	built  []int
}

func (r *recorder) PhaseStart(ctx context.Context, level int, p hierarchy.Phase) (context.Context, func(error)) {
	return ctx, func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		status := "ok"
		if err != nil {
			status = "err"
		}
		r.events = append(r.events, string(p)+"@"+string(rune('0'+level))+":"+status)
	}
}

func (r *recorder) LevelBuilt(_ context.Context, level, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built = append(r.built, points)
}

func TestFit_Observer(t *testing.T) {
	X, y := blobs(t)
	rec := &recorder{}
	b := newBuilder(t, hierarchy.WithObserver(rec), hierarchy.WithPercents(0.3))
	require.NoError(t, b.Fit(context.Background(), X, y))

	assert.Equal(t, []string{
		"graph@0:ok",
		"sample@1:ok", "associate@0:ok", "fuse@1:ok", "graph@1:ok",
		"prune@0:ok", "layout@0:ok", "prune@1:ok", "layout@1:ok",
	}, rec.events)
	assert.Equal(t, []int{300, 90}, rec.built)
}

func TestNew_Validation(t *testing.T) {
	_, err := hierarchy.New(func(o *hierarchy.Options) { o.Neighbors = 1 })
	assert.ErrorIs(t, err, hierarchy.ErrInvalidOptions)
	_, err = hierarchy.New(func(o *hierarchy.Options) { o.Percents = []float64{1.5} })
	assert.ErrorIs(t, err, hierarchy.ErrInvalidOptions)

	assert.Panics(t, func() { hierarchy.WithPercents(0) })
	assert.Panics(t, func() { hierarchy.WithNeighbors(1) })
	assert.Panics(t, func() { hierarchy.WithComponents(0) })
	assert.Panics(t, func() { hierarchy.WithWorkers(0) })
	assert.Panics(t, func() { hierarchy.WithMaxDepth(-1) })
}
