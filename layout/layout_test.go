// SPDX-License-Identifier: MIT

package layout_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/layout"
)

// ringGraph links every point to its two ring neighbours (weight 1) and to
// the points two steps away (weight 0.3).
func ringGraph(t testing.TB, n int) *graph.Graph {
	tr := graph.NewTriplets(4 * n)
	for i := 0; i < n; i++ {
		for _, step := range []int{1, -1, 2, -2} {
			w := 1.0
			if step == 2 || step == -2 {
				w = 0.3
			}
			tr.Append(i, ((i+step)%n+n)%n, w)
		}
	}
	g, err := graph.FromTriplets(n, tr)
	require.NoError(t, err)
	return g
}

// appendPath links offset+i and offset+i+1 with weight 1 for i < n-1.
func appendPath(tr *graph.Triplets, offset, n int) {
	for i := offset; i+1 < offset+n; i++ {
		tr.Append(i, i+1, 1)
		tr.Append(i+1, i, 1)
	}
}

func TestDefaultEpochs(t *testing.T) {
	assert.Equal(t, 500, layout.DefaultEpochs(10))
	assert.Equal(t, 500, layout.DefaultEpochs(10000))
	assert.Equal(t, 200, layout.DefaultEpochs(10001))
	assert.Equal(t, 7, layout.ResolveEpochs(7, 1))
	assert.Equal(t, 500, layout.ResolveEpochs(-1, 1))
}

func TestEpochsPerSample(t *testing.T) {
	w := []float64{1, 0.5, 0.25, 0, 0.125, -1}
	got := layout.EpochsPerSample(w, 200)
	require.Len(t, got, len(w))
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 2.0, got[1])
	assert.Equal(t, 4.0, got[2])
	assert.True(t, math.IsInf(got[3], 1))
	assert.Equal(t, 8.0, got[4])
	assert.True(t, math.IsInf(got[5], 1))

	// non-increasing in weight
	for a := range w {
		for b := range w {
			if w[a] > w[b] {
				assert.LessOrEqual(t, got[a], got[b])
			}
		}
	}

	allZero := layout.EpochsPerSample([]float64{0, 0}, 10)
	assert.True(t, math.IsInf(allZero[0], 1))
	assert.Empty(t, layout.EpochsPerSample(nil, 10))
}

func TestPrune(t *testing.T) {
	tr := graph.NewTriplets(4)
	tr.Append(0, 1, 1)
	tr.Append(1, 0, 1)
	tr.Append(1, 2, 0.004)
	tr.Append(2, 1, 0.004)
	g, err := graph.FromTriplets(3, tr)
	require.NoError(t, err)

	assert.Equal(t, 2, layout.Prune(g, 200).NNZ()) // threshold 0.005
	assert.Equal(t, 4, layout.Prune(g, 500).NNZ()) // threshold 0.002
	assert.Equal(t, 4, layout.Prune(g, 0).NNZ())   // default 500 epochs
}

func TestRescale(t *testing.T) {
	emb := [][]float64{{-3, 5, 1}, {1, 5, 2}, {7, 5, 3}}
	layout.Rescale(emb)
	assert.Equal(t, [][]float64{{0, 0, 0}, {4, 0, 5}, {10, 0, 10}}, emb)
	assert.True(t, layout.InBounds(emb))
	assert.False(t, layout.InBounds([][]float64{{10.5}}))
	assert.False(t, layout.InBounds([][]float64{{math.NaN()}}))

	layout.Rescale(nil)
}

func TestFitAB_Defaults(t *testing.T) {
	a, b, err := layout.FitAB(layout.DefaultSpread, layout.DefaultMinDist)
	require.NoError(t, err)
	assert.InDelta(t, 1.577, a, 0.05)
	assert.InDelta(t, 0.895, b, 0.05)
}

func TestSpectral_DenseAndSubspaceAgree(t *testing.T) {
	const n = 40
	tr := graph.NewTriplets(2 * n)
	appendPath(&tr, 0, n)
	g, err := graph.FromTriplets(n, tr)
	require.NoError(t, err)

	dense, err := layout.Spectral{Seed: 1}.Init(context.Background(), nil, g, 1)
	require.NoError(t, err)
	sub, err := layout.Spectral{Seed: 1, DenseLimit: 5}.Init(context.Background(), nil, g, 1)
	require.NoError(t, err)

	x, y := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		x[i], y[i] = dense[i][0], sub[i][0]
	}
	assert.Greater(t, math.Abs(correlation(x, y)), 0.99)
	// the Fiedler vector separates the two ends of a path
	assert.Less(t, x[0]*x[n-1], 0.0)
}

func TestSpectral_Components(t *testing.T) {
	const n = 30
	tr := graph.NewTriplets(2 * n)
	appendPath(&tr, 0, 12)
	appendPath(&tr, 12, 12)
	tr.Append(24, 25, 1) // a pair: too small for eigenvectors
	tr.Append(25, 24, 1)
	for i := 26; i < n; i++ {
		tr.Append(i, i, 0) // isolated points
	}
	g, err := graph.FromTriplets(n, tr)
	require.NoError(t, err)

	emb, err := layout.Spectral{Seed: 3}.Init(context.Background(), nil, g, 2)
	require.NoError(t, err)
	require.Len(t, emb, n)
	for _, row := range emb {
		require.Len(t, row, 2)
		for _, x := range row {
			assert.False(t, math.IsNaN(x) || math.IsInf(x, 0))
		}
	}
}

func TestSpectral_Errors(t *testing.T) {
	g := ringGraph(t, 10)
	_, err := layout.Spectral{}.Init(context.Background(), nil, nil, 2)
	assert.ErrorIs(t, err, layout.ErrNilGraph)
	_, err = layout.Spectral{}.Init(context.Background(), nil, g, 0)
	assert.ErrorIs(t, err, layout.ErrBadDimension)

	ds, err := graph.NewDense([][]float64{{1}, {2}})
	require.NoError(t, err)
	_, err = layout.Spectral{}.Init(context.Background(), ds, g, 2)
	assert.ErrorIs(t, err, layout.ErrSizeMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = layout.Spectral{}.Init(ctx, nil, g, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSGD_Validation(t *testing.T) {
	sgd, err := layout.NewSGD(layout.DefaultOptions())
	require.NoError(t, err)
	init := [][]float64{{0, 0}, {1, 1}}
	edges := graph.Triplets{Rows: []int{0}, Cols: []int{1}, Vals: []float64{1}}

	_, err = sgd.Optimize(context.Background(), init, edges, nil, 10, 1)
	assert.ErrorIs(t, err, layout.ErrLengthMismatch)

	bad := graph.Triplets{Rows: []int{0}, Cols: []int{2}, Vals: []float64{1}}
	_, err = sgd.Optimize(context.Background(), init, bad, []float64{1}, 10, 1)
	assert.ErrorIs(t, err, layout.ErrSizeMismatch)

	_, err = sgd.Optimize(context.Background(), init, edges, []float64{0}, 10, 1)
	assert.ErrorIs(t, err, layout.ErrBadSchedule)

	out, err := sgd.Optimize(context.Background(), init, edges, []float64{1}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, init, out)
	out[0][0] = 42
	assert.Equal(t, 0.0, init[0][0], "init is not modified")
}

func TestSGD_AttractsNeighbours(t *testing.T) {
	sgd, err := layout.NewSGD(layout.DefaultOptions())
	require.NoError(t, err)
	sgd.NegativeSampleRate = 0

	init := [][]float64{{0, 0}, {8, 0}}
	edges := graph.Triplets{Rows: []int{0, 1}, Cols: []int{1, 0}, Vals: []float64{1, 1}}
	out, err := sgd.Optimize(context.Background(), init, edges, []float64{1, 1}, 50, 1)
	require.NoError(t, err)
	before := math.Hypot(init[1][0]-init[0][0], init[1][1]-init[0][1])
	after := math.Hypot(out[1][0]-out[0][0], out[1][1]-out[0][1])
	assert.Less(t, after, before)
}

func TestSGD_DeterministicAndParallel(t *testing.T) {
	g := ringGraph(t, 60)
	edges := g.Triplets()
	eps := layout.EpochsPerSample(edges.Vals, 50)
	init, err := layout.Spectral{Seed: 2}.Init(context.Background(), nil, g, 2)
	require.NoError(t, err)
	layout.Rescale(init)

	for _, workers := range []int{1, 4} {
		o := layout.DefaultOptions()
		o.Workers = workers
		sgd, err := layout.NewSGD(o)
		require.NoError(t, err)

		a, err := sgd.Optimize(context.Background(), init, edges, eps, 50, 9)
		require.NoError(t, err)
		b, err := sgd.Optimize(context.Background(), init, edges, eps, 50, 9)
		require.NoError(t, err)
		assert.Equal(t, a, b, "workers=%d", workers)
		for _, row := range a {
			for _, x := range row {
				require.False(t, math.IsNaN(x))
			}
		}
	}
}

func TestEngine_EmbedBounds(t *testing.T) {
	eng, err := layout.NewEngine(layout.WithEpochs(60), layout.WithSeed(4))
	require.NoError(t, err)
	g := ringGraph(t, 80)

	emb, err := eng.Embed(context.Background(), g, nil)
	require.NoError(t, err)
	require.Len(t, emb, 80)
	assert.True(t, layout.InBounds(emb))
	for d := 0; d < layout.DefaultComponents; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range emb {
			lo, hi = math.Min(lo, row[d]), math.Max(hi, row[d])
		}
		assert.Equal(t, 0.0, lo)
		assert.Equal(t, layout.Scale, hi)
	}

	again, err := eng.Embed(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, emb, again)
}

func TestEngine_SinglePoint(t *testing.T) {
	tr := graph.NewTriplets(1)
	tr.Append(0, 0, 0)
	g, err := graph.FromTriplets(1, tr)
	require.NoError(t, err)

	eng, err := layout.NewEngine(layout.WithComponents(3))
	require.NoError(t, err)
	emb, err := eng.Embed(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 0}}, emb)
}

func TestEngine_Errors(t *testing.T) {
	eng, err := layout.NewEngine()
	require.NoError(t, err)
	_, err = eng.Embed(context.Background(), nil, nil)
	assert.ErrorIs(t, err, layout.ErrNilGraph)

	ds, err := graph.NewDense([][]float64{{1}})
	require.NoError(t, err)
	_, err = eng.Embed(context.Background(), ringGraph(t, 5), ds)
	assert.ErrorIs(t, err, layout.ErrSizeMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Embed(ctx, ringGraph(t, 5), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { layout.WithComponents(0) })
	assert.Panics(t, func() { layout.WithLearningRate(0) })
	assert.Panics(t, func() { layout.WithRepulsion(-1) })
	assert.Panics(t, func() { layout.WithNegativeSampleRate(-1) })
	assert.Panics(t, func() { layout.WithKernel(0, 0.1) })
	assert.Panics(t, func() { layout.WithWorkers(0) })
}

// correlation is the Pearson correlation of x and y.
func correlation(x, y []float64) float64 {
	n := float64(len(x))
	var sx, sy, sxx, syy, sxy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxx += x[i] * x[i]
		syy += y[i] * y[i]
		sxy += x[i] * y[i]
	}
	cov := sxy - sx*sy/n
	return cov / math.Sqrt((sxx-sx*sx/n)*(syy-sy*sy/n))
}
