// SPDX-License-Identifier: MIT

package knn_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/knn"
)

// gaussianPoints returns n seeded standard normal points in dim dimensions.
func gaussianPoints(t testing.TB, n, dim int, seed int64) *graph.Dataset {
	r := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, dim)
		for d := range rows[i] {
			rows[i][d] = r.NormFloat64()
		}
	}
	ds, err := graph.NewDense(rows)
	require.NoError(t, err)
	return ds
}

func TestFit_DenseLine(t *testing.T) {
	ds, err := graph.NewDense([][]float64{{0}, {1}, {3}, {6}, {10}})
	require.NoError(t, err)

	fit, err := knn.New(3).Fit(context.Background(), ds)
	require.NoError(t, err)

	cols, dists := fit.Neighbors.Of(0)
	assert.Equal(t, []int{0, 1, 2}, cols)
	assert.Equal(t, []float64{0, 1, 3}, dists)

	// x=3 is at distance 3 from both x=0 and x=6: the lower index wins
	cols, dists = fit.Neighbors.Of(2)
	assert.Equal(t, []int{2, 1, 0}, cols)
	assert.Equal(t, []float64{0, 2, 3}, dists)

	assert.True(t, fit.Graph.IsSymmetric(1e-12))
	for i := 0; i < ds.Len(); i++ {
		assert.Greater(t, fit.Sigmas[i], 0.0)
		assert.Equal(t, 1.0, fit.Graph.Weight(i, fit.Neighbors.Nearest(i)), "point %d", i)
		assert.Equal(t, 0.0, fit.Graph.Weight(i, i))
	}
}

func TestFit_SmoothTarget(t *testing.T) {
	const k = 8
	ds := gaussianPoints(t, 120, 4, 11)
	fit, err := knn.New(k).Fit(context.Background(), ds)
	require.NoError(t, err)
	require.NoError(t, fit.Validate(ds.Len()))

	for i := 0; i < ds.Len(); i++ {
		_, dists := fit.Neighbors.Of(i)
		rho := dists[1]
		sum := 0.0
		for p := 1; p < k; p++ {
			if dists[p]-rho <= 0 {
				sum++
				continue
			}
			sum += math.Exp(-(dists[p] - rho) / fit.Sigmas[i])
		}
		assert.InDelta(t, math.Log2(k), sum, 1e-3, "point %d", i)
	}
	for _, w := range fit.Graph.Triplets().Vals {
		assert.True(t, w > 0 && w <= 1)
	}
}

func TestFit_WorkersAgree(t *testing.T) {
	ds := gaussianPoints(t, 200, 3, 5)
	one, err := knn.New(10).Fit(context.Background(), ds)
	require.NoError(t, err)
	four, err := knn.New(10, knn.WithWorkers(4)).Fit(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, one.Neighbors, four.Neighbors)
	assert.Equal(t, one.Sigmas, four.Sigmas)
	assert.Equal(t, one.Graph.Triplets(), four.Graph.Triplets())
}

func TestFit_Intersection(t *testing.T) {
	ds := gaussianPoints(t, 60, 2, 9)
	union, err := knn.New(6).Fit(context.Background(), ds)
	require.NoError(t, err)
	inter, err := knn.New(6, knn.WithSetOpMixRatio(0)).Fit(context.Background(), ds)
	require.NoError(t, err)

	assert.LessOrEqual(t, inter.Graph.NNZ(), union.Graph.NNZ())
	assert.True(t, inter.Graph.IsSymmetric(1e-12))
	for i := 0; i < ds.Len(); i++ {
		cols, vals := inter.Graph.Row(i)
		for e, j := range cols {
			assert.LessOrEqual(t, vals[e], union.Graph.Weight(i, j)+1e-12)
		}
	}
}

func TestFit_Metrics(t *testing.T) {
	ds, err := graph.NewDense([][]float64{{1, 0}, {2, 0}, {0, 1}, {0, 0}})
	require.NoError(t, err)

	fit, err := knn.New(2, knn.WithMetric(knn.Cosine)).Fit(context.Background(), ds)
	require.NoError(t, err)
	cols, dists := fit.Neighbors.Of(0)
	assert.Equal(t, []int{0, 1}, cols)
	assert.InDelta(t, 0.0, dists[1], 1e-12)

	fit, err = knn.New(3, knn.WithMetric(knn.Manhattan)).Fit(context.Background(), ds)
	require.NoError(t, err)
	cols, dists = fit.Neighbors.Of(3)
	assert.Equal(t, []int{3, 0, 2}, cols)
	assert.Equal(t, []float64{0, 1, 1}, dists)
}

func TestFit_SparsePadding(t *testing.T) {
	rows := graph.Rows{
		{{Col: 1, Val: 0.5}},
		{{Col: 0, Val: 0.5}, {Col: 1, Val: 0}, {Col: 3, Val: -0.2}},
		{{Col: 2, Val: 0}},
		{{Col: 0, Val: 1}, {Col: 1, Val: 0.75}, {Col: 2, Val: 1}},
	}
	ds, err := graph.NewSparse(rows)
	require.NoError(t, err)

	fit, err := knn.New(3).Fit(context.Background(), ds)
	require.NoError(t, err)

	cols, dists := fit.Neighbors.Of(0)
	assert.Equal(t, []int{0, 1, 2}, cols)
	assert.Equal(t, 0.5, dists[1])
	assert.True(t, math.IsInf(dists[2], 1))

	cols, dists = fit.Neighbors.Of(1)
	assert.Equal(t, []int{1, 3, 0}, cols)
	assert.Equal(t, []float64{0, 0, 0.5}, dists)

	cols, dists = fit.Neighbors.Of(2)
	assert.Equal(t, []int{2, 0, 1}, cols)
	assert.True(t, math.IsInf(dists[1], 1) && math.IsInf(dists[2], 1))

	cols, _ = fit.Neighbors.Of(3)
	assert.Equal(t, []int{3, 1, 0}, cols)

	// padding never becomes an edge
	assert.Equal(t, 0.0, fit.Graph.Weight(0, 2))
	assert.True(t, fit.Graph.IsSymmetric(1e-12))
}

func TestFit_Errors(t *testing.T) {
	_, err := knn.New(3).Fit(context.Background(), nil)
	assert.ErrorIs(t, err, knn.ErrNilDataset)

	ds, err := graph.NewDense([][]float64{{0}, {1}})
	require.NoError(t, err)
	_, err = knn.New(3).Fit(context.Background(), ds)
	assert.ErrorIs(t, err, knn.ErrBadK)

	b := knn.New(2)
	b.Metric = "hamming"
	_, err = b.Fit(context.Background(), ds)
	assert.ErrorIs(t, err, knn.ErrUnknownMetric)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = knn.New(2).Fit(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { knn.New(1) })
	assert.Panics(t, func() { knn.WithMetric("hamming") })
	assert.Panics(t, func() { knn.WithLocalConnectivity(-1) })
	assert.Panics(t, func() { knn.WithSetOpMixRatio(1.5) })
	assert.Panics(t, func() { knn.WithWorkers(0) })
}
