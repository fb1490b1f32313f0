// SPDX-License-Identifier: MIT

package knn

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/humap/graph"
)

// Builder fits the fuzzy neighbour graph of a dataset. The zero value is not
// usable; construct with New.
type Builder struct {
	K                 int
	Metric            Metric
	LocalConnectivity float64
	SetOpMixRatio     float64
	Workers           int
}

// New returns a Builder for k neighbours (self included) with defaults
// overridden by opts. Panics if k < 2.
func New(k int, opts ...Option) *Builder {
	if k < 2 {
		panic(fmt.Sprintf("knn: New(%d): need at least two neighbours", k))
	}
	b := &Builder{
		K:                 k,
		Metric:            Euclidean,
		LocalConnectivity: DefaultLocalConnectivity,
		SetOpMixRatio:     DefaultSetOpMixRatio,
		Workers:           1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fit builds neighbours, sigmas and the symmetric membership graph of ds.
//
// Steps:
//  1. Validate K against the point count.
//  2. Neighbour search (dense metric or sparse stored distances).
//  3. Smooth kNN distances per point.
//  4. Directed memberships, then fuzzy union.
func (b *Builder) Fit(ctx context.Context, ds *graph.Dataset) (*graph.Fit, error) {
	// 1. Validate
	if ds == nil {
		return nil, fmt.Errorf("knn.Fit: %w", ErrNilDataset)
	}
	n := ds.Len()
	if b.K < 2 || b.K > n {
		return nil, fmt.Errorf("knn.Fit: k=%d with %d points: %w", b.K, n, ErrBadK)
	}
	nb, err := graph.NewNeighbors(n, b.K)
	if err != nil {
		return nil, fmt.Errorf("knn.Fit: %w", err)
	}

	// 2. Search
	if ds.IsDense() {
		err = b.searchDense(ctx, ds, nb)
	} else {
		err = b.searchSparse(ctx, ds, nb)
	}
	if err != nil {
		return nil, fmt.Errorf("knn.Fit: search: %w", err)
	}

	// 3. Smooth
	var total float64
	var count int
	for _, d := range nb.Dists {
		if !math.IsInf(d, 1) {
			total += d
			count++
		}
	}
	globalMean := 0.0
	if count > 0 {
		globalMean = total / float64(count)
	}
	sigmas := make([]float64, n)
	rhos := make([]float64, n)
	for i := 0; i < n; i++ {
		_, dists := nb.Of(i)
		sigmas[i], rhos[i] = smoothDistances(dists, b.K, b.LocalConnectivity, globalMean)
	}

	// 4. Memberships and union
	rows := make([]map[int]float64, n)
	for i := 0; i < n; i++ {
		cols, dists := nb.Of(i)
		rows[i] = make(map[int]float64, b.K)
		for p := 1; p < b.K; p++ {
			if w := membership(dists[p], sigmas[i], rhos[i]); w > 0 {
				rows[i][cols[p]] = w
			}
		}
	}
	g, err := graph.FromTriplets(n, fuzzyUnion(rows, b.SetOpMixRatio))
	if err != nil {
		return nil, fmt.Errorf("knn.Fit: union: %w", err)
	}
	return &graph.Fit{Graph: g, Sigmas: sigmas, Neighbors: nb}, nil
}
