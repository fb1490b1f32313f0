// SPDX-License-Identifier: MIT

package knn

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/viterin/vek"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/humap/graph"
)

// distanceFunc resolves a Metric.
func distanceFunc(m Metric) (func(x, y []float64) float64, error) {
	switch m {
	case Euclidean, "":
		return vek.Distance, nil
	case Manhattan:
		return vek.ManhattanDistance, nil
	case Cosine:
		return cosineDistance, nil
	default:
		return nil, fmt.Errorf("%q: %w", m, ErrUnknownMetric)
	}
}

// cosineDistance is 1 − cos(x, y). Two zero vectors are at distance 0, a
// zero vector and any other at distance 1.
func cosineDistance(x, y []float64) float64 {
	nx, ny := vek.Norm(x), vek.Norm(y)
	switch {
	case nx == 0 && ny == 0:
		return 0
	case nx == 0 || ny == 0:
		return 1
	}
	return max(0, 1-vek.Dot(x, y)/(nx*ny))
}

// candidate is one neighbour under consideration.
type candidate struct {
	col  int
	dist float64
}

// worse orders candidates: larger distance first, then larger index.
func worse(a, b candidate) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	return a.col > b.col
}

// farthestFirst is a bounded max-heap keeping the best candidates seen.
type farthestFirst []candidate

func (h farthestFirst) Len() int           { return len(h) }
func (h farthestFirst) Less(a, b int) bool { return worse(h[a], h[b]) }
func (h farthestFirst) Swap(a, b int)      { h[a], h[b] = h[b], h[a] }
func (h *farthestFirst) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *farthestFirst) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

// searchDense fills nb with the exact K nearest neighbours of every point.
func (b *Builder) searchDense(ctx context.Context, ds *graph.Dataset, nb *graph.Neighbors) error {
	dist, err := distanceFunc(b.Metric)
	if err != nil {
		return err
	}
	n := ds.Len()
	workers := max(b.Workers, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			h := make(farthestFirst, 0, nb.K)
			for i := lo; i < hi; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				h = h[:0]
				x := ds.Point(i)
				for j := 0; j < n; j++ {
					if j == i {
						continue
					}
					c := candidate{col: j, dist: dist(x, ds.Point(j))}
					if len(h) < nb.K-1 {
						heap.Push(&h, c)
					} else if worse(h[0], c) {
						h[0] = c
						heap.Fix(&h, 0)
					}
				}
				writeRow(nb, i, h)
			}
			return nil
		})
	}
	return g.Wait()
}

// searchSparse reads stored entries as distances.
func (b *Builder) searchSparse(ctx context.Context, ds *graph.Dataset, nb *graph.Neighbors) error {
	n := ds.Len()
	row := make([]candidate, 0, nb.K)
	used := make(map[int]struct{}, nb.K)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		row = row[:0]
		for _, e := range ds.SparseRow(i) {
			if e.Col == i {
				continue
			}
			if math.IsNaN(e.Val) {
				return fmt.Errorf("point %d col %d: %w", i, e.Col, graph.ErrNaNInf)
			}
			// fused dissimilarities can dip below zero
			row = append(row, candidate{col: e.Col, dist: max(e.Val, 0)})
		}
		sort.Slice(row, func(a, c int) bool { return worse(row[c], row[a]) })
		if len(row) > nb.K-1 {
			row = row[:nb.K-1]
		}

		// pad with the lowest unused indices
		clear(used)
		used[i] = struct{}{}
		for _, c := range row {
			used[c.col] = struct{}{}
		}
		for j := 0; len(row) < nb.K-1 && j < n; j++ {
			if _, ok := used[j]; ok {
				continue
			}
			row = append(row, candidate{col: j, dist: math.Inf(1)})
		}
		writeRow(nb, i, row)
	}
	return nil
}

// writeRow stores self plus the candidates, nearest first.
func writeRow(nb *graph.Neighbors, i int, cands []candidate) {
	sorted := append([]candidate(nil), cands...)
	sort.Slice(sorted, func(a, c int) bool { return worse(sorted[c], sorted[a]) })
	cols, dists := nb.Of(i)
	cols[0], dists[0] = i, 0
	for p, c := range sorted {
		cols[p+1], dists[p+1] = c.col, c.dist
	}
}
