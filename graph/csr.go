// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"math"
	"sort"
)

// Graph is a weighted adjacency over n points stored in compressed sparse row
// form. Row i occupies indices[indptr[i]:indptr[i+1]] with columns strictly
// increasing; data holds the matching weights.
//
// A Graph is immutable once built. Methods returning slices hand out views of
// the internal storage which callers must not modify.
type Graph struct {
	n       int
	indptr  []int
	indices []int
	data    []float64
}

// FromTriplets assembles an n×n Graph from coordinate entries.
// Entries are sorted by (row, col). Duplicate (row, col) pairs are rejected
// with ErrDuplicateEntry, out-of-range indices with ErrOutOfRange and
// non-finite weights with ErrNaNInf.
//
// Complexity: O(E log E) time, O(n + E) memory.
func FromTriplets(n int, t Triplets) (*Graph, error) {
	// 1. Validate (shape, ranges, finiteness, duplicates)
	if err := t.Validate(n); err != nil {
		return nil, fmt.Errorf("FromTriplets: %w", err)
	}

	// 2. Bucket entries by row (counting sort on rows)
	counts := t.RowCounts(n)
	indptr := make([]int, n+1)
	var i int
	for i = 0; i < n; i++ {
		indptr[i+1] = indptr[i] + counts[i]
	}
	nnz := indptr[n]
	indices := make([]int, nnz)
	data := make([]float64, nnz)
	next := make([]int, n)
	copy(next, indptr[:n])
	var e, pos int
	for e = range t.Vals {
		pos = next[t.Rows[e]]
		indices[pos] = t.Cols[e]
		data[pos] = t.Vals[e]
		next[t.Rows[e]]++
	}

	// 3. Sort every row by column
	g := &Graph{n: n, indptr: indptr, indices: indices, data: data}
	for i = 0; i < n; i++ {
		sort.Sort(rowSorter{cols: indices[indptr[i]:indptr[i+1]], vals: data[indptr[i]:indptr[i+1]]})
	}

	return g, nil
}

// rowSorter co-sorts one CSR row by column.
type rowSorter struct {
	cols []int
	vals []float64
}

func (r rowSorter) Len() int           { return len(r.cols) }
func (r rowSorter) Less(a, b int) bool { return r.cols[a] < r.cols[b] }
func (r rowSorter) Swap(a, b int) {
	r.cols[a], r.cols[b] = r.cols[b], r.cols[a]
	r.vals[a], r.vals[b] = r.vals[b], r.vals[a]
}

// N returns the number of points (rows and columns).
func (g *Graph) N() int { return g.n }

// NNZ returns the number of stored entries.
func (g *Graph) NNZ() int { return len(g.data) }

// Row returns the column indices and weights of row i.
// Both slices are views; do not modify them.
func (g *Graph) Row(i int) ([]int, []float64) {
	if i < 0 || i >= g.n {
		return nil, nil
	}
	lo, hi := g.indptr[i], g.indptr[i+1]
	return g.indices[lo:hi], g.data[lo:hi]
}

// Degree returns the number of stored entries in row i.
func (g *Graph) Degree(i int) int {
	if i < 0 || i >= g.n {
		return 0
	}
	return g.indptr[i+1] - g.indptr[i]
}

// Weight returns the weight of edge (i, j), or 0 when the entry is absent or
// either index is out of range.
//
// Complexity: O(log deg(i)).
func (g *Graph) Weight(i, j int) float64 {
	w, _ := g.At(i, j)
	return w
}

// At returns the weight of edge (i, j), validating both indices.
// An absent entry reads as 0.
func (g *Graph) At(i, j int) (float64, error) {
	if i < 0 || i >= g.n || j < 0 || j >= g.n {
		return 0, fmt.Errorf("Graph.At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	cols, vals := g.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k], nil
	}
	return 0, nil
}

// MaxWeight returns the largest stored weight, or 0 for an empty graph.
func (g *Graph) MaxWeight() float64 {
	if len(g.data) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, w := range g.data {
		if w > m {
			m = w
		}
	}
	return m
}

// RowSums returns Σ_j w(i,j) for every row i (the weighted degree).
func (g *Graph) RowSums() []float64 {
	sums := make([]float64, g.n)
	var i, p int
	for i = 0; i < g.n; i++ {
		for p = g.indptr[i]; p < g.indptr[i+1]; p++ {
			sums[i] += g.data[p]
		}
	}
	return sums
}

// Prune returns a copy of g keeping only the entries with weight >= threshold.
// Row structure and column order are preserved, so a symmetric graph stays
// symmetric.
//
// Complexity: O(n + E).
func (g *Graph) Prune(threshold float64) *Graph {
	out := &Graph{
		n:       g.n,
		indptr:  make([]int, g.n+1),
		indices: make([]int, 0, len(g.indices)),
		data:    make([]float64, 0, len(g.data)),
	}
	var i, p int
	for i = 0; i < g.n; i++ {
		for p = g.indptr[i]; p < g.indptr[i+1]; p++ {
			if g.data[p] >= threshold {
				out.indices = append(out.indices, g.indices[p])
				out.data = append(out.data, g.data[p])
			}
		}
		out.indptr[i+1] = len(out.data)
	}
	return out
}

// Triplets returns every stored entry in row-major, column-ascending order.
func (g *Graph) Triplets() Triplets {
	t := NewTriplets(len(g.data))
	var i, p int
	for i = 0; i < g.n; i++ {
		for p = g.indptr[i]; p < g.indptr[i+1]; p++ {
			t.Append(i, g.indices[p], g.data[p])
		}
	}
	return t
}

// IsSymmetric reports whether w(i,j) and w(j,i) agree within tol for every
// stored entry.
func (g *Graph) IsSymmetric(tol float64) bool {
	var i, p int
	for i = 0; i < g.n; i++ {
		for p = g.indptr[i]; p < g.indptr[i+1]; p++ {
			if math.Abs(g.data[p]-g.Weight(g.indices[p], i)) > tol {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		n:       g.n,
		indptr:  make([]int, len(g.indptr)),
		indices: make([]int, len(g.indices)),
		data:    make([]float64, len(g.data)),
	}
	copy(out.indptr, g.indptr)
	copy(out.indices, g.indices)
	copy(out.data, g.data)
	return out
}
