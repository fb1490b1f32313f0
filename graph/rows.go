// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"sort"
)

// Entry is one stored cell of a sparse row.
type Entry struct {
	Col int
	Val float64
}

// Rows is a sparse n×n matrix stored row by row. Each row is sorted by column
// and holds no duplicate columns. It is the dataset representation of levels
// built from fused landmark similarities, where Val is a dissimilarity.
type Rows [][]Entry

// RowsFromTriplets groups n×n coordinate entries by row, sorted by column.
// The same validation as FromTriplets applies.
func RowsFromTriplets(n int, t Triplets) (Rows, error) {
	if err := t.Validate(n); err != nil {
		return nil, fmt.Errorf("RowsFromTriplets: %w", err)
	}
	counts := t.RowCounts(n)
	rows := make(Rows, n)
	var i int
	for i = 0; i < n; i++ {
		rows[i] = make([]Entry, 0, counts[i])
	}
	for e := range t.Vals {
		rows[t.Rows[e]] = append(rows[t.Rows[e]], Entry{Col: t.Cols[e], Val: t.Vals[e]})
	}
	for i = 0; i < n; i++ {
		r := rows[i]
		sort.Slice(r, func(a, b int) bool { return r[a].Col < r[b].Col })
	}
	return rows, nil
}

// Len returns the number of rows.
func (r Rows) Len() int { return len(r) }

// NNZ returns the number of stored entries over all rows.
func (r Rows) NNZ() int {
	total := 0
	for _, row := range r {
		total += len(row)
	}
	return total
}

// Symmetric mirrors every stored entry into a symmetric Graph: for each row i
// in order and each entry (i, j, v), both (i, j) and (j, i) are set to v, so a
// later write wins over an earlier one. density is the expected number of
// entries per row and only sizes the working storage.
//
// Complexity: O(E log E).
func (r Rows) Symmetric(density int) (*Graph, error) {
	n := len(r)
	if n == 0 {
		return nil, fmt.Errorf("Rows.Symmetric: %w", ErrEmptyDataset)
	}
	if density < 1 {
		density = 1
	}
	cells := make([]map[int]float64, n)
	var i int
	for i = 0; i < n; i++ {
		cells[i] = make(map[int]float64, density)
	}
	for i = 0; i < n; i++ {
		for _, e := range r[i] {
			if e.Col < 0 || e.Col >= n {
				return nil, fmt.Errorf("Rows.Symmetric: row %d col %d: %w", i, e.Col, ErrOutOfRange)
			}
			cells[i][e.Col] = e.Val
			cells[e.Col][i] = e.Val
		}
	}
	t := NewTriplets(n * density)
	for i = 0; i < n; i++ {
		for j, v := range cells[i] {
			t.Append(i, j, v)
		}
	}
	return FromTriplets(n, t)
}

// Clone returns a deep copy of r.
func (r Rows) Clone() Rows {
	out := make(Rows, len(r))
	for i, row := range r {
		out[i] = append([]Entry(nil), row...)
	}
	return out
}
