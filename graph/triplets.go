// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"math"
)

// Triplets is a sparse matrix in coordinate form: entry e is
// (Rows[e], Cols[e], Vals[e]). The three slices always have equal length.
type Triplets struct {
	Rows []int
	Cols []int
	Vals []float64
}

// NewTriplets returns an empty triplet list with capacity hint c.
func NewTriplets(c int) Triplets {
	if c < 0 {
		c = 0
	}
	return Triplets{
		Rows: make([]int, 0, c),
		Cols: make([]int, 0, c),
		Vals: make([]float64, 0, c),
	}
}

// Len returns the number of entries.
func (t *Triplets) Len() int {
	return len(t.Vals)
}

// Append adds one entry.
func (t *Triplets) Append(row, col int, val float64) {
	t.Rows = append(t.Rows, row)
	t.Cols = append(t.Cols, col)
	t.Vals = append(t.Vals, val)
}

// Validate checks the triplet invariants against an n×n shape:
// equal lengths, indices in range, finite values and no duplicate (row, col).
//
// Complexity: O(E) time, O(E) memory for the duplicate set.
func (t *Triplets) Validate(n int) error {
	// 1. Shape
	if n <= 0 {
		return fmt.Errorf("Triplets.Validate(n=%d): %w", n, ErrBadShape)
	}
	if len(t.Rows) != len(t.Cols) || len(t.Cols) != len(t.Vals) {
		return fmt.Errorf("Triplets.Validate: rows=%d cols=%d vals=%d: %w",
			len(t.Rows), len(t.Cols), len(t.Vals), ErrLengthMismatch)
	}

	// 2. Entries
	seen := make(map[[2]int]struct{}, len(t.Vals))
	var (
		e    int
		r, c int
		key  [2]int
	)
	for e = range t.Vals {
		r, c = t.Rows[e], t.Cols[e]
		if r < 0 || r >= n || c < 0 || c >= n {
			return fmt.Errorf("Triplets.Validate: entry %d (%d,%d): %w", e, r, c, ErrOutOfRange)
		}
		if math.IsNaN(t.Vals[e]) || math.IsInf(t.Vals[e], 0) {
			return fmt.Errorf("Triplets.Validate: entry %d (%d,%d): %w", e, r, c, ErrNaNInf)
		}
		key = [2]int{r, c}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("Triplets.Validate: entry %d (%d,%d): %w", e, r, c, ErrDuplicateEntry)
		}
		seen[key] = struct{}{}
	}

	return nil
}

// RowCounts returns the number of entries per row of an n-row matrix.
// Entries with out-of-range rows are ignored.
func (t *Triplets) RowCounts(n int) []int {
	counts := make([]int, n)
	for _, r := range t.Rows {
		if r >= 0 && r < n {
			counts[r]++
		}
	}
	return counts
}
