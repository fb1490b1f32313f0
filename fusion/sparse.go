// SPDX-License-Identifier: MIT

package fusion

import (
	"fmt"

	"github.com/katalvlaran/humap/graph"
)

// CreateSparse compacts acc into dissimilarity triplets, row by row:
//
//  1. every touched cell with a nonzero sum s, ascending by column, as 1-s;
//  2. for each column j < min(nNeighbors+5, m), j != i, whose cell is exactly
//     zero, a structural filler entry of 1;
//  3. a self-loop of 0 unless step 1 emitted the diagonal.
//
// Every row receives at least one entry and no (row, col) pair repeats.
//
// Complexity: O(m·(t + k)).
func CreateSparse(acc *Accumulator, nNeighbors int) (graph.Triplets, error) {
	if nNeighbors < 2 {
		return graph.Triplets{}, fmt.Errorf("CreateSparse: k=%d: %w", nNeighbors, ErrTooFewNeighbors)
	}
	m := acc.Size()
	span := min(nNeighbors+fillerSpan, m)
	out := graph.NewTriplets(m * (span + 1))

	var (
		i, j     int
		s        float64
		diagonal bool
	)
	for i = 0; i < m; i++ {
		// 1. Touched cells
		diagonal = false
		for _, j = range acc.Touched(i) {
			s = acc.At(i, j)
			if s == 0 {
				continue
			}
			out.Append(i, j, 1-s)
			if j == i {
				diagonal = true
			}
		}

		// 2. Structural filler
		for j = 0; j < span; j++ {
			if j != i && acc.At(i, j) == 0 {
				out.Append(i, j, 1)
			}
		}

		// 3. Self-loop
		if !diagonal {
			out.Append(i, i, 0)
		}
	}
	return out, nil
}

// Sparse runs Fuse and CreateSparse and groups the result into per-row
// dissimilarities over the landmarks.
func Sparse(in Input, opts ...Option) (graph.Rows, error) {
	acc, err := Fuse(in, opts...)
	if err != nil {
		return nil, err
	}
	t, err := CreateSparse(acc, in.Neighbors.K)
	if err != nil {
		return nil, err
	}
	rows, err := graph.RowsFromTriplets(acc.Size(), t)
	if err != nil {
		return nil, fmt.Errorf("Sparse: %w", err)
	}
	return rows, nil
}
