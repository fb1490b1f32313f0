// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"math"
)

// Neighbors holds the k nearest neighbours of n points in flattened row-major
// form: the neighbours of point i are Cols[i*K:(i+1)*K], nearest first, with
// the point itself at position 0. Dists holds the matching distances.
type Neighbors struct {
	K     int
	Cols  []int
	Dists []float64
}

// NewNeighbors allocates zeroed neighbour lists for n points.
func NewNeighbors(n, k int) (*Neighbors, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("NewNeighbors(n=%d,k=%d): %w", n, k, ErrBadShape)
	}
	return &Neighbors{
		K:     k,
		Cols:  make([]int, n*k),
		Dists: make([]float64, n*k),
	}, nil
}

// N returns the number of points covered.
func (nb *Neighbors) N() int {
	if nb.K == 0 {
		return 0
	}
	return len(nb.Cols) / nb.K
}

// Of returns the neighbour columns and distances of point i as views.
func (nb *Neighbors) Of(i int) ([]int, []float64) {
	lo := i * nb.K
	return nb.Cols[lo : lo+nb.K], nb.Dists[lo : lo+nb.K]
}

// Nearest returns the nearest neighbour of i other than itself (position 1).
// With K == 1 the point is its own nearest neighbour.
func (nb *Neighbors) Nearest(i int) int {
	if nb.K < 2 {
		return nb.Cols[i*nb.K]
	}
	return nb.Cols[i*nb.K+1]
}

// Validate checks that both slices hold n*K entries, every column lies in
// [0, n) and no distance is NaN. +Inf distances are allowed; they mark
// padding for rows with fewer than K known neighbours.
func (nb *Neighbors) Validate(n int) error {
	if nb.K <= 0 || n <= 0 {
		return fmt.Errorf("Neighbors.Validate: k=%d n=%d: %w", nb.K, n, ErrBadShape)
	}
	if len(nb.Cols) != n*nb.K || len(nb.Dists) != n*nb.K {
		return fmt.Errorf("Neighbors.Validate: cols=%d dists=%d want %d: %w",
			len(nb.Cols), len(nb.Dists), n*nb.K, ErrLengthMismatch)
	}
	for p, c := range nb.Cols {
		if c < 0 || c >= n {
			return fmt.Errorf("Neighbors.Validate: point %d slot %d col %d: %w", p/nb.K, p%nb.K, c, ErrOutOfRange)
		}
		if math.IsNaN(nb.Dists[p]) {
			return fmt.Errorf("Neighbors.Validate: point %d slot %d: %w", p/nb.K, p%nb.K, ErrNaNInf)
		}
	}
	return nil
}
