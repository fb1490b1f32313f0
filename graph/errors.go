// SPDX-License-Identifier: MIT
// Package graph: sentinel error set.
// All constructors and accessors return these sentinels, wrapped with
// operation context via fmt.Errorf("Op: %w", err). Callers match with errors.Is.

package graph

import "errors"

var (
	// ErrOutOfRange indicates that a row, column or point index is outside [0, n).
	ErrOutOfRange = errors.New("graph: index out of range")

	// ErrLengthMismatch indicates parallel slices of different lengths
	// (triplet rows/cols/vals, or neighbour columns vs. distances).
	ErrLengthMismatch = errors.New("graph: length mismatch")

	// ErrDuplicateEntry indicates that a (row, col) pair occurs more than once
	// in a triplet list handed to FromTriplets.
	ErrDuplicateEntry = errors.New("graph: duplicate (row, col) entry")

	// ErrNaNInf indicates a NaN or ±Inf weight or coordinate.
	ErrNaNInf = errors.New("graph: NaN or Inf encountered")

	// ErrBadShape indicates a non-positive size or neighbour count.
	ErrBadShape = errors.New("graph: invalid shape")

	// ErrEmptyDataset indicates a dataset without points.
	ErrEmptyDataset = errors.New("graph: empty dataset")

	// ErrRaggedRows indicates dense rows with different widths.
	ErrRaggedRows = errors.New("graph: dense rows have different widths")

	// ErrNotDense indicates a dense-only operation on a sparse dataset.
	ErrNotDense = errors.New("graph: dataset is not dense")

	// ErrNotSparse indicates a sparse-only operation on a dense dataset.
	ErrNotSparse = errors.New("graph: dataset is not sparse")

	// ErrLevelOutOfRange indicates a Store lookup outside the stored levels.
	ErrLevelOutOfRange = errors.New("graph: level out of range")

	// ErrNilLevel indicates that a nil level (or a level without a graph) was appended.
	ErrNilLevel = errors.New("graph: nil level")
)
