// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"math"
)

// Dataset is the data of one level: either dense coordinate rows of equal
// width, or sparse dissimilarity Rows over the level's own points.
// A Dataset never changes after construction; accessors return copies.
type Dataset struct {
	dense  [][]float64
	sparse Rows
	dim    int
}

// NewDense builds a dense Dataset from rows, copying them.
// Returns ErrEmptyDataset, ErrRaggedRows or ErrNaNInf on invalid input.
func NewDense(rows [][]float64) (*Dataset, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("NewDense: %w", ErrEmptyDataset)
	}
	dim := len(rows[0])
	data := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("NewDense: row %d has %d columns, want %d: %w", i, len(row), dim, ErrRaggedRows)
		}
		for j, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("NewDense: row %d col %d: %w", i, j, ErrNaNInf)
			}
		}
		data[i] = append([]float64(nil), row...)
	}
	return &Dataset{dense: data, dim: dim}, nil
}

// NewSparse wraps sparse rows as a Dataset. Rows are copied.
func NewSparse(rows Rows) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("NewSparse: %w", ErrEmptyDataset)
	}
	n := len(rows)
	for i, row := range rows {
		for _, e := range row {
			if e.Col < 0 || e.Col >= n {
				return nil, fmt.Errorf("NewSparse: row %d col %d: %w", i, e.Col, ErrOutOfRange)
			}
			if math.IsNaN(e.Val) || math.IsInf(e.Val, 0) {
				return nil, fmt.Errorf("NewSparse: row %d col %d: %w", i, e.Col, ErrNaNInf)
			}
		}
	}
	return &Dataset{sparse: rows.Clone()}, nil
}

// Len returns the number of points.
func (d *Dataset) Len() int {
	if d.dense != nil {
		return len(d.dense)
	}
	return len(d.sparse)
}

// Dim returns the width of dense rows, or 0 for a sparse dataset.
func (d *Dataset) Dim() int { return d.dim }

// IsDense reports whether the dataset holds dense rows.
func (d *Dataset) IsDense() bool { return d.dense != nil }

// Point returns a view of dense row i; nil for sparse datasets or a bad index.
func (d *Dataset) Point(i int) []float64 {
	if d.dense == nil || i < 0 || i >= len(d.dense) {
		return nil
	}
	return d.dense[i]
}

// Dense returns a copy of the dense rows.
func (d *Dataset) Dense() ([][]float64, error) {
	if d.dense == nil {
		return nil, fmt.Errorf("Dataset.Dense: %w", ErrNotDense)
	}
	out := make([][]float64, len(d.dense))
	for i, row := range d.dense {
		out[i] = append([]float64(nil), row...)
	}
	return out, nil
}

// Sparse returns a copy of the sparse rows.
func (d *Dataset) Sparse() (Rows, error) {
	if d.dense != nil {
		return nil, fmt.Errorf("Dataset.Sparse: %w", ErrNotSparse)
	}
	return d.sparse.Clone(), nil
}

// SparseRow returns a view of sparse row i; nil for dense datasets or a bad index.
func (d *Dataset) SparseRow(i int) []Entry {
	if d.dense != nil || i < 0 || i >= len(d.sparse) {
		return nil
	}
	return d.sparse[i]
}

// Subset returns a dense Dataset made of rows idx, in that order.
func (d *Dataset) Subset(idx []int) (*Dataset, error) {
	if d.dense == nil {
		return nil, fmt.Errorf("Dataset.Subset: %w", ErrNotDense)
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("Dataset.Subset: %w", ErrEmptyDataset)
	}
	rows := make([][]float64, len(idx))
	for k, i := range idx {
		if i < 0 || i >= len(d.dense) {
			return nil, fmt.Errorf("Dataset.Subset: index %d: %w", i, ErrOutOfRange)
		}
		rows[k] = append([]float64(nil), d.dense[i]...)
	}
	return &Dataset{dense: rows, dim: d.dim}, nil
}
