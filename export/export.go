// SPDX-License-Identifier: MIT

// Package export writes fitted hierarchies to CSV files and SQLite databases.
//
// Every level becomes one row per point: its index within the level, its
// index in the level below (-1 on level 0), its label and its coordinates.
package export

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/humap/hierarchy"
)

var (
	// ErrEmpty indicates a hierarchy with no levels.
	ErrEmpty = errors.New("export: no levels")

	// ErrShape indicates level slices of different lengths or ragged coordinates.
	ErrShape = errors.New("export: inconsistent level shape")

	// ErrNotFound indicates an unknown run or level.
	ErrNotFound = errors.New("export: not found")
)

// Level is the exported view of one hierarchy level.
type Level struct {
	Index     int
	Embedding [][]float64
	Labels    []int
	Parents   []int // index of every point in level Index-1; nil on level 0
}

// Len returns the number of points.
func (lv Level) Len() int { return len(lv.Embedding) }

// Dim returns the embedding dimension, 0 for an empty level.
func (lv Level) Dim() int {
	if len(lv.Embedding) == 0 {
		return 0
	}
	return len(lv.Embedding[0])
}

// Validate checks that labels, parents and coordinates agree in size.
func (lv Level) Validate() error {
	n, dim := lv.Len(), lv.Dim()
	if lv.Labels != nil && len(lv.Labels) != n {
		return fmt.Errorf("level %d: %d labels for %d points: %w", lv.Index, len(lv.Labels), n, ErrShape)
	}
	if lv.Parents != nil && len(lv.Parents) != n {
		return fmt.Errorf("level %d: %d parents for %d points: %w", lv.Index, len(lv.Parents), n, ErrShape)
	}
	for i, row := range lv.Embedding {
		if len(row) != dim {
			return fmt.Errorf("level %d: point %d has %d coordinates, want %d: %w", lv.Index, i, len(row), dim, ErrShape)
		}
	}
	return nil
}

func (lv Level) label(i int) int {
	if lv.Labels == nil {
		return 0
	}
	return lv.Labels[i]
}

func (lv Level) parent(i int) int {
	if lv.Parents == nil {
		return -1
	}
	return lv.Parents[i]
}

// Collect copies every level of a fitted Builder. y labels level 0 and may be
// nil; higher levels use the labels projected by the Builder.
func Collect(b *hierarchy.Builder, y []int) ([]Level, error) {
	n := b.NumLevels()
	if n == 0 {
		return nil, fmt.Errorf("Collect: %w", ErrEmpty)
	}
	out := make([]Level, n)
	for l := range out {
		emb, err := b.Embedding(l)
		if err != nil {
			return nil, fmt.Errorf("Collect: %w", err)
		}
		lv := Level{Index: l, Embedding: emb}
		if l == 0 {
			if y != nil {
				lv.Labels = append([]int(nil), y...)
			}
		} else {
			if lv.Labels, err = b.Labels(l); err != nil {
				return nil, fmt.Errorf("Collect: %w", err)
			}
			if lv.Parents, err = b.LandmarkIndices(l - 1); err != nil {
				return nil, fmt.Errorf("Collect: %w", err)
			}
		}
		if err = lv.Validate(); err != nil {
			return nil, fmt.Errorf("Collect: %w", err)
		}
		out[l] = lv
	}
	return out, nil
}
