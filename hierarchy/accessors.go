// SPDX-License-Identifier: MIT

package hierarchy

import (
	"fmt"

	"github.com/katalvlaran/humap/associate"
	"github.com/katalvlaran/humap/graph"
)

// snapshot returns the committed state, or ErrNotFitted.
func (b *Builder) snapshot() (*state, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.state == nil {
		return nil, ErrNotFitted
	}
	return b.state, nil
}

// level resolves an accessor level against the committed state.
func (b *Builder) level(op string, l int) (*state, *graph.Level, error) {
	st, err := b.snapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("%s(%d): %w", op, l, err)
	}
	lv, err := st.store.Level(l)
	if err != nil {
		return nil, nil, fmt.Errorf("%s(%d): %w", op, l, ErrOutOfRange)
	}
	return st, lv, nil
}

// NumLevels returns the number of levels of the fitted hierarchy, 0 before
// the first successful Fit.
func (b *Builder) NumLevels() int {
	st, err := b.snapshot()
	if err != nil {
		return 0
	}
	return st.store.Len()
}

// Embedding returns a copy of the layout of level l.
func (b *Builder) Embedding(l int) ([][]float64, error) {
	st, _, err := b.level("Embedding", l)
	if err != nil {
		return nil, err
	}
	src := st.embeddings[l]
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out, nil
}

// Labels returns the labels of the points of level l >= 1, projected from
// the labels passed to Fit. Level 0 holds the caller's own labels and is
// unsupported.
func (b *Builder) Labels(l int) ([]int, error) {
	_, lv, err := b.level("Labels", l)
	if err != nil {
		return nil, err
	}
	if l == 0 {
		return nil, fmt.Errorf("Labels(0): %w", ErrUnsupported)
	}
	return append([]int(nil), lv.Labels...), nil
}

// Sigmas returns the sigmas of level l, the weights its landmarks were
// sampled with. The last level is never sampled and is unsupported.
func (b *Builder) Sigmas(l int) ([]float64, error) {
	st, lv, err := b.level("Sigmas", l)
	if err != nil {
		return nil, err
	}
	if l == st.store.Len()-1 {
		return nil, fmt.Errorf("Sigmas(%d): last level: %w", l, ErrUnsupported)
	}
	return append([]float64(nil), lv.Sigmas...), nil
}

// LandmarkIndices returns, for every point of level l+1, its index in level
// l. The last level has no landmarks and is unsupported.
func (b *Builder) LandmarkIndices(l int) ([]int, error) {
	st, _, err := b.level("LandmarkIndices", l)
	if err != nil {
		return nil, err
	}
	if l == st.store.Len()-1 {
		return nil, fmt.Errorf("LandmarkIndices(%d): last level: %w", l, ErrUnsupported)
	}
	next, err := st.store.Level(l + 1)
	if err != nil {
		return nil, fmt.Errorf("LandmarkIndices(%d): %w", l, ErrOutOfRange)
	}
	return append([]int(nil), next.Landmarks...), nil
}

// SparseData returns the fused dissimilarities of level l as a symmetric
// graph. density sizes the working storage; <= 0 selects 2.5·Neighbors.
// Level 0 and dense levels are unsupported.
func (b *Builder) SparseData(l, density int) (*graph.Graph, error) {
	_, lv, err := b.level("SparseData", l)
	if err != nil {
		return nil, err
	}
	if l == 0 || lv.Dataset.IsDense() {
		return nil, fmt.Errorf("SparseData(%d): dense level: %w", l, ErrUnsupported)
	}
	if density <= 0 {
		density = int(densityFactor * float64(b.opts.Neighbors))
	}
	rows, err := lv.Dataset.Sparse()
	if err != nil {
		return nil, fmt.Errorf("SparseData(%d): %w", l, err)
	}
	g, err := rows.Symmetric(density)
	if err != nil {
		return nil, fmt.Errorf("SparseData(%d): %w", l, err)
	}
	return g, nil
}

// Associations returns the owner of every point of level l. Points of the
// last level are never associated.
func (b *Builder) Associations(l int) ([]associate.Association, error) {
	st, _, err := b.level("Associations", l)
	if err != nil {
		return nil, err
	}
	return st.meta[l].All(), nil
}

// Graph returns a copy of the membership graph of level l, before pruning.
func (b *Builder) Graph(l int) (*graph.Graph, error) {
	_, lv, err := b.level("Graph", l)
	if err != nil {
		return nil, err
	}
	return lv.Graph.Clone(), nil
}

// Dataset returns the dataset of level l.
func (b *Builder) Dataset(l int) (*graph.Dataset, error) {
	_, lv, err := b.level("Dataset", l)
	if err != nil {
		return nil, err
	}
	return lv.Dataset, nil
}
