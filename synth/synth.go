// SPDX-License-Identifier: MIT

package synth

import (
	"fmt"
	"math"

	"github.com/katalvlaran/humap/rng"
)

// Blobs returns n points in dim dimensions spread over k Gaussian clusters,
// assigned round-robin so cluster sizes differ by at most one.
//
// Errors: ErrTooFewPoints if k < 1 or n < k; ErrBadSize if dim < 1.
func Blobs(n, dim, k int, opts ...Option) ([][]float64, []int, error) {
	if k < 1 || n < k {
		return nil, nil, fmt.Errorf("Blobs: n=%d k=%d: %w", n, k, ErrTooFewPoints)
	}
	if dim < 1 {
		return nil, nil, fmt.Errorf("Blobs: dim=%d: %w", dim, ErrBadSize)
	}
	cfg := newConfig(opts...)
	src := rng.New(cfg.seed)

	// 1. Centres
	centres := make([][]float64, k)
	for c := range centres {
		centres[c] = make([]float64, dim)
		for d := range centres[c] {
			centres[c][d] = cfg.box * (2*src.Float64() - 1)
		}
	}

	// 2. Points
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		c := i % k
		X[i] = make([]float64, dim)
		for d := range X[i] {
			X[i][d] = centres[c][d] + cfg.spread*src.NormFloat64()
		}
		y[i] = c
	}
	return finish(X, y, cfg, src)
}

// Rings returns n points on k concentric circles of radius box, 2·box, …
// in the first two dimensions; further dimensions carry noise only.
//
// Errors: ErrTooFewPoints if k < 1 or n < k; ErrBadSize if dim < 2.
func Rings(n, dim, k int, opts ...Option) ([][]float64, []int, error) {
	if k < 1 || n < k {
		return nil, nil, fmt.Errorf("Rings: n=%d k=%d: %w", n, k, ErrTooFewPoints)
	}
	if dim < minRingDim {
		return nil, nil, fmt.Errorf("Rings: dim=%d < %d: %w", dim, minRingDim, ErrBadSize)
	}
	cfg := newConfig(opts...)
	src := rng.New(cfg.seed)

	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		c := i % k
		radius := cfg.box * float64(c+1)
		theta := 2 * math.Pi * src.Float64()
		X[i] = make([]float64, dim)
		X[i][0] = radius*math.Cos(theta) + cfg.spread*src.NormFloat64()
		X[i][1] = radius*math.Sin(theta) + cfg.spread*src.NormFloat64()
		for d := minRingDim; d < dim; d++ {
			X[i][d] = cfg.spread * src.NormFloat64()
		}
		y[i] = c
	}
	return finish(X, y, cfg, src)
}

// finish applies the row permutation when shuffling is enabled.
func finish(X [][]float64, y []int, cfg config, src rng.Source) ([][]float64, []int, error) {
	if !cfg.shuffle {
		return X, y, nil
	}
	perm, err := rng.Perm(len(X), src)
	if err != nil {
		return nil, nil, err
	}
	sx, sy := make([][]float64, len(X)), make([]int, len(y))
	for i, p := range perm {
		sx[i], sy[i] = X[p], y[p]
	}
	return sx, sy, nil
}
