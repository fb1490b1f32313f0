// SPDX-License-Identifier: MIT

package layout

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/rng"
)

// Spectral is the default SpectralInitializer.
//
// Each connected component with more than dim+1 points is embedded by the
// eigenvectors 1..dim of its normalised Laplacian L = I − D^-½·A·D^-½
// (eigenvector 0 is the trivial one). Components up to DenseLimit points use
// a dense symmetric eigen decomposition; larger ones use block subspace
// iteration on I + D^-½·A·D^-½ with a Rayleigh–Ritz step. Smaller components
// and failed decompositions get uniform random coordinates. With several
// components each is scaled into a unit box and the boxes are placed on a
// ring.
type Spectral struct {
	Seed       int64
	DenseLimit int // <= 0 selects DefaultDenseSpectralLimit
	MaxIter    int // <= 0 selects 300
	Tol        float64
}

// subspace iteration defaults.
const (
	defaultSubspaceIter = 300
	defaultSubspaceTol  = 1e-9
	subspaceOversample  = 4
)

// Init implements SpectralInitializer.
func (s Spectral) Init(ctx context.Context, ds *graph.Dataset, g *graph.Graph, dim int) ([][]float64, error) {
	// 1. Validate
	if g == nil {
		return nil, fmt.Errorf("Spectral.Init: %w", ErrNilGraph)
	}
	if dim < 1 {
		return nil, fmt.Errorf("Spectral.Init(dim=%d): %w", dim, ErrBadDimension)
	}
	if ds != nil && ds.Len() != g.N() {
		return nil, fmt.Errorf("Spectral.Init: dataset %d, graph %d: %w", ds.Len(), g.N(), ErrSizeMismatch)
	}
	n := g.N()
	src := rng.New(s.Seed)
	emb := make([][]float64, n)
	for i := range emb {
		emb[i] = make([]float64, dim)
	}

	// 2. Components
	label, count := graph.Components(g)
	groups := graph.Members(label, count)

	// 3. Lay out each component
	for c, members := range groups {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		coords, err := s.component(g, members, dim, src)
		if err != nil {
			coords = randomCoords(len(members), dim, src)
		}
		if count > 1 {
			fitUnitBox(coords)
			offset := ringOffset(c, count, dim)
			for _, row := range coords {
				floats.Add(row, offset)
			}
		}
		for p, i := range members {
			emb[i] = coords[p]
		}
	}
	return emb, nil
}

// component embeds one connected component.
func (s Spectral) component(g *graph.Graph, members []int, dim int, src rng.Source) ([][]float64, error) {
	m := len(members)
	if m <= dim+1 {
		return randomCoords(m, dim, src), nil
	}

	// local index and D^-½
	local := make(map[int]int, m)
	for p, i := range members {
		local[i] = p
	}
	invSqrt := make([]float64, m)
	for p, i := range members {
		_, vals := g.Row(i)
		d := floats.Sum(vals)
		if d <= 0 {
			return nil, ErrSpectralFailed
		}
		invSqrt[p] = 1 / math.Sqrt(d)
	}

	limit := s.DenseLimit
	if limit <= 0 {
		limit = DefaultDenseSpectralLimit
	}
	if m <= limit {
		return denseEigen(g, members, local, invSqrt, dim)
	}
	return s.subspace(g, members, local, invSqrt, dim, src)
}

// denseEigen solves the normalised Laplacian of a component exactly.
func denseEigen(g *graph.Graph, members []int, local map[int]int, invSqrt []float64, dim int) ([][]float64, error) {
	m := len(members)
	lap := mat.NewSymDense(m, nil)
	for p := 0; p < m; p++ {
		lap.SetSym(p, p, 1)
	}
	for p, i := range members {
		cols, vals := g.Row(i)
		for e, j := range cols {
			q, ok := local[j]
			if !ok || q < p {
				continue
			}
			lap.SetSym(p, q, lap.At(p, q)-vals[e]*invSqrt[p]*invSqrt[q])
		}
	}

	var es mat.EigenSym
	if !es.Factorize(lap, true) {
		return nil, ErrSpectralFailed
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// eigenvalues ascend; skip the trivial first vector
	out := make([][]float64, m)
	for p := range out {
		out[p] = make([]float64, dim)
		for d := 0; d < dim; d++ {
			out[p][d] = vecs.At(p, d+1)
		}
	}
	return out, checkFinite(out)
}

// subspace runs block power iteration on M = I + D^-½·A·D^-½, whose largest
// eigenpairs are the smallest of the normalised Laplacian.
func (s Spectral) subspace(g *graph.Graph, members []int, local map[int]int, invSqrt []float64, dim int, src rng.Source) ([][]float64, error) {
	m := len(members)
	p := min(dim+1+subspaceOversample, m)
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = defaultSubspaceIter
	}
	tol := s.Tol
	if tol <= 0 {
		tol = defaultSubspaceTol
	}

	// M·x for one column
	apply := func(dst, x []float64) {
		for a, i := range members {
			cols, vals := g.Row(i)
			acc := x[a]
			for e, j := range cols {
				if b, ok := local[j]; ok {
					acc += vals[e] * invSqrt[a] * invSqrt[b] * x[b]
				}
			}
			dst[a] = acc
		}
	}

	// 1. Random orthonormal start
	block := make([][]float64, p)
	for c := range block {
		block[c] = make([]float64, m)
		for a := range block[c] {
			block[c][a] = src.NormFloat64()
		}
	}
	if !orthonormalize(block) {
		return nil, ErrSpectralFailed
	}

	// 2. Iterate until the Ritz values settle
	next := make([][]float64, p)
	for c := range next {
		next[c] = make([]float64, m)
	}
	var (
		ritz, prev []float64
		vecs       *mat.Dense
	)
	for it := 0; it < maxIter; it++ {
		for c := range block {
			apply(next[c], block[c])
		}
		block, next = next, block
		if !orthonormalize(block) {
			return nil, ErrSpectralFailed
		}
		ritz, vecs = rayleighRitz(block, next, apply)
		if ritz == nil {
			return nil, ErrSpectralFailed
		}
		if prev != nil && floats.EqualApprox(ritz, prev, tol) {
			break
		}
		prev = append(prev[:0], ritz...)
	}

	// 3. Rotate the block onto the Ritz vectors, largest first, skip the trivial
	order := make([]int, p)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(x, y int) bool { return ritz[order[x]] > ritz[order[y]] })
	out := make([][]float64, m)
	for a := range out {
		out[a] = make([]float64, dim)
	}
	for d := 0; d < dim; d++ {
		col := order[d+1]
		for c := 0; c < p; c++ {
			w := vecs.At(c, col)
			for a := 0; a < m; a++ {
				out[a][d] += w * block[c][a]
			}
		}
	}
	return out, checkFinite(out)
}

// rayleighRitz projects M onto the orthonormal block: T = Bᵀ·M·B, then
// decomposes T. scratch receives M·B. Returns nil on failure.
func rayleighRitz(block, scratch [][]float64, apply func(dst, x []float64)) ([]float64, *mat.Dense) {
	p := len(block)
	for c := range block {
		apply(scratch[c], block[c])
	}
	t := mat.NewSymDense(p, nil)
	for x := 0; x < p; x++ {
		for y := x; y < p; y++ {
			t.SetSym(x, y, floats.Dot(block[x], scratch[y]))
		}
	}
	var es mat.EigenSym
	if !es.Factorize(t, true) {
		return nil, nil
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	return es.Values(nil), &vecs
}

// orthonormalize applies modified Gram–Schmidt to the columns of block.
// Returns false when a column collapses.
func orthonormalize(block [][]float64) bool {
	for c := range block {
		for prev := 0; prev < c; prev++ {
			floats.AddScaled(block[c], -floats.Dot(block[prev], block[c]), block[prev])
		}
		norm := floats.Norm(block[c], 2)
		if norm < 1e-300 || math.IsNaN(norm) {
			return false
		}
		floats.Scale(1/norm, block[c])
	}
	return true
}

// randomCoords returns uniform coordinates in [-10, 10].
func randomCoords(m, dim int, src rng.Source) [][]float64 {
	out := make([][]float64, m)
	for a := range out {
		out[a] = make([]float64, dim)
		for d := range out[a] {
			out[a][d] = 20*src.Float64() - 10
		}
	}
	return out
}

// fitUnitBox scales coords into [-1, 1] per dimension around their centre.
func fitUnitBox(coords [][]float64) {
	if len(coords) == 0 {
		return
	}
	dim := len(coords[0])
	for d := 0; d < dim; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range coords {
			lo, hi = math.Min(lo, row[d]), math.Max(hi, row[d])
		}
		mid, half := (lo+hi)/2, (hi-lo)/2
		for _, row := range coords {
			if half == 0 {
				row[d] = 0
				continue
			}
			row[d] = (row[d] - mid) / half
		}
	}
}

// ringOffset places component c of count on a ring wide enough that unit
// boxes do not overlap. One-dimensional layouts use a line instead.
func ringOffset(c, count, dim int) []float64 {
	off := make([]float64, dim)
	if dim == 1 {
		off[0] = 3 * float64(c)
		return off
	}
	radius := math.Max(3, 3*float64(count)/(2*math.Pi))
	theta := 2 * math.Pi * float64(c) / float64(count)
	off[0] = radius * math.Cos(theta)
	off[1] = radius * math.Sin(theta)
	return off
}

// checkFinite rejects NaN or Inf coordinates.
func checkFinite(coords [][]float64) error {
	for _, row := range coords {
		for _, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return ErrSpectralFailed
			}
		}
	}
	return nil
}
