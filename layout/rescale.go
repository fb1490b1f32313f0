// SPDX-License-Identifier: MIT

package layout

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Rescale maps every dimension of emb onto [0, Scale] in place:
// x ← Scale·(x − min)/(max − min). A dimension where max == min maps to 0.
// After Rescale each non-degenerate dimension attains both 0 and Scale.
//
// Complexity: O(n·d).
func Rescale(emb [][]float64) {
	if len(emb) == 0 {
		return
	}
	dim := len(emb[0])
	col := make([]float64, len(emb))
	var (
		i, d   int
		lo, hi float64
	)
	for d = 0; d < dim; d++ {
		for i = range emb {
			col[i] = emb[i][d]
		}
		lo, hi = floats.Min(col), floats.Max(col)
		for i = range emb {
			if hi == lo {
				emb[i][d] = 0
				continue
			}
			emb[i][d] = Scale * ((emb[i][d] - lo) / (hi - lo))
		}
	}
}

// InBounds reports whether every coordinate lies in [0, Scale].
func InBounds(emb [][]float64) bool {
	for _, row := range emb {
		for _, x := range row {
			if !(x >= 0 && x <= Scale) || math.IsNaN(x) {
				return false
			}
		}
	}
	return true
}

// cloneEmbedding returns a deep copy of emb.
func cloneEmbedding(emb [][]float64) [][]float64 {
	out := make([][]float64, len(emb))
	for i, row := range emb {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
