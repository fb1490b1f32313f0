// SPDX-License-Identifier: MIT

package knn

import (
	"math"

	"github.com/katalvlaran/humap/graph"
)

// smoothDistances returns sigma and rho for one neighbour row (self at
// position 0). globalMean is the mean finite distance over all rows, used
// when the row has no positive distance.
func smoothDistances(dists []float64, k int, localConnectivity, globalMean float64) (sigma, rho float64) {
	// 1. rho: interpolated distance to the localConnectivity-th positive neighbour
	nonzero := make([]float64, 0, len(dists))
	var rowSum float64
	var rowCount int
	for _, d := range dists {
		if math.IsInf(d, 1) {
			continue
		}
		rowSum += d
		rowCount++
		if d > 0 {
			nonzero = append(nonzero, d)
		}
	}
	index := int(math.Floor(localConnectivity))
	interp := localConnectivity - float64(index)
	switch {
	case len(nonzero) >= index && len(nonzero) > 0:
		if index > 0 {
			rho = nonzero[index-1]
			if interp > smoothTol && index < len(nonzero) {
				rho += interp * (nonzero[index] - nonzero[index-1])
			}
		} else {
			rho = interp * nonzero[0]
		}
	case len(nonzero) > 0:
		rho = nonzero[len(nonzero)-1]
	}

	// 2. sigma: binary search for Σ exp(-(d-rho)/sigma) = log2(k)
	target := math.Log2(float64(k)) * bandwidth
	lo, hi, mid := 0.0, math.Inf(1), 1.0
	var (
		psum, gap float64
		it, j     int
	)
	for it = 0; it < smoothIter; it++ {
		psum = 0
		for j = 1; j < len(dists); j++ {
			gap = dists[j] - rho
			if gap > 0 {
				psum += math.Exp(-gap / mid)
			} else {
				psum++
			}
		}
		if math.Abs(psum-target) < smoothTol {
			break
		}
		if psum > target {
			hi = mid
			mid = (lo + hi) / 2
		} else {
			lo = mid
			if math.IsInf(hi, 1) {
				mid *= 2
			} else {
				mid = (lo + hi) / 2
			}
		}
	}
	sigma = mid

	// 3. floor sigma at a fraction of the mean distance
	if rho > 0 {
		if rowCount > 0 {
			sigma = max(sigma, minKDistScale*rowSum/float64(rowCount))
		}
	} else {
		sigma = max(sigma, minKDistScale*globalMean)
	}
	return sigma, rho
}

// membership is the directed strength of the edge to a neighbour at d.
func membership(d, sigma, rho float64) float64 {
	if d-rho <= 0 || sigma == 0 {
		return 1
	}
	return math.Exp(-(d - rho) / sigma)
}

// fuzzyUnion symmetrises the directed memberships of rows:
// w = mix·(a + aᵀ − a·aᵀ) + (1 − mix)·a·aᵀ. Zero results are dropped.
func fuzzyUnion(rows []map[int]float64, mix float64) graph.Triplets {
	nnz := 0
	for _, r := range rows {
		nnz += len(r)
	}
	out := graph.NewTriplets(2 * nnz)
	emit := func(i, j int, a, at float64) {
		prod := a * at
		w := mix*(a+at-prod) + (1-mix)*prod
		if w > 0 {
			out.Append(i, j, w)
		}
	}
	for i, r := range rows {
		for j, a := range r {
			at, both := rows[j][i]
			emit(i, j, a, at)
			if !both {
				emit(j, i, a, 0)
			}
		}
	}
	return out
}
