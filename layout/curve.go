// SPDX-License-Identifier: MIT

package layout

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// curveSamples is the number of points on [0, 3·spread] used by FitAB.
const curveSamples = 300

// FitAB fits the low-dimensional membership kernel 1 / (1 + a·x^(2b)) to the
// target curve that is 1 below minDist and exp(-(x − minDist)/spread) above,
// by least squares with Nelder–Mead starting from (1, 1).
//
// For the defaults (spread 1, min_dist 0.1) the fit is close to
// a ≈ 1.58, b ≈ 0.90.
func FitAB(spread, minDist float64) (a, b float64, err error) {
	// 1. Target curve
	xs := make([]float64, curveSamples)
	ys := make([]float64, curveSamples)
	step := 3 * spread / float64(curveSamples-1)
	for i := range xs {
		xs[i] = float64(i) * step
		if xs[i] < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(xs[i] - minDist) / spread)
		}
	}

	// 2. Squared residuals; non-positive parameters are out of the domain
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			if p[0] <= 0 || p[1] <= 0 {
				return math.Inf(1)
			}
			sum := 0.0
			for i, x := range xs {
				r := 1/(1+p[0]*math.Pow(x, 2*p[1])) - ys[i]
				sum += r * r
			}
			return sum
		},
	}

	// 3. Minimise
	res, err := optimize.Minimize(problem, []float64{1, 1}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, 0, fmt.Errorf("FitAB(%v, %v): %w", spread, minDist, err)
	}
	return res.X[0], res.X[1], nil
}
