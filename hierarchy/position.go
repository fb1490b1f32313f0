// SPDX-License-Identifier: MIT

package hierarchy

import (
	"context"

	"github.com/viterin/vek"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/humap/graph"
)

// updatePosition moves point i by the neighbour-weighted mean shift of its
// neighbourhood: x_i + Σ_j graph(i, nb_j)·(x_nb_j − x_i) / k over all k
// neighbours, self included.
//
// Complexity: O(k·d).
func updatePosition(i int, ds *graph.Dataset, nb *graph.Neighbors, g *graph.Graph) []float64 {
	u := ds.Point(i)
	shift := make([]float64, len(u))
	cols, _ := nb.Of(i)
	for _, j := range cols {
		diff := vek.Sub(ds.Point(j), u)
		vek.MulNumber_Inplace(diff, g.Weight(i, j))
		vek.Add_Inplace(shift, diff)
	}
	vek.MulNumber_Inplace(shift, 1/float64(nb.K))
	return vek.Add(u, shift)
}

// reposition applies updatePosition to every landmark in parallel and
// returns the new dense dataset, one row per landmark in order.
func reposition(ctx context.Context, parent *graph.Level, landmarks []int, workers int) (*graph.Dataset, error) {
	rows := make([][]float64, len(landmarks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (len(landmarks) + workers - 1) / workers
	for lo := 0; lo < len(landmarks); lo += chunk {
		hi := min(lo+chunk, len(landmarks))
		g.Go(func() error {
			for p := lo; p < hi; p++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				rows[p] = updatePosition(landmarks[p], parent.Dataset, parent.Neighbors, parent.Graph)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graph.NewDense(rows)
}
