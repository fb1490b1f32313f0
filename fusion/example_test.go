// SPDX-License-Identifier: MIT

package fusion_test

import (
	"fmt"

	"github.com/katalvlaran/humap/fusion"
	"github.com/katalvlaran/humap/graph"
)

// ExampleSparse fuses two landmarks (0 and 1) of a four-point level. Both
// reach points 2 and 3, so they become similar in the new level.
func ExampleSparse() {
	nb, _ := graph.NewNeighbors(4, 3)
	copy(nb.Cols, []int{0, 2, 3, 1, 2, 3, 2, 0, 1, 3, 0, 1})
	copy(nb.Dists, []float64{0, 1, 2, 0, 1, 4, 0, 1, 1, 0, 2, 4})

	t := graph.NewTriplets(12)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j {
				t.Append(i, j, 0.5)
			}
		}
	}
	g, err := graph.FromTriplets(4, t)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	rows, err := fusion.Sparse(fusion.Input{Graph: g, Neighbors: nb, Landmarks: []int{0, 1}})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for i, row := range rows {
		fmt.Println(i, row)
	}

	// Output:
	// 0 [{0 0} {1 0.25}]
	// 1 [{0 0.25} {1 0}]
}
