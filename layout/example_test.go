// SPDX-License-Identifier: MIT

package layout_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/layout"
)

// ExampleRescale maps each dimension onto [0, 10].
func ExampleRescale() {
	emb := [][]float64{{-1, 3}, {0, 3}, {1, 3}}
	layout.Rescale(emb)
	fmt.Println(emb)
	// Output:
	// [[0 0] [5 0] [10 0]]
}

// ExampleEngine_Embed lays out a small ring.
func ExampleEngine_Embed() {
	const n = 12
	t := graph.NewTriplets(2 * n)
	for i := 0; i < n; i++ {
		t.Append(i, (i+1)%n, 1)
		t.Append((i+1)%n, i, 1)
	}
	g, err := graph.FromTriplets(n, t)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	eng, err := layout.NewEngine(layout.WithEpochs(50), layout.WithSeed(7))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	emb, err := eng.Embed(context.Background(), g, nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(len(emb), len(emb[0]), layout.InBounds(emb))
	// Output:
	// 12 2 true
}
