// SPDX-License-Identifier: MIT

package graph

// componentWalker holds the mutable state of one breadth-first sweep.
type componentWalker struct {
	g     *Graph
	label []int
	queue []int
}

// Components labels the connected components of g by breadth-first search,
// treating every stored entry with a positive weight as an undirected edge.
// It returns the component id of each point (ids are assigned in order of the
// smallest point index of each component) and the number of components.
//
// Complexity: O(V + E) time, O(V) memory.
func Components(g *Graph) ([]int, int) {
	w := &componentWalker{
		g:     g,
		label: make([]int, g.n),
		queue: make([]int, 0, g.n),
	}
	for i := range w.label {
		w.label[i] = -1
	}

	count := 0
	for start := 0; start < g.n; start++ {
		if w.label[start] >= 0 {
			continue
		}
		w.sweep(start, count)
		count++
	}
	return w.label, count
}

// sweep visits every point reachable from start and labels it id.
func (w *componentWalker) sweep(start, id int) {
	w.queue = append(w.queue[:0], start)
	w.label[start] = id
	var u int
	for len(w.queue) > 0 {
		u = w.queue[0]
		w.queue = w.queue[1:]
		cols, vals := w.g.Row(u)
		for p, v := range cols {
			if vals[p] <= 0 || w.label[v] >= 0 {
				continue
			}
			w.label[v] = id
			w.queue = append(w.queue, v)
		}
	}
}

// Members groups point indices by component id, each group in ascending order.
func Members(label []int, count int) [][]int {
	groups := make([][]int, count)
	for i, c := range label {
		groups[c] = append(groups[c], i)
	}
	return groups
}
