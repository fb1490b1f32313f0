// SPDX-License-Identifier: MIT

package associate

import "context"

// frame is one level of the explicit traversal stack: a point and the next
// neighbour position to expand.
type frame struct {
	node int
	next int
}

// walker is the state of one traversal. It is never shared between
// goroutines; visited belongs to this traversal alone.
type walker struct {
	r       *resolver
	snap    *Metadata
	start   int
	stack   []frame
	visited map[int]struct{}
}

// newWalker prepares a traversal from start.
func newWalker(r *resolver, snap *Metadata, start int) *walker {
	return &walker{
		r:       r,
		snap:    snap,
		start:   start,
		stack:   make([]frame, 0, r.k),
		visited: make(map[int]struct{}, 4*r.k),
	}
}

// search explores neighbours of start in pre-order, first neighbour first,
// and returns the owner found or -1 when every reachable point was visited.
//
// Complexity: O(V + E) over the reachable part of the kNN graph.
func (w *walker) search(ctx context.Context) (int, error) {
	w.visited[w.start] = struct{}{}
	w.stack = append(w.stack, frame{node: w.start, next: 1})

	var (
		top  *frame
		v    int
		cols = w.r.in.Neighbors.Cols
		k    = w.r.k
	)
	for len(w.stack) > 0 {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		default:
		}

		// 1. Exhausted frame: backtrack
		top = &w.stack[len(w.stack)-1]
		if top.next >= k {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		v = cols[top.node*k+top.next]
		top.next++

		// 2. Visit v once
		if _, seen := w.visited[v]; seen {
			continue
		}
		w.visited[v] = struct{}{}

		// 3. Accept a landmark or an owned point
		if w.r.equivalent(v) {
			return v, nil
		}
		if a := w.snap.assoc[v]; a.Resolved {
			return a.Owner, nil
		}

		// 4. Descend
		if w.r.opts.MaxDepth > 0 && len(w.stack) >= w.r.opts.MaxDepth {
			continue
		}
		w.stack = append(w.stack, frame{node: v, next: 1})
	}
	return -1, nil
}
