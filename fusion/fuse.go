// SPDX-License-Identifier: MIT

package fusion

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// contributor is one landmark that reached a parent point.
type contributor struct {
	product float64 // membership · distance
	source  int     // parent index of the landmark
}

// fuser is the mutable state of one Fuse call.
type fuser struct {
	in      Input
	opts    Options
	k       int
	lookup  []int // parent index → landmark position, -1 otherwise
	contrib [][]contributor
	clocks  []sync.Mutex
	acc     *Accumulator
}

// Fuse accumulates shared-neighbour similarities between the landmarks of in.
//
// Steps:
//  1. Validate input (k >= 2, landmarks distinct and in range).
//  2. For every landmark, in parallel, record it as a contributor of each of
//     its neighbours and pair it with the contributors already there.
//  3. Return the Accumulator.
//
// Fewer than two landmarks yield an empty accumulator; CreateSparse then emits
// isolated self-loops.
func Fuse(in Input, opts ...Option) (*Accumulator, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("Fuse: %w", err)
	}

	n := in.Graph.N()
	f := &fuser{
		in:      in,
		opts:    o,
		k:       in.Neighbors.K,
		lookup:  make([]int, n),
		contrib: make([][]contributor, n),
		clocks:  make([]sync.Mutex, o.Shards),
		acc:     newAccumulator(len(in.Landmarks), o.DenseLimit, o.Shards),
	}
	for i := range f.lookup {
		f.lookup[i] = -1
	}
	for pos, l := range in.Landmarks {
		f.lookup[l] = pos
	}

	if err := f.run(); err != nil {
		return nil, fmt.Errorf("Fuse: %w", err)
	}
	return f.acc, nil
}

// run spreads the landmark loop over the configured workers in contiguous
// chunks.
func (f *fuser) run() error {
	m := len(f.in.Landmarks)
	workers := max(f.opts.Workers, 1)
	g, ctx := errgroup.WithContext(f.opts.Ctx)
	g.SetLimit(workers)
	chunk := (m + workers - 1) / workers
	for lo := 0; lo < m; lo += chunk {
		hi := min(lo+chunk, m)
		g.Go(func() error {
			for pos := lo; pos < hi; pos++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				f.visit(f.in.Landmarks[pos])
			}
			return nil
		})
	}
	return g.Wait()
}

// visit records landmark p at each of its neighbours and accumulates its
// similarity with every earlier contributor.
func (f *fuser) visit(p int) {
	cols, dists := f.in.Neighbors.Of(p)
	var (
		j, v    int
		earlier []contributor
		mine    contributor
	)
	for j = 1; j < f.k; j++ {
		v = cols[j]
		mine = contributor{
			product: product(f.in.Graph.Weight(p, v), dists[j]),
			source:  p,
		}

		// snapshot the earlier contributors and register this one
		lk := &f.clocks[v%len(f.clocks)]
		lk.Lock()
		earlier = f.contrib[v]
		f.contrib[v] = append(f.contrib[v], mine)
		lk.Unlock()

		for _, c := range earlier {
			u := f.lookup[c.source]
			if u < 0 {
				continue
			}
			f.acc.add(u, f.lookup[p], similarity(c.product, mine.product, f.k))
		}
	}
}

// product is membership · distance with zero membership absorbing an
// infinite (padding) distance.
func product(membership, dist float64) float64 {
	if membership == 0 {
		return 0
	}
	return membership * dist
}

// similarity is min(a,b)/max(a,b)/(k-1). Equal products, including two
// zeros, count as full agreement.
func similarity(a, b float64, k int) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if hi == lo {
		return 1 / float64(k-1)
	}
	return lo / hi / float64(k-1)
}
