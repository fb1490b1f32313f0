// SPDX-License-Identifier: MIT

package associate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/humap/graph"
)

// Input is the level state read by Associate. Nothing in it is modified.
type Input struct {
	// Level is reported in failures.
	Level int

	// Graph is the level's membership graph; strengths are read from it.
	Graph *graph.Graph

	// Neighbors are the level's k nearest neighbours, self at position 0.
	Neighbors *graph.Neighbors

	// Sigmas holds one sigma per point.
	Sigmas []float64

	// Landmarks are the sampled points, ordered by descending sigma so the
	// last one carries the acceptance threshold.
	Landmarks []int

	// Metadata is the state before the call; nil means all unresolved.
	Metadata *Metadata
}

// resolver is the shared state of one Associate call.
type resolver struct {
	in        Input
	opts      Options
	n, k      int
	landmark  []bool
	threshold float64
}

// Associate resolves every point of in to an owning landmark and returns the
// new metadata. in.Metadata is not modified.
//
// Steps:
//  1. Landmarks own themselves with strength 1.
//  2. Pass 1: nearest neighbour is a landmark, or was resolved before the call.
//  3. Pass 2: nearest neighbour resolved in pass 1, otherwise traversal.
func Associate(in Input, opts ...Option) (*Metadata, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r, err := newResolver(in, o)
	if err != nil {
		return nil, fmt.Errorf("Associate: %w", err)
	}

	// 1. Landmarks
	meta := NewMetadata(r.n)
	if in.Metadata != nil {
		meta = in.Metadata.Clone()
	}
	for _, l := range in.Landmarks {
		if !meta.Resolved(l) {
			_ = meta.Resolve(l, l, 1)
		}
	}

	// 2. Direct pass against the state before it
	before := meta.Clone()
	if err = r.pass(meta, before, r.direct); err != nil {
		return nil, fmt.Errorf("Associate: %w", err)
	}

	// 3. Traversal pass against the state after pass 1
	snapshot := meta.Clone()
	if err = r.pass(meta, snapshot, r.traverse); err != nil {
		return nil, fmt.Errorf("Associate: %w", err)
	}

	return meta, nil
}

// newResolver validates in and prepares landmark lookups.
func newResolver(in Input, o Options) (*resolver, error) {
	if in.Graph == nil || in.Neighbors == nil {
		return nil, fmt.Errorf("nil graph or neighbours: %w", ErrInvalidInput)
	}
	n := in.Graph.N()
	if err := in.Neighbors.Validate(n); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	if len(in.Sigmas) != n {
		return nil, fmt.Errorf("%d sigmas for %d points: %w", len(in.Sigmas), n, ErrInvalidInput)
	}
	if in.Metadata != nil && in.Metadata.Len() != n {
		return nil, fmt.Errorf("metadata for %d points, level has %d: %w", in.Metadata.Len(), n, ErrInvalidInput)
	}
	if len(in.Landmarks) == 0 {
		return nil, fmt.Errorf("no landmarks: %w", ErrInvalidInput)
	}
	r := &resolver{
		in:       in,
		opts:     o,
		n:        n,
		k:        in.Neighbors.K,
		landmark: make([]bool, n),
	}
	for _, l := range in.Landmarks {
		if l < 0 || l >= n {
			return nil, fmt.Errorf("landmark %d outside [0,%d): %w", l, n, ErrInvalidInput)
		}
		r.landmark[l] = true
	}
	r.threshold = in.Sigmas[in.Landmarks[len(in.Landmarks)-1]]
	return r, nil
}

// equivalent reports whether v may own other points.
func (r *resolver) equivalent(v int) bool {
	return r.landmark[v] && r.in.Sigmas[v] >= r.threshold
}

// step resolves one point against a read-only snapshot.
// ok=false leaves the point for a later pass.
type step func(ctx context.Context, u int, snap *Metadata) (owner int, ok bool, err error)

// pass runs fn for every point unresolved in snap, writing results into
// meta. Each point's slot is written by exactly one goroutine.
func (r *resolver) pass(meta, snap *Metadata, fn step) error {
	pending := snap.Unresolved()
	if len(pending) == 0 {
		return nil
	}
	workers := max(r.opts.Workers, 1)
	g, ctx := errgroup.WithContext(r.opts.Ctx)
	g.SetLimit(workers)
	chunk := (len(pending) + workers - 1) / workers
	for lo := 0; lo < len(pending); lo += chunk {
		part := pending[lo:min(lo+chunk, len(pending))]
		g.Go(func() error {
			for _, u := range part {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				owner, ok, err := fn(ctx, u, snap)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err = meta.Resolve(u, owner, r.in.Graph.Weight(owner, u)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// direct resolves u through its nearest neighbour when that neighbour is a
// landmark or already owned.
func (r *resolver) direct(_ context.Context, u int, snap *Metadata) (int, bool, error) {
	nn := r.in.Neighbors.Nearest(u)
	if r.equivalent(nn) {
		return nn, true, nil
	}
	if a := snap.assoc[nn]; a.Resolved {
		return a.Owner, true, nil
	}
	return 0, false, nil
}

// traverse resolves u through its nearest neighbour or, failing that, a
// depth-first search. Every unresolved point ends resolved or failed.
func (r *resolver) traverse(ctx context.Context, u int, snap *Metadata) (int, bool, error) {
	if owner, ok, _ := r.direct(ctx, u, snap); ok {
		return owner, true, nil
	}
	w := newWalker(r, snap, u)
	owner, err := w.search(ctx)
	if err != nil {
		return 0, false, err
	}
	if owner < 0 {
		return 0, false, &FailureError{Level: r.in.Level, Point: u}
	}
	return owner, true, nil
}
