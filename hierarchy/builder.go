// SPDX-License-Identifier: MIT

package hierarchy

import (
	"context"
	"fmt"
	"sync"

	"github.com/katalvlaran/humap/associate"
	"github.com/katalvlaran/humap/fusion"
	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/knn"
	"github.com/katalvlaran/humap/layout"
	"github.com/katalvlaran/humap/rng"
	"github.com/katalvlaran/humap/sampler"
)

// Builder owns one hierarchy: its levels, associations and embeddings.
// Safe for concurrent use.
type Builder struct {
	opts Options

	mu    sync.RWMutex
	state *state
}

// state is everything one successful Fit produced.
type state struct {
	store      *graph.Store
	meta       []*associate.Metadata
	embeddings [][][]float64
}

// New returns a Builder with defaults overridden by opts.
func New(opts ...Option) (*Builder, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	if o.GraphBuilder == nil {
		o.GraphBuilder = knn.New(o.Neighbors, knn.WithWorkers(o.Workers))
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return &Builder{opts: o}, nil
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// run is the working state of one Fit call.
type run struct {
	opts   Options
	st     *state
	engine *layout.Engine
	src    rng.Source
}

// Fit builds the hierarchy of X, labelled by y (nil labels every point 0).
// On success the new hierarchy replaces the previous one; on failure the
// Builder is unchanged and the error is a *BuildError unless the input
// itself was rejected.
//
// Steps:
//  1. Validate input, level 0 graph.
//  2. Levels 1..len(Percents): sample, associate, derive dataset, graph.
//  3. Prune and lay out every level.
//  4. Commit.
func (b *Builder) Fit(ctx context.Context, X [][]float64, y []int) error {
	// 1. Input
	ds, err := graph.NewDense(X)
	if err != nil {
		return fmt.Errorf("Fit: %w", err)
	}
	labels := make([]int, ds.Len())
	if y != nil {
		if len(y) != ds.Len() {
			return fmt.Errorf("Fit: %d labels for %d points: %w", len(y), ds.Len(), ErrLabelMismatch)
		}
		copy(labels, y)
	}
	engine, err := layout.NewEngine(b.layoutOptions()...)
	if err != nil {
		return fmt.Errorf("Fit: %w", err)
	}
	r := &run{
		opts: b.opts,
		st: &state{
			store: graph.NewStore(len(b.opts.Percents) + 1),
			meta:  make([]*associate.Metadata, 0, len(b.opts.Percents)+1),
		},
		engine: engine,
		src:    rng.New(b.opts.Seed),
	}

	// 1. Level 0
	if err = r.addLevel(ctx, 0, ds, nil, labels); err != nil {
		return err
	}

	// 2. Coarser levels
	for l := 1; l <= len(b.opts.Percents); l++ {
		if err = r.buildLevel(ctx, l); err != nil {
			return err
		}
	}

	// 3. Layout
	if err = r.layoutAll(ctx); err != nil {
		return err
	}

	// 4. Commit
	b.mu.Lock()
	b.state = r.st
	b.mu.Unlock()
	return nil
}

// layoutOptions derives the engine options from the builder's.
func (b *Builder) layoutOptions() []layout.Option {
	opts := []layout.Option{
		layout.WithComponents(b.opts.Components),
		layout.WithEpochs(b.opts.Epochs),
		layout.WithSeed(b.opts.Seed),
		layout.WithWorkers(b.opts.Workers),
	}
	return append(opts, b.opts.Layout...)
}

// phase runs fn under the observer and wraps its error.
func (r *run) phase(ctx context.Context, level int, p Phase, fn func(context.Context) error) error {
	select {
	case <-ctx.Done():
		return &BuildError{Level: level, Phase: p, Err: ctx.Err()}
	default:
	}
	pctx, end := r.opts.Observer.PhaseStart(ctx, level, p)
	err := fn(pctx)
	end(err)
	if err != nil {
		return &BuildError{Level: level, Phase: p, Err: err}
	}
	return nil
}

// addLevel fits the graph of ds and appends it as level l.
func (r *run) addLevel(ctx context.Context, l int, ds *graph.Dataset, landmarks, labels []int) error {
	var fit *graph.Fit
	err := r.phase(ctx, l, PhaseGraph, func(ctx context.Context) error {
		var err error
		if fit, err = r.opts.GraphBuilder.Fit(ctx, ds); err != nil {
			return err
		}
		return fit.Validate(ds.Len())
	})
	if err != nil {
		return err
	}
	level := &graph.Level{
		Dataset:   ds,
		Graph:     fit.Graph,
		Sigmas:    fit.Sigmas,
		Neighbors: fit.Neighbors,
		Landmarks: landmarks,
		Labels:    labels,
	}
	if err = r.st.store.Append(level); err != nil {
		return &BuildError{Level: l, Phase: PhaseGraph, Err: err}
	}
	r.st.meta = append(r.st.meta, associate.NewMetadata(ds.Len()))
	r.opts.Observer.LevelBuilt(ctx, l, ds.Len())
	return nil
}

// buildLevel derives level l from level l-1.
func (r *run) buildLevel(ctx context.Context, l int) error {
	parent, err := r.st.store.Level(l - 1)
	if err != nil {
		return &BuildError{Level: l, Phase: PhaseSample, Err: err}
	}
	workers := r.opts.Workers

	// 1. Sample
	var landmarks []int
	err = r.phase(ctx, l, PhaseSample, func(context.Context) error {
		k := sampler.Target(r.opts.Percents[l-1], parent.N())
		if k <= r.opts.Neighbors {
			return fmt.Errorf("%d landmarks from %d points with %d neighbours: %w",
				k, parent.N(), r.opts.Neighbors, ErrLevelTooSmall)
		}
		drawn, err := sampler.Sample(parent.Sigmas, k, rng.Derive(r.src, uint64(l)), sampler.WithWorkers(workers))
		if err != nil {
			return err
		}
		landmarks = sampler.Order(drawn, parent.Sigmas)
		return nil
	})
	if err != nil {
		return err
	}

	// 2. Associate the parent's points
	err = r.phase(ctx, l-1, PhaseAssociate, func(ctx context.Context) error {
		meta, err := associate.Associate(associate.Input{
			Level:     l - 1,
			Graph:     parent.Graph,
			Neighbors: parent.Neighbors,
			Sigmas:    parent.Sigmas,
			Landmarks: landmarks,
			Metadata:  r.st.meta[l-1],
		}, associate.WithContext(ctx), associate.WithWorkers(workers), associate.WithMaxDepth(r.opts.MaxDepth))
		if err != nil {
			return err
		}
		r.st.meta[l-1] = meta
		return nil
	})
	if err != nil {
		return err
	}

	// 3. Dataset
	var ds *graph.Dataset
	switch r.opts.Mode {
	case Similarity:
		err = r.phase(ctx, l, PhaseReposition, func(ctx context.Context) error {
			if !parent.Dataset.IsDense() {
				return fmt.Errorf("similarity mode on a sparse level: %w", graph.ErrNotDense)
			}
			var err error
			ds, err = reposition(ctx, parent, landmarks, workers)
			return err
		})
	case Precomputed:
		err = r.phase(ctx, l, PhaseFuse, func(ctx context.Context) error {
			rows, err := fusion.Sparse(fusion.Input{
				Graph:     parent.Graph,
				Neighbors: parent.Neighbors,
				Landmarks: landmarks,
			}, fusion.WithContext(ctx), fusion.WithWorkers(workers))
			if err != nil {
				return err
			}
			ds, err = graph.NewSparse(rows)
			return err
		})
	default:
		err = r.phase(ctx, l, PhaseSubsample, func(context.Context) error {
			var err error
			ds, err = parent.Dataset.Subset(landmarks)
			return err
		})
	}
	if err != nil {
		return err
	}

	// 4. Graph
	labels := make([]int, len(landmarks))
	for p, i := range landmarks {
		labels[p] = parent.Labels[i]
	}
	return r.addLevel(ctx, l, ds, landmarks, labels)
}

// layoutAll prunes and embeds every level, finest first.
func (r *run) layoutAll(ctx context.Context) error {
	r.st.embeddings = make([][][]float64, r.st.store.Len())
	for l := range r.st.embeddings {
		level, err := r.st.store.Level(l)
		if err != nil {
			return &BuildError{Level: l, Phase: PhasePrune, Err: err}
		}

		var pruned *graph.Graph
		err = r.phase(ctx, l, PhasePrune, func(context.Context) error {
			nEpochs := layout.ResolveEpochs(r.engine.Options().Epochs, level.N())
			pruned = layout.Prune(level.Graph, nEpochs)
			return nil
		})
		if err != nil {
			return err
		}

		err = r.phase(ctx, l, PhaseLayout, func(ctx context.Context) error {
			emb, err := r.engine.Embed(ctx, pruned, level.Dataset)
			if err != nil {
				return err
			}
			r.st.embeddings[l] = emb
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
