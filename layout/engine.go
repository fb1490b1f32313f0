// SPDX-License-Identifier: MIT

package layout

import (
	"context"
	"fmt"

	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/rng"
)

// Engine embeds level graphs: prune, initialise, optimise, rescale.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine with defaults overridden by opts. The default
// optimiser is an SGD whose kernel is fitted at construction.
func NewEngine(opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Spectral == nil {
		o.Spectral = Spectral{Seed: o.Seed}
	}
	if o.Optimizer == nil {
		sgd, err := NewSGD(o)
		if err != nil {
			return nil, fmt.Errorf("NewEngine: %w", err)
		}
		o.Optimizer = sgd
	}
	return &Engine{opts: o}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Embed lays out g, whose points are described by ds, into Components
// dimensions and returns one vector per point, every dimension in [0, 10].
//
// Steps:
//  1. n_epochs defaults by graph size; edges lighter than max/n_epochs dropped.
//  2. Spectral initialisation, normalised to [0, 10], plus small noise.
//  3. Epochs-per-sample schedule from the pruned weights.
//  4. Optimisation.
//  5. Final rescale to [0, 10].
func (e *Engine) Embed(ctx context.Context, g *graph.Graph, ds *graph.Dataset) ([][]float64, error) {
	if g == nil {
		return nil, fmt.Errorf("Embed: %w", ErrNilGraph)
	}
	if ds != nil && ds.Len() != g.N() {
		return nil, fmt.Errorf("Embed: dataset %d, graph %d: %w", ds.Len(), g.N(), ErrSizeMismatch)
	}

	// 1. Prune
	nEpochs := ResolveEpochs(e.opts.Epochs, g.N())
	pruned := Prune(g, nEpochs)

	// 2. Initialise
	init, err := e.opts.Spectral.Init(ctx, ds, pruned, e.opts.Components)
	if err != nil {
		return nil, fmt.Errorf("Embed: init: %w", err)
	}
	if len(init) != g.N() {
		return nil, fmt.Errorf("Embed: init returned %d points for %d: %w", len(init), g.N(), ErrSizeMismatch)
	}
	Rescale(init)
	noise := rng.Derive(rng.New(e.opts.Seed), 0)
	for _, row := range init {
		for d := range row {
			row[d] += DefaultInitNoise * noise.NormFloat64()
		}
	}

	// 3. Schedule
	edges := pruned.Triplets()
	eps := EpochsPerSample(edges.Vals, nEpochs)

	// 4. Optimise
	emb, err := e.opts.Optimizer.Optimize(ctx, init, edges, eps, nEpochs, e.opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("Embed: optimize: %w", err)
	}

	// 5. Rescale
	Rescale(emb)
	return emb, nil
}
