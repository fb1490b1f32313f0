// SPDX-License-Identifier: MIT

package hierarchy

import (
	"context"

	"github.com/katalvlaran/humap/graph"
)

// Phase names one step of a level build.
type Phase string

// Phases in execution order.
const (
	PhaseGraph      Phase = "graph"
	PhaseSample     Phase = "sample"
	PhaseAssociate  Phase = "associate"
	PhaseFuse       Phase = "fuse"
	PhaseReposition Phase = "reposition"
	PhaseSubsample  Phase = "subsample"
	PhasePrune      Phase = "prune"
	PhaseLayout     Phase = "layout"
)

// Phases lists every phase.
var Phases = []Phase{
	PhaseGraph, PhaseSample, PhaseAssociate, PhaseFuse,
	PhaseReposition, PhaseSubsample, PhasePrune, PhaseLayout,
}

// Observer is told about phase boundaries and finished levels. PhaseStart
// returns the context the phase runs under and a function called once with
// the phase's error (nil on success).
type Observer interface {
	PhaseStart(ctx context.Context, level int, phase Phase) (context.Context, func(error))
	LevelBuilt(ctx context.Context, level, points int)
}

// NopObserver ignores everything.
type NopObserver struct{}

// PhaseStart implements Observer.
func (NopObserver) PhaseStart(ctx context.Context, _ int, _ Phase) (context.Context, func(error)) {
	return ctx, func(error) {}
}

// LevelBuilt implements Observer.
func (NopObserver) LevelBuilt(context.Context, int, int) {}

// GraphBuilder fits the neighbour graph of one level's dataset.
// knn.Builder is the default.
type GraphBuilder interface {
	Fit(ctx context.Context, ds *graph.Dataset) (*graph.Fit, error)
}
