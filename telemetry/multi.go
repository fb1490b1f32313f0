// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"

	"github.com/katalvlaran/humap/hierarchy"
)

// Multi forwards every event to each observer in order. The context returned
// by one observer's PhaseStart is passed to the next; end functions run in
// reverse order.
func Multi(obs ...hierarchy.Observer) hierarchy.Observer {
	list := make([]hierarchy.Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return multi(list)
}

type multi []hierarchy.Observer

func (m multi) PhaseStart(ctx context.Context, level int, phase hierarchy.Phase) (context.Context, func(error)) {
	ends := make([]func(error), len(m))
	for i, o := range m {
		ctx, ends[i] = o.PhaseStart(ctx, level, phase)
	}
	return ctx, func(err error) {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i](err)
		}
	}
}

func (m multi) LevelBuilt(ctx context.Context, level, points int) {
	for _, o := range m {
		o.LevelBuilt(ctx, level, points)
	}
}
