// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/humap/hierarchy"
)

// TracerName is the instrumentation name of the spans.
const TracerName = "github.com/katalvlaran/humap"

// Tracer opens one span per phase, named "humap.<phase>".
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer uses tp; nil selects the global provider.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// PhaseStart implements hierarchy.Observer. The returned context carries the
// span, so nested work can attach to it.
func (t *Tracer) PhaseStart(ctx context.Context, level int, phase hierarchy.Phase) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "humap."+string(phase),
		trace.WithAttributes(
			attribute.Int("level", level),
			attribute.String("phase", string(phase)),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// LevelBuilt implements hierarchy.Observer by adding an event to the
// current span, if any.
func (t *Tracer) LevelBuilt(ctx context.Context, level, points int) {
	trace.SpanFromContext(ctx).AddEvent("level built",
		trace.WithAttributes(attribute.Int("level", level), attribute.Int("points", points)))
}
