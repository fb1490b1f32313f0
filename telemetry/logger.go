// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/katalvlaran/humap/hierarchy"
)

// Logger writes one record per finished phase and per built level. The
// level index is logged as "hierarchy_level" since "level" is the record's
// severity.
type Logger struct {
	log *slog.Logger
}

// NewLogger wraps log; nil selects slog.Default().
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

// PhaseStart implements hierarchy.Observer.
func (l *Logger) PhaseStart(ctx context.Context, level int, phase hierarchy.Phase) (context.Context, func(error)) {
	start := time.Now()
	l.log.DebugContext(ctx, "phase started", "hierarchy_level", level, "phase", string(phase))
	return ctx, func(err error) {
		attrs := []any{"hierarchy_level", level, "phase", string(phase), "elapsed", time.Since(start)}
		if err != nil {
			l.log.ErrorContext(ctx, "phase failed", append(attrs, "error", err)...)
			return
		}
		l.log.InfoContext(ctx, "phase finished", attrs...)
	}
}

// LevelBuilt implements hierarchy.Observer.
func (l *Logger) LevelBuilt(ctx context.Context, level, points int) {
	l.log.InfoContext(ctx, "level built", "hierarchy_level", level, "points", points)
}
