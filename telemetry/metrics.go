// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/humap/hierarchy"
)

// Metrics records Prometheus series for hierarchy builds.
type Metrics struct {
	// PhaseDuration observes the seconds every phase took, by phase.
	PhaseDuration *prometheus.HistogramVec

	// PhaseErrors counts failed phases, by phase.
	PhaseErrors *prometheus.CounterVec

	// LevelPoints is the number of points of every built level, by level.
	LevelPoints *prometheus.GaugeVec
}

// NewMetrics registers the series on reg; nil selects the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "humap_phase_duration_seconds",
				Help: "Duration of hierarchy build phases in seconds",
				// from a small kNN level to a long layout
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"phase"},
		),
		PhaseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "humap_phase_errors_total",
				Help: "Total number of failed hierarchy build phases",
			},
			[]string{"phase"},
		),
		LevelPoints: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "humap_level_points",
				Help: "Number of points of each hierarchy level",
			},
			[]string{"level"},
		),
	}
}

// PhaseStart implements hierarchy.Observer.
func (m *Metrics) PhaseStart(ctx context.Context, _ int, phase hierarchy.Phase) (context.Context, func(error)) {
	start := time.Now()
	return ctx, func(err error) {
		m.PhaseDuration.WithLabelValues(string(phase)).Observe(time.Since(start).Seconds())
		if err != nil {
			m.PhaseErrors.WithLabelValues(string(phase)).Inc()
		}
	}
}

// LevelBuilt implements hierarchy.Observer.
func (m *Metrics) LevelBuilt(_ context.Context, level, points int) {
	m.LevelPoints.WithLabelValues(strconv.Itoa(level)).Set(float64(points))
}
