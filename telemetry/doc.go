// SPDX-License-Identifier: MIT

// Package telemetry provides hierarchy.Observer implementations.
//
//   - Logger   structured log/slog records per phase and level.
//   - Metrics  Prometheus phase durations, phase errors and level sizes.
//   - Tracer   one OpenTelemetry span per phase.
//   - Multi    fans one build out to several observers.
//
// Library packages never log; they report through the Observer they are
// given, and the caller decides where it goes.
package telemetry
