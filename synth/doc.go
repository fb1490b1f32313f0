// SPDX-License-Identifier: MIT

// Package synth generates seeded labelled point clouds for demos, tests and
// benchmarks of the hierarchy.
//
// Generators:
//
//   - Blobs:  isotropic Gaussian clusters around centres drawn uniformly in
//     a box; label = cluster.
//   - Rings:  concentric noisy circles in the first two dimensions, the
//     remaining dimensions pure noise; label = ring.
//
// Guarantees:
//
//   - Deterministic: the same seed and options give the same points.
//   - Fast-fail on meaningless option values via panics in WithX.
//   - Runtime validation errors are sentinels wrapped with method context.
//
// Complexity: O(n·dim) for every generator.
package synth
