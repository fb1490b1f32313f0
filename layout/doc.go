// SPDX-License-Identifier: MIT

// Package layout embeds one level's graph into a low-dimensional space.
//
// What:
//
//   - Prune: drop edges lighter than max_weight / n_epochs.
//   - Spectral: initial coordinates from the eigenvectors of the normalised
//     Laplacian, per connected component; random fallback when it fails.
//   - EpochsPerSample: how often each edge is sampled, max_w / w, +Inf for
//     non-positive weights.
//   - SGD: epoch-scheduled attraction along edges with negative-sample
//     repulsion, gradients clipped to [-4, 4], linearly decaying learning rate.
//   - Rescale: every dimension mapped onto [0, 10].
//   - Engine.Embed: the whole pipeline above.
//
// Determinism:
//
//   - A fixed Seed gives identical output in sequential mode.
//   - Buffered parallel mode (WithWorkers > 1) applies per-worker deltas after
//     each epoch; it is deterministic for a fixed seed and worker count but
//     differs from the sequential result.
//
// Errors:
//
//   - ErrNilGraph           nil graph
//   - ErrSizeMismatch       graph, dataset and initial embedding disagree
//   - ErrBadDimension       non-positive number of components
//   - ErrLengthMismatch     edges and epochs-per-sample of different lengths
//   - context.Canceled      ctx done (checked once per epoch)
//
// Complexity:
//
//   - Spectral: O(n³) dense (n <= DenseSpectralLimit); O(iters·p·E) otherwise.
//   - SGD:      O(n_epochs·E·(1 + negative rate)·d).
package layout
