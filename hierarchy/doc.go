// SPDX-License-Identifier: MIT

// Package hierarchy builds a multi-level landmark embedding of a dataset.
//
// Level 0 is the whole dataset. Every further level keeps a fraction of the
// points of the level before it (its landmarks), sampled in proportion to
// their sigma, and connects them by a new neighbour graph. Every level is
// finally laid out in a low-dimensional space.
//
// Per level ℓ >= 1:
//
//  1. sample   k = int(percent·n) landmarks over the sigmas of level ℓ-1,
//     ordered by descending sigma.
//  2. associate  resolve every point of level ℓ-1 to an owning landmark.
//  3. build the dataset of level ℓ according to Mode:
//     Similarity   neighbour-weighted mean shift of each landmark (dense);
//     Precomputed  fused shared-neighbour dissimilarities (sparse);
//     Raw          the landmarks' parent rows unchanged (dense).
//  4. graph    fit the GraphBuilder on the new dataset.
//
// After the last level every level graph is pruned and laid out by a
// layout.Engine. A failing phase aborts the whole build; the Builder keeps
// whatever it held before the call.
//
// Errors:
//
//   - ErrOutOfRange         accessor level outside [0, NumLevels()).
//   - ErrUnsupported        accessor that has no value for that level.
//   - ErrLevelTooSmall      a level would have no more points than neighbours.
//   - ErrNotFitted          accessor called before a successful Fit.
//   - ErrInvalidDistribution, ErrAssociationFailure  re-exported from the
//     sampler and associate packages.
//   - *BuildError           wraps any failure with its level and phase.
//
// Concurrency:
//
//   - Levels are built one after another; phases inside a level fan out
//     over Workers goroutines.
//   - Accessors are safe for concurrent use, also while a Fit runs.
package hierarchy
