// SPDX-License-Identifier: MIT

// Package graph is the per-level graph store of the hierarchy.
//
// What:
//
//   - Graph: a weighted adjacency over point indices in CSR layout. Graphs built
//     by the kNN/fuzzy builder are symmetric; Prune keeps that property.
//   - Triplets: (rows, cols, vals) lists describing a sparse matrix before
//     assembly. FromTriplets rejects duplicate (row, col) pairs.
//   - Neighbors: flattened nearest-neighbour columns and distances, n*k long,
//     with the point itself at position 0 of its row.
//   - Dataset: the backing data of a level, either dense rows or sparse Rows.
//   - Rows: per-row sparse entries, the representation of a precomputed level.
//   - Components: connected components by breadth-first search.
//   - Store: the ordered list of Levels, indexed by level number.
//
// Errors:
//
//   - ErrOutOfRange        index outside [0, n)
//   - ErrLengthMismatch    triplet or neighbour slices disagree in length
//   - ErrDuplicateEntry    the same (row, col) appears twice in a triplet list
//   - ErrNaNInf            a weight or coordinate is NaN or ±Inf
//   - ErrEmptyDataset      no points
//   - ErrRaggedRows        dense rows of different widths
//   - ErrNotDense / ErrNotSparse  representation mismatch
//   - ErrLevelOutOfRange   Store lookup outside the stored levels
//
// Complexity:
//
//   - FromTriplets: O(E log E) (sort by row, then column)
//   - Weight:       O(log deg(i)) binary search within row i
//   - Prune:        O(E)
//   - Components:   O(V + E)
package graph
