// SPDX-License-Identifier: MIT

// Package associate resolves every point of a level to an owning landmark.
//
// What:
//
//   - Landmarks own themselves with strength 1.
//   - A point whose nearest neighbour is a landmark is owned by it.
//   - A point whose nearest neighbour is already resolved inherits its owner.
//   - Any other point runs a depth-first traversal over the kNN graph
//     (explicit stack, pre-order, neighbours in column order) and stops at the
//     first landmark or resolved point it meets.
//   - Strength is always graph(owner, point).
//
// A point from which no landmark can be reached fails the whole call with
// ErrAssociationFailure, wrapped in a *FailureError carrying level and point.
//
// Concurrency:
//
//   - Pass 1 (direct resolution) and pass 2 (traversals) both fan out over
//     Workers goroutines. Pass 1 reads only the state before the call; pass 2
//     reads only the immutable state after pass 1. Every traversal owns its
//     visited set. The result is therefore identical for any worker count.
//
// Options:
//
//   - WithContext(ctx)   cancellation, checked per point and per traversal step.
//   - WithWorkers(n)     goroutine bound (default 1).
//   - WithMaxDepth(d)    stack depth limit; 0 means unlimited.
//
// Errors:
//
//   - ErrAssociationFailure  no reachable landmark
//   - ErrAlreadyResolved     a second Resolve of the same point
//   - ErrOutOfRange          point index outside the metadata
//   - ErrInvalidInput        inconsistent graph, neighbours, sigmas or landmarks
//   - context.Canceled       ctx done
//
// Complexity:
//
//   - Pass 1: O(n)
//   - Pass 2: O(u·(V+E)) worst case for u unresolved points, typically tiny.
package associate
