// SPDX-License-Identifier: MIT

// Package knn is the default graph builder of the hierarchy: it turns one
// level's dataset into k nearest neighbours, per-point sigmas and the
// symmetric fuzzy membership graph.
//
// What:
//
//   - Dense datasets: exact kNN under the configured Metric, one row per
//     worker task. The point itself is always at position 0, distance 0.
//   - Sparse datasets: stored entries are read as distances (the dissimilarity
//     rows produced by similarity fusion). Self is forced to position 0;
//     rows with fewer than K entries are padded with the lowest unused
//     indices at +Inf, which later gives them zero membership.
//   - Smooth kNN distances: rho is the distance to the LocalConnectivity-th
//     positive neighbour, sigma is found by binary search so that
//     Σ exp(-(d-rho)/sigma) = log2(K).
//   - Membership: exp(-(d-rho)/sigma), 1 up to rho, 0 for the point itself.
//   - Fuzzy union: W = mix·(A + Aᵀ − A∘Aᵀ) + (1−mix)·(A∘Aᵀ).
//
// Errors:
//
//   - ErrBadK           K < 2 or K > n.
//   - ErrUnknownMetric  Metric not one of the supported names.
//   - ErrNilDataset     nil dataset.
//
// Complexity:
//
//   - dense search: O(n²·d) time, O(n·K) space.
//   - sparse search: O(E log E).
//   - smoothing and union: O(n·K·log K).
package knn
