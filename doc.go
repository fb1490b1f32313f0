// SPDX-License-Identifier: MIT

// Package humap builds hierarchical landmark embeddings of high-dimensional
// data.
//
// A hierarchy starts from the whole dataset (level 0) and repeatedly keeps a
// fraction of the points of the previous level as landmarks. Landmarks are
// sampled in proportion to their neighbourhood bandwidth, every point of the
// previous level is associated with an owning landmark, and the landmarks are
// connected by a fresh fuzzy neighbour graph. Every level is finally laid out
// in a low-dimensional space, each coordinate in [0, 10].
//
// Everything is organised in subpackages:
//
//	graph/      sparse symmetric graphs, kNN tables, datasets, level store
//	rng/        seeded random streams and derived substreams
//	knn/        exact kNN search and the fuzzy simplicial graph
//	sampler/    softmax weighted sampling without replacement
//	associate/  landmark association by random walks
//	fusion/     shared-neighbour dissimilarities between landmarks
//	layout/     spectral initialisation, SGD layout, rescaling
//	hierarchy/  the level builder and its accessors
//	telemetry/  slog, Prometheus and OpenTelemetry observers
//	config/     YAML configuration
//	export/     CSV and SQLite export of fitted hierarchies
//	synth/      synthetic labelled datasets
//	cmd/humap/  command-line front end
//
// Quick start:
//
//	b, err := hierarchy.New(hierarchy.WithPercents(0.25, 0.2), hierarchy.WithSeed(1))
//	if err != nil { ... }
//	if err = b.Fit(ctx, X, y); err != nil { ... }
//	top, _ := b.Embedding(b.NumLevels() - 1)
package humap
