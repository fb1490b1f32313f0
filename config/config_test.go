// SPDX-License-Identifier: MIT

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/humap/config"
	"github.com/katalvlaran/humap/hierarchy"
	"github.com/katalvlaran/humap/synth"
)

func TestDefault_Valid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []float64{0.22, 0.19}, cfg.Levels)
	assert.Equal(t, 15, cfg.NNeighbors)
	assert.Equal(t, "precomputed", cfg.Similarity)
	assert.Equal(t, "euclidean", cfg.KNN.Metric)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := config.Parse([]byte(`
levels: [0.3]
n_neighbors: 8
similarity: raw
seed: 7
workers: 2
knn:
  metric: cosine
layout:
  min_dist: 0.25
`))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3}, cfg.Levels)
	assert.Equal(t, 8, cfg.NNeighbors)
	assert.Equal(t, "raw", cfg.Similarity)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "cosine", cfg.KNN.Metric)
	assert.Equal(t, 0.25, cfg.Layout.MinDist)
	// untouched fields keep defaults
	assert.Equal(t, config.Default().Layout.Spread, cfg.Layout.Spread)
	assert.Equal(t, config.Default().KNN.SetOpMixRatio, cfg.KNN.SetOpMixRatio)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "bogus: 1\n",
		"bad level":     "levels: [1.5]\n",
		"few neighbors": "n_neighbors: 1\n",
		"bad mode":      "similarity: cosine\n",
		"bad metric":    "knn:\n  metric: hamming\n",
		"bad mix":       "knn:\n  set_op_mix_ratio: 2\n",
		"bad workers":   "workers: 0\n",
		"bad rate":      "layout:\n  learning_rate: 0\n",
		"inf spread":    "layout:\n  spread: .inf\n",
		"syntax":        "levels: [0.2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
	_, err := config.Parse([]byte("n_components: 0\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	path := filepath.Join(t.TempDir(), "humap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n_neighbors: 6\nn_epochs: 20\n"), 0o600))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.NNeighbors)
	assert.Equal(t, 20, cfg.NEpochs)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptions_Fit(t *testing.T) {
	cfg, err := config.Parse([]byte(`
levels: [0.3]
n_neighbors: 8
n_epochs: 20
seed: 3
knn:
  metric: manhattan
`))
	require.NoError(t, err)

	X, y, err := synth.Blobs(120, 3, 3)
	require.NoError(t, err)
	b, err := hierarchy.New(cfg.Options()...)
	require.NoError(t, err)
	o := b.Options()
	assert.Equal(t, []float64{0.3}, o.Percents)
	assert.Equal(t, 8, o.Neighbors)
	assert.Equal(t, int64(3), o.Seed)

	require.NoError(t, b.Fit(context.Background(), X, y))
	assert.Equal(t, 2, b.NumLevels())
	emb, err := b.Embedding(1)
	require.NoError(t, err)
	assert.Len(t, emb, 36)
}
