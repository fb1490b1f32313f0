// SPDX-License-Identifier: MIT

// Package config reads hierarchy settings from YAML files.
//
// A file overrides Default() field by field; unknown keys are rejected.
//
//	levels: [0.22, 0.19]
//	n_neighbors: 15
//	similarity: precomputed
//	n_epochs: 0
//	n_components: 2
//	seed: 7
//	workers: 4
//	knn:
//	  metric: euclidean
//	layout:
//	  min_dist: 0.1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/humap/hierarchy"
	"github.com/katalvlaran/humap/knn"
	"github.com/katalvlaran/humap/layout"
)

// ErrInvalid indicates a configuration value outside its domain.
var ErrInvalid = errors.New("config: invalid value")

// Config is the file representation of a hierarchy build.
type Config struct {
	Levels      []float64 `yaml:"levels"`
	NNeighbors  int       `yaml:"n_neighbors"`
	Similarity  string    `yaml:"similarity"`
	NEpochs     int       `yaml:"n_epochs"`
	NComponents int       `yaml:"n_components"`
	Seed        int64     `yaml:"seed"`
	Workers     int       `yaml:"workers"`
	MaxDepth    int       `yaml:"max_depth"`
	KNN         KNN       `yaml:"knn"`
	Layout      Layout    `yaml:"layout"`
}

// KNN configures the default graph builder.
type KNN struct {
	Metric            string  `yaml:"metric"`
	LocalConnectivity float64 `yaml:"local_connectivity"`
	SetOpMixRatio     float64 `yaml:"set_op_mix_ratio"`
}

// Layout configures the layout engine.
type Layout struct {
	LearningRate       float64 `yaml:"learning_rate"`
	Repulsion          float64 `yaml:"repulsion"`
	NegativeSampleRate int     `yaml:"negative_sample_rate"`
	Spread             float64 `yaml:"spread"`
	MinDist            float64 `yaml:"min_dist"`
}

// Default returns the configuration matching the library defaults.
func Default() Config {
	return Config{
		Levels:      append([]float64(nil), hierarchy.DefaultPercents...),
		NNeighbors:  hierarchy.DefaultNeighbors,
		Similarity:  string(hierarchy.DefaultMode),
		NEpochs:     0,
		NComponents: layout.DefaultComponents,
		Seed:        0,
		Workers:     1,
		KNN: KNN{
			Metric:            string(knn.Euclidean),
			LocalConnectivity: knn.DefaultLocalConnectivity,
			SetOpMixRatio:     knn.DefaultSetOpMixRatio,
		},
		Layout: Layout{
			LearningRate:       layout.DefaultLearningRate,
			Repulsion:          layout.DefaultRepulsion,
			NegativeSampleRate: layout.DefaultNegativeSampleRate,
			Spread:             layout.DefaultSpread,
			MinDist:            layout.DefaultMinDist,
		},
	}
}

// Load reads and validates the file at path. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("Load: %w", err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("Load(%s): %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML bytes.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads YAML from r over Default() with strict field checking, then
// validates the result. An empty document yields Default().
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("Decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its domain.
func (c Config) Validate() error {
	for l, p := range c.Levels {
		if !(p > 0 && p < 1) {
			return fmt.Errorf("Validate: levels[%d]=%v outside (0,1): %w", l, p, ErrInvalid)
		}
	}
	switch {
	case c.NNeighbors < 2:
		return fmt.Errorf("Validate: n_neighbors=%d < 2: %w", c.NNeighbors, ErrInvalid)
	case c.NComponents < 1:
		return fmt.Errorf("Validate: n_components=%d < 1: %w", c.NComponents, ErrInvalid)
	case c.Workers < 1:
		return fmt.Errorf("Validate: workers=%d < 1: %w", c.Workers, ErrInvalid)
	case c.MaxDepth < 0:
		return fmt.Errorf("Validate: max_depth=%d < 0: %w", c.MaxDepth, ErrInvalid)
	}
	switch hierarchy.Mode(c.Similarity) {
	case hierarchy.Similarity, hierarchy.Precomputed, hierarchy.Raw:
	default:
		return fmt.Errorf("Validate: similarity=%q: %w", c.Similarity, ErrInvalid)
	}
	switch knn.Metric(c.KNN.Metric) {
	case knn.Euclidean, knn.Manhattan, knn.Cosine:
	default:
		return fmt.Errorf("Validate: knn.metric=%q: %w", c.KNN.Metric, ErrInvalid)
	}
	if !(c.KNN.LocalConnectivity >= 0) || math.IsInf(c.KNN.LocalConnectivity, 0) || !(c.KNN.SetOpMixRatio >= 0 && c.KNN.SetOpMixRatio <= 1) {
		return fmt.Errorf("Validate: knn local_connectivity=%v set_op_mix_ratio=%v: %w",
			c.KNN.LocalConnectivity, c.KNN.SetOpMixRatio, ErrInvalid)
	}
	l := c.Layout
	if !finite(l.LearningRate, l.Repulsion, l.Spread, l.MinDist) ||
		!(l.LearningRate > 0) || !(l.Repulsion >= 0) || l.NegativeSampleRate < 0 || !(l.Spread > 0) || !(l.MinDist >= 0) {
		return fmt.Errorf("Validate: layout %+v: %w", l, ErrInvalid)
	}
	return nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Options converts a validated Config into hierarchy options, including a
// knn graph builder and layout options.
func (c Config) Options() []hierarchy.Option {
	gb := knn.New(c.NNeighbors,
		knn.WithMetric(knn.Metric(c.KNN.Metric)),
		knn.WithLocalConnectivity(c.KNN.LocalConnectivity),
		knn.WithSetOpMixRatio(c.KNN.SetOpMixRatio),
		knn.WithWorkers(c.Workers),
	)
	return []hierarchy.Option{
		hierarchy.WithPercents(c.Levels...),
		hierarchy.WithNeighbors(c.NNeighbors),
		hierarchy.WithMode(hierarchy.Mode(c.Similarity)),
		hierarchy.WithEpochs(c.NEpochs),
		hierarchy.WithComponents(c.NComponents),
		hierarchy.WithSeed(c.Seed),
		hierarchy.WithWorkers(c.Workers),
		hierarchy.WithMaxDepth(c.MaxDepth),
		hierarchy.WithGraphBuilder(gb),
		hierarchy.WithLayout(
			layout.WithLearningRate(c.Layout.LearningRate),
			layout.WithRepulsion(c.Layout.Repulsion),
			layout.WithNegativeSampleRate(c.Layout.NegativeSampleRate),
			layout.WithKernel(c.Layout.Spread, c.Layout.MinDist),
		),
	}
}
