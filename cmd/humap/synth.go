// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/humap/export"
	"github.com/katalvlaran/humap/synth"
)

type synthFlags struct {
	shape    string
	points   int
	dim      int
	clusters int
	seed     int64
	spread   float64
	out      string
	noLabels bool
	shuffle  bool
}

func newSynthCmd() *cobra.Command {
	f := &synthFlags{}
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a labelled synthetic dataset as CSV",
		Long: `Generate Gaussian blobs or noisy concentric rings. Every row holds the
coordinates followed by the cluster label.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSynth(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.shape, "shape", "blobs", "dataset shape: blobs or rings")
	fl.IntVar(&f.points, "points", 1000, "number of points")
	fl.IntVar(&f.dim, "dim", 2, "number of dimensions")
	fl.IntVar(&f.clusters, "clusters", 3, "number of clusters")
	fl.Int64Var(&f.seed, "seed", synth.DefaultSeed, "random seed")
	fl.Float64Var(&f.spread, "spread", synth.DefaultSpread, "cluster standard deviation")
	fl.StringVarP(&f.out, "output", "o", "", "output file (default stdout)")
	fl.BoolVar(&f.noLabels, "no-labels", false, "omit the label column")
	fl.BoolVar(&f.shuffle, "shuffle", false, "permute the rows")
	return cmd
}

func runSynth(cmd *cobra.Command, f *synthFlags) (err error) {
	if !(f.spread >= 0) || math.IsInf(f.spread, 0) {
		return fmt.Errorf("synth: --spread %v: must be finite and non-negative", f.spread)
	}
	opts := []synth.Option{synth.WithSeed(f.seed), synth.WithSpread(f.spread), synth.WithShuffle(f.shuffle)}
	var (
		X [][]float64
		y []int
	)
	switch f.shape {
	case "blobs":
		X, y, err = synth.Blobs(f.points, f.dim, f.clusters, opts...)
	case "rings":
		X, y, err = synth.Rings(f.points, f.dim, f.clusters, opts...)
	default:
		return fmt.Errorf("synth: --shape %q: want blobs or rings", f.shape)
	}
	if err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	if f.noLabels {
		y = nil
	}

	w := cmd.OutOrStdout()
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("synth: %w", err)
		}
		defer func() {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}()
		w = file
	}
	return export.WriteMatrix(w, X, y)
}
