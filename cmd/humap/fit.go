// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/humap/config"
	"github.com/katalvlaran/humap/export"
	"github.com/katalvlaran/humap/hierarchy"
	"github.com/katalvlaran/humap/telemetry"
)

type fitFlags struct {
	configPath  string
	input       string
	labelColumn int
	header      bool
	outCSV      string
	outSQLite   string
	runID       string
	metricsAddr string
	seed        int64
	workers     int
}

func newFitCmd(rf *rootFlags) *cobra.Command {
	f := &fitFlags{}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Build a hierarchy from a CSV dataset and export its levels",
		Long: `Build a hierarchy from a numeric CSV dataset. Every level's embedding,
labels and parent indices are written as CSV files and/or a SQLite run.

Examples:
  humap fit --input blobs.csv --label-column 2 --out-csv out/
  humap fit --config humap.yaml --input data.csv --out-sqlite runs.db --metrics-addr :9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFit(cmd, rf, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fl.StringVarP(&f.input, "input", "i", "", "input CSV file (required)")
	fl.IntVar(&f.labelColumn, "label-column", export.NoLabel, "column holding integer labels, -1 for none")
	fl.BoolVar(&f.header, "header", false, "skip the first input line")
	fl.StringVar(&f.outCSV, "out-csv", "", "directory receiving level_<l>.csv files")
	fl.StringVar(&f.outSQLite, "out-sqlite", "", "SQLite database receiving the run")
	fl.StringVar(&f.runID, "run-id", "", "run identifier (default: random UUID)")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while fitting")
	fl.Int64Var(&f.seed, "seed", 0, "override the configured seed")
	fl.IntVar(&f.workers, "workers", 0, "override the configured worker count")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runFit(cmd *cobra.Command, rf *rootFlags, f *fitFlags) error {
	log, err := rf.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// 1. Configuration
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = f.seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	if f.runID == "" {
		f.runID = uuid.NewString()
	}
	log = log.With("run_id", f.runID)

	// 2. Input
	X, y, err := readInput(f)
	if err != nil {
		return err
	}
	log.Info("input loaded", "path", f.input, "rows", len(X), "labelled", y != nil)

	// 3. Observers
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer := telemetry.Multi(
		telemetry.NewLogger(log),
		telemetry.NewMetrics(reg),
		telemetry.NewTracer(nil),
	)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if f.metricsAddr != "" {
		shutdown, err := serveMetrics(f.metricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	// 4. Fit
	b, err := hierarchy.New(append(cfg.Options(), hierarchy.WithObserver(observer))...)
	if err != nil {
		return err
	}
	start := time.Now()
	if err = b.Fit(ctx, X, y); err != nil {
		var be *hierarchy.BuildError
		if errors.As(err, &be) {
			log.Error("fit failed", "hierarchy_level", be.Level, "phase", be.Phase, "err", be.Err)
		}
		return err
	}
	log.Info("fit done", "levels", b.NumLevels(), "elapsed", time.Since(start))

	// 5. Export
	levels, err := export.Collect(b, y)
	if err != nil {
		return err
	}
	if f.outCSV != "" {
		paths, err := export.WriteCSVDir(f.outCSV, levels)
		if err != nil {
			return err
		}
		log.Info("csv written", "files", len(paths), "dir", f.outCSV)
	}
	if f.outSQLite != "" {
		store, err := export.OpenSQLite(f.outSQLite)
		if err != nil {
			return err
		}
		defer store.Close()
		if err = store.Save(ctx, f.runID, levels); err != nil {
			return err
		}
		log.Info("sqlite written", "path", f.outSQLite)
	}
	if f.outCSV == "" && f.outSQLite == "" {
		// top level to stdout
		return export.WriteCSV(cmd.OutOrStdout(), levels[len(levels)-1])
	}
	return nil
}

func readInput(f *fitFlags) ([][]float64, []int, error) {
	file, err := os.Open(f.input)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	X, y, err := export.ReadMatrix(file, f.labelColumn, f.header)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", f.input, err)
	}
	return X, y, nil
}

// serveMetrics exposes reg on addr/metrics until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("--metrics-addr: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", "err", err)
		}
	}()
	log.Info("serving metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
