package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/pipeline"
)

// batchResult is the outcome of one scene in a batch run.
type batchResult struct {
	Scene       string `yaml:"scene" json:"scene"`
	Path        string `yaml:"path,omitempty" json:"path,omitempty"`
	Vertices    int    `yaml:"vertices" json:"vertices"`
	Indices     int    `yaml:"indices" json:"indices"`
	Draws       int    `yaml:"draws" json:"draws"`
	Materials   int    `yaml:"materials" json:"materials"`
	Diagnostics int    `yaml:"diagnostics" json:"diagnostics"`
	Error       string `yaml:"error,omitempty" json:"error,omitempty"`
}

type loadFunc func(ctx context.Context, name string) (*pipeline.Bundle, string, error)

// runBatch ingests every scene with at most workers running at once. Each scene
// is independent: one failure is recorded and the rest carry on. Cancelling
// ctx stops scenes that have not started yet.
func runBatch(ctx context.Context, load loadFunc, names []string, workers int) ([]batchResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	results := make([]batchResult, len(names))
	for i, name := range names {
		i, name := i, name // per-iteration copies; go.mod targets Go 1.21
		g.Go(func() error {
			res := batchResult{Scene: name}
			if err := ctx.Err(); err != nil {
				res.Error = err.Error()
				results[i] = res
				return err
			}

			b, path, err := load(ctx, name)
			res.Path = path
			if err != nil {
				res.Error = err.Error()
				results[i] = res
				if errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			res.Vertices = len(b.Vertices)
			res.Indices = len(b.Indices)
			res.Draws = len(b.Draws())
			res.Materials = len(b.Materials)
			res.Diagnostics = len(b.Diagnostics)
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func writeBatch(w io.Writer, results []batchResult) {
	fmt.Fprintf(w, "%-30s %10s %10s %6s %6s %6s  %s\n", "SCENE", "VERTICES", "INDICES", "DRAWS", "MTLS", "DIAGS", "STATUS")
	for _, r := range results {
		status := "ok"
		if r.Error != "" {
			status = r.Error
		}
		fmt.Fprintf(w, "%-30s %10d %10d %6d %6d %6d  %s\n", r.Scene, r.Vertices, r.Indices, r.Draws, r.Materials, r.Diagnostics, status)
	}
}

func failedCount(results []batchResult) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}

func cmdBatch(args []string) {
	e := newEnv("batch", args)
	defer logger.Sync()
	e.requireArgs(1, "batch [-workers N] <scene.obj>...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := runBatch(ctx, e.load, e.fs.Args(), e.cfg.Pipeline.Workers)
	if err != nil {
		logger.Warn("batch interrupted", zap.Error(err))
	}

	e.emit(results, func() { writeBatch(os.Stdout, results) })

	if failed := failedCount(results); failed > 0 {
		logger.Error("batch finished with failures", zap.Int("failed", failed), zap.Int("total", len(results)))
		os.Exit(1)
	}
	logger.Info("batch finished", zap.Int("total", len(results)))
}
