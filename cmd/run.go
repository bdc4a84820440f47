package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/frontopt/frontier/internal/engine"
	"github.com/frontopt/frontier/internal/front"
	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/scalarize"
	"github.com/frontopt/frontier/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	problemName     string
	methodName      string
	points          int
	tolerance       float64
	hotStart        bool
	workers         int
	outPath         string
	filteredPath    string
	seedPath        string
	keepUnconverged bool
	runDataDir      string
	traceRun        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a Pareto front for a benchmark problem",
	Long:  `Scalarizes the chosen problem, solves every subproblem, and writes the resulting front as text.`,
	RunE:  runGeneration,
}

func init() {
	runCmd.Flags().StringVar(&problemName, "problem", "", "Benchmark problem name (required)")
	runCmd.Flags().StringVar(&methodName, "method", "nbi", "Scalarization method: ws, nbi, nnc")
	runCmd.Flags().IntVar(&points, "points", 21, "Simplex discretization level")
	runCmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "Solver convergence tolerance")
	runCmd.Flags().BoolVar(&hotStart, "hot-start", true, "Seed each subproblem from its nearest solved neighbor")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent solves when hot start is off (0 = all CPUs)")
	runCmd.Flags().StringVar(&outPath, "out", "front.txt", "Output path for the unfiltered front")
	runCmd.Flags().StringVar(&filteredPath, "filtered-out", "front_filtered.txt", "Output path for the dominance-filtered front")
	runCmd.Flags().StringVar(&seedPath, "seed-file", "", "Text file holding an initial guess vector")
	runCmd.Flags().BoolVar(&keepUnconverged, "keep-unconverged", false, "Let non-converged points compete in the dominance filter")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Persist the run under this directory")
	runCmd.Flags().BoolVar(&traceRun, "trace", false, "Record a per-subproblem trace (requires --data-dir)")

	runCmd.MarkFlagRequired("problem")
	rootCmd.AddCommand(runCmd)
}

func runGeneration(cmd *cobra.Command, args []string) error {
	slog.Info("Starting run", "problem", problemName, "method", methodName, "points", points)

	problem, err := moo.Benchmark(problemName)
	if err != nil {
		return err
	}

	method, err := scalarize.ParseMethod(methodName)
	if err != nil {
		return err
	}

	cfg := engine.DefaultConfig()
	cfg.Method = method
	cfg.Points = points
	cfg.Tolerance = tolerance
	cfg.HotStart = hotStart
	cfg.Workers = workers
	cfg.Filter.KeepUnconverged = keepUnconverged

	if seedPath != "" {
		vecs, err := front.ReadVectorsFile(seedPath, problem.Dim())
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		if len(vecs) == 0 {
			return fmt.Errorf("seed file %s holds no vectors", seedPath)
		}
		cfg.InitialGuess = vecs[0]
	}

	if traceRun && runDataDir == "" {
		return fmt.Errorf("--trace requires --data-dir")
	}

	runID := uuid.New().String()

	var runStore *store.FSStore
	if runDataDir != "" {
		runStore, err = store.NewFSStore(runDataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		if traceRun {
			tracer, err := store.NewTraceWriter(runDataDir, runID, false)
			if err != nil {
				return fmt.Errorf("failed to create trace writer: %w", err)
			}
			defer tracer.Close()

			cfg.OnPoint = func(index int, pt front.Point, elapsed time.Duration) {
				entry := store.TraceEntry{
					Index:      index,
					Weights:    pt.Params.Weights,
					Status:     pt.Status.String(),
					Objectives: pt.F,
					ElapsedMS:  elapsed.Milliseconds(),
					Timestamp:  time.Now(),
				}
				if err := tracer.Write(entry); err != nil {
					slog.Warn("Trace write failed", "index", index, "error", err)
				}
			}
		}
	}

	eng, err := engine.New(problem, nil, cfg)
	if err != nil {
		return err
	}

	// Interrupt degrades the run to the subproblems solved so far.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := eng.GenerateFront(ctx); err != nil {
		return fmt.Errorf("front generation failed: %w", err)
	}

	unfiltered := eng.ParetoFront().Points()
	filtered := eng.ParetoFrontFiltered().Points()

	if err := front.WriteFile(outPath, unfiltered); err != nil {
		return fmt.Errorf("failed to write front: %w", err)
	}
	if filteredPath != "" {
		if err := front.WriteFile(filteredPath, filtered); err != nil {
			return fmt.Errorf("failed to write filtered front: %w", err)
		}
	}

	summary := eng.Summary()

	if runStore != nil {
		manifest := store.NewRunManifest(runID, store.RunConfig{
			Problem:         problemName,
			Method:          string(method),
			Points:          points,
			Tolerance:       tolerance,
			HotStart:        &hotStart,
			Workers:         workers,
			KeepUnconverged: keepUnconverged,
		}, problem.VariableNames(), problem.ObjectiveNames())
		manifest.Subproblems = summary.Subproblems
		manifest.Converged = summary.Converged
		manifest.Filtered = summary.Filtered
		manifest.ElapsedMS = summary.Elapsed.Milliseconds()

		if err := runStore.SaveRun(manifest, unfiltered, filtered); err != nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
		slog.Info("Run persisted", "run_id", runID, "data_dir", runDataDir)
	}

	sps := float64(summary.Subproblems) / summary.Elapsed.Seconds()

	slog.Info("Run complete",
		"subproblems", summary.Subproblems,
		"converged", summary.Converged,
		"filtered", summary.Filtered,
		"elapsed", summary.Elapsed,
		"solves_per_second", fmt.Sprintf("%.1f", sps),
	)

	fmt.Printf("Wrote %s (%d points, %d converged, %d after filtering, %.1f solves/sec)\n",
		outPath, summary.Subproblems, summary.Converged, summary.Filtered, sps)

	return nil
}
