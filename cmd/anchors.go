package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/frontopt/frontier/internal/engine"
	"github.com/frontopt/frontier/internal/moo"
	"github.com/spf13/cobra"
)

var (
	anchorsProblem string
	anchorsTol     float64
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "Solve the per-objective anchor points",
	Long: `Minimizes each objective alone under the problem constraints and prints
the anchor table spanning the front. Useful for checking a problem before
committing to a full run.`,
	RunE: runAnchors,
}

func init() {
	anchorsCmd.Flags().StringVar(&anchorsProblem, "problem", "", "Benchmark problem name (required)")
	anchorsCmd.Flags().Float64Var(&anchorsTol, "tol", 1e-8, "Solver convergence tolerance")

	anchorsCmd.MarkFlagRequired("problem")
	rootCmd.AddCommand(anchorsCmd)
}

func runAnchors(cmd *cobra.Command, args []string) error {
	problem, err := moo.Benchmark(anchorsProblem)
	if err != nil {
		return err
	}

	cfg := engine.DefaultConfig()
	cfg.Tolerance = anchorsTol

	eng, err := engine.New(problem, nil, cfg)
	if err != nil {
		return err
	}

	anchors, err := eng.SolveAnchors(context.Background())
	if err != nil {
		return fmt.Errorf("anchor solve failed: %w", err)
	}

	names := problem.ObjectiveNames()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTIVE\tX\tF")
	fmt.Fprintln(w, "---------\t-\t-")
	for _, a := range anchors {
		fmt.Fprintf(w, "%s\t%s\t%s\n", names[a.Objective], formatVector(a.X), formatVector(a.F))
	}
	w.Flush()

	return nil
}

// formatVector renders a float vector in compact fixed precision.
func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.4f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
