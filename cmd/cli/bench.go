package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examscheduling/internal/config"
	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

type BenchmarkResult struct {
	RunId      string  `csv:"run_id"`
	Seed       uint64  `csv:"seed"`
	Outcome    string  `csv:"outcome"`
	Reason     string  `csv:"reason"`
	Cost       int     `csv:"cost"`
	Iterations int     `csv:"iterations"`
	Overflow   bool    `csv:"overflow_day"`
	Seconds    float64 `csv:"seconds"`
}

var benchFlags struct {
	input    inputFlags
	runs     int
	seed     uint64
	conflict bool
	out      string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run independent searches from consecutive seeds and summarize them",
	RunE:  runBench,
}

func init() {
	benchFlags.input.register(benchCmd)
	flags := benchCmd.Flags()
	flags.IntVar(&benchFlags.runs, "runs", 10, "number of runs")
	flags.Uint64Var(&benchFlags.seed, "seed", 0, "seed of the first run")
	flags.BoolVar(&benchFlags.conflict, "conflict", false, "weigh overlaps by the students and professors they share")
	flags.StringVar(&benchFlags.out, "out", "", "write one CSV row per run to this file")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd, &benchFlags.input, func(cfg *config.Config) {
		if cmd.Flags().Changed("seed") {
			cfg.Annealing.Seed = benchFlags.seed
		}
		if benchFlags.conflict {
			cfg.Cost.Mode = model.CostConflictAware.String()
		}
	})
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "bench")
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}
	input, err := loadInput(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Benchmarking %v runs over %v exams with %v cost\n", benchFlags.runs, len(input.Exams), params.Mode)
	summary, err := model.RunIndependent(ctx, params, input, benchFlags.runs, model.WithLogger(log))
	if err != nil {
		return err
	}

	results := lo.Map(summary.Results, func(result model.Result, _ int) *BenchmarkResult {
		return &BenchmarkResult{
			RunId:      result.RunId,
			Seed:       result.Seed,
			Outcome:    result.Outcome.String(),
			Reason:     string(result.Reason),
			Cost:       result.Cost,
			Iterations: result.Iterations,
			Overflow:   result.OverflowDayAdded,
			Seconds:    result.Duration.Seconds(),
		}
	})
	if benchFlags.out != "" {
		if err := toCsv(results, benchFlags.out); err != nil {
			return err
		}
	}

	iterations := lo.Map(results, func(result *BenchmarkResult, _ int) float64 { return float64(result.Iterations) })
	seconds := lo.Map(results, func(result *BenchmarkResult, _ int) float64 { return result.Seconds })
	slices.Sort(iterations)
	slices.Sort(seconds)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converged: %v/%v\n", summary.Converged, len(results))
	fmt.Fprintf(out, "Cost: mean %.2f, standard deviation %.2f\n", summary.MeanCost, summary.StdDevCost)
	fmt.Fprintf(out, "Iterations: mean %.1f, median %.0f, p90 %.0f\n", stat.Mean(iterations, nil), quantile(0.5, iterations), quantile(0.9, iterations))
	fmt.Fprintf(out, "Seconds: mean %.3f, median %.3f, p90 %.3f\n", stat.Mean(seconds, nil), quantile(0.5, seconds), quantile(0.9, seconds))
	return nil
}

// quantile expects sorted values
func quantile(p float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, values, nil)
}

func toCsv(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&results, file); err != nil {
		return fmt.Errorf("cannot write benchmark results: %w", err)
	}
	return file.Close()
}
