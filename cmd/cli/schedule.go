package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/limaJavier/examscheduling/internal/config"
	"github.com/limaJavier/examscheduling/internal/csvio"
	"github.com/limaJavier/examscheduling/internal/metrics"
	"github.com/limaJavier/examscheduling/internal/report"
	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var scheduleFlags struct {
	input              inputFlags
	seed               uint64
	conflict           bool
	restarts           int
	maxIterations      int
	disableOverflowDay bool
	csv                string
	pdf                string
	text               string
	metricsFile        string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build an exam schedule",
	RunE:  runSchedule,
}

func init() {
	scheduleFlags.input.register(scheduleCmd)
	flags := scheduleCmd.Flags()
	flags.Uint64Var(&scheduleFlags.seed, "seed", 0, "random seed; run i of a restart uses seed+i")
	flags.BoolVar(&scheduleFlags.conflict, "conflict", false, "weigh overlaps by the students and professors they share")
	flags.IntVar(&scheduleFlags.restarts, "restarts", 1, "independent runs raced in parallel")
	flags.IntVar(&scheduleFlags.maxIterations, "max-iterations", 0, "cap on the moves tried by a run, 0 for the default cap")
	flags.BoolVar(&scheduleFlags.disableOverflowDay, "disable-overflow-day", false, "never append the overflow day")
	flags.StringVar(&scheduleFlags.csv, "csv", "", "write the schedule as CSV to this file")
	flags.StringVar(&scheduleFlags.pdf, "pdf", "", "write the schedule as PDF to this file")
	flags.StringVar(&scheduleFlags.text, "out", "", "write the text table to this file instead of stdout")
	flags.StringVar(&scheduleFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	rootCmd.AddCommand(scheduleCmd)
}

func scheduleOverrides(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Annealing.Seed = scheduleFlags.seed
		}
		if flags.Changed("conflict") && scheduleFlags.conflict {
			cfg.Cost.Mode = model.CostConflictAware.String()
		}
		if flags.Changed("restarts") {
			cfg.Annealing.Restarts = scheduleFlags.restarts
		}
		if flags.Changed("max-iterations") {
			cfg.Annealing.MaxIterations = scheduleFlags.maxIterations
		}
		if flags.Changed("disable-overflow-day") {
			cfg.Annealing.DisableOverflowDay = scheduleFlags.disableOverflowDay
		}
		if flags.Changed("csv") {
			cfg.Output.CSV = scheduleFlags.csv
		}
		if flags.Changed("pdf") {
			cfg.Output.PDF = scheduleFlags.pdf
		}
		if flags.Changed("out") {
			cfg.Output.Text = scheduleFlags.text
		}
		if flags.Changed("metrics-file") {
			cfg.Metrics.File = scheduleFlags.metricsFile
		}
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//** Configure
	cfg, err := loadConfig(cmd, &scheduleFlags.input, scheduleOverrides(cmd))
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "schedule")
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewPromRecorder(registry)
	if err != nil {
		return err
	}
	if cfg.Metrics.File != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.Metrics.File, registry); err != nil {
				log.Errorf("cannot write metrics: %v", err)
			}
		}()
	}

	//** Load input
	input, err := loadInput(cfg)
	if err != nil {
		return err
	}
	log.Infof("loaded %v exams, %v rooms and %v blocked hours", len(input.Exams), len(input.Rooms), len(input.Blocked))

	//** Search
	opts := []model.Option{model.WithLogger(log), model.WithRecorder(recorder)}
	scheduler := model.NewAnnealingScheduler(params, opts...)
	var result model.Result
	if cfg.Annealing.Restarts > 1 {
		summary, err := model.RunRestarts(ctx, params, input, cfg.Annealing.Restarts, opts...)
		if err != nil {
			return err
		}
		result = summary.Best
		log.Infof("%v of %v restarts converged, mean cost %.2f, standard deviation %.2f", summary.Converged, cfg.Annealing.Restarts, summary.MeanCost, summary.StdDevCost)
	} else {
		result, err = scheduler.Build(ctx, input)
		if err != nil {
			return err
		}
	}

	if !result.Feasible() {
		log.Errorf("search %v after %v iterations with cost %v", result.Reason, result.Iterations, result.Cost)
		if result.State != nil {
			err := writeText(cmd, cfg, func(w io.Writer) error { return report.WriteInfeasible(w, result, input) })
			if err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: %v with cost %v", errExhausted, result.Reason, result.Cost)
	}
	if !scheduler.Verify(result, input) {
		return fmt.Errorf("%w: the schedule failed verification", errExhausted)
	}
	log.With("run", result.RunId).Infof("schedule found after %v iterations in %v", result.Iterations, result.Duration)

	//** Report
	return writeOutputs(cmd, cfg, result, input)
}

// writeText sends the text report to the output file, or to stdout when none is configured
func writeText(cmd *cobra.Command, cfg *config.Config, render func(io.Writer) error) error {
	if cfg.Output.Text == "" {
		return render(cmd.OutOrStdout())
	}
	file, err := os.Create(cfg.Output.Text)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := render(file); err != nil {
		return err
	}
	return file.Close()
}

func writeOutputs(cmd *cobra.Command, cfg *config.Config, result model.Result, input model.ModelInput) error {
	err := writeText(cmd, cfg, func(w io.Writer) error { return report.WriteText(w, result.State, input) })
	if err != nil {
		return err
	}

	if cfg.Output.CSV != "" {
		delim := []rune(cfg.Input.Delimiter)[0]
		if err := csvio.ExportSchedule(result.State, input, cfg.Output.CSV, delim); err != nil {
			return err
		}
	}
	if cfg.Output.PDF != "" {
		if err := report.WritePDF(result.State, input, cfg.Output.PDF); err != nil {
			return err
		}
	}
	return nil
}
