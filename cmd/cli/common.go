package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/limaJavier/examscheduling/internal/config"
	"github.com/limaJavier/examscheduling/internal/csvio"
	"github.com/limaJavier/examscheduling/internal/logger"
	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/spf13/cobra"
)

// inputFlags are shared by every command that reads a roster
type inputFlags struct {
	enrollments string
	rooms       string
	file        string
	blocked     string
	delimiter   string
}

func (flags *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.enrollments, "enrollments", "", "class list CSV (StudentID, Professor Name, CourseID, ExamDuration(in mins))")
	cmd.Flags().StringVar(&flags.rooms, "rooms", "", "classroom CSV (RoomID, Capacity)")
	cmd.Flags().StringVar(&flags.file, "input", "", "JSON input holding enrollments, rooms and blocked hours")
	cmd.Flags().StringVar(&flags.blocked, "blocked", "", `blocked hours, e.g. "TIT101 Monday 09.00 60, TDL101 Wednesday 12.00 90", or "s" for none`)
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", "", "CSV delimiter")
}

func (flags *inputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("enrollments") {
		cfg.Input.Enrollments = flags.enrollments
	}
	if cmd.Flags().Changed("rooms") {
		cfg.Input.Rooms = flags.rooms
	}
	if cmd.Flags().Changed("input") {
		cfg.Input.File = flags.file
	}
	if cmd.Flags().Changed("blocked") {
		cfg.Input.Blocked = flags.blocked
	}
	if cmd.Flags().Changed("delimiter") {
		cfg.Input.Delimiter = flags.delimiter
	}
}

func loadConfig(cmd *cobra.Command, flags *inputFlags, overrides func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags.apply(cmd, cfg)
	if overrides != nil {
		overrides(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, component string) (*logger.ZerologLogger, error) {
	return logger.New(component, cfg.Logging.Level, cfg.Logging.Format)
}

// loadInput reads the roster either from the JSON input or from the two CSV files
func loadInput(cfg *config.Config) (model.ModelInput, error) {
	if cfg.Input.File != "" {
		input, err := model.InputFromJson(cfg.Input.File)
		if err != nil {
			return model.ModelInput{}, err
		}
		// A directive given explicitly replaces the one in the file
		if cfg.Input.Blocked == "" {
			return input, nil
		}
		blocked, err := model.ParseBlockedDirective(cfg.Input.Blocked)
		if err != nil {
			return model.ModelInput{}, err
		}
		input.Blocked = blocked
		if _, err := model.NewEmptyState(input); err != nil {
			return model.ModelInput{}, err
		}
		return input, nil
	}

	if cfg.Input.Enrollments == "" || cfg.Input.Rooms == "" {
		return model.ModelInput{}, &model.InputError{Source: "input", Err: fmt.Errorf("either an input file or both enrollment and room files must be given")}
	}
	delim, _ := utf8.DecodeRuneInString(cfg.Input.Delimiter)
	enrollments, err := csvio.LoadEnrollments(cfg.Input.Enrollments, delim)
	if err != nil {
		return model.ModelInput{}, err
	}
	rooms, err := csvio.LoadClassrooms(cfg.Input.Rooms, delim)
	if err != nil {
		return model.ModelInput{}, err
	}
	return model.ProcessRawInput(model.RawModelInput{
		Enrollments: enrollments,
		Rooms:       rooms,
		Blocked:     cfg.Input.Blocked,
	})
}
