package main

import (
	"fmt"

	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var validateFlags struct {
	input inputFlags
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the input without searching",
	RunE:  runValidate,
}

func init() {
	validateFlags.input.register(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &validateFlags.input, nil)
	if err != nil {
		return err
	}
	input, err := loadInput(cfg)
	if err != nil {
		return err
	}
	if err := model.CheckCapacity(input); err != nil {
		return err
	}

	largest := lo.MaxBy(input.Exams, func(a, b model.Exam) bool { return a.Enrollment() > b.Enrollment() })
	capacity := lo.SumBy(input.Rooms, func(room model.Classroom) int { return room.EffectiveCapacity() })
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exams: %v\n", len(input.Exams))
	fmt.Fprintf(out, "Rooms: %v (effective capacity %v)\n", len(input.Rooms), capacity)
	fmt.Fprintf(out, "Blocked hours: %v\n", len(input.Blocked))
	fmt.Fprintf(out, "Largest exam: %v (%v students)\n", largest.Id, largest.Enrollment())
	return nil
}
