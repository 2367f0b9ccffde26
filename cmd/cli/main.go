package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/spf13/cobra"
)

const (
	exitInput     = 1
	exitCapacity  = 2
	exitExhausted = 3
)

// errExhausted is returned when the search stops without a feasible schedule
var errExhausted = errors.New("no feasible schedule found")

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "examsched",
	Short:         "Exam scheduling by simulated annealing",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "examsched: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var capacityErr *model.CapacityExceededError
	var roomsErr *model.RoomsUnavailableError
	switch {
	case errors.As(err, &capacityErr), errors.As(err, &roomsErr):
		return exitCapacity
	case errors.Is(err, errExhausted):
		return exitExhausted
	}
	return exitInput
}
