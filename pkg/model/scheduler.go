package model

import (
	"context"
	"fmt"
	"time"

	"github.com/limaJavier/examscheduling/pkg/grid"
)

type Scheduler interface {
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (result Result, err error)

	Verify(
		result Result,
		modelInput ModelInput,
	) bool
}

type Outcome int

const (
	Searching Outcome = iota
	Converged         // Cost reached 0
	Exhausted         // The search stopped without reaching cost 0
)

func (outcome Outcome) String() string {
	switch outcome {
	case Searching:
		return "searching"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("Outcome(%d)", int(outcome))
}

// StopReason tells why a run ended
type StopReason string

const (
	ReasonZeroCost     StopReason = "zero-cost"
	ReasonCooled       StopReason = "cooled"        // Temperature dropped below the minimum
	ReasonFrozen       StopReason = "frozen"        // Temperature reached 0 and cannot cool further
	ReasonIterationCap StopReason = "iteration-cap" // MaxIterations reached
	ReasonSaturated    StopReason = "saturated"     // No empty cell left to move to
	ReasonCancelled    StopReason = "cancelled"
)

type Result struct {
	RunId            string
	Seed             uint64
	Outcome          Outcome
	Reason           StopReason
	Cost             int
	Iterations       int
	OverflowDayAdded bool
	State            *grid.State
	Duration         time.Duration
}

// Feasible reports whether the schedule can be published as is
func (result Result) Feasible() bool {
	return result.Outcome == Converged && result.Cost == 0
}

type Option func(*options)

type options struct {
	logger   Logger
	recorder Recorder
}

func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   NopLogger{},
		recorder: NopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
