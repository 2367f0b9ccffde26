package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/samber/lo"
)

const (
	cancelCheckInterval  = 256
	DefaultMaxIterations = 1_000_000
)

type AnnealingParameters struct {
	TempMax                  float64 `validate:"gt=0"`
	TempMin                  float64 `validate:"gte=0,ltefield=TempMax"`
	CoolingRate              float64 `validate:"gt=0,lt=1"`
	IterationsPerTemperature int     `validate:"gt=0"`
	K                        float64 `validate:"gt=0"` // Boltzmann constant

	// The overflow day is appended once, either when the grid runs out of empty
	// cells or when more than OverflowDayIterationThreshold moves have been tried
	OverflowDay                   bool
	OverflowDayIterationThreshold int `validate:"gte=0"`

	MaxIterations   int `validate:"gte=0"` // 0 means DefaultMaxIterations
	Seed            uint64
	Mode            CostMode `validate:"oneof=0 1"`
	BlockedOverlaps bool
	ProgressEvery   int `validate:"gte=0"` // Log the search progress every ProgressEvery moves, 0 disables it
}

func DefaultAnnealingParameters() AnnealingParameters {
	return AnnealingParameters{
		TempMax:                       1.0 / 3.0,
		TempMin:                       0,
		CoolingRate:                   0.95,
		IterationsPerTemperature:      10,
		K:                             1,
		OverflowDay:                   true,
		OverflowDayIterationThreshold: 1000,
		MaxIterations:                 DefaultMaxIterations,
		Mode:                          CostSimple,
	}
}

func (params AnnealingParameters) Validate() error {
	return validator.New().Struct(params)
}

// iterationCap returns the number of moves a run may try; every run is capped
func (params AnnealingParameters) iterationCap() int {
	if params.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return params.MaxIterations
}

type annealingScheduler struct {
	params AnnealingParameters
	options
}

func NewAnnealingScheduler(params AnnealingParameters, opts ...Option) Scheduler {
	return &annealingScheduler{
		params:  params,
		options: newOptions(opts),
	}
}

// annealingRun holds everything a single search mutates. Nothing in it is shared
// with other runs.
type annealingRun struct {
	params    AnnealingParameters
	state     *grid.State
	evaluator costEvaluator
	generator moveGenerator
	rng       *rand.Rand
	logger    Logger
	recorder  Recorder
}

func (scheduler *annealingScheduler) Build(ctx context.Context, modelInput ModelInput) (Result, error) {
	if err := scheduler.params.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid annealing parameters: %w", err)
	}
	started := time.Now()

	//** Initialize dependencies
	durations := lo.Map(modelInput.Exams, func(exam Exam, _ int) int { return exam.Duration })
	rng := rand.New(rand.NewPCG(scheduler.params.Seed, scheduler.params.Seed^0x9e3779b97f4a7c15))
	run := &annealingRun{
		params:    scheduler.params,
		evaluator: newCostEvaluator(modelInput, scheduler.params.Mode, scheduler.params.BlockedOverlaps),
		generator: newMoveGenerator(rng, durations),
		rng:       rng,
		logger:    scheduler.logger,
		recorder:  scheduler.recorder,
	}

	state, err := NewEmptyState(modelInput)
	if err != nil {
		return Result{}, err
	}
	run.state = state

	//** Search
	result, err := run.search(ctx, durations)
	result.RunId = uuid.NewString()
	result.Seed = scheduler.params.Seed
	result.Duration = time.Since(started)
	if err != nil {
		scheduler.recorder.ObserveResult(result)
		return result, err
	}

	scheduler.logger.Infof("run %v finished: outcome=%v reason=%v cost=%v iterations=%v", result.RunId, result.Outcome, result.Reason, result.Cost, result.Iterations)

	//** Bind rooms, only a feasible schedule gets them
	if result.Outcome == Converged {
		err = newRoomAssigner(modelInput.Rooms, rng).Assign(result.State, modelInput.Exams)
	}
	scheduler.recorder.ObserveResult(result)
	return result, err
}

func (scheduler *annealingScheduler) Verify(result Result, modelInput ModelInput) bool {
	evaluator := newCostEvaluator(modelInput, scheduler.params.Mode, scheduler.params.BlockedOverlaps)
	return verify(result, modelInput, evaluator)
}

func (run *annealingRun) search(ctx context.Context, durations []int) (Result, error) {
	params := run.params
	result := Result{Outcome: Searching, State: run.state}
	finish := func(outcome Outcome, reason StopReason) Result {
		result.Outcome = outcome
		result.Reason = reason
		result.Cost = run.evaluator.Cost(run.state)
		result.OverflowDayAdded = run.state.OverflowDayAdded()
		return result
	}

	//** Initial assignment
	if err := run.initialAssignment(durations); err != nil {
		if isNoEmptyCell(err) {
			run.logger.Warnf("the grid cannot hold every exam: %v", err)
			return finish(Exhausted, ReasonSaturated), nil
		}
		return finish(Exhausted, ReasonSaturated), err
	}

	cost := run.evaluator.Cost(run.state)
	if cost == 0 {
		return finish(Converged, ReasonZeroCost), nil
	}
	run.logger.Debugf("initial cost %v", cost)

	//** Anneal
	temperature := params.TempMax
	maxIterations := params.iterationCap()
	for temperature >= params.TempMin {
		for range params.IterationsPerTemperature {
			if result.Iterations >= maxIterations {
				return finish(Exhausted, ReasonIterationCap), nil
			}
			if result.Iterations%cancelCheckInterval == 0 && ctx.Err() != nil {
				return finish(Exhausted, ReasonCancelled), ctx.Err()
			}

			move, err := run.generator.Propose(run.state)
			if err != nil {
				if !isNoEmptyCell(err) {
					return finish(Exhausted, ReasonSaturated), err
				}
				if !run.addOverflowDay("grid saturated") {
					return finish(Exhausted, ReasonSaturated), nil
				}
				continue
			}
			result.Iterations++

			delta := run.evaluator.Delta(run.state, move)
			newCost := cost + delta
			if newCost == 0 {
				return finish(Converged, ReasonZeroCost), nil
			}

			if delta >= 0 {
				if run.rng.Float64() <= math.Exp(-float64(delta)/(params.K*temperature)) {
					cost = newCost
				} else {
					run.state.Restore(move.Snapshot)
				}
			} else {
				cost = newCost
			}

			if params.ProgressEvery > 0 && result.Iterations%params.ProgressEvery == 0 {
				run.logger.Debugf("iteration %v fault score %v temperature %.6g", result.Iterations, cost, temperature)
			}
		}

		temperature *= params.CoolingRate
		run.recorder.ObserveTemperature(temperature, cost)
		if temperature == 0 {
			return finish(Exhausted, ReasonFrozen), nil
		}

		if result.Iterations > params.OverflowDayIterationThreshold {
			run.addOverflowDay("iteration threshold exceeded")
		}
	}

	return finish(Exhausted, ReasonCooled), nil
}

// initialAssignment places every exam at random, widening the grid once if it fills up
func (run *annealingRun) initialAssignment(durations []int) error {
	err := randomAssignment(run.state, durations, run.rng)
	if err == nil || !isNoEmptyCell(err) {
		return err
	}
	if !run.addOverflowDay("initial assignment saturated the grid") {
		return err
	}
	return randomAssignment(run.state, durations, run.rng)
}

// addOverflowDay appends the overflow day if allowed and not done yet, and reports whether it did
func (run *annealingRun) addOverflowDay(cause string) bool {
	if !run.params.OverflowDay || run.state.OverflowDayAdded() {
		return false
	}
	if err := run.state.AddOverflowDay(); err != nil {
		return false
	}
	run.logger.Infof("overflow day %v added: %v", grid.OverflowDay, cause)
	return true
}

func isNoEmptyCell(err error) bool {
	var noEmptyCell grid.NoEmptyCellError
	return errors.As(err, &noEmptyCell)
}
