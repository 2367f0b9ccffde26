package model

import (
	"context"
	"fmt"
	"testing"

	"github.com/limaJavier/examscheduling/pkg/grid"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three independent exams of 60, 60 and 90 minutes and the six-room inventory
func independentInput() ModelInput {
	return ModelInput{
		Exams: []Exam{
			{Id: "CENG101", Professors: []string{"P1"}, Duration: 60, Students: []string{"S01", "S02", "S03"}},
			{Id: "CENG102", Professors: []string{"P2"}, Duration: 60, Students: []string{"S04", "S05"}},
			{Id: "CENG201", Professors: []string{"P3"}, Duration: 90, Students: []string{"S06", "S07", "S08", "S09"}},
		},
		Rooms: roomsFixture,
	}
}

// Seven exams that last the whole day: two of them always share a day
func infeasibleInput() ModelInput {
	input := ModelInput{Rooms: roomsFixture}
	for i := range 7 {
		input.Exams = append(input.Exams, Exam{
			Id:         fmt.Sprintf("CENG10%d", i),
			Professors: []string{"P"},
			Duration:   600,
			Students:   []string{"S1"},
		})
	}
	return input
}

func infeasibleParameters() AnnealingParameters {
	params := DefaultAnnealingParameters()
	params.OverflowDay = false
	params.TempMin = 0.001
	params.Seed = 11
	return params
}

func TestAnnealingScheduler(t *testing.T) {
	t.Run("Converges on independent exams", func(t *testing.T) {
		g := NewWithT(t)

		//** Arrange
		input := independentInput()
		params := DefaultAnnealingParameters()
		params.Seed = 42
		scheduler := NewAnnealingScheduler(params)

		//** Act
		result, err := scheduler.Build(context.Background(), input)

		//** Assert
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(result.Outcome).To(Equal(Converged))
		g.Expect(result.Reason).To(Equal(ReasonZeroCost))
		g.Expect(result.Cost).To(BeZero())
		g.Expect(result.Feasible()).To(BeTrue())
		g.Expect(result.RunId).NotTo(BeEmpty())
		g.Expect(result.Seed).To(Equal(uint64(42)))
		g.Expect(result.State.Placed()).To(Equal(3))
		for _, pos := range result.State.OccupiedCells() {
			g.Expect(result.State.Cell(pos).Rooms).To(ConsistOf(BeElementOf("R40a", "R40b")))
		}
		g.Expect(scheduler.Verify(result, input)).To(BeTrue())
	})

	t.Run("Deterministic given a seed", func(t *testing.T) {
		//** Arrange
		input := crowdedInput(15)
		params := DefaultAnnealingParameters()
		params.Mode = CostConflictAware
		params.Seed = 5

		//** Act
		first, err := NewAnnealingScheduler(params).Build(context.Background(), input)
		require.NoError(t, err)
		second, err := NewAnnealingScheduler(params).Build(context.Background(), input)
		require.NoError(t, err)

		//** Assert
		assert.Equal(t, first.Iterations, second.Iterations)
		assert.Equal(t, first.Cost, second.Cost)
		assert.Equal(t, first.State, second.State)
	})

	t.Run("Large exam spans several rooms", func(t *testing.T) {
		g := NewWithT(t)

		//** Arrange
		input := independentInput()
		input.Exams = append(input.Exams, Exam{Id: "CENG301", Professors: []string{"P4"}, Duration: 120, Students: students(55)})
		input.Exams = append(input.Exams, Exam{Id: "CENG302", Professors: []string{"P5"}, Duration: 60, Students: students(45)})
		params := DefaultAnnealingParameters()
		params.Seed = 3
		scheduler := NewAnnealingScheduler(params)

		//** Act
		result, err := scheduler.Build(context.Background(), input)

		//** Assert
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(result.Outcome).To(Equal(Converged))
		large := result.State.Cell(result.State.PositionOf(3))
		g.Expect(len(lo.Uniq(large.Rooms))).To(BeNumerically(">=", 2))
		g.Expect(capacityOf(large.Rooms)).To(BeNumerically(">=", 55))
		g.Expect(scheduler.Verify(result, input)).To(BeTrue())
	})

	t.Run("Infeasible instance is exhausted", func(t *testing.T) {
		//** Arrange
		input := infeasibleInput()
		scheduler := NewAnnealingScheduler(infeasibleParameters())

		//** Act
		result, err := scheduler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Exhausted, result.Outcome)
		assert.Equal(t, ReasonCooled, result.Reason)
		assert.False(t, result.Feasible())
		assert.Positive(t, result.Cost)
		assert.False(t, result.OverflowDayAdded)
		assert.Equal(t, 7, result.State.Placed())
		// No rooms are bound to a schedule that cannot be published
		for _, pos := range result.State.OccupiedCells() {
			assert.Empty(t, result.State.Cell(pos).Rooms)
		}
		assert.True(t, scheduler.Verify(result, input))
	})

	t.Run("Overflow day resolves the infeasible instance", func(t *testing.T) {
		//** Arrange
		input := infeasibleInput()
		params := infeasibleParameters()
		params.OverflowDay = true
		params.OverflowDayIterationThreshold = 100
		params.TempMin = 1e-6
		scheduler := NewAnnealingScheduler(params)

		//** Act
		result, err := scheduler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		assert.True(t, result.OverflowDayAdded)
		assert.Equal(t, 133, result.State.Grid().Len())
		assert.Equal(t, Converged, result.Outcome)
		assert.True(t, scheduler.Verify(result, input))
	})

	t.Run("Iteration cap", func(t *testing.T) {
		params := infeasibleParameters()
		params.MaxIterations = 50

		result, err := NewAnnealingScheduler(params).Build(context.Background(), infeasibleInput())

		require.NoError(t, err)
		assert.Equal(t, Exhausted, result.Outcome)
		assert.Equal(t, ReasonIterationCap, result.Reason)
		assert.Equal(t, 50, result.Iterations)
	})

	t.Run("Zero iteration cap means the default cap", func(t *testing.T) {
		params := infeasibleParameters()
		params.MaxIterations = 0

		assert.Equal(t, DefaultMaxIterations, params.iterationCap())
		params.MaxIterations = 50
		assert.Equal(t, 50, params.iterationCap())
	})

	t.Run("Temperature freezes at zero", func(t *testing.T) {
		params := infeasibleParameters()
		params.TempMin = 0
		params.CoolingRate = 0.5

		result, err := NewAnnealingScheduler(params).Build(context.Background(), infeasibleInput())

		require.NoError(t, err)
		assert.Equal(t, Exhausted, result.Outcome)
		assert.Equal(t, ReasonFrozen, result.Reason)
	})

	t.Run("Saturated grid", func(t *testing.T) {
		//** Arrange
		input := ModelInput{Rooms: roomsFixture}
		for i := range 110 {
			input.Exams = append(input.Exams, Exam{Id: fmt.Sprintf("E%03d", i), Professors: []string{"P"}, Duration: 30, Students: []string{"S"}})
		}
		blocked, err := ParseBlockedDirective("X1 Monday 09.00 30, X2 Monday 09.30 30, X3 Monday 10.00 30, X4 Monday 10.30 30, X5 Monday 11.00 30")
		require.NoError(t, err)
		input.Blocked = blocked
		scheduler := NewAnnealingScheduler(infeasibleParameters())

		//** Act
		result, err := scheduler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Exhausted, result.Outcome)
		assert.Equal(t, ReasonSaturated, result.Reason)
		assert.Equal(t, 109, result.State.Placed())
		assert.Len(t, result.State.BlockedCells(), 5)
		assert.False(t, scheduler.Verify(result, input))
	})

	t.Run("Cancelled", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		//** Act
		result, err := NewAnnealingScheduler(infeasibleParameters()).Build(ctx, infeasibleInput())

		//** Assert
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Exhausted, result.Outcome)
		assert.Equal(t, ReasonCancelled, result.Reason)
	})

	t.Run("Invalid parameters", func(t *testing.T) {
		params := DefaultAnnealingParameters()
		params.CoolingRate = 1

		_, err := NewAnnealingScheduler(params).Build(context.Background(), independentInput())

		assert.Error(t, err)
	})

	t.Run("Capacity exceeded after the search", func(t *testing.T) {
		input := independentInput()
		input.Exams[0].Students = students(201)

		result, err := NewAnnealingScheduler(DefaultAnnealingParameters()).Build(context.Background(), input)

		var capacityErr *CapacityExceededError
		assert.ErrorAs(t, err, &capacityErr)
		assert.Equal(t, Converged, result.Outcome)
	})

	t.Run("Blocked cells are kept", func(t *testing.T) {
		//** Arrange
		input := independentInput()
		blocked, err := ParseBlockedDirective("TIT101 Monday 09.00 60, TDL101 Wednesday 12.00 90")
		require.NoError(t, err)
		input.Blocked = blocked
		params := DefaultAnnealingParameters()
		params.BlockedOverlaps = true
		scheduler := NewAnnealingScheduler(params)

		//** Act
		result, err := scheduler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Converged, result.Outcome)
		assert.Equal(t, "BLOCKED BY TIT101", result.State.Cell(grid.Position{Day: 0, Slot: 0}).Label)
		assert.True(t, scheduler.Verify(result, input))
	})
}

type recorderSpy struct {
	temperatures int
	results      []Result
}

func (spy *recorderSpy) ObserveTemperature(float64, int) { spy.temperatures++ }
func (spy *recorderSpy) ObserveResult(result Result)     { spy.results = append(spy.results, result) }

func TestAnnealingSchedulerRecorder(t *testing.T) {
	//** Arrange
	spy := &recorderSpy{}
	params := infeasibleParameters()

	//** Act
	result, err := NewAnnealingScheduler(params, WithRecorder(spy), WithLogger(nil)).Build(context.Background(), infeasibleInput())

	//** Assert
	require.NoError(t, err)
	require.Len(t, spy.results, 1)
	assert.Equal(t, result.RunId, spy.results[0].RunId)
	assert.Equal(t, result.Iterations/params.IterationsPerTemperature, spy.temperatures)
}

func TestRunRestarts(t *testing.T) {
	t.Run("First converged run wins", func(t *testing.T) {
		g := NewWithT(t)

		//** Arrange
		input := crowdedInput(10)
		params := DefaultAnnealingParameters()
		params.Seed = 100

		//** Act
		summary, err := RunRestarts(context.Background(), params, input, 4)

		//** Assert
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(summary.Results).To(HaveLen(4))
		g.Expect(summary.Best.Outcome).To(Equal(Converged))
		g.Expect(summary.Converged).To(BeNumerically(">=", 1))
		g.Expect(summary.Best.Seed).To(BeNumerically(">=", uint64(100)))
		g.Expect(summary.Best.Seed).To(BeNumerically("<", uint64(104)))
		g.Expect(NewAnnealingScheduler(params).Verify(summary.Best, input)).To(BeTrue())
	})

	t.Run("Independent runs finish", func(t *testing.T) {
		//** Arrange
		params := infeasibleParameters()
		params.MaxIterations = 200

		//** Act
		summary, err := RunIndependent(context.Background(), params, infeasibleInput(), 3)

		//** Assert
		require.NoError(t, err)
		assert.Len(t, summary.Results, 3)
		assert.Zero(t, summary.Converged)
		for i, result := range summary.Results {
			assert.Equal(t, params.Seed+uint64(i), result.Seed)
			assert.Equal(t, ReasonIterationCap, result.Reason)
		}
		assert.Positive(t, summary.MeanCost)
		assert.GreaterOrEqual(t, summary.StdDevCost, 0.0)
	})
}

func TestVerifyBlockedHours(t *testing.T) {
	input := independentInput()
	input.Blocked = []BlockedHour{{CourseId: "TIT101", Day: "Monday", Start: 9 * 60, Duration: 60}}
	scheduler := NewAnnealingScheduler(DefaultAnnealingParameters())

	resultWith := func(t *testing.T, day string, start grid.Clock, label string) Result {
		t.Helper()
		g := grid.NewGrid()
		state := grid.NewState(g, len(input.Exams))
		require.NoError(t, state.Block(day, start, 60, label))
		for exam := range input.Exams {
			place(t, state, input, exam, at(t, g, exam+1, 9*60))
		}
		return Result{Outcome: Exhausted, Reason: ReasonCooled, State: state}
	}

	cases := []struct {
		name  string
		day   string
		start grid.Clock
		label string
		valid bool
	}{
		{"Blocked hour kept", "Monday", 9 * 60, "BLOCKED BY TIT101", true},
		{"Blocked hour moved", "Monday", 9*60 + 30, "BLOCKED BY TIT101", false},
		{"Blocked hour relabelled", "Monday", 9 * 60, "BLOCKED BY TDL101", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			//** Arrange
			result := resultWith(t, tc.day, tc.start, tc.label)

			//** Act
			valid := scheduler.Verify(result, input)

			//** Assert
			assert.Equal(t, tc.valid, valid)
		})
	}
}
