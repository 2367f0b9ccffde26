package model

import (
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// at returns the position of (day, HH*60+MM)
func at(t *testing.T, g grid.Grid, day int, start grid.Clock) grid.Position {
	t.Helper()
	slot, ok := g.SlotIndex(start)
	require.True(t, ok)
	return grid.Position{Day: day, Slot: slot}
}

func place(t *testing.T, state *grid.State, input ModelInput, exam int, pos grid.Position) {
	t.Helper()
	end := state.Grid().Start(pos).Add(input.Exams[exam].Duration)
	require.NoError(t, state.Place(exam, pos, end))
}

func costFixture() ModelInput {
	return ModelInput{
		Exams: []Exam{
			{Id: "A", Professors: []string{"P"}, Duration: 90, Students: []string{"S1", "S2"}},
			{Id: "B", Professors: []string{"P"}, Duration: 30, Students: []string{"S2"}},
			{Id: "C", Professors: []string{"Q"}, Duration: 60, Students: []string{"S3"}},
		},
	}
}

func TestCostEvaluator(t *testing.T) {
	input := costFixture()
	g := grid.NewGrid()

	// A 09.00-10.30, B 09.30-10.00, C 10.00-11.00 on Monday
	newState := func(t *testing.T) *grid.State {
		state := grid.NewState(g, len(input.Exams))
		place(t, state, input, 0, at(t, g, 0, 9*60))
		place(t, state, input, 1, at(t, g, 0, 9*60+30))
		place(t, state, input, 2, at(t, g, 0, 10*60))
		return state
	}

	t.Run("Simple mode counts overlap units", func(t *testing.T) {
		//** Arrange
		evaluator := newCostEvaluator(input, CostSimple, false)

		//** Act
		cost := evaluator.Cost(newState(t))

		//** Assert
		// B and C start inside A; C starts exactly when B ends
		assert.Equal(t, 2, cost)
	})

	t.Run("Conflict mode weighs shared students and professors", func(t *testing.T) {
		evaluator := newCostEvaluator(input, CostConflictAware, false)

		cost := evaluator.Cost(newState(t))

		// A and B collide and share S2 and P; A and C only collide
		assert.Equal(t, 4, cost)
	})

	t.Run("Conflict mode still counts collisions between unrelated exams", func(t *testing.T) {
		//** Arrange
		// A 09.00-10.30 and C 09.30-10.30 share neither students nor professors
		state := grid.NewState(g, len(input.Exams))
		place(t, state, input, 0, at(t, g, 0, 9*60))
		place(t, state, input, 2, at(t, g, 0, 9*60+30))

		//** Act
		simple := newCostEvaluator(input, CostSimple, false).Cost(state)
		conflict := newCostEvaluator(input, CostConflictAware, false).Cost(state)

		//** Assert
		assert.Equal(t, 1, simple)
		assert.Equal(t, 1, conflict)
	})

	t.Run("Different days never overlap", func(t *testing.T) {
		//** Arrange
		state := grid.NewState(g, len(input.Exams))
		place(t, state, input, 0, at(t, g, 0, 9*60))
		place(t, state, input, 1, at(t, g, 1, 9*60+30))
		place(t, state, input, 2, at(t, g, 2, 9*60+30))

		//** Act & Assert
		assert.Equal(t, 0, newCostEvaluator(input, CostSimple, false).Cost(state))
		assert.Equal(t, 0, newCostEvaluator(input, CostConflictAware, false).Cost(state))
	})

	t.Run("Same start is not an overlap unit", func(t *testing.T) {
		// Two exams can never share a cell, so starting at the same time cannot happen;
		// back to back exams do not overlap either
		state := grid.NewState(g, len(input.Exams))
		place(t, state, input, 2, at(t, g, 0, 9*60))
		place(t, state, input, 1, at(t, g, 0, 10*60))

		assert.Equal(t, 0, newCostEvaluator(input, CostSimple, false).Cost(state))
	})

	t.Run("Blocked cells", func(t *testing.T) {
		//** Arrange
		state := newState(t)
		require.NoError(t, state.Block("Monday", 10*60+30, 60, "BLOCKED BY X"))
		require.NoError(t, state.Block("Tuesday", 9*60, 120, "BLOCKED BY Y"))

		//** Act & Assert
		// The Monday block starts inside C; blocks never overlap one another
		assert.Equal(t, 2, newCostEvaluator(input, CostSimple, false).Cost(state))
		assert.Equal(t, 3, newCostEvaluator(input, CostSimple, true).Cost(state))
	})

	t.Run("Zero cost iff no overlap", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 7))
		simple := newCostEvaluator(input, CostSimple, false)
		conflict := newCostEvaluator(input, CostConflictAware, false)
		for range 200 {
			state := grid.NewState(g, len(input.Exams))
			require.NoError(t, randomAssignment(state, durations(input), rng))

			overlapping := false
			for a := range input.Exams {
				for b := range input.Exams {
					posA, posB := state.PositionOf(a), state.PositionOf(b)
					if a == b || posA.Day != posB.Day {
						continue
					}
					startA, startB := g.Start(posA), g.Start(posB)
					if startA < startB && startB < state.Cell(posA).End {
						overlapping = true
					}
				}
			}
			assert.Equal(t, overlapping, simple.Cost(state) > 0)
			assert.Equal(t, overlapping, conflict.Cost(state) > 0)
		}
	})
}

func durations(input ModelInput) []int {
	values := make([]int, len(input.Exams))
	for i, exam := range input.Exams {
		values[i] = exam.Duration
	}
	return values
}

// crowdedInput returns exams long enough to collide often, sharing students and professors
func crowdedInput(exams int) ModelInput {
	input := ModelInput{Rooms: roomsFixture}
	students := []string{"S1", "S2", "S3", "S4", "S5"}
	professors := []string{"P1", "P2", "P3"}
	for i := range exams {
		input.Exams = append(input.Exams, Exam{
			Id:         string(rune('A' + i)),
			Professors: []string{professors[i%len(professors)]},
			Duration:   60 + 30*(i%5),
			Students:   []string{students[i%len(students)], students[(i+2)%len(students)]},
		})
	}
	return input
}

func TestCostDelta(t *testing.T) {
	cases := []struct {
		name            string
		mode            CostMode
		blockedOverlaps bool
	}{
		{"Simple", CostSimple, false},
		{"Conflict", CostConflictAware, false},
		{"Simple with blocked overlaps", CostSimple, true},
		{"Conflict with blocked overlaps", CostConflictAware, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			//** Arrange
			input := crowdedInput(20)
			rng := rand.New(rand.NewPCG(1, 2))
			evaluator := newCostEvaluator(input, tc.mode, tc.blockedOverlaps)
			generator := newMoveGenerator(rng, durations(input))

			state := grid.NewState(grid.NewGrid(), len(input.Exams))
			require.NoError(t, state.Block("Monday", 10*60, 90, "BLOCKED BY X"))
			require.NoError(t, state.Block("Thursday", 13*60+30, 30, "BLOCKED BY Y"))
			require.NoError(t, randomAssignment(state, durations(input), rng))

			for i := range 500 {
				if i == 250 {
					require.NoError(t, state.AddOverflowDay())
				}
				before := evaluator.Cost(state)

				//** Act
				move, err := generator.Propose(state)
				require.NoError(t, err)
				delta := evaluator.Delta(state, move)

				//** Assert
				assert.Equal(t, evaluator.Cost(state)-before, delta)
			}
		})
	}
}
