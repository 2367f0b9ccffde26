package model

import (
	"errors"
	"math/rand/v2"

	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/samber/lo"
)

var errNothingToMove = errors.New("no exam is placed")

// Move relocates one exam. Snapshot is a deep copy of the state taken before the
// relocation and is the only valid rollback target.
type Move struct {
	Exam     int
	From, To grid.Position
	Snapshot *grid.State
}

type moveGenerator interface {
	// Relocates a random exam to a random empty cell of state and returns the move.
	// Returns grid.NoEmptyCellError when no empty cell is left
	Propose(state *grid.State) (Move, error)
}

type randomMoveGenerator struct {
	rng       *rand.Rand
	durations []int
}

func newMoveGenerator(rng *rand.Rand, durations []int) moveGenerator {
	return &randomMoveGenerator{
		rng:       rng,
		durations: durations,
	}
}

func (generator *randomMoveGenerator) Propose(state *grid.State) (Move, error) {
	placed := lo.Filter(lo.Range(state.Exams()), func(exam int, _ int) bool {
		return state.PositionOf(exam).Valid()
	})
	if len(placed) == 0 {
		return Move{}, errNothingToMove
	}
	exam := placed[generator.rng.IntN(len(placed))]

	target, err := randomEmptyCell(state, generator.rng)
	if err != nil {
		return Move{}, err
	}

	move := Move{
		Exam:     exam,
		From:     state.PositionOf(exam),
		To:       target,
		Snapshot: state.Clone(),
	}

	state.Clear(move.From)
	end := state.Grid().Start(target).Add(generator.durations[exam])
	if err := state.Place(exam, target, end); err != nil {
		state.Restore(move.Snapshot)
		return Move{}, err
	}
	return move, nil
}

func randomEmptyCell(state *grid.State, rng *rand.Rand) (grid.Position, error) {
	empty := state.EmptyCells()
	if len(empty) == 0 {
		return grid.NoPosition, grid.NoEmptyCellError{}
	}
	return empty[rng.IntN(len(empty))], nil
}

// randomAssignment places every unplaced exam, in index order, into a random empty cell
func randomAssignment(state *grid.State, durations []int, rng *rand.Rand) error {
	for exam := range state.Exams() {
		if state.PositionOf(exam).Valid() {
			continue
		}
		target, err := randomEmptyCell(state, rng)
		if err != nil {
			return err
		}
		end := state.Grid().Start(target).Add(durations[exam])
		if err := state.Place(exam, target, end); err != nil {
			return err
		}
	}
	return nil
}
