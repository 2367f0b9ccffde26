package model

import (
	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/samber/lo"
)

// NewEmptyState returns the base grid state with every blocked hour applied and no exam placed
func NewEmptyState(modelInput ModelInput) (*grid.State, error) {
	state := grid.NewState(grid.NewGrid(), len(modelInput.Exams))
	if err := ApplyBlockedHours(state, modelInput.Blocked); err != nil {
		return nil, err
	}
	return state, nil
}

func verify(result Result, modelInput ModelInput, evaluator costEvaluator) bool {
	state := result.State
	if state == nil || state.Exams() != len(modelInput.Exams) {
		return false
	}
	g := state.Grid()

	//** Exams
	// Check that every exam sits in exactly one occupied cell that points back to it
	for exam := range modelInput.Exams {
		pos := state.PositionOf(exam)
		if !pos.Valid() {
			return false
		}
		cell := state.Cell(pos)
		if cell.Kind != grid.Occupied || cell.Exam != exam || cell.End != g.Start(pos).Add(modelInput.Exams[exam].Duration) {
			return false
		}
	}
	if len(state.OccupiedCells()) != len(modelInput.Exams) {
		return false
	}

	//** Blocked hours
	// Check that blocked cells are exactly the ones requested and were never modified
	requested := make(map[int]BlockedHour) // Cell index -> blocked hour
	for _, blocked := range modelInput.Blocked {
		day, okDay := g.DayIndex(blocked.Day)
		slot, okSlot := g.SlotIndex(blocked.Start)
		if !okDay || !okSlot {
			return false
		}
		requested[g.Index(grid.Position{Day: day, Slot: slot})] = blocked
	}
	blockedCells := state.BlockedCells()
	if len(blockedCells) != len(requested) || len(requested) != len(modelInput.Blocked) {
		return false
	}
	for _, pos := range blockedCells {
		blocked, ok := requested[g.Index(pos)]
		cell := state.Cell(pos)
		if !ok || cell.Label != blocked.Label() || cell.End != blocked.Start.Add(blocked.Duration) {
			return false
		}
	}

	//** Cost
	cost := evaluator.Cost(state)
	if cost != result.Cost || (result.Outcome == Converged && cost != 0) {
		return false
	}
	if result.Outcome != Converged {
		return true
	}

	//** Rooms
	capacities := lo.SliceToMap(modelInput.Rooms, func(room Classroom) (string, int) {
		return room.Id, room.EffectiveCapacity()
	})
	for day := range g.DayCount() {
		freeAfter := make(map[string]grid.Clock) // Room -> end of the last exam held in it
		for slot := range g.SlotCount() {
			pos := grid.Position{Day: day, Slot: slot}
			cell := state.Cell(pos)
			if cell.Kind != grid.Occupied {
				continue
			}

			// Check that:
			// - Rooms exist and are not repeated
			// - Rooms hold the whole enrollment
			// - No room is booked by an exam that has not finished yet
			if len(lo.Uniq(cell.Rooms)) != len(cell.Rooms) {
				return false
			}
			seats := 0
			for _, room := range cell.Rooms {
				capacity, ok := capacities[room]
				if !ok || freeAfter[room] > g.Start(pos) {
					return false
				}
				seats += capacity
				freeAfter[room] = cell.End
			}
			if seats < modelInput.Exams[cell.Exam].Enrollment() {
				return false
			}
		}
	}
	return true
}
