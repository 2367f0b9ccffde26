package grid

import (
	"fmt"
	"slices"
	"strconv"
)

type CellKind uint8

const (
	Empty CellKind = iota
	Blocked
	Occupied
)

func (kind CellKind) String() string {
	switch kind {
	case Empty:
		return "empty"
	case Blocked:
		return "blocked"
	case Occupied:
		return "occupied"
	}
	return fmt.Sprintf("CellKind(%d)", uint8(kind))
}

// Cell is the content of one (day, slot) pair.
//
//   - Empty: every other field is zero
//   - Blocked: Label and End are set
//   - Occupied: Exam and End are set; Rooms is filled by the room assignment
type Cell struct {
	Kind  CellKind
	Exam  int
	Label string
	End   Clock
	Rooms []string
}

func (cell Cell) clone() Cell {
	cell.Rooms = slices.Clone(cell.Rooms)
	return cell
}

// State is the mutable assignment of exams to grid cells. Exams are referred
// to by their index (0..exams-1).
type State struct {
	grid      Grid
	cells     [][]Cell   // cells[day][slot]
	positions []Position // positions[exam]
}

// NewState returns a state with every cell empty and no exam placed
func NewState(grid Grid, exams int) *State {
	state := &State{
		grid:      grid,
		cells:     make([][]Cell, grid.DayCount()),
		positions: make([]Position, exams),
	}
	for day := range state.cells {
		state.cells[day] = make([]Cell, grid.SlotCount())
	}
	for exam := range state.positions {
		state.positions[exam] = NoPosition
	}
	return state
}

func (s *State) Grid() Grid {
	return s.grid
}

// Exams returns the number of exams the state was built for
func (s *State) Exams() int {
	return len(s.positions)
}

// Cell returns the content of the cell at pos. Rooms must be treated as read-only.
func (s *State) Cell(pos Position) Cell {
	return s.cells[pos.Day][pos.Slot]
}

func (s *State) PositionOf(exam int) Position {
	return s.positions[exam]
}

// Placed returns the number of exams currently occupying a cell
func (s *State) Placed() int {
	placed := 0
	for _, pos := range s.positions {
		if pos.Valid() {
			placed++
		}
	}
	return placed
}

// Block marks the cell at (day, start) as permanently unavailable
func (s *State) Block(day string, start Clock, duration int, label string) error {
	dayIndex, ok := s.grid.DayIndex(day)
	if !ok {
		return &InvalidDayError{Day: day}
	}
	slotIndex, ok := s.grid.SlotIndex(start)
	if !ok {
		return &InvalidSlotError{Start: start.String()}
	}
	if duration <= 0 {
		return &InvalidDurationError{Duration: strconv.Itoa(duration)}
	}

	cell := &s.cells[dayIndex][slotIndex]
	if cell.Kind != Empty {
		return &CellTakenError{Day: day, Start: start}
	}
	*cell = Cell{
		Kind:  Blocked,
		Label: label,
		End:   start.Add(duration),
	}
	return nil
}

// Place puts exam into the empty cell at pos. The exam must not be placed elsewhere.
func (s *State) Place(exam int, pos Position, end Clock) error {
	if s.positions[exam].Valid() {
		return fmt.Errorf("exam %d is already placed at %v", exam, s.positions[exam])
	}
	cell := &s.cells[pos.Day][pos.Slot]
	if cell.Kind != Empty {
		return &CellTakenError{Day: s.grid.DayName(pos.Day), Start: s.grid.Start(pos)}
	}
	*cell = Cell{
		Kind: Occupied,
		Exam: exam,
		End:  end,
	}
	s.positions[exam] = pos
	return nil
}

// Clear empties an occupied cell and returns the exam it held. Blocked cells are left untouched.
func (s *State) Clear(pos Position) (exam int, ok bool) {
	cell := &s.cells[pos.Day][pos.Slot]
	if cell.Kind != Occupied {
		return 0, false
	}
	exam = cell.Exam
	*cell = Cell{}
	s.positions[exam] = NoPosition
	return exam, true
}

// SetRooms binds rooms to an occupied cell
func (s *State) SetRooms(pos Position, rooms []string) {
	cell := &s.cells[pos.Day][pos.Slot]
	if cell.Kind != Occupied {
		return
	}
	cell.Rooms = slices.Clone(rooms)
}

// EmptyCells lists every cell that can receive an exam, in grid order
func (s *State) EmptyCells() []Position {
	return s.collect(Empty)
}

// OccupiedCells lists every cell holding an exam, in grid order
func (s *State) OccupiedCells() []Position {
	return s.collect(Occupied)
}

// BlockedCells lists every blocked cell, in grid order
func (s *State) BlockedCells() []Position {
	return s.collect(Blocked)
}

func (s *State) collect(kind CellKind) []Position {
	positions := make([]Position, 0)
	for index := range s.grid.Len() {
		pos := s.grid.Position(index)
		if s.cells[pos.Day][pos.Slot].Kind == kind {
			positions = append(positions, pos)
		}
	}
	return positions
}

// OverflowDayAdded reports whether AddOverflowDay has been called on this state (or the state it was cloned from)
func (s *State) OverflowDayAdded() bool {
	_, ok := s.grid.DayIndex(OverflowDay)
	return ok
}

// AddOverflowDay appends one extra day of empty cells. It can only be done once.
func (s *State) AddOverflowDay() error {
	if s.OverflowDayAdded() {
		return ErrOverflowDayAdded
	}
	s.grid = s.grid.withDay(OverflowDay)
	s.cells = append(s.cells, make([]Cell, s.grid.SlotCount()))
	return nil
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	clone := &State{
		grid:      s.grid,
		cells:     make([][]Cell, len(s.cells)),
		positions: slices.Clone(s.positions),
	}
	for day := range s.cells {
		clone.cells[day] = make([]Cell, len(s.cells[day]))
		for slot, cell := range s.cells[day] {
			clone.cells[day][slot] = cell.clone()
		}
	}
	return clone
}

// Restore replaces the content of s with snapshot. The snapshot is taken over
// by s and must not be used by the caller afterwards.
func (s *State) Restore(snapshot *State) {
	*s = *snapshot
}
