package model

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/samber/lo"
)

// CapacityExceededError reports an exam whose enrollment cannot fit even if every room is used
type CapacityExceededError struct {
	Exam       string
	Enrollment int
	Capacity   int
}

func (err *CapacityExceededError) Error() string {
	return fmt.Sprintf("exam %v has %v students but all rooms together seat %v", err.Exam, err.Enrollment, err.Capacity)
}

// RoomsUnavailableError reports an exam that would fit in the inventory but not in the rooms
// left free by the exams running at the same time
type RoomsUnavailableError struct {
	Exam       string
	Day        string
	Start      grid.Clock
	Enrollment int
	Free       int
}

func (err *RoomsUnavailableError) Error() string {
	return fmt.Sprintf("exam %v on %v at %v needs %v seats but only %v are free", err.Exam, err.Day, err.Start, err.Enrollment, err.Free)
}

type roomAssigner struct {
	rooms     []Classroom
	capacity  []int // Effective capacity per room
	small     int
	big       int
	total     int
	freeAfter []grid.Clock // Per room, reset every day
	occupied  []bool       // Per room, reset every cell
	rng       *rand.Rand
}

func newRoomAssigner(rooms []Classroom, rng *rand.Rand) *roomAssigner {
	capacity := lo.Map(rooms, func(room Classroom, _ int) int { return room.EffectiveCapacity() })
	assigner := &roomAssigner{
		rooms:     rooms,
		capacity:  capacity,
		total:     lo.Sum(capacity),
		freeAfter: make([]grid.Clock, len(rooms)),
		occupied:  make([]bool, len(rooms)),
		rng:       rng,
	}
	if len(capacity) > 0 {
		assigner.small = lo.Min(capacity)
		assigner.big = lo.Max(capacity)
	}
	return assigner
}

// Assign binds rooms to every occupied cell of state, day by day and slot by slot.
// Placement and cost are left untouched.
func (assigner *roomAssigner) Assign(state *grid.State, exams []Exam) error {
	g := state.Grid()
	for day := range g.DayCount() {
		clear(assigner.freeAfter)
		for slot := range g.SlotCount() {
			pos := grid.Position{Day: day, Slot: slot}
			cell := state.Cell(pos)
			if cell.Kind != grid.Occupied {
				continue
			}

			exam := exams[cell.Exam]
			rooms, err := assigner.pick(exam, g.DayName(day), g.Start(pos))
			if err != nil {
				return err
			}
			state.SetRooms(pos, lo.Map(rooms, func(room int, _ int) string { return assigner.rooms[room].Id }))
			for _, room := range rooms {
				assigner.freeAfter[room] = cell.End
			}
		}
	}
	return nil
}

func (assigner *roomAssigner) pick(exam Exam, day string, start grid.Clock) ([]int, error) {
	n := exam.Enrollment()
	if n > assigner.total {
		return nil, &CapacityExceededError{Exam: exam.Id, Enrollment: n, Capacity: assigner.total}
	}
	if n == 0 {
		return nil, nil
	}

	free := lo.Filter(lo.Range(len(assigner.rooms)), func(room int, _ int) bool {
		return assigner.freeAfter[room] <= start
	})

	//** Single room
	if n <= assigner.big {
		var tier []int
		if n <= assigner.small {
			tier = lo.Filter(free, func(room int, _ int) bool { return assigner.capacity[room] <= assigner.small })
		} else {
			tier = lo.Filter(free, func(room int, _ int) bool {
				return assigner.capacity[room] > assigner.small && assigner.capacity[room] >= n
			})
		}
		// The tier is taken by overlapping exams, any free room that fits will do
		if len(tier) == 0 {
			tier = lo.Filter(free, func(room int, _ int) bool { return assigner.capacity[room] >= n })
		}
		if len(tier) > 0 {
			return []int{tier[assigner.rng.IntN(len(tier))]}, nil
		}
	}

	//** Several rooms, largest first so that as few rooms as possible are used
	defer clear(assigner.occupied)
	slices.SortStableFunc(free, func(a, b int) int { return cmp.Compare(assigner.capacity[b], assigner.capacity[a]) })
	chosen := make([]int, 0)
	seats := 0
	for _, room := range free {
		if seats >= n {
			break
		}
		if assigner.occupied[room] {
			continue
		}
		assigner.occupied[room] = true
		chosen = append(chosen, room)
		seats += assigner.capacity[room]
	}
	if seats < n {
		return nil, &RoomsUnavailableError{Exam: exam.Id, Day: day, Start: start, Enrollment: n, Free: seats}
	}
	return chosen, nil
}

// CheckCapacity reports the first exam whose enrollment exceeds the effective capacity of all rooms together
func CheckCapacity(modelInput ModelInput) error {
	total := lo.SumBy(modelInput.Rooms, func(room Classroom) int { return room.EffectiveCapacity() })
	for _, exam := range modelInput.Exams {
		if exam.Enrollment() > total {
			return &CapacityExceededError{Exam: exam.Id, Enrollment: exam.Enrollment(), Capacity: total}
		}
	}
	return nil
}
