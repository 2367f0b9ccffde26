package grid

import (
	"fmt"
	"slices"
	"time"
)

const (
	FirstSlot   Clock = 9 * 60  // 09.00
	LastSlot    Clock = 18 * 60 // 18.00, inclusive
	SlotMinutes       = 30
	OverflowDay       = "Sunday"
)

var BaseDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Clock is a time of day expressed in minutes after midnight
type Clock int

// ParseClock parses the "HH.MM" notation used by the schedule (e.g. "09.30")
func ParseClock(value string) (Clock, error) {
	parsed, err := time.Parse("15.04", value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse time %q: %w", value, err)
	}
	return Clock(parsed.Hour()*60 + parsed.Minute()), nil
}

func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d.%02d", int(c)/60, int(c)%60)
}

// Position addresses one cell of the grid
type Position struct {
	Day  int
	Slot int
}

// NoPosition is the position of an exam that has not been placed yet
var NoPosition = Position{Day: -1, Slot: -1}

func (p Position) Valid() bool {
	return p.Day >= 0 && p.Slot >= 0
}

// Grid is the lattice of (day, slot-start) pairs. It is immutable; adding the
// overflow day produces a new Grid.
type Grid struct {
	days  []string
	slots []Clock
}

// NewGrid returns the base lattice: 6 days with slots every 30 minutes from 09.00 to 18.00
func NewGrid() Grid {
	slots := make([]Clock, 0, int(LastSlot-FirstSlot)/SlotMinutes+1)
	for start := FirstSlot; start <= LastSlot; start = start.Add(SlotMinutes) {
		slots = append(slots, start)
	}
	return Grid{
		days:  slices.Clone(BaseDays),
		slots: slots,
	}
}

func (g Grid) withDay(day string) Grid {
	return Grid{
		days:  append(slices.Clone(g.days), day),
		slots: g.slots,
	}
}

func (g Grid) Days() []string {
	return slices.Clone(g.days)
}

func (g Grid) Slots() []Clock {
	return slices.Clone(g.slots)
}

func (g Grid) DayCount() int {
	return len(g.days)
}

func (g Grid) SlotCount() int {
	return len(g.slots)
}

// Len returns the number of cells in the grid
func (g Grid) Len() int {
	return len(g.days) * len(g.slots)
}

func (g Grid) DayName(day int) string {
	return g.days[day]
}

func (g Grid) DayIndex(day string) (int, bool) {
	index := slices.Index(g.days, day)
	return index, index >= 0
}

func (g Grid) SlotIndex(start Clock) (int, bool) {
	index, found := slices.BinarySearch(g.slots, start)
	return index, found
}

// Start returns the time of day at which the cell at pos begins
func (g Grid) Start(pos Position) Clock {
	return g.slots[pos.Slot]
}

// Index returns a unique index for a cell, ordered day first then slot
func (g Grid) Index(pos Position) int {
	return pos.Day*len(g.slots) + pos.Slot
}

// Position is the inverse of Index
func (g Grid) Position(index int) Position {
	return Position{Day: index / len(g.slots), Slot: index % len(g.slots)}
}
