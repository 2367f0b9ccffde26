package grid

import (
	"errors"
	"fmt"
)

var ErrOverflowDayAdded = errors.New("overflow day has already been added")

type InvalidDayError struct {
	Day string
}

func (err *InvalidDayError) Error() string {
	return fmt.Sprintf("invalid day: %q", err.Day)
}

// InvalidSlotError reports a start time that is not an exact grid slot
type InvalidSlotError struct {
	Start string
}

func (err *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalid start time: %q", err.Start)
}

type InvalidDurationError struct {
	Duration string
}

func (err *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration: %q", err.Duration)
}

// CellTakenError reports an attempt to block or fill a cell that is not empty
type CellTakenError struct {
	Day   string
	Start Clock
}

func (err *CellTakenError) Error() string {
	return fmt.Sprintf("cell %v %v is not empty", err.Day, err.Start)
}

// NoEmptyCellError is returned when every non-blocked cell already holds an exam
type NoEmptyCellError struct{}

func (err NoEmptyCellError) Error() string {
	return "no empty cell left in the grid"
}
