package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/limaJavier/examscheduling/pkg/grid"
)

// SkipDirective is the blocked-hours directive meaning "no blocked hours"
const SkipDirective = "s"

// BlockedHour reserves the grid cell at (Day, Start) on behalf of a course scheduled outside the tool
type BlockedHour struct {
	CourseId string
	Day      string
	Start    grid.Clock
	Duration int
}

func (blocked BlockedHour) Label() string {
	return "BLOCKED BY " + blocked.CourseId
}

// ParseBlockedDirective parses a comma separated list of "courseId day HH.MM duration" tokens,
// e.g. "TIT101 Monday 09.00 60, TDL101 Wednesday 12.00 90"
func ParseBlockedDirective(directive string) ([]BlockedHour, error) {
	directive = strings.TrimSpace(directive)
	if directive == "" || directive == SkipDirective {
		return nil, nil
	}

	tokens := strings.Split(directive, ",")
	blocked := make([]BlockedHour, 0, len(tokens))
	for _, token := range tokens {
		fields := strings.Fields(token)
		if len(fields) != 4 {
			return nil, &InputError{
				Source: "blocked hours",
				Err:    fmt.Errorf("malformed token %q, expected \"courseId day HH.MM duration\"", strings.TrimSpace(token)),
			}
		}
		courseId, day, startStr, durationStr := fields[0], fields[1], fields[2], fields[3]

		start, err := grid.ParseClock(startStr)
		if err != nil {
			return nil, &InputError{Source: "blocked hours", Err: &grid.InvalidSlotError{Start: startStr}}
		}
		duration, err := strconv.Atoi(durationStr)
		if err != nil || duration <= 0 {
			return nil, &InputError{Source: "blocked hours", Err: &grid.InvalidDurationError{Duration: durationStr}}
		}

		blocked = append(blocked, BlockedHour{
			CourseId: courseId,
			Day:      day,
			Start:    start,
			Duration: duration,
		})
	}
	return blocked, nil
}

// ApplyBlockedHours marks every blocked hour on the state
func ApplyBlockedHours(state *grid.State, blocked []BlockedHour) error {
	for _, hour := range blocked {
		if err := state.Block(hour.Day, hour.Start, hour.Duration, hour.Label()); err != nil {
			return &InputError{Source: "blocked hours", Err: err}
		}
	}
	return nil
}
