package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/samber/lo"
)

// OtherYear groups course codes whose first digit is not 1 to 4
const OtherYear = 0

var years = []int{1, 2, 3, 4, OtherYear}

type Entry struct {
	Course string
	Day    string
	Start  grid.Clock
	End    grid.Clock
	Rooms  []string
}

func (entry Entry) Time() string {
	return entry.Start.String() + "-" + entry.End.String()
}

type Group struct {
	Year    int
	Entries []Entry
}

func (group Group) Title() string {
	if group.Year == OtherYear {
		return "OTHER COURSES"
	}
	return fmt.Sprintf("YEAR %d", group.Year)
}

// Year returns the first digit found in a course code, e.g. 2 for "CENG214"
func Year(course string) int {
	for _, r := range course {
		if unicode.IsDigit(r) {
			if year := int(r - '0'); year >= 1 && year <= 4 {
				return year
			}
			return OtherYear
		}
	}
	return OtherYear
}

// Groups splits the placed exams by year, keeping grid order inside each group.
// The other group is omitted when empty.
func Groups(state *grid.State, input model.ModelInput) []Group {
	g := state.Grid()
	entries := lo.Map(state.OccupiedCells(), func(pos grid.Position, _ int) Entry {
		cell := state.Cell(pos)
		return Entry{
			Course: input.Exams[cell.Exam].Id,
			Day:    g.DayName(pos.Day),
			Start:  g.Start(pos),
			End:    cell.End,
			Rooms:  cell.Rooms,
		}
	})
	byYear := lo.GroupBy(entries, func(entry Entry) int { return Year(entry.Course) })

	groups := make([]Group, 0, len(years))
	for _, year := range years {
		if year == OtherYear && len(byYear[year]) == 0 {
			continue
		}
		groups = append(groups, Group{Year: year, Entries: byYear[year]})
	}
	return groups
}

func Blocked(state *grid.State) []Entry {
	g := state.Grid()
	return lo.Map(state.BlockedCells(), func(pos grid.Position, _ int) Entry {
		cell := state.Cell(pos)
		return Entry{
			Course: cell.Label,
			Day:    g.DayName(pos.Day),
			Start:  g.Start(pos),
			End:    cell.End,
		}
	})
}

const width = 96

func rule(title string) string {
	if title == "" {
		return strings.Repeat("-", width)
	}
	title = " " + title + " "
	left := (width - len(title)) / 2
	return strings.Repeat("-", left) + title + strings.Repeat("-", width-left-len(title))
}

func row(course, day, time, rooms string) string {
	return fmt.Sprintf(" %-20s | %-10s | %-11s | %s", course, day, time, rooms)
}

// WriteText renders the schedule as a text table: one section per year, then the blocked hours
func WriteText(w io.Writer, state *grid.State, input model.ModelInput) error {
	var builder strings.Builder
	builder.WriteString(rule("THE SCHEDULE") + "\n")
	builder.WriteString(row("Course Code", "Day", "Time", "Rooms") + "\n")
	for _, group := range Groups(state, input) {
		builder.WriteString(rule(group.Title()) + "\n")
		for _, entry := range group.Entries {
			builder.WriteString(row(entry.Course, entry.Day, entry.Time(), strings.Join(entry.Rooms, ", ")) + "\n")
		}
	}
	builder.WriteString(rule("BLOCKED HOURS") + "\n")
	for _, entry := range Blocked(state) {
		builder.WriteString(row(entry.Course, entry.Day, entry.Time(), "") + "\n")
	}
	builder.WriteString(rule("") + "\n")

	_, err := io.WriteString(w, builder.String())
	return err
}

// WriteInfeasible renders the best schedule of a search that did not converge under an INFEASIBLE banner
func WriteInfeasible(w io.Writer, result model.Result, input model.ModelInput) error {
	banner := rule("INFEASIBLE") + "\n" +
		fmt.Sprintf(" search stopped (%v) after %v iterations with cost %v; exams below still overlap\n", result.Reason, result.Iterations, result.Cost)
	if _, err := io.WriteString(w, banner); err != nil {
		return err
	}
	return WriteText(w, result.State, input)
}
