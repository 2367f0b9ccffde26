package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/limaJavier/examscheduling/pkg/model"
)

// ScheduleRow is one scheduled exam as written to the schedule CSV
type ScheduleRow struct {
	CourseCode string `csv:"course_code"`
	Day        string `csv:"day"`
	Start      string `csv:"start"`
	End        string `csv:"end"`
	Duration   int    `csv:"duration"`
	Rooms      string `csv:"rooms"`
	Professor  string `csv:"professor"`
	Enrollment int    `csv:"enrollment"`
}

// ScheduleRows lists the placed exams of state in grid order (day, then start time)
func ScheduleRows(state *grid.State, input model.ModelInput) []*ScheduleRow {
	g := state.Grid()
	rows := make([]*ScheduleRow, 0, len(input.Exams))
	for _, pos := range state.OccupiedCells() {
		cell := state.Cell(pos)
		exam := input.Exams[cell.Exam]
		rows = append(rows, &ScheduleRow{
			CourseCode: exam.Id,
			Day:        g.DayName(pos.Day),
			Start:      g.Start(pos).String(),
			End:        cell.End.String(),
			Duration:   exam.Duration,
			Rooms:      strings.Join(cell.Rooms, " "),
			Professor:  strings.Join(exam.Professors, " / "),
			Enrollment: exam.Enrollment(),
		})
	}
	return rows
}

// ExportSchedule writes the schedule to the CSV file at path, replacing it if it exists
func ExportSchedule(state *grid.State, input model.ModelInput, path string, delim rune) error {
	rows := ScheduleRows(state, input)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %v: %w", path, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	writer.Comma = delim
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("failed to write %v: %w", path, err)
	}
	return out.Close()
}
