package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examscheduling/pkg/model"
)

// LoadEnrollments reads the class list: one row per student and course
func LoadEnrollments(path string, delim rune) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	if err := unmarshalFile(path, delim, &enrollments); err != nil {
		return nil, &model.InputError{Source: "enrollments", Err: err}
	}
	return enrollments, nil
}

// LoadClassrooms reads the room inventory: room id and nominal capacity
func LoadClassrooms(path string, delim rune) ([]model.Classroom, error) {
	classrooms := []model.Classroom{}
	if err := unmarshalFile(path, delim, &classrooms); err != nil {
		return nil, &model.InputError{Source: "rooms", Err: err}
	}
	return classrooms, nil
}

func unmarshalFile(path string, delim rune, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %v: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalCSV(newReader(file, delim), out); err != nil {
		return fmt.Errorf("failed to parse data from %v: %w", path, err)
	}
	return nil
}

func newReader(in io.Reader, delim rune) gocsv.CSVReader {
	r := csv.NewReader(in)
	r.Comma = delim
	r.TrimLeadingSpace = true
	return r
}
