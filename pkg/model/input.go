package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Enrollment is one (student, course) pairing as found in the class list
type Enrollment struct {
	StudentId string `csv:"StudentID" mapstructure:"studentId" validate:"required"`
	Professor string `csv:"Professor Name" mapstructure:"professor" validate:"required"`
	CourseId  string `csv:"CourseID" mapstructure:"courseId" validate:"required"`
	Duration  int    `csv:"ExamDuration(in mins)" mapstructure:"duration" validate:"gt=0"`
}

type Classroom struct {
	Id       string `csv:"RoomID" mapstructure:"id" validate:"required"`
	Capacity int    `csv:"Capacity" mapstructure:"capacity" validate:"gt=0"`
}

// EffectiveCapacity is the number of seats usable during an exam (every other seat stays empty)
func (room Classroom) EffectiveCapacity() int {
	return room.Capacity / 2
}

type RawModelInput struct {
	Enrollments []Enrollment `mapstructure:"enrollments" validate:"required,min=1,dive"`
	Rooms       []Classroom  `mapstructure:"rooms" validate:"required,min=1,dive"`
	Blocked     string       `mapstructure:"blocked"`
}

// Exam is the exam of one course
type Exam struct {
	Id         string
	Professors []string // Sorted set, normally a single name
	Duration   int      // Minutes
	Students   []string // Sorted set of distinct student ids
}

func (exam Exam) Enrollment() int {
	return len(exam.Students)
}

type ModelInput struct {
	Exams   []Exam // Sorted by id; an exam's position in this slice is its index in the grid state
	Rooms   []Classroom
	Blocked []BlockedHour
}

// InputError reports input records that cannot feed a search
type InputError struct {
	Source string
	Err    error
}

func (err *InputError) Error() string {
	return fmt.Sprintf("invalid %v: %v", err.Source, err.Err)
}

func (err *InputError) Unwrap() error {
	return err.Err
}

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, &InputError{Source: "input file", Err: err}
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, &InputError{Source: "input file", Err: err}
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return ModelInput{}, &InputError{Source: "input file", Err: err}
	}
	return ProcessRawInput(rawInput)
}

func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	if err := validator.New().Struct(rawInput); err != nil {
		return ModelInput{}, &InputError{Source: "records", Err: err}
	}

	//** Manage exams
	exams := make(map[string]*Exam)
	students := make(map[string]map[string]bool)
	professors := make(map[string]map[string]bool)
	for _, enrollment := range rawInput.Enrollments {
		exam, ok := exams[enrollment.CourseId]
		// Initialize exam if it does not exist
		if !ok {
			exam = &Exam{Id: enrollment.CourseId, Duration: enrollment.Duration}
			exams[enrollment.CourseId] = exam
			students[enrollment.CourseId] = make(map[string]bool)
			professors[enrollment.CourseId] = make(map[string]bool)
		}

		// Make sure every row of a course agrees on the exam duration
		if exam.Duration != enrollment.Duration {
			return ModelInput{}, &InputError{
				Source: "records",
				Err:    fmt.Errorf("course %q has conflicting exam durations: %d and %d minutes", exam.Id, exam.Duration, enrollment.Duration),
			}
		}

		students[enrollment.CourseId][enrollment.StudentId] = true
		professors[enrollment.CourseId][enrollment.Professor] = true
	}

	ids := lo.Keys(exams)
	slices.Sort(ids)
	input := ModelInput{
		Exams: lo.Map(ids, func(id string, _ int) Exam {
			exam := *exams[id]
			exam.Students = sortedSet(students[id])
			exam.Professors = sortedSet(professors[id])
			return exam
		}),
	}

	//** Manage rooms
	// Make sure room ids are unique
	if duplicates := lo.FindDuplicatesBy(rawInput.Rooms, func(room Classroom) string { return room.Id }); len(duplicates) > 0 {
		return ModelInput{}, &InputError{
			Source: "rooms",
			Err:    fmt.Errorf("duplicate room ids: %v", lo.Map(duplicates, func(room Classroom, _ int) string { return room.Id })),
		}
	}
	input.Rooms = slices.Clone(rawInput.Rooms)

	//** Manage blocked hours
	blocked, err := ParseBlockedDirective(rawInput.Blocked)
	if err != nil {
		return ModelInput{}, err
	}
	input.Blocked = blocked

	// Blocked hours must fit in the grid before any search begins
	if _, err := NewEmptyState(input); err != nil {
		return ModelInput{}, err
	}

	return input, nil
}

func sortedSet(set map[string]bool) []string {
	values := lo.Keys(set)
	slices.Sort(values)
	return values
}
