package model

import (
	"fmt"
	"strings"

	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/samber/lo"
)

type CostMode int

const (
	// CostSimple counts every pair of overlapping exams
	CostSimple CostMode = iota
	// CostConflictAware counts every pair of overlapping exams plus the students and professors they share
	CostConflictAware
)

func (mode CostMode) String() string {
	switch mode {
	case CostSimple:
		return "simple"
	case CostConflictAware:
		return "conflict"
	}
	return fmt.Sprintf("CostMode(%d)", int(mode))
}

func ParseCostMode(value string) (CostMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "simple":
		return CostSimple, nil
	case "conflict", "conflict-aware":
		return CostConflictAware, nil
	}
	return CostSimple, fmt.Errorf("unknown cost mode %q", value)
}

type costEvaluator interface {
	// Scores the whole state. Lower is better and 0 is feasible
	Cost(state *grid.State) int

	// Returns the change of cost caused by move. It must be called on the state
	// after the move has been applied
	Delta(state *grid.State, move Move) int
}

// pairCostEvaluator charges weights[a][b] for every overlap unit between exams a and b.
// An overlap unit is an ordered pair of cells (C, O) on the same day where O starts
// strictly after C starts and strictly before C ends.
type pairCostEvaluator struct {
	durations       []int
	weights         [][]int
	blockedOverlaps bool // Overlaps with blocked intervals cost one unit
}

func newCostEvaluator(input ModelInput, mode CostMode, blockedOverlaps bool) costEvaluator {
	evaluator := &pairCostEvaluator{
		durations:       lo.Map(input.Exams, func(exam Exam, _ int) int { return exam.Duration }),
		blockedOverlaps: blockedOverlaps,
	}

	switch mode {
	case CostConflictAware:
		evaluator.weights = conflictWeights(input.Exams)
	default:
		evaluator.weights = overlapWeights(len(input.Exams))
	}
	return evaluator
}

func overlapWeights(exams int) [][]int {
	weights := make([][]int, exams)
	for i := range weights {
		weights[i] = make([]int, exams)
		for j := range weights[i] {
			if i != j {
				weights[i][j] = 1
			}
		}
	}
	return weights
}

// conflictWeights precomputes, for each pair of exams, one unit for the collision itself plus the number of
// shared students and the number of shared professors
func conflictWeights(exams []Exam) [][]int {
	weights := overlapWeights(len(exams))

	// Index exams by student so that only pairs with a student in common are visited
	examsPerStudent := make(map[string][]int)
	for index, exam := range exams {
		for _, student := range exam.Students {
			examsPerStudent[student] = append(examsPerStudent[student], index)
		}
	}
	for _, indices := range examsPerStudent {
		for i := range len(indices) - 1 {
			for j := i + 1; j < len(indices); j++ {
				weights[indices[i]][indices[j]]++
				weights[indices[j]][indices[i]]++
			}
		}
	}

	for i := range len(exams) - 1 {
		for j := i + 1; j < len(exams); j++ {
			shared := len(lo.Intersect(exams[i].Professors, exams[j].Professors))
			weights[i][j] += shared
			weights[j][i] += shared
		}
	}

	return weights
}

func (evaluator *pairCostEvaluator) Cost(state *grid.State) int {
	g := state.Grid()
	cost := 0
	for day := range g.DayCount() {
		for slot := range g.SlotCount() {
			pos := grid.Position{Day: day, Slot: slot}
			cell := state.Cell(pos)
			if !evaluator.counts(cell) {
				continue
			}
			// Slots are sorted, so only later slots can start strictly inside this cell's interval
			for other := slot + 1; other < g.SlotCount(); other++ {
				otherPos := grid.Position{Day: day, Slot: other}
				if g.Start(otherPos) >= cell.End {
					break
				}
				cost += evaluator.weight(cell, state.Cell(otherPos))
			}
		}
	}
	return cost
}

func (evaluator *pairCostEvaluator) Delta(state *grid.State, move Move) int {
	return evaluator.contribution(state, move.Exam, move.To) - evaluator.contribution(state, move.Exam, move.From)
}

// contribution returns the cost exam would add if it sat at pos, ignoring the cell the exam actually holds
func (evaluator *pairCostEvaluator) contribution(state *grid.State, exam int, pos grid.Position) int {
	g := state.Grid()
	start := g.Start(pos)
	end := start.Add(evaluator.durations[exam])
	self := grid.Cell{Kind: grid.Occupied, Exam: exam, End: end}

	total := 0
	for slot := range g.SlotCount() {
		if slot == pos.Slot {
			continue
		}
		otherPos := grid.Position{Day: pos.Day, Slot: slot}
		other := state.Cell(otherPos)
		if other.Kind == grid.Occupied && other.Exam == exam {
			continue
		}

		otherStart := g.Start(otherPos)
		switch {
		case slot > pos.Slot && otherStart < end:
			total += evaluator.weight(self, other)
		case slot < pos.Slot && start < other.End:
			total += evaluator.weight(other, self)
		}
	}
	return total
}

// counts reports whether cell takes part in overlap detection
func (evaluator *pairCostEvaluator) counts(cell grid.Cell) bool {
	return cell.Kind == grid.Occupied || (evaluator.blockedOverlaps && cell.Kind == grid.Blocked)
}

func (evaluator *pairCostEvaluator) weight(cell, other grid.Cell) int {
	if !evaluator.counts(cell) || !evaluator.counts(other) {
		return 0
	}
	if cell.Kind == grid.Blocked && other.Kind == grid.Blocked {
		return 0
	}
	if cell.Kind == grid.Blocked || other.Kind == grid.Blocked {
		return 1
	}
	return evaluator.weights[cell.Exam][other.Exam]
}
