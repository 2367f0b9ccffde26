package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/limaJavier/examscheduling/pkg/grid"
	"github.com/limaJavier/examscheduling/pkg/model"
)

var (
	headers = []string{"Course Code", "Day", "Time", "Rooms"}
	widths  = []float64{50, 35, 40, 65}
)

// RenderPDF draws the same sections as WriteText on A4 pages
func RenderPDF(state *grid.State, input model.ModelInput, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	section := func(name string, entries []Entry) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 9, name, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		for i, header := range headers {
			pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, entry := range entries {
			values := []string{entry.Course, entry.Day, entry.Time(), strings.Join(entry.Rooms, ", ")}
			for i, value := range values {
				pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	for _, group := range Groups(state, input) {
		section(group.Title(), group.Entries)
	}
	section("BLOCKED HOURS", Blocked(state))

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func WritePDF(state *grid.State, input model.ModelInput, path string) error {
	content, err := RenderPDF(state, input, "Exam Schedule")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
