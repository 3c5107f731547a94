package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"worklog/internal/domain"
)

// Column widths in millimetres on a portrait A4 page
var pdfColumns = []float64{30, 120, 40}

// WritePDF renders the tasks as a single table
func WritePDF(w io.Writer, tasks []domain.Task, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	for i, title := range Header {
		pdf.CellFormat(pdfColumns[i], 7, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	loc := opts.location()
	for _, task := range tasks {
		cells := record(task, loc)
		// Long descriptions are cut to fit the cell
		cells[1] = task.String()
		for i, value := range cells {
			align := "L"
			if i == 2 {
				align = "R"
			}
			pdf.CellFormat(pdfColumns[i], 6, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
