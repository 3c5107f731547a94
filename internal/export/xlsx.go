package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"worklog/internal/domain"
)

// SheetName is the worksheet holding exported tasks
const SheetName = "Tasks"

// Row is one task row read back from a workbook
type Row struct {
	Date        string
	Description string
	Minutes     int
}

// WriteXLSX writes a workbook with a single Tasks sheet: the header row,
// then one row per task. No tasks produce a header-only sheet.
func WriteXLSX(w io.Writer, tasks []domain.Task, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, title := range Header {
		header[i] = title
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	loc := opts.location()
	for i, task := range tasks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			task.CreatedAt.In(loc).Format(DateLayout),
			task.Description,
			task.Minutes,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, opts.columnWidth()); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return f.Write(w)
}

// ReadXLSX parses a workbook written by WriteXLSX. Columns are read by
// position and the header row is skipped.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", SheetName, err)
	}

	result := make([]Row, 0, len(rows))
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		row := Row{}
		if len(cells) > 0 {
			row.Date = cells[0]
		}
		if len(cells) > 1 {
			row.Description = cells[1]
		}
		if len(cells) > 2 && cells[2] != "" {
			minutes, err := strconv.Atoi(cells[2])
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid minutes %q", i+1, cells[2])
			}
			row.Minutes = minutes
		}
		result = append(result, row)
	}
	return result, nil
}
