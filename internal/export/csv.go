package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"worklog/internal/domain"
)

// WriteCSV writes the header row followed by one record per task
func WriteCSV(w io.Writer, tasks []domain.Task, opts Options) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	loc := opts.location()
	for _, task := range tasks {
		if err := writer.Write(record(task, loc)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
