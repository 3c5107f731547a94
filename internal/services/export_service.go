package services

import (
	"context"
	"io"
	"time"

	"worklog/internal/domain"
	"worklog/internal/export"
	"worklog/internal/logging"
	"worklog/internal/weekly"
)

// exportServiceImpl implements the ExportService interface
type exportServiceImpl struct {
	taskService TaskService
	options     export.Options
}

// NewExportService creates a new ExportService instance
func NewExportService(taskService TaskService, loc *time.Location, columnWidth float64) ExportService {
	return &exportServiceImpl{
		taskService: taskService,
		options: export.Options{
			Location:    loc,
			ColumnWidth: columnWidth,
		},
	}
}

// Export writes the actor's tasks, or only those of week when given, to w.
// The format is resolved before anything is written.
func (e *exportServiceImpl) Export(ctx context.Context, actorID int64, format string, week *weekly.Week, w io.Writer) (export.Format, error) {
	f, err := export.Lookup(format)
	if err != nil {
		return export.Format{}, err
	}

	var list []domain.Task
	if week != nil {
		list, err = e.taskService.ListWeek(ctx, actorID, *week)
	} else {
		list, err = e.taskService.ListAll(ctx, actorID)
	}
	if err != nil {
		return export.Format{}, err
	}

	logging.Debugf("exporting %d tasks for user %d as %s", len(list), actorID, f.Name)
	if err := f.Write(w, list, e.options); err != nil {
		return export.Format{}, err
	}
	return f, nil
}
