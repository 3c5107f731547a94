package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"worklog/internal/export"
	"worklog/internal/weekly"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app *App
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app}
}

// Execute writes the user's tasks in format to path, or to the command
// output when path is empty. An empty rawWeek exports every task.
func (c *ExportCommand) Execute(ctx context.Context, username, format, rawWeek, path string) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("export tasks", err)
	}

	if format == "" {
		format = c.app.config.Export.DefaultFormat
	}
	// resolve the format before creating any file
	if _, err := export.Lookup(format); err != nil {
		return c.app.errors.Handle("export tasks", err)
	}

	var week *weekly.Week
	if rawWeek != "" {
		parsed, err := c.app.services.TaskService.ParseWeek(rawWeek)
		if err != nil {
			return c.app.errors.Handle("export tasks", err)
		}
		week = &parsed
	}

	var w io.Writer = c.app.out
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return c.app.errors.Handle("export tasks", err)
		}
		defer file.Close()
		w = file
	}

	f, err := c.app.services.ExportService.Export(ctx, user.ID, format, week, w)
	if err != nil {
		return c.app.errors.Handle("export tasks", err)
	}

	if path != "" {
		c.app.printf("Exported %s to %s\n", f.Name, path)
	}
	return nil
}

func (r *RootCommand) newExportCommand() *cobra.Command {
	var week, output string

	cmd := &cobra.Command{
		Use:   "export [format]",
		Short: "Export your tasks",
		Long: fmt.Sprintf(`Export your tasks as a file.

Supported formats: %v (aliases: excel, txt).
Binary formats such as xlsx and pdf should be written with --output.

Examples:
  worklog --user bob export text
  worklog --user bob export excel --output tasks.xlsx
  worklog --user bob export csv --week 3 > week3.csv`, export.Names()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			format := ""
			if len(args) == 1 {
				format = args[0]
			}
			return NewExportCommand(r.app).Execute(ctx, r.username, format, week, output)
		},
	}
	cmd.Flags().StringVarP(&week, "week", "w", "", "Only export this ISO week")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of standard output")
	cmd.Flags().Float64("column-width", 0, "Spreadsheet column width (overrides WORKLOG_EXPORT_COLUMN_WIDTH)")
	return cmd
}
