package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// ReportCommand prints weekly totals for a user and their team
type ReportCommand struct {
	app *App
}

// NewReportCommand creates a new report command handler
func NewReportCommand(app *App) *ReportCommand {
	return &ReportCommand{app: app}
}

// Execute prints the week summary
func (c *ReportCommand) Execute(ctx context.Context, username, rawWeek string) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("build report", err)
	}
	week, err := c.app.services.TaskService.ParseWeek(rawWeek)
	if err != nil {
		return c.app.errors.Handle("build report", err)
	}

	summary, err := c.app.services.ReportingService.WeekSummary(ctx, user.ID, week)
	if err != nil {
		return c.app.errors.Handle("build report", err)
	}

	width := len("Total")
	for _, total := range summary.Users {
		if len(total.Username) > width {
			width = len(total.Username)
		}
	}

	c.app.printf("Week %s\n", summary.Week)
	c.app.printf("%s\n", strings.Repeat("=", width+25))
	for _, total := range summary.Users {
		c.app.printf("%-*s  %4d tasks  %6d mins\n", width, total.Username, total.TaskCount, total.Minutes)
	}
	c.app.printf("%s\n", strings.Repeat("-", width+25))
	c.app.printf("%-*s  %18d mins\n", width, "Total", summary.TotalMinutes)
	return nil
}

func (r *RootCommand) newReportCommand() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show weekly totals for you and everyone below you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewReportCommand(r.app).Execute(ctx, r.username, week)
		},
	}
	cmd.Flags().StringVarP(&week, "week", "w", "", "ISO week number (default: current week)")
	return cmd
}
