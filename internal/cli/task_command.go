package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worklog/internal/domain"
	"worklog/internal/services"
	"worklog/internal/validation"
)

// TaskCommand handles logging, editing and listing tasks
type TaskCommand struct {
	app *App
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{app: app}
}

// Add logs a task for username
func (c *TaskCommand) Add(ctx context.Context, username, description string, minutes int) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("log task", err)
	}

	task, err := c.app.services.TaskService.CreateTask(ctx, user.ID, description, minutes)
	if err != nil {
		return c.app.errors.Handle("log task", err)
	}

	c.app.printf("Logged task %d: %s (%d mins)\n", task.ID, task.Description, task.Minutes)
	return nil
}

// Edit replaces the description and/or minutes of a task. Nil values keep
// the current content.
func (c *TaskCommand) Edit(ctx context.Context, username, rawID string, description *string, minutes *int) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("edit task", err)
	}
	id, err := validation.ParseTaskID(rawID)
	if err != nil {
		return c.app.errors.Handle("edit task", err)
	}

	current, err := c.app.services.TaskService.GetTask(ctx, user.ID, id)
	if err != nil {
		return c.app.errors.HandleActor("edit task", user.Username, err)
	}

	newDescription, newMinutes := current.Description, current.Minutes
	if description != nil {
		newDescription = *description
	}
	if minutes != nil {
		newMinutes = *minutes
	}

	task, err := c.app.services.TaskService.UpdateTask(ctx, user.ID, id, newDescription, newMinutes)
	if err != nil {
		return c.app.errors.HandleActor("edit task", user.Username, err)
	}

	c.app.printf("Updated task %d: %s (%d mins)\n", task.ID, task.Description, task.Minutes)
	return nil
}

// Show prints one task the user may view
func (c *TaskCommand) Show(ctx context.Context, username, rawID string) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("show task", err)
	}
	id, err := validation.ParseTaskID(rawID)
	if err != nil {
		return c.app.errors.Handle("show task", err)
	}

	task, err := c.app.services.TaskService.GetTask(ctx, user.ID, id)
	if err != nil {
		return c.app.errors.HandleActor("show task", user.Username, err)
	}
	owner, err := c.app.services.UserService.GetUser(ctx, task.OwnerID)
	if err != nil {
		return c.app.errors.Handle("show task", err)
	}

	view := c.app.services.TaskService.View(user.ID, *task)
	c.app.printf("Task:        %d\n", task.ID)
	c.app.printf("Owner:       %s\n", owner)
	c.app.printf("Description: %s\n", task.Description)
	c.app.printf("Time spent:  %d mins (%s)\n", task.Minutes, task.Duration())
	c.app.printf("Created:     %s\n", c.app.formatTime(task.CreatedAt))
	c.app.printf("Updated:     %s\n", c.app.formatTime(task.UpdatedAt))
	switch {
	case view.Editable:
		c.app.printf("Editable until %s\n", c.app.formatTime(view.EditDeadline))
	case task.OwnedBy(user.ID):
		c.app.printf("Read only: the %s edit window closed at %s\n",
			c.app.services.Policy.EditWindow(), c.app.formatTime(view.EditDeadline))
	default:
		c.app.printf("Read only\n")
	}
	return nil
}

// List prints the user's own tasks for a week
func (c *TaskCommand) List(ctx context.Context, username, rawWeek string) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("list tasks", err)
	}
	week, err := c.app.services.TaskService.ParseWeek(rawWeek)
	if err != nil {
		return c.app.errors.Handle("list tasks", err)
	}

	tasks, err := c.app.services.TaskService.ListWeek(ctx, user.ID, week)
	if err != nil {
		return c.app.errors.Handle("list tasks", err)
	}

	c.app.printf("Tasks for %s, week %s\n", user.Username, week)
	c.printTasks(user.ID, tasks, nil)
	return nil
}

// Team prints the tasks of everyone below the user for a week
func (c *TaskCommand) Team(ctx context.Context, username, rawWeek string) error {
	user, err := c.app.actor(ctx, username)
	if err != nil {
		return c.app.errors.Handle("list team tasks", err)
	}
	week, err := c.app.services.TaskService.ParseWeek(rawWeek)
	if err != nil {
		return c.app.errors.Handle("list team tasks", err)
	}

	tasks, err := c.app.services.TaskService.ListSubordinatesWeek(ctx, user.ID, week)
	if err != nil {
		return c.app.errors.Handle("list team tasks", err)
	}
	users, err := c.app.services.UserService.ListUsers(ctx)
	if err != nil {
		return c.app.errors.Handle("list team tasks", err)
	}

	c.app.printf("Team tasks for %s, week %s\n", user.Username, week)
	c.printTasks(user.ID, tasks, usernames(users))
	return nil
}

// printTasks writes one line per task. Owners are shown when names is set.
func (c *TaskCommand) printTasks(actorID int64, tasks []domain.Task, names map[int64]string) {
	if len(tasks) == 0 {
		c.app.printf("No tasks found\n")
		return
	}

	total := 0
	for _, task := range tasks {
		view := c.app.services.TaskService.View(actorID, task)
		line := c.formatTask(view)
		if names != nil {
			line = names[task.OwnerID] + "  " + line
		}
		c.app.printf("%s\n", line)
		total += task.Minutes
	}
	c.app.printf("Total: %d mins\n", total)
}

func (c *TaskCommand) formatTask(view services.TaskView) string {
	line := fmt.Sprintf("%s  #%d  %s (%d mins)", c.app.formatTime(view.Task.CreatedAt), view.Task.ID, view.Task.Description, view.Task.Minutes)
	if view.Editable {
		line += " *"
	}
	return line
}

func (r *RootCommand) newTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Log and review tasks",
		Long: `Log and review tasks as the user given by --user.

Tasks marked * in listings can still be edited.`,
	}

	var rawMinutes string
	addCmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Log a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			minutes, err := validation.ParseMinutes(rawMinutes)
			if err != nil {
				return r.app.errors.Handle("log task", err)
			}
			return NewTaskCommand(r.app).Add(ctx, r.username, strings.Join(args, " "), minutes)
		},
	}
	addCmd.Flags().StringVarP(&rawMinutes, "minutes", "m", "", "Time spent in minutes")
	_ = addCmd.MarkFlagRequired("minutes")

	var editDescription, editMinutes string
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit one of your tasks while it is still editable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			var description *string
			if cmd.Flags().Changed("description") {
				description = &editDescription
			}
			var minutes *int
			if cmd.Flags().Changed("minutes") {
				parsed, err := validation.ParseMinutes(editMinutes)
				if err != nil {
					return r.app.errors.Handle("edit task", err)
				}
				minutes = &parsed
			}
			return NewTaskCommand(r.app).Edit(ctx, r.username, args[0], description, minutes)
		},
	}
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVarP(&editMinutes, "minutes", "m", "", "New time spent in minutes")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task you own or manage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewTaskCommand(r.app).Show(ctx, r.username, args[0])
		},
	}

	var listWeek string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewTaskCommand(r.app).List(ctx, r.username, listWeek)
		},
	}
	listCmd.Flags().StringVarP(&listWeek, "week", "w", "", "ISO week number (default: current week)")

	var teamWeek string
	teamCmd := &cobra.Command{
		Use:   "team",
		Short: "List your subordinates' tasks for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewTaskCommand(r.app).Team(ctx, r.username, teamWeek)
		},
	}
	teamCmd.Flags().StringVarP(&teamWeek, "week", "w", "", "ISO week number (default: current week)")

	taskCmd.AddCommand(addCmd, editCmd, showCmd, listCmd, teamCmd)
	return taskCmd
}
