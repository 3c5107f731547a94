package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"worklog/internal/domain"
	"worklog/internal/services"
)

// UserCommand handles account and hierarchy administration
type UserCommand struct {
	app *App
}

// NewUserCommand creates a new user command handler
func NewUserCommand(app *App) *UserCommand {
	return &UserCommand{app: app}
}

// Add registers a new account
func (c *UserCommand) Add(ctx context.Context, input services.RegisterInput) error {
	user, err := c.app.services.UserService.Register(ctx, input)
	if err != nil {
		return c.app.errors.Handle("add user", err)
	}

	c.app.printf("Added user %s (id %d)\n", user.Username, user.ID)
	return nil
}

// List prints every account with its manager
func (c *UserCommand) List(ctx context.Context) error {
	users, err := c.app.services.UserService.ListUsers(ctx)
	if err != nil {
		return c.app.errors.Handle("list users", err)
	}
	if len(users) == 0 {
		c.app.printf("No users found\n")
		return nil
	}

	names := usernames(users)
	for _, user := range users {
		line := user.Username
		if user.DisplayName != "" {
			line += " (" + user.DisplayName + ")"
		}
		if user.HasManager() {
			line += " reports to " + names[*user.ManagerID]
		}
		c.app.printf("%4d  %s\n", user.ID, line)
	}
	return nil
}

// SetManager assigns a manager, or clears it when manager is empty
func (c *UserCommand) SetManager(ctx context.Context, username, manager string) error {
	user, err := c.app.services.UserService.GetByUsername(ctx, username)
	if err != nil {
		return c.app.errors.Handle("set manager", err)
	}

	if strings.TrimSpace(manager) == "" {
		if err := c.app.services.UserService.SetManager(ctx, user.ID, nil); err != nil {
			return c.app.errors.Handle("clear manager", err)
		}
		c.app.printf("%s no longer reports to anyone\n", user.Username)
		return nil
	}

	boss, err := c.app.services.UserService.GetByUsername(ctx, manager)
	if err != nil {
		return c.app.errors.Handle("set manager", err)
	}
	if user.ReportsTo(boss.ID) {
		c.app.printf("%s already reports to %s\n", user.Username, boss.Username)
		return nil
	}
	if err := c.app.services.UserService.SetManager(ctx, user.ID, &boss.ID); err != nil {
		return c.app.errors.Handle("set manager", err)
	}

	c.app.printf("%s now reports to %s\n", user.Username, boss.Username)
	return nil
}

// Subordinates prints everyone below username in the hierarchy, or only
// their direct reports
func (c *UserCommand) Subordinates(ctx context.Context, username string, direct bool) error {
	user, err := c.app.services.UserService.GetByUsername(ctx, username)
	if err != nil {
		return c.app.errors.Handle("list subordinates", err)
	}

	list := c.app.services.UserService.ListSubordinates
	if direct {
		list = c.app.services.UserService.ListDirectReports
	}
	subordinates, err := list(ctx, user.ID)
	if err != nil {
		return c.app.errors.Handle("list subordinates", err)
	}
	if len(subordinates) == 0 {
		c.app.printf("%s has no subordinates\n", user.Username)
		return nil
	}
	for _, sub := range subordinates {
		c.app.printf("%4d  %s\n", sub.ID, sub.Username)
	}
	return nil
}

// Passwd changes a password after checking the current one
func (c *UserCommand) Passwd(ctx context.Context, username, current, replacement string) error {
	user, err := c.app.services.UserService.GetByUsername(ctx, username)
	if err != nil {
		return c.app.errors.Handle("change password", err)
	}
	if err := c.app.services.UserService.ChangePassword(ctx, user.ID, current, replacement); err != nil {
		return c.app.errors.Handle("change password", err)
	}

	c.app.printf("Password changed for %s\n", user.Username)
	return nil
}

func (r *RootCommand) newUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and the reporting hierarchy",
	}

	var input services.RegisterInput
	addCmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			input.Username = args[0]
			return NewUserCommand(r.app).Add(ctx, input)
		},
	}
	addCmd.Flags().StringVar(&input.Password, "password", "", "Password (8 to 72 bytes)")
	addCmd.Flags().StringVar(&input.DisplayName, "display-name", "", "Name shown in listings")
	addCmd.Flags().StringVar(&input.ManagerUsername, "manager", "", "Username of the new user's manager")
	_ = addCmd.MarkFlagRequired("password")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewUserCommand(r.app).List(ctx)
		},
	}

	setManagerCmd := &cobra.Command{
		Use:   "set-manager <username> [manager]",
		Short: "Set or clear a user's manager",
		Long: `Set the manager of a user. Leave out the manager to clear it.

Assignments that would make a user manage themselves, directly or through
others, are refused.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			manager := ""
			if len(args) == 2 {
				manager = args[1]
			}
			return NewUserCommand(r.app).SetManager(ctx, args[0], manager)
		},
	}

	var direct bool
	subordinatesCmd := &cobra.Command{
		Use:   "subordinates <username>",
		Short: "List everyone below a user in the hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewUserCommand(r.app).Subordinates(ctx, args[0], direct)
		},
	}
	subordinatesCmd.Flags().BoolVar(&direct, "direct", false, "Only list users who report to them directly")

	var current, replacement string
	passwdCmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewUserCommand(r.app).Passwd(ctx, args[0], current, replacement)
		},
	}
	passwdCmd.Flags().StringVar(&current, "current", "", "Current password")
	passwdCmd.Flags().StringVar(&replacement, "new", "", "New password")
	_ = passwdCmd.MarkFlagRequired("current")
	_ = passwdCmd.MarkFlagRequired("new")

	userCmd.AddCommand(addCmd, listCmd, setManagerCmd, subordinatesCmd, passwdCmd)
	return userCmd
}

// usernames maps user ids to usernames for listings
func usernames(users []domain.User) map[int64]string {
	names := make(map[int64]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Username
	}
	return names
}
