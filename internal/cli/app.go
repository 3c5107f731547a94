package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"worklog/internal/config"
	"worklog/internal/domain"
	"worklog/internal/errors"
	"worklog/internal/services"
)

// App carries what every command handler needs
type App struct {
	services *services.ServiceContainer
	config   *config.Config
	location *time.Location
	out      io.Writer
	errors   *ErrorHandler
}

// NewApp creates a new CLI application over a wired service container
func NewApp(container *services.ServiceContainer, cfg *config.Config, loc *time.Location, out io.Writer) *App {
	if loc == nil {
		loc = time.Local
	}
	return &App{
		services: container,
		config:   cfg,
		location: loc,
		out:      out,
		errors:   NewErrorHandler(),
	}
}

// actor resolves the --user flag. The CLI is trusted local administration,
// so no password is asked for.
func (a *App) actor(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.NewInvalidInputError("user", username, "--user is required for this command")
	}
	return a.services.UserService.GetByUsername(ctx, username)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) formatTime(t time.Time) string {
	return t.In(a.location).Format("2006-01-02 15:04")
}
