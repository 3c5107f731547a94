package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"worklog/internal/clock"
	"worklog/internal/config"
	"worklog/internal/logging"
	"worklog/internal/repository/sqlite"
	"worklog/internal/services"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd        *cobra.Command
	clock      clock.Clock
	configFile string
	username   string

	config *config.Config
	repo   sqlite.Repository
	app    *App
}

// Option customises a RootCommand
type Option func(*RootCommand)

// WithClock replaces the wall clock, mainly for tests
func WithClock(clk clock.Clock) Option {
	return func(r *RootCommand) {
		r.clock = clk
	}
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(r *RootCommand) {
		r.cmd.SetOut(w)
		r.cmd.SetErr(w)
	}
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(opts ...Option) *RootCommand {
	root := &RootCommand{clock: clock.System{}}

	root.cmd = &cobra.Command{
		Use:   "worklog",
		Short: "Log work, review your team's week, export timesheets",
		Long: `worklog records tasks and the minutes spent on them.

Managers can review the tasks of everyone below them in the reporting
hierarchy. Tasks can be edited by their owner for seven days after they
were logged.

EXAMPLES:
  worklog user add alice --password s3cret-pass
  worklog user add bob --password s3cret-pass --manager alice
  worklog --user bob task add "Fix login bug" --minutes 45
  worklog --user alice task team --week 3
  worklog --user bob export excel --output tasks.xlsx
  worklog serve --addr :8080

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > WORKLOG_* environment variables > config file > defaults

    WORKLOG_DATABASE_DIR                 Database directory (default: ~/.worklog)
    WORKLOG_DATABASE_FILENAME            Database filename (default: worklog.db)
    WORKLOG_POLICY_EDIT_WINDOW           Edit window (default: 168h)
    WORKLOG_CALENDAR_TIMEZONE            Timezone weeks are computed in (default: Local)
    WORKLOG_SERVER_ADDR                  HTTP listen address (default: :8080)
    WORKLOG_DEBUG                        Enable debug output`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	for _, opt := range opts {
		opt(root)
	}
	return root
}

// Command exposes the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command and releases the database afterwards
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	defer r.close()
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.StringVar(&r.configFile, "config", "", "Path to a YAML config file (default ~/.worklog/config.yaml if present)")
	flags.StringVarP(&r.username, "user", "u", os.Getenv("WORKLOG_USER"), "Act as this user (defaults to WORKLOG_USER)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides WORKLOG_DATABASE_DIR)")
	flags.String("db-filename", "", "Database filename (overrides WORKLOG_DATABASE_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides WORKLOG_DATABASE_QUERY_TIMEOUT)")

	// Policy and calendar configuration
	flags.Duration("edit-window", 0, "How long tasks stay editable (overrides WORKLOG_POLICY_EDIT_WINDOW)")
	flags.String("timezone", "", "Timezone for weeks and dates (overrides WORKLOG_CALENDAR_TIMEZONE)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides WORKLOG_APPLICATION_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides WORKLOG_APPLICATION_VERBOSE)")
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"db-dir":           "database.dir",
	"db-filename":      "database.filename",
	"db-query-timeout": "database.query_timeout",
	"edit-window":      "policy.edit_window",
	"timezone":         "calendar.timezone",
	"app-timeout":      "application.timeout",
	"verbose":          "application.verbose",
	"addr":             "server.addr",
	"mode":             "server.mode",
	"column-width":     "export.column_width",
}

// maintenanceAnnotation marks commands that open the database themselves,
// without migrating it
const maintenanceAnnotation = "worklog/maintenance"

// setup loads configuration and opens the database before any command runs
func (r *RootCommand) setup(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if r.configFile != "" {
		loader.WithConfigFile(r.configFile)
	} else {
		loader.WithDefaultConfigFile(config.DefaultConfigPath())
	}
	for name, key := range flagKeys {
		loader.BindFlag(key, cmd.Flags().Lookup(name))
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.SetVerbose(cfg.Application.Verbose)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	r.config = cfg
	if cmd.Annotations[maintenanceAnnotation] != "" {
		return nil
	}

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return err
	}

	container := services.NewServiceContainer(repo, r.clock, services.Settings{
		EditWindow:  cfg.Policy.EditWindow,
		Location:    loc,
		ColumnWidth: cfg.Export.ColumnWidth,
	})

	r.repo = repo
	r.app = NewApp(container, cfg, loc, cmd.OutOrStdout())
	logging.Debugf("using database %s", cfg.GetDatabasePath())
	return nil
}

func (r *RootCommand) close() {
	if r.repo != nil {
		if err := r.repo.Close(); err != nil {
			logging.Errorf("closing database: %v", err)
		}
		r.repo = nil
	}
}

// commandContext bounds a command by the configured application timeout
func (r *RootCommand) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), r.getAppTimeout())
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newServeCommand(),
		r.newUserCommand(),
		r.newTaskCommand(),
		r.newExportCommand(),
		r.newReportCommand(),
		r.newConfigCommand(),
		r.newDBCommand(),
	)
}
