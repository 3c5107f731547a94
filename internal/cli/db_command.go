package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"worklog/internal/config"
	"worklog/internal/logging"
	"worklog/internal/repository/sqlite/migrations"
)

// DBCommand handles schema maintenance
type DBCommand struct {
	config *config.Config
	out    io.Writer
}

func (d *DBCommand) open() (*sqlx.DB, func(), error) {
	db, err := config.OpenDatabase(d.config)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			logging.Errorf("closing database: %v", err)
		}
	}, nil
}

// Status prints each known migration and its state
func (d *DBCommand) Status() error {
	db, closeDB, err := d.open()
	if err != nil {
		return err
	}
	defer closeDB()

	states, err := migrations.Status(db.DB)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "Database %s\n", d.config.GetDatabasePath())
	for _, state := range states {
		status := "pending"
		switch {
		case state.Dirty:
			status = "dirty"
		case state.Applied:
			status = "applied"
		}
		fmt.Fprintf(d.out, "  %06d  %s\n", state.Version, status)
	}
	return nil
}

// Migrate applies every pending migration
func (d *DBCommand) Migrate() error {
	db, closeDB, err := d.open()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := migrations.RunMigrations(db.DB); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "Database is up to date")
	return nil
}

// Down reverts migrations newer than rawTarget
func (d *DBCommand) Down(rawTarget string) error {
	target, err := parseVersion(rawTarget)
	if err != nil {
		return err
	}

	db, closeDB, err := d.open()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := migrations.MigrateDown(db.DB, target); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Reverted to version %d\n", target)
	return nil
}

// Force clears the dirty flag of a migration after a manual repair
func (d *DBCommand) Force(rawVersion string) error {
	version, err := parseVersion(rawVersion)
	if err != nil {
		return err
	}

	db, closeDB, err := d.open()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := migrations.Force(db.DB, version); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Cleared dirty flag on migration %d; it will be retried on next start\n", version)
	return nil
}

func parseVersion(raw string) (int, error) {
	version, err := strconv.Atoi(raw)
	if err != nil || version < 0 {
		return 0, fmt.Errorf("invalid migration version %q", raw)
	}
	return version, nil
}

func (r *RootCommand) newDBCommand() *cobra.Command {
	handler := func(cmd *cobra.Command) *DBCommand {
		return &DBCommand{config: r.config, out: cmd.OutOrStdout()}
	}
	maintenance := map[string]string{maintenanceAnnotation: "true"}

	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and repair the database schema",
		Long: `Schema maintenance. These commands open the database without
applying pending migrations.

A migration whose transaction could not be rolled back is marked dirty and
every other command refuses to start. Repair the schema by hand, then run
"worklog db force <version>" so the migration is retried.`,
	}

	statusCmd := &cobra.Command{
		Use:         "status",
		Short:       "List migrations and whether they are applied",
		Args:        cobra.NoArgs,
		Annotations: maintenance,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler(cmd).Status()
		},
	}

	migrateCmd := &cobra.Command{
		Use:         "migrate",
		Short:       "Apply pending migrations",
		Args:        cobra.NoArgs,
		Annotations: maintenance,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler(cmd).Migrate()
		},
	}

	downCmd := &cobra.Command{
		Use:         "down <version>",
		Short:       "Revert migrations newer than version (0 drops everything)",
		Args:        cobra.ExactArgs(1),
		Annotations: maintenance,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler(cmd).Down(args[0])
		},
	}

	forceCmd := &cobra.Command{
		Use:         "force <version>",
		Short:       "Clear the dirty flag of a migration",
		Args:        cobra.ExactArgs(1),
		Annotations: maintenance,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler(cmd).Force(args[0])
		},
	}

	dbCmd.AddCommand(statusCmd, migrateCmd, downCmd, forceCmd)
	return dbCmd
}
