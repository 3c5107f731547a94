package config

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"

	"worklog/internal/repository/sqlite"
)

func ensureDatabaseDir(config *Config) error {
	if config.GetDatabasePath() == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(config.Database.Dir, fs.FileMode(config.Database.DirPermissions)); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// CreateRepository opens the configured database, creating its directory on first use
func CreateRepository(config *Config) (sqlite.Repository, error) {
	dbPath := config.GetDatabasePath()

	if err := ensureDatabaseDir(config); err != nil {
		return nil, err
	}

	repo, err := sqlite.New(dbPath, sqlite.WithQueryTimeout(config.GetQueryTimeout()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// OpenDatabase opens the configured database without migrating it, for
// schema maintenance
func OpenDatabase(config *Config) (*sqlx.DB, error) {
	if err := ensureDatabaseDir(config); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(config.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (sqlite.Repository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}
