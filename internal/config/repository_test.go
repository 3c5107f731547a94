package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/repository/sqlite"
)

func TestCreateRepository(t *testing.T) {
	dbDir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("WORKLOG_DATABASE_DIR", dbDir)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dbDir, "worklog.db"), cfg.GetDatabasePath())

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	require.NotNil(t, repo)
	defer repo.Close()

	user := &sqlite.User{Username: "alice", CreatedAt: sqlite.NewTimestamp(time.Now())}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.FileExists(t, cfg.GetDatabasePath())
}

func TestCreateTestRepository(t *testing.T) {
	repo, err := CreateTestRepository()
	require.NoError(t, err)
	defer repo.Close()

	user := &sqlite.User{Username: "alice", CreatedAt: sqlite.NewTimestamp(time.Now())}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	tasks, err := repo.SearchTasks(context.Background(), sqlite.SearchOptions{OwnerIDs: []int64{user.ID}})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
