package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"worklog/internal/clock"
	"worklog/internal/domain"
	"worklog/internal/repository/sqlite"
)

// Wednesday of ISO week 3, 2024
var testNow = time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

const testPassword = "correct-horse"

type fixture struct {
	services *ServiceContainer
	repo     sqlite.Repository
	clock    *clock.Fixed
}

func setupServices(t *testing.T) *fixture {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	clk := clock.NewFixed(testNow)
	container := NewServiceContainer(repo, clk, Settings{
		Location:   time.UTC,
		BcryptCost: bcrypt.MinCost,
	})
	return &fixture{services: container, repo: repo, clock: clk}
}

func (f *fixture) register(t *testing.T, username, manager string) *domain.User {
	t.Helper()
	user, err := f.services.UserService.Register(context.Background(), RegisterInput{
		Username:        username,
		Password:        testPassword,
		ManagerUsername: manager,
	})
	require.NoError(t, err)
	return user
}

// logAt creates a task for owner with the clock set to at, then restores it
func (f *fixture) logAt(t *testing.T, owner *domain.User, description string, minutes int, at time.Time) *domain.Task {
	t.Helper()
	previous := f.clock.Now()
	f.clock.Set(at)
	defer f.clock.Set(previous)

	task, err := f.services.TaskService.CreateTask(context.Background(), owner.ID, description, minutes)
	require.NoError(t, err)
	return task
}

func taskIDs(tasks []domain.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}
