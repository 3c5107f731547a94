package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTask(t *testing.T) {
	now := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)

	result := NewTask(3, "Planning", 30, now)

	assert.Equal(t, int64(0), result.ID)
	assert.Equal(t, int64(3), result.OwnerID)
	assert.Equal(t, "Planning", result.Description)
	assert.Equal(t, 30, result.Minutes)
	assert.Equal(t, now, result.CreatedAt)
	assert.Equal(t, now, result.UpdatedAt)
}

func TestTask_Edit(t *testing.T) {
	created := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)
	edited := created.Add(2 * time.Hour)
	task := Task{ID: 5, OwnerID: 2, Description: "Draft", Minutes: 10, CreatedAt: created, UpdatedAt: created}

	result := task.Edit("Final", 25, edited)

	assert.Equal(t, int64(5), result.ID)
	assert.Equal(t, int64(2), result.OwnerID)
	assert.Equal(t, "Final", result.Description)
	assert.Equal(t, 25, result.Minutes)
	assert.Equal(t, created, result.CreatedAt)
	assert.Equal(t, edited, result.UpdatedAt)
	assert.Equal(t, "Draft", task.Description)
}

func TestTask_Duration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, Task{Minutes: 90}.Duration())
}

func TestTask_String(t *testing.T) {
	short := Task{Description: "Short"}
	assert.Equal(t, "Short", short.String())

	long := Task{Description: strings.Repeat("é", 60)}
	assert.Equal(t, strings.Repeat("é", 50), long.String())
}

func TestTask_OwnedBy(t *testing.T) {
	task := Task{OwnerID: 4}
	assert.True(t, task.OwnedBy(4))
	assert.False(t, task.OwnedBy(5))
}
