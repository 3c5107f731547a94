package domain

import (
	"time"
	"unicode/utf8"
)

// Task represents a logged piece of work in the domain model.
// OwnerID and CreatedAt never change after creation.
type Task struct {
	ID          int64
	OwnerID     int64
	Description string
	Minutes     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a new Task owned by ownerID, stamped with now.
func NewTask(ownerID int64, description string, minutes int, now time.Time) Task {
	return Task{
		OwnerID:     ownerID,
		Description: description,
		Minutes:     minutes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// OwnedBy reports whether userID owns the task.
func (t Task) OwnedBy(userID int64) bool {
	return t.OwnerID == userID
}

// Edit returns a copy with new content and UpdatedAt set to now.
func (t Task) Edit(description string, minutes int, now time.Time) Task {
	t.Description = description
	t.Minutes = minutes
	t.UpdatedAt = now
	return t
}

// Duration returns the time spent as a time.Duration.
func (t Task) Duration() time.Duration {
	return time.Duration(t.Minutes) * time.Minute
}

// String returns the description cut to 50 characters for display purposes.
func (t Task) String() string {
	if utf8.RuneCountInString(t.Description) <= 50 {
		return t.Description
	}
	return string([]rune(t.Description)[:50])
}
