// Package access decides who may view and who may edit a task.
package access

import (
	"context"
	"time"

	"worklog/internal/clock"
	"worklog/internal/domain"
	"worklog/internal/hierarchy"
)

// DefaultEditWindow is how long after creation an owner may still edit a task
const DefaultEditWindow = 7 * 24 * time.Hour

// SubordinateResolver yields the transitive subordinates of a user
type SubordinateResolver interface {
	Subordinates(ctx context.Context, root int64) (hierarchy.Set, error)
}

// Policy answers view and edit questions for tasks
type Policy struct {
	resolver   SubordinateResolver
	clock      clock.Clock
	editWindow time.Duration
}

// NewPolicy creates a policy. A non-positive editWindow falls back to DefaultEditWindow.
func NewPolicy(resolver SubordinateResolver, clk clock.Clock, editWindow time.Duration) *Policy {
	if editWindow <= 0 {
		editWindow = DefaultEditWindow
	}
	return &Policy{
		resolver:   resolver,
		clock:      clk,
		editWindow: editWindow,
	}
}

// EditWindow returns the configured edit window
func (p *Policy) EditWindow() time.Duration {
	return p.editWindow
}

// CanView reports whether viewerID owns the task or transitively manages its owner
func (p *Policy) CanView(ctx context.Context, viewerID int64, task domain.Task) (bool, error) {
	if task.OwnedBy(viewerID) {
		return true, nil
	}

	subordinates, err := p.resolver.Subordinates(ctx, viewerID)
	if err != nil {
		return false, err
	}
	return subordinates.Contains(task.OwnerID), nil
}

// CanEdit reports whether editorID owns the task and the edit window has not
// closed. Managing the owner never grants edit rights.
func (p *Policy) CanEdit(editorID int64, task domain.Task) bool {
	if !task.OwnedBy(editorID) {
		return false
	}
	return p.clock.Now().Sub(task.CreatedAt) < p.editWindow
}

// EditDeadline returns the instant the task stops being editable
func (p *Policy) EditDeadline(task domain.Task) time.Time {
	return task.CreatedAt.Add(p.editWindow)
}
