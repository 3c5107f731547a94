package services

import (
	"context"
	"fmt"
	"time"

	"worklog/internal/access"
	"worklog/internal/clock"
	"worklog/internal/domain"
	"worklog/internal/errors"
	"worklog/internal/hierarchy"
	"worklog/internal/logging"
	"worklog/internal/repository/sqlite"
	"worklog/internal/validation"
	"worklog/internal/weekly"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo          sqlite.Repository
	resolver      *hierarchy.Resolver
	policy        *access.Policy
	clock         clock.Clock
	location      *time.Location
	mapper        *domain.Mapper
	taskValidator *validation.TaskValidator
}

// NewTaskService creates a new TaskService instance
func NewTaskService(repo sqlite.Repository, resolver *hierarchy.Resolver, policy *access.Policy, clk clock.Clock, loc *time.Location) TaskService {
	return &taskServiceImpl{
		repo:          repo,
		resolver:      resolver,
		policy:        policy,
		clock:         clk,
		location:      loc,
		mapper:        domain.NewMapper(),
		taskValidator: validation.NewTaskValidator(),
	}
}

// validateTask validates the editable fields and returns the trimmed description
func (t *taskServiceImpl) validateTask(description string, minutes int) (string, error) {
	if err := t.taskValidator.ValidateTask(description, minutes); err != nil {
		return "", validationFailure(err)
	}
	return t.taskValidator.GetValidDescription(description)
}

func (t *taskServiceImpl) loadTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return nil, validationFailure(err)
	}

	dbTask, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task := t.mapper.Task.FromDatabase(*dbTask)
	return &task, nil
}

// CreateTask logs a new task for actorID, stamped with the current time
func (t *taskServiceImpl) CreateTask(ctx context.Context, actorID int64, description string, minutes int) (*domain.Task, error) {
	trimmed, err := t.validateTask(description, minutes)
	if err != nil {
		return nil, err
	}

	task := domain.NewTask(actorID, trimmed, minutes, t.clock.Now())
	dbTask := t.mapper.Task.ToDatabase(task)
	if err := t.repo.CreateTask(ctx, &dbTask); err != nil {
		return nil, err
	}

	logging.Debugf("user %d logged task %d (%d mins)", actorID, dbTask.ID, minutes)
	result := t.mapper.Task.FromDatabase(dbTask)
	return &result, nil
}

// GetTask returns a task the actor owns or transitively manages
func (t *taskServiceImpl) GetTask(ctx context.Context, actorID, id int64) (*domain.Task, error) {
	task, err := t.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := t.policy.CanView(ctx, actorID, *task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.NewPermissionError("view", fmt.Sprintf("task %d", id))
	}
	return task, nil
}

// UpdateTask replaces the description and time spent of a task the actor
// owns, while its edit window is open
func (t *taskServiceImpl) UpdateTask(ctx context.Context, actorID, id int64, description string, minutes int) (*domain.Task, error) {
	trimmed, err := t.validateTask(description, minutes)
	if err != nil {
		return nil, err
	}

	task, err := t.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.policy.CanEdit(actorID, *task) {
		appErr := errors.NewPermissionError("edit", fmt.Sprintf("task %d", id))
		if task.OwnedBy(actorID) {
			appErr.Message = fmt.Sprintf("task %d can no longer be edited: the edit window closed at %s",
				id, t.policy.EditDeadline(*task).In(t.location).Format(time.RFC3339))
		}
		return nil, appErr
	}

	updated := task.Edit(trimmed, minutes, t.clock.Now())
	dbTask := t.mapper.Task.ToDatabase(updated)
	if err := t.repo.UpdateTask(ctx, &dbTask); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (t *taskServiceImpl) searchWeek(ctx context.Context, owners []int64, week weekly.Week) ([]domain.Task, error) {
	if len(owners) == 0 {
		return []domain.Task{}, nil
	}

	from := week.Start(t.location)
	to := week.End(t.location)
	dbTasks, err := t.repo.SearchTasks(ctx, t.mapper.SearchOptions.ToDatabase(domain.SearchOptions{
		OwnerIDs: owners,
		From:     &from,
		To:       &to,
	}))
	if err != nil {
		return nil, err
	}

	return weekly.Filter(t.mapper.Task.FromDatabaseSlice(dbTasks), week, t.location, owners...), nil
}

// ListWeek returns the actor's own tasks created during week
func (t *taskServiceImpl) ListWeek(ctx context.Context, actorID int64, week weekly.Week) ([]domain.Task, error) {
	return t.searchWeek(ctx, []int64{actorID}, week)
}

// ListSubordinatesWeek returns the tasks of every transitive subordinate
// created during week. The actor's own tasks are not included.
func (t *taskServiceImpl) ListSubordinatesWeek(ctx context.Context, actorID int64, week weekly.Week) ([]domain.Task, error) {
	subordinates, err := t.resolver.Subordinates(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return t.searchWeek(ctx, subordinates.IDs(), week)
}

// ListAll returns every task the actor owns, oldest first
func (t *taskServiceImpl) ListAll(ctx context.Context, actorID int64) ([]domain.Task, error) {
	dbTasks, err := t.repo.SearchTasks(ctx, sqlite.SearchOptions{OwnerIDs: []int64{actorID}})
	if err != nil {
		return nil, err
	}
	return t.mapper.Task.FromDatabaseSlice(dbTasks), nil
}

// View annotates a task with the actor's edit rights
func (t *taskServiceImpl) View(actorID int64, task domain.Task) TaskView {
	return TaskView{
		Task:         task,
		Editable:     t.policy.CanEdit(actorID, task),
		EditDeadline: t.policy.EditDeadline(task),
	}
}

// CurrentWeek returns the ISO week of the service clock
func (t *taskServiceImpl) CurrentWeek() weekly.Week {
	return weekly.Current(t.clock.Now().In(t.location))
}

// ParseWeek reads a user supplied week number against the service clock
func (t *taskServiceImpl) ParseWeek(raw string) (weekly.Week, error) {
	return weekly.Parse(raw, t.clock.Now().In(t.location))
}
