package services

import (
	"context"
	"sort"

	"worklog/internal/domain"
	"worklog/internal/hierarchy"
	"worklog/internal/repository/sqlite"
	"worklog/internal/weekly"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo        sqlite.Repository
	resolver    *hierarchy.Resolver
	taskService TaskService
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo sqlite.Repository, resolver *hierarchy.Resolver, taskService TaskService) ReportingService {
	return &reportingServiceImpl{
		repo:        repo,
		resolver:    resolver,
		taskService: taskService,
	}
}

// WeekSummary totals the week for the actor first, then each subordinate
// by username. Users who logged nothing are listed with zero minutes.
func (r *reportingServiceImpl) WeekSummary(ctx context.Context, actorID int64, week weekly.Week) (*WeekSummary, error) {
	own, err := r.taskService.ListWeek(ctx, actorID, week)
	if err != nil {
		return nil, err
	}
	team, err := r.taskService.ListSubordinatesWeek(ctx, actorID, week)
	if err != nil {
		return nil, err
	}

	subordinates, err := r.resolver.Subordinates(ctx, actorID)
	if err != nil {
		return nil, err
	}

	totals := r.aggregate(append(own, team...))

	users, err := r.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &WeekSummary{Week: week, Users: []UserTotal{}}
	var actor *UserTotal
	for _, user := range users {
		if user.ID != actorID && !subordinates.Contains(user.ID) {
			continue
		}
		total := totals[user.ID]
		total.UserID = user.ID
		total.Username = user.Username
		summary.TotalMinutes += total.Minutes

		if user.ID == actorID {
			actor = &total
			continue
		}
		summary.Users = append(summary.Users, total)
	}

	sort.SliceStable(summary.Users, func(i, j int) bool {
		return summary.Users[i].Username < summary.Users[j].Username
	})
	if actor != nil {
		summary.Users = append([]UserTotal{*actor}, summary.Users...)
	}
	return summary, nil
}

// aggregate sums minutes and counts tasks per owner
func (r *reportingServiceImpl) aggregate(tasks []domain.Task) map[int64]UserTotal {
	totals := make(map[int64]UserTotal)
	for _, task := range tasks {
		total := totals[task.OwnerID]
		total.TaskCount++
		total.Minutes += task.Minutes
		totals[task.OwnerID] = total
	}
	return totals
}
