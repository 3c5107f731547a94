package services

import (
	"context"
	"io"
	"time"

	"worklog/internal/access"
	"worklog/internal/clock"
	"worklog/internal/domain"
	"worklog/internal/export"
	"worklog/internal/hierarchy"
	"worklog/internal/repository/sqlite"
	"worklog/internal/weekly"
)

// RegisterInput carries the fields of a new account
type RegisterInput struct {
	Username        string
	DisplayName     string
	Password        string
	ManagerUsername string
}

// TaskView is a task together with what the viewer may do with it
type TaskView struct {
	Task         domain.Task `json:"task"`
	Editable     bool        `json:"editable"`
	EditDeadline time.Time   `json:"edit_deadline"`
}

// UserTotal is the time one user logged in a week
type UserTotal struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	TaskCount int    `json:"task_count"`
	Minutes   int    `json:"minutes"`
}

// WeekSummary totals a week for a user and everyone below them
type WeekSummary struct {
	Week         weekly.Week `json:"week"`
	Users        []UserTotal `json:"users"`
	TotalMinutes int         `json:"total_minutes"`
}

// UserService handles accounts and the manager hierarchy
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// Hierarchy operations
	SetManager(ctx context.Context, userID int64, managerID *int64) error
	ListSubordinates(ctx context.Context, userID int64) ([]domain.User, error)
	ListDirectReports(ctx context.Context, userID int64) ([]domain.User, error)

	// Credentials
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// TaskService handles task logging, editing and weekly listings
type TaskService interface {
	CreateTask(ctx context.Context, actorID int64, description string, minutes int) (*domain.Task, error)
	GetTask(ctx context.Context, actorID, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, actorID, id int64, description string, minutes int) (*domain.Task, error)

	// Weekly listings
	ListWeek(ctx context.Context, actorID int64, week weekly.Week) ([]domain.Task, error)
	ListSubordinatesWeek(ctx context.Context, actorID int64, week weekly.Week) ([]domain.Task, error)
	ListAll(ctx context.Context, actorID int64) ([]domain.Task, error)

	// Presentation helpers
	View(actorID int64, task domain.Task) TaskView
	CurrentWeek() weekly.Week
	ParseWeek(raw string) (weekly.Week, error)
}

// ExportService renders an actor's tasks in a downloadable format
type ExportService interface {
	Export(ctx context.Context, actorID int64, format string, week *weekly.Week, w io.Writer) (export.Format, error)
}

// ReportingService aggregates logged time
type ReportingService interface {
	WeekSummary(ctx context.Context, actorID int64, week weekly.Week) (*WeekSummary, error)
}

// Settings tunes the services
type Settings struct {
	EditWindow  time.Duration
	Location    *time.Location
	ColumnWidth float64
	// BcryptCost of zero uses bcrypt.DefaultCost
	BcryptCost int
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	UserService      UserService
	TaskService      TaskService
	ExportService    ExportService
	ReportingService ReportingService
	Policy           *access.Policy
}

// NewServiceContainer wires every service over one repository and clock
func NewServiceContainer(repo sqlite.Repository, clk clock.Clock, settings Settings) *ServiceContainer {
	resolver := hierarchy.NewResolver(repo)
	policy := access.NewPolicy(resolver, clk, settings.EditWindow)

	userService := NewUserService(repo, resolver, clk, settings.BcryptCost)
	taskService := NewTaskService(repo, resolver, policy, clk, settings.location())
	return &ServiceContainer{
		UserService:      userService,
		TaskService:      taskService,
		ExportService:    NewExportService(taskService, settings.location(), settings.ColumnWidth),
		ReportingService: NewReportingService(repo, resolver, taskService),
		Policy:           policy,
	}
}
