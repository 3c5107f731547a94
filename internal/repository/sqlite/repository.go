package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "modernc.org/sqlite/lib"

	"worklog/internal/errors"
	"worklog/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListDirectReports(ctx context.Context, managerID int64) ([]*User, error)
	DirectSubordinates(ctx context.Context, managerID int64) ([]int64, error)
	UpdateUserManager(ctx context.Context, id int64, managerID sql.NullInt64) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error

	// Task operations
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	SearchTasks(ctx context.Context, opts SearchOptions) ([]*Task, error)

	// Utility
	Close() error
}

// Option configures a SQLiteRepository
type Option func(*SQLiteRepository)

// WithQueryTimeout bounds every statement issued by the repository
func WithQueryTimeout(d time.Duration) Option {
	return func(r *SQLiteRepository) {
		r.queryTimeout = d
	}
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// Open connects to the database without running migrations
func Open(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// A single connection keeps ":memory:" databases shared and the
	// foreign_keys pragma in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}
	return db, nil
}

// New creates a new SQLite repository instance and runs pending migrations
func New(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(db.DB); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	r := &SQLiteRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

const userColumns = `id, username, display_name, manager_id, password_hash, created_at`

// CreateUser creates a new user
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
	INSERT INTO users (username, display_name, manager_id, password_hash, created_at)
	VALUES (?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query, user.Username, user.DisplayName, user.ManagerID, user.PasswordHash, user.CreatedAt)
	if err != nil {
		switch constraintCode(err) {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return errors.NewConflictError("user", user.Username)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.NewNotFoundError("manager", fmt.Sprintf("%d", user.ManagerID.Int64))
		}
		return HandleDatabaseError("create user", err)
	}

	user.ID = id
	return nil
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return QuerySingle[User](ctx, r.db, query, "user", fmt.Sprintf("%d", id), id)
}

// GetUserByUsername retrieves a user by login name
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return QuerySingle[User](ctx, r.db, query, "user", username, username)
}

// ListUsers retrieves all users
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]*User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY username ASC`
	return QueryMultiple[User](ctx, r.db, query, "users")
}

// ListDirectReports retrieves the users whose manager is managerID
func (r *SQLiteRepository) ListDirectReports(ctx context.Context, managerID int64) ([]*User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE manager_id = ? ORDER BY username ASC`
	return QueryMultiple[User](ctx, r.db, query, "users", managerID)
}

// DirectSubordinates returns the ids of the users whose manager is managerID
func (r *SQLiteRepository) DirectSubordinates(ctx context.Context, managerID int64) ([]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ids := []int64{}
	query := `SELECT id FROM users WHERE manager_id = ? ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &ids, query, managerID); err != nil {
		return nil, HandleDatabaseError("query direct subordinates", err)
	}
	return ids, nil
}

// UpdateUserManager sets or clears a user's manager
func (r *SQLiteRepository) UpdateUserManager(ctx context.Context, id int64, managerID sql.NullInt64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `UPDATE users SET manager_id = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, managerID, id)
	if err != nil {
		switch constraintCode(err) {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.NewNotFoundError("manager", fmt.Sprintf("%d", managerID.Int64))
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return errors.NewInvalidInputError("manager", managerID.Int64, "a user cannot manage themselves")
		}
		return HandleDatabaseError("update user manager", err)
	}
	return ValidateRowsAffected(result, "user", fmt.Sprintf("%d", id))
}

// UpdateUserPassword replaces a user's password hash
func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `UPDATE users SET password_hash = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "user", fmt.Sprintf("%d", id), passwordHash, id)
}

const taskColumns = `id, owner_id, description, minutes, created_at, updated_at`

// CreateTask creates a new task
func (r *SQLiteRepository) CreateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
	INSERT INTO tasks (owner_id, description, minutes, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query, task.OwnerID, task.Description, task.Minutes, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		switch constraintCode(err) {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.NewNotFoundError("user", fmt.Sprintf("%d", task.OwnerID))
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return errors.NewInvalidInputError("minutes", task.Minutes, "must not be negative")
		}
		return HandleDatabaseError("create task", err)
	}

	task.ID = id
	return nil
}

// GetTask retrieves a task by ID
func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (*Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle[Task](ctx, r.db, query, "task", fmt.Sprintf("%d", id), id)
}

// UpdateTask updates the mutable fields of a task. Owner and creation time
// are never written.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
	UPDATE tasks
	SET description = ?, minutes = ?, updated_at = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "task", fmt.Sprintf("%d", task.ID), task.Description, task.Minutes, task.UpdatedAt, task.ID)
}

// SearchTasks returns the tasks of the given owners, oldest first
func (r *SQLiteRepository) SearchTasks(ctx context.Context, opts SearchOptions) ([]*Task, error) {
	if len(opts.OwnerIDs) == 0 {
		return []*Task{}, nil
	}

	conditions := []string{"owner_id IN (?)"}
	args := []interface{}{opts.OwnerIDs}

	if opts.From != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, FormatTimePtrForDB(opts.From))
	}
	if opts.To != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, FormatTimePtrForDB(opts.To))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created_at ASC, id ASC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, HandleDatabaseError("build task search", err)
	}
	query = r.db.Rebind(query)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return QueryMultiple[Task](ctx, r.db, query, "tasks", args...)
}
