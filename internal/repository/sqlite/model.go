package sqlite

import (
	"database/sql"
	"time"
)

// User is a row of the users table
type User struct {
	ID           int64         `db:"id"`
	Username     string        `db:"username"`
	DisplayName  string        `db:"display_name"`
	ManagerID    sql.NullInt64 `db:"manager_id"`
	PasswordHash string        `db:"password_hash"`
	CreatedAt    Timestamp     `db:"created_at"`
}

// Task is a row of the tasks table
type Task struct {
	ID          int64     `db:"id"`
	OwnerID     int64     `db:"owner_id"`
	Description string    `db:"description"`
	Minutes     int       `db:"minutes"`
	CreatedAt   Timestamp `db:"created_at"`
	UpdatedAt   Timestamp `db:"updated_at"`
}

// SearchOptions narrows SearchTasks. OwnerIDs is required; From is
// inclusive and To exclusive on created_at.
type SearchOptions struct {
	OwnerIDs []int64
	From     *time.Time
	To       *time.Time
}
