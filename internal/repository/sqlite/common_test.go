package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "worklog/internal/errors"
)

// MockResult implements sql.Result for testing
type MockResult struct {
	lastInsertID int64
	rowsAffected int64
	insertErr    error
	rowsErr      error
}

func (mr *MockResult) LastInsertId() (int64, error) {
	return mr.lastInsertID, mr.insertErr
}

func (mr *MockResult) RowsAffected() (int64, error) {
	return mr.rowsAffected, mr.rowsErr
}

func TestHandleDatabaseError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	result := HandleDatabaseError("test operation", originalErr)

	assert.NotNil(t, result)
	assert.Contains(t, result.Error(), "test operation")
	assert.Contains(t, result.Error(), "database connection failed")
}

func TestHandleNoRowsError(t *testing.T) {
	tests := []struct {
		name         string
		inputErr     error
		entityType   string
		id           string
		expectNotFound bool
	}{
		{
			name:         "ErrNoRows should return NotFoundError",
			inputErr:     sql.ErrNoRows,
			entityType:   "test entity",
			id:           "123",
			expectNotFound: true,
		},
		{
			name:         "Other error should return as-is",
			inputErr:     errors.New("some other error"),
			entityType:   "test entity",
			id:           "123",
			expectNotFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleNoRowsError(tt.inputErr, tt.entityType, tt.id)
		
			if tt.expectNotFound {
				assert.Contains(t, result.Error(), "not found")
				assert.Contains(t, result.Error(), tt.entityType)
				assert.Contains(t, result.Error(), tt.id)
			} else {
				assert.Equal(t, tt.inputErr, result)
			}
		})
	}
}

func TestValidateRowsAffected(t *testing.T) {
	tests := []struct {
		name         string
		result       sql.Result
		entityType   string
		id           string
		expectError  bool
		expectNotFound bool
	}{
		{
			name: "Successful update",
			result: &MockResult{
				rowsAffected: 1,
				rowsErr:      nil,
			},
			entityType:   "test entity",
			id:           "123",
			expectError:  false,
			expectNotFound: false,
		},
		{
			name: "No rows affected",
			result: &MockResult{
				rowsAffected: 0,
				rowsErr:      nil,
			},
			entityType:   "test entity",
			id:           "123",
			expectError:  true,
			expectNotFound: true,
		},
		{
			name: "Error getting rows affected",
			result: &MockResult{
				rowsAffected: 0,
				rowsErr:      errors.New("database error"),
			},
			entityType:   "test entity",
			id:           "123",
			expectError:  true,
			expectNotFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRowsAffected(tt.result, tt.entityType, tt.id)
		
			if tt.expectError {
				assert.Error(t, result)
				if tt.expectNotFound {
					assert.Contains(t, result.Error(), "not found")
				} else {
					assert.Contains(t, result.Error(), "database error")
				}
			} else {
				assert.NoError(t, result)
			}
		})
	}
}

type widget struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func setupWidgets(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	return db
}

func TestExecuteWithLastInsertID(t *testing.T) {
	db := setupWidgets(t)
	ctx := context.Background()

	id, err := ExecuteWithLastInsertID(ctx, db, `INSERT INTO widgets (name) VALUES (?)`, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = ExecuteWithLastInsertID(ctx, db, `INSERT INTO widgets (name) VALUES (?)`, "first")
	require.Error(t, err)
	assert.NotZero(t, constraintCode(err), "duplicate name should surface as a constraint violation")
}

func TestExecuteWithRowsAffected(t *testing.T) {
	db := setupWidgets(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO widgets (name) VALUES ('a')`)
	require.NoError(t, err)

	err = ExecuteWithRowsAffected(ctx, db, `UPDATE widgets SET name = ? WHERE id = ?`, "widget", "1", "b", 1)
	assert.NoError(t, err)

	err = ExecuteWithRowsAffected(ctx, db, `UPDATE widgets SET name = ? WHERE id = ?`, "widget", "99", "c", 99)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestQuerySingle(t *testing.T) {
	db := setupWidgets(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO widgets (name) VALUES ('gear')`)
	require.NoError(t, err)

	w, err := QuerySingle[widget](ctx, db, `SELECT id, name FROM widgets WHERE id = ?`, "widget", "1", 1)
	require.NoError(t, err)
	assert.Equal(t, "gear", w.Name)

	_, err = QuerySingle[widget](ctx, db, `SELECT id, name FROM widgets WHERE id = ?`, "widget", "2", 2)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), "widget not found: 2")
}

func TestQueryMultiple(t *testing.T) {
	db := setupWidgets(t)
	ctx := context.Background()

	empty, err := QueryMultiple[widget](ctx, db, `SELECT id, name FROM widgets`, "widgets")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = db.Exec(`INSERT INTO widgets (name) VALUES ('a'), ('b')`)
	require.NoError(t, err)

	all, err := QueryMultiple[widget](ctx, db, `SELECT id, name FROM widgets ORDER BY id`, "widgets")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[1].Name)

	_, err = QueryMultiple[widget](ctx, db, `SELECT id, name FROM missing`, "widgets")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeDatabase))
}

func TestConstraintCode_NonSQLiteError(t *testing.T) {
	assert.Zero(t, constraintCode(errors.New("plain")))
	assert.Zero(t, constraintCode(nil))
}
