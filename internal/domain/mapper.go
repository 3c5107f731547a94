package domain

import (
	"database/sql"

	"worklog/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(domainTask Task) sqlite.Task {
	return sqlite.Task{
		ID:          domainTask.ID,
		OwnerID:     domainTask.OwnerID,
		Description: domainTask.Description,
		Minutes:     domainTask.Minutes,
		CreatedAt:   sqlite.NewTimestamp(domainTask.CreatedAt),
		UpdatedAt:   sqlite.NewTimestamp(domainTask.UpdatedAt),
	}
}

// FromDatabase converts a database Task to a domain Task.
func (m *TaskMapper) FromDatabase(dbTask sqlite.Task) Task {
	return Task{
		ID:          dbTask.ID,
		OwnerID:     dbTask.OwnerID,
		Description: dbTask.Description,
		Minutes:     dbTask.Minutes,
		CreatedAt:   dbTask.CreatedAt.Time,
		UpdatedAt:   dbTask.UpdatedAt.Time,
	}
}

// FromDatabaseSlice converts a slice of database Tasks to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) []Task {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		domainTasks[i] = m.FromDatabase(*task)
	}
	return domainTasks
}

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(domainUser User) sqlite.User {
	var managerID sql.NullInt64
	if domainUser.ManagerID != nil {
		managerID = sql.NullInt64{Int64: *domainUser.ManagerID, Valid: true}
	}
	return sqlite.User{
		ID:           domainUser.ID,
		Username:     domainUser.Username,
		DisplayName:  domainUser.DisplayName,
		ManagerID:    managerID,
		PasswordHash: domainUser.PasswordHash,
		CreatedAt:    sqlite.NewTimestamp(domainUser.CreatedAt),
	}
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(dbUser sqlite.User) User {
	user := User{
		ID:           dbUser.ID,
		Username:     dbUser.Username,
		DisplayName:  dbUser.DisplayName,
		PasswordHash: dbUser.PasswordHash,
		CreatedAt:    dbUser.CreatedAt.Time,
	}
	if dbUser.ManagerID.Valid {
		managerID := dbUser.ManagerID.Int64
		user.ManagerID = &managerID
	}
	return user
}

// FromDatabaseSlice converts a slice of database Users to domain Users.
func (m *UserMapper) FromDatabaseSlice(dbUsers []*sqlite.User) []User {
	domainUsers := make([]User, len(dbUsers))
	for i, user := range dbUsers {
		domainUsers[i] = m.FromDatabase(*user)
	}
	return domainUsers
}

// SearchOptionsMapper handles conversion between domain and database SearchOptions.
type SearchOptionsMapper struct{}

// NewSearchOptionsMapper creates a new SearchOptionsMapper instance.
func NewSearchOptionsMapper() *SearchOptionsMapper {
	return &SearchOptionsMapper{}
}

// ToDatabase converts domain SearchOptions to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(domainOpts SearchOptions) sqlite.SearchOptions {
	return sqlite.SearchOptions{
		OwnerIDs: domainOpts.OwnerIDs,
		From:     domainOpts.From,
		To:       domainOpts.To,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task          *TaskMapper
	User          *UserMapper
	SearchOptions *SearchOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:          NewTaskMapper(),
		User:          NewUserMapper(),
		SearchOptions: NewSearchOptionsMapper(),
	}
}
