package api

import (
	"encoding/json"
	"time"

	"worklog/internal/domain"
	"worklog/internal/services"
)

// RegisterRequest is the body of POST /accounts/register
type RegisterRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Manager     string `json:"manager"`
}

// PasswordChangeRequest is the body of POST /accounts/password_change
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// TaskRequest is the body of POST /tasks and PUT /tasks/:id.
// TimeSpent accepts both 30 and "30".
type TaskRequest struct {
	Description string      `json:"description"`
	TimeSpent   json.Number `json:"time_spent"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	ManagerID   *int64    `json:"manager_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskResponse is a task as seen by the requesting user
type TaskResponse struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Description  string    `json:"description"`
	TimeSpent    int       `json:"time_spent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Editable     bool      `json:"editable"`
	EditDeadline time.Time `json:"edit_deadline"`
}

// TaskListResponse is a week of tasks
type TaskListResponse struct {
	Week  string         `json:"week"`
	Tasks []TaskResponse `json:"tasks"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func newUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		ManagerID:   user.ManagerID,
		CreatedAt:   user.CreatedAt,
	}
}

func newUserResponses(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, newUserResponse(user))
	}
	return result
}

func newTaskResponse(view services.TaskView) TaskResponse {
	return TaskResponse{
		ID:           view.Task.ID,
		OwnerID:      view.Task.OwnerID,
		Description:  view.Task.Description,
		TimeSpent:    view.Task.Minutes,
		CreatedAt:    view.Task.CreatedAt,
		UpdatedAt:    view.Task.UpdatedAt,
		Editable:     view.Editable,
		EditDeadline: view.EditDeadline,
	}
}
