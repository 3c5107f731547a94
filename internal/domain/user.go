package domain

import "time"

// User represents an account in the domain model.
// ManagerID is nil for users who report to nobody.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	ManagerID    *int64
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser creates a new User with the given login and display names.
func NewUser(username, displayName string) User {
	return User{
		Username:    username,
		DisplayName: displayName,
	}
}

// HasManager reports whether the user reports to someone.
func (u User) HasManager() bool {
	return u.ManagerID != nil
}

// ReportsTo reports whether managerID is the user's direct manager.
func (u User) ReportsTo(managerID int64) bool {
	return u.ManagerID != nil && *u.ManagerID == managerID
}

// String returns the display name, falling back to the username.
func (u User) String() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
