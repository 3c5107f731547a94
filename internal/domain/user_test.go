package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_ReportsTo(t *testing.T) {
	managerID := int64(10)
	user := User{ID: 11, Username: "dev", ManagerID: &managerID}

	assert.True(t, user.HasManager())
	assert.True(t, user.ReportsTo(10))
	assert.False(t, user.ReportsTo(12))
	assert.False(t, User{Username: "ceo"}.ReportsTo(10))
}

func TestUser_String(t *testing.T) {
	assert.Equal(t, "Alice Smith", NewUser("alice", "Alice Smith").String())
	assert.Equal(t, "bob", NewUser("bob", "").String())
}
