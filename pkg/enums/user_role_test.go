package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoleCapabilities(t *testing.T) {
	assert.False(t, UserRoleEmployee.CanDelete())
	assert.False(t, UserRoleEmployee.CanViewRatings())

	assert.True(t, UserRoleManager.CanDelete())
	assert.True(t, UserRoleManager.CanViewRatings())

	assert.True(t, UserRoleAdmin.CanDelete())
	assert.True(t, UserRoleAdmin.CanViewRatings())

	assert.False(t, UserRole("intern").CanDelete())
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("manager")
	require.NoError(t, err)
	assert.Equal(t, UserRoleManager, role)

	_, err = ParseUserRole("superuser")
	assert.Error(t, err)
}

func TestUserRoleIsValid(t *testing.T) {
	assert.True(t, UserRoleEmployee.IsValid())
	assert.False(t, UserRole("").IsValid())
}
