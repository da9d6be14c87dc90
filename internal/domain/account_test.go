package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"officer", "supervisor", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	for _, invalid := range []string{"", "Officer", "ADMIN", "commissioner"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q should be rejected", invalid)
	}
}

func TestRoleOrdering(t *testing.T) {
	assert.Greater(t, RoleAdmin.Level(), RoleSupervisor.Level())
	assert.Greater(t, RoleSupervisor.Level(), RoleOfficer.Level())

	assert.True(t, RoleAdmin.AtLeast(RoleSupervisor))
	assert.True(t, RoleSupervisor.AtLeast(RoleSupervisor))
	assert.False(t, RoleOfficer.AtLeast(RoleSupervisor))

	// unknown roles sit below every real tier
	assert.False(t, Role("commissioner").AtLeast(RoleOfficer))
}
