package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleManager, PermissionRequestApprove))
	assert.True(t, HasPermission(RoleOwner, PermissionAttendanceManage))
	assert.False(t, HasPermission(RoleEmployee, PermissionRequestApprove))
	assert.True(t, HasPermission(RoleEmployee, PermissionAttendanceCreate))
	assert.False(t, HasPermission(RolePending, PermissionAttendanceCreate))
	assert.False(t, HasPermission(Role("auditor"), PermissionReportsView))
}

func TestActorCanApprove(t *testing.T) {
	assert.True(t, Actor{Role: RoleOwner}.CanApprove())
	assert.True(t, Actor{Role: RoleManager}.CanApprove())
	assert.False(t, Actor{Role: RoleEmployee}.CanApprove())
	assert.False(t, Actor{}.CanApprove())
}
