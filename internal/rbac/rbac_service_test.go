package rbac_test

import (
	"testing"

	"flexileave/internal/domain"
	"flexileave/internal/rbac"
	"flexileave/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) rbac.Service {
	t.Helper()

	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)

	svc := rbac.NewService(enforcer)
	assert.NoError(t, svc.LoadPolicy(rbac.DefaultPolicies))
	return svc
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		role     domain.Role
		resource string
		action   string
		want     bool
	}{
		{"user creates leave", domain.RoleUser, rbac.ResourceLeave, rbac.ActionCreate, true},
		{"user cannot approve", domain.RoleUser, rbac.ResourceLeave, rbac.ActionApprove, false},
		{"user cannot manage balances", domain.RoleUser, rbac.ResourceBalance, rbac.ActionManage, false},
		{"admin approves", domain.RoleAdmin, rbac.ResourceLeave, rbac.ActionApprove, true},
		{"admin inherits user permissions", domain.RoleAdmin, rbac.ResourceLeave, rbac.ActionCreate, true},
		{"unknown action denied", domain.RoleAdmin, rbac.ResourceLeave, "delete", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{Role: tt.role, Resource: tt.resource, Action: tt.action})

			assert.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestRBACService_Permissions(t *testing.T) {
	svc := newTestService(t)

	userPerms, err := svc.Permissions(domain.RoleUser)
	assert.NoError(t, err)
	assert.Contains(t, userPerms, "leave:create")
	assert.NotContains(t, userPerms, "leave:approve")

	adminPerms, err := svc.Permissions(domain.RoleAdmin)
	assert.NoError(t, err)
	assert.Contains(t, adminPerms, "leave:approve")
	assert.Contains(t, adminPerms, "leave:create")
}
