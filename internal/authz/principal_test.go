package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

func TestHasPermission(t *testing.T) {
	tenantID := uuid.New()
	otherTenant := uuid.New()

	t.Run("role grants its permissions", func(t *testing.T) {
		p := &Principal{
			UserID:   uuid.New(),
			TenantID: &tenantID,
			Roles: []models.RoleAssignment{
				{RoleCode: RoleCashier, TenantID: &tenantID},
			},
		}
		assert.True(t, p.HasPermission(PermManagePOS))
		assert.False(t, p.HasPermission(PermManageEmployees))
	})

	t.Run("assignment in another tenant grants nothing", func(t *testing.T) {
		p := &Principal{
			UserID:   uuid.New(),
			TenantID: &tenantID,
			Roles: []models.RoleAssignment{
				{RoleCode: RoleClientAdmin, TenantID: &otherTenant},
			},
		}
		assert.False(t, p.HasPermission(PermManagePOS))
	})

	t.Run("global role applies in any tenant", func(t *testing.T) {
		p := &Principal{
			UserID:   uuid.New(),
			TenantID: &tenantID,
			Roles: []models.RoleAssignment{
				{RoleCode: RoleSupport},
			},
		}
		assert.True(t, p.HasPermission(PermViewTenants))
	})

	t.Run("superuser has every permission", func(t *testing.T) {
		p := &Principal{UserID: uuid.New(), IsSuperuser: true}
		assert.True(t, p.HasPermission(PermManageSettings))
	})

	t.Run("nil principal has none", func(t *testing.T) {
		var p *Principal
		assert.False(t, p.HasPermission(PermManagePOS))
	})

	t.Run("unknown role grants nothing", func(t *testing.T) {
		p := &Principal{
			UserID:   uuid.New(),
			TenantID: &tenantID,
			Roles: []models.RoleAssignment{
				{RoleCode: "Made-Up-Role", TenantID: &tenantID},
			},
		}
		assert.False(t, p.HasPermission(PermManagePOS))
	})
}

func TestHasRole(t *testing.T) {
	tenantID := uuid.New()
	otherTenant := uuid.New()

	p := &Principal{
		UserID:   uuid.New(),
		TenantID: &tenantID,
		Roles: []models.RoleAssignment{
			{RoleCode: RoleClientAdmin, TenantID: &tenantID},
			{RoleCode: RoleCashier, TenantID: &otherTenant},
			{RoleCode: RoleSupport},
		},
	}

	assert.True(t, p.HasRole(RoleClientAdmin))
	assert.True(t, p.HasRole(RoleSupport))
	assert.False(t, p.HasRole(RoleCashier))
}

func TestRoleCatalogue(t *testing.T) {
	assert.True(t, ValidRole(RoleSuperAdmin))
	assert.False(t, ValidRole("nope"))
	assert.True(t, IsEmployeeRole(RoleClientStaff))
	assert.False(t, IsEmployeeRole(RoleClientAdmin))
	assert.Empty(t, PermissionsFor("nope"))
}
