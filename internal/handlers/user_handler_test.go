package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

func userHarness(t *testing.T, maxUsers int) (*repository.MemoryStore, *gin.Engine, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	tenantID := uuid.New()
	require.NoError(t, store.Tenants().Create(ctx, &models.Tenant{
		ID:        tenantID,
		Subdomain: "glow",
		OwnerID:   uuid.New(),
		MaxUsers:  maxUsers,
		IsActive:  true,
	}))

	limits := authz.NewLimits(repository.SeatCounts{Users: store.Users(), Roles: store.RoleAssignments()})
	h := NewUserHandler(store.Users(), store.Tenants(), store.RoleAssignments(), limits)

	router := gin.New()
	group := router.Group("/api/users", withPrincipal(tenantPrincipal(tenantID)))
	group.POST("", h.Create)
	return store, router, tenantID
}

func TestCreateTenantUser(t *testing.T) {
	store, router, tenantID := userHarness(t, 5)

	w := doJSON(router, http.MethodPost, "/api/users", gin.H{
		"email":     "Cashier@Example.com",
		"password":  "secret-pass",
		"full_name": "Pedro Ruiz",
		"role_code": authz.RoleCashier,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "cashier@example.com", created.Email)
	require.NotNil(t, created.TenantID)
	assert.Equal(t, tenantID, *created.TenantID)

	stored, err := store.Users().GetByEmail(context.Background(), "cashier@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestCreateTenantUserAtSeatLimit(t *testing.T) {
	store, router, tenantID := userHarness(t, 1)
	addStaff(t, store, tenantID)

	w := doJSON(router, http.MethodPost, "/api/users", gin.H{
		"email":     "second@example.com",
		"password":  "secret-pass",
		"full_name": "Second User",
		"role_code": authz.RoleCashier,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateTenantUserRejectsGlobalRole(t *testing.T) {
	_, router, _ := userHarness(t, 0)

	w := doJSON(router, http.MethodPost, "/api/users", gin.H{
		"email":     "mole@example.com",
		"password":  "secret-pass",
		"full_name": "Mole",
		"role_code": authz.RoleSuperAdmin,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTenantUserDuplicateEmail(t *testing.T) {
	store, router, tenantID := userHarness(t, 0)
	require.NoError(t, store.Users().Create(context.Background(), &models.User{
		ID: uuid.New(), Email: "taken@example.com", TenantID: &tenantID, IsActive: true,
	}))

	w := doJSON(router, http.MethodPost, "/api/users", gin.H{
		"email":     "taken@example.com",
		"password":  "secret-pass",
		"full_name": "Dup",
		"role_code": authz.RoleCashier,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
