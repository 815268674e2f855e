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

func employeeHarness(t *testing.T, maxEmployees int) (*repository.MemoryStore, *gin.Engine, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	tenantID := uuid.New()
	require.NoError(t, store.Tenants().Create(ctx, &models.Tenant{
		ID:           tenantID,
		Subdomain:    "glow",
		OwnerID:      uuid.New(),
		MaxEmployees: maxEmployees,
		IsActive:     true,
	}))

	limits := authz.NewLimits(repository.SeatCounts{Users: store.Users(), Roles: store.RoleAssignments()})
	h := NewEmployeeHandler(store.Employees(), store.Tenants(), store.RoleAssignments(), limits)

	router := gin.New()
	group := router.Group("/api/employees", withPrincipal(tenantPrincipal(tenantID)))
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	return store, router, tenantID
}

// addStaff stores an active user holding the staff role so the seat counter
// sees an occupied seat.
func addStaff(t *testing.T, store *repository.MemoryStore, tenantID uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", TenantID: &tenantID, IsActive: true}
	require.NoError(t, store.Users().Create(ctx, user))
	_, err := store.RoleAssignments().GetOrCreateAssignment(ctx, &models.RoleAssignment{
		ID:       uuid.New(),
		UserID:   user.ID,
		RoleCode: authz.RoleClientStaff,
		TenantID: &tenantID,
	})
	require.NoError(t, err)
	return user.ID
}

func TestCreateEmployee(t *testing.T) {
	store, router, tenantID := employeeHarness(t, 5)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: userID, Email: "staff@example.com", TenantID: &tenantID, IsActive: true}))

	w := doJSON(router, http.MethodPost, "/api/employees", gin.H{
		"user_id":   userID,
		"full_name": "Carla Diaz",
		"specialty": "color",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Employee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, tenantID, created.TenantID)

	// staff role was assigned alongside the record
	roles, err := store.RoleAssignments().ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, authz.RoleClientStaff, roles[0].RoleCode)
}

func TestCreateEmployeeAtSeatLimit(t *testing.T) {
	store, router, tenantID := employeeHarness(t, 2)

	addStaff(t, store, tenantID)
	addStaff(t, store, tenantID)

	w := doJSON(router, http.MethodPost, "/api/employees", gin.H{
		"user_id":   uuid.New(),
		"full_name": "One Too Many",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateEmployeeUnlimitedSeats(t *testing.T) {
	store, router, tenantID := employeeHarness(t, 0)

	for i := 0; i < 5; i++ {
		addStaff(t, store, tenantID)
	}

	w := doJSON(router, http.MethodPost, "/api/employees", gin.H{
		"user_id":   uuid.New(),
		"full_name": "Always Room",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func superuserEmployeeRouter(store *repository.MemoryStore) *gin.Engine {
	limits := authz.NewLimits(repository.SeatCounts{Users: store.Users(), Roles: store.RoleAssignments()})
	h := NewEmployeeHandler(store.Employees(), store.Tenants(), store.RoleAssignments(), limits)

	router := gin.New()
	router.POST("/api/employees", withPrincipal(&authz.Principal{UserID: uuid.New(), IsSuperuser: true}), h.Create)
	return router
}

func TestCreateEmployeeSuperuserNeedsTenant(t *testing.T) {
	store, _, _ := employeeHarness(t, 5)
	router := superuserEmployeeRouter(store)

	w := doJSON(router, http.MethodPost, "/api/employees", gin.H{
		"user_id":   uuid.New(),
		"full_name": "No Tenant",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEmployeeSuperuserSuppliedTenant(t *testing.T) {
	store, _, tenantID := employeeHarness(t, 5)
	router := superuserEmployeeRouter(store)

	w := doJSON(router, http.MethodPost, "/api/employees", gin.H{
		"user_id":   uuid.New(),
		"full_name": "Placed Staff",
		"tenant_id": tenantID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Employee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, tenantID, created.TenantID)
}

func TestEmployeeCrossTenantNotFound(t *testing.T) {
	store, router, _ := employeeHarness(t, 5)
	ctx := context.Background()

	foreign := &models.Employee{ID: uuid.New(), TenantID: uuid.New(), UserID: uuid.New(), FullName: "Elsewhere"}
	require.NoError(t, store.Employees().Create(ctx, foreign))

	w := doJSON(router, http.MethodGet, "/api/employees/"+foreign.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Employees []models.Employee `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Employees)
}
