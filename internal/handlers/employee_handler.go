package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

type EmployeeHandler struct {
	employees repository.EmployeeRepository
	tenants   repository.TenantRepository
	roles     repository.RoleRepository
	limits    *authz.Limits
}

func NewEmployeeHandler(employees repository.EmployeeRepository, tenants repository.TenantRepository, roles repository.RoleRepository, limits *authz.Limits) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, tenants: tenants, roles: roles, limits: limits}
}

type EmployeeRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	FullName  string    `json:"full_name" binding:"required"`
	Specialty string    `json:"specialty"`
	// honored for superusers only; everyone else gets their own tenant
	TenantID uuid.UUID `json:"tenant_id"`
}

// Create registers a staff member. The plan's employee seat limit is checked
// before anything is written; the check is advisory, the limit is not
// enforced transactionally.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := middleware.PrincipalFrom(c)
	employee := &models.Employee{
		ID:        uuid.New(),
		UserID:    req.UserID,
		FullName:  req.FullName,
		Specialty: req.Specialty,
		TenantID:  req.TenantID,
		IsActive:  true,
	}
	if err := authz.AssignOnCreate(p, employee); err != nil {
		abortAuthz(c, err)
		return
	}
	if employee.TenantID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id required"})
		return
	}

	tenant, err := h.tenants.GetByID(c.Request.Context(), employee.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get tenant"})
		return
	}
	ok, err := h.limits.CheckEmployeeLimit(c.Request.Context(), tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check employee limit"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "employee limit reached for current plan"})
		return
	}

	if err := h.employees.Create(c.Request.Context(), employee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create employee"})
		return
	}

	_, err = h.roles.GetOrCreateAssignment(c.Request.Context(), &models.RoleAssignment{
		ID:       uuid.New(),
		UserID:   req.UserID,
		RoleCode: authz.RoleClientStaff,
		TenantID: &employee.TenantID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign staff role"})
		return
	}

	c.JSON(http.StatusCreated, employee)
}

func (h *EmployeeHandler) List(c *gin.Context) {
	scope := authz.ScopeFor(middleware.PrincipalFrom(c))
	employees, err := h.employees.List(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list employees"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, employee)
}

type EmployeeUpdateRequest struct {
	FullName  *string `json:"full_name"`
	Specialty *string `json:"specialty"`
	IsActive  *bool   `json:"is_active"`
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	employee, ok := h.load(c)
	if !ok {
		return
	}

	var req EmployeeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Specialty != nil {
		employee.Specialty = *req.Specialty
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := h.employees.Update(c.Request.Context(), employee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update employee"})
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) load(c *gin.Context) (*models.Employee, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	employee, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get employee"})
		return nil, false
	}

	if err := authz.AuthorizeObject(middleware.PrincipalFrom(c), employee); err != nil {
		abortAuthz(c, err)
		return nil, false
	}
	return employee, true
}
