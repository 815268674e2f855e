package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/services"
)

// AdminHandler serves the platform-operator API: plan catalogue management
// and tenant administration. Routes using it sit behind RequireSuperuser.
type AdminHandler struct {
	tenants *services.TenantService
	plans   repository.PlanRepository
}

func NewAdminHandler(tenants *services.TenantService, plans repository.PlanRepository) *AdminHandler {
	return &AdminHandler{tenants: tenants, plans: plans}
}

type PlanRequest struct {
	Name         string          `json:"name" binding:"required"`
	PlanType     string          `json:"plan_type" binding:"required"`
	Price        float64         `json:"price"`
	Currency     string          `json:"currency" binding:"required"`
	Features     map[string]bool `json:"features"`
	MaxEmployees int             `json:"max_employees"`
	MaxUsers     int             `json:"max_users"`
	IsActive     *bool           `json:"is_active"`
}

func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := &models.SubscriptionPlan{
		ID:           uuid.New(),
		Name:         req.Name,
		PlanType:     req.PlanType,
		Price:        req.Price,
		Currency:     req.Currency,
		Features:     req.Features,
		MaxEmployees: req.MaxEmployees,
		MaxUsers:     req.MaxUsers,
		IsActive:     true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.plans.Create(c.Request.Context(), plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	plan, err := h.plans.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get plan"})
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan.Name = req.Name
	plan.PlanType = req.PlanType
	plan.Price = req.Price
	plan.Currency = req.Currency
	plan.Features = req.Features
	plan.MaxEmployees = req.MaxEmployees
	plan.MaxUsers = req.MaxUsers
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.plans.Update(c.Request.Context(), plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *AdminHandler) ListTenants(c *gin.Context) {
	tenants, err := h.tenants.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tenants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *AdminHandler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	tenant, err := h.tenants.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get tenant"})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type ChangePlanRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

func (h *AdminHandler) ChangeTenantPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenant, err := h.tenants.ChangePlan(c.Request.Context(), id, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, services.ErrPlanUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "plan not available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change plan"})
		}
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type TenantStatusRequest struct {
	Status models.TenantStatus `json:"status" binding:"required"`
}

func (h *AdminHandler) SetTenantStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req TenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case models.TenantStatusTrial, models.TenantStatusActive,
		models.TenantStatusSuspended, models.TenantStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	tenant, err := h.tenants.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update tenant"})
		return
	}
	c.JSON(http.StatusOK, tenant)
}
