package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

// UserHandler manages the accounts belonging to a tenant.
type UserHandler struct {
	users   repository.UserRepository
	tenants repository.TenantRepository
	roles   repository.RoleRepository
	limits  *authz.Limits
}

func NewUserHandler(users repository.UserRepository, tenants repository.TenantRepository, roles repository.RoleRepository, limits *authz.Limits) *UserHandler {
	return &UserHandler{users: users, tenants: tenants, roles: roles, limits: limits}
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	RoleCode string `json:"role_code" binding:"required"`
}

// Create adds a member account to the caller's tenant. The plan's user seat
// limit is checked before anything is written; like the employee limit it is
// advisory, not transactional.
func (h *UserHandler) Create(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil || p.TenantID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "tenant membership required"})
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, ok := authz.Roles[req.RoleCode]
	if !ok || role.Type != authz.RoleTypeTenant {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role code"})
		return
	}

	tenant, err := h.tenants.GetByID(c.Request.Context(), *p.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get tenant"})
		return
	}
	within, err := h.limits.CheckUserLimit(c.Request.Context(), tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check user limit"})
		return
	}
	if !within {
		c.JSON(http.StatusForbidden, gin.H{"error": "user limit reached for current plan"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		FullName:     req.FullName,
		TenantID:     p.TenantID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	_, err = h.roles.GetOrCreateAssignment(c.Request.Context(), &models.RoleAssignment{
		ID:       uuid.New(),
		UserID:   user.ID,
		RoleCode: req.RoleCode,
		TenantID: p.TenantID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign role"})
		return
	}

	c.JSON(http.StatusCreated, user)
}
