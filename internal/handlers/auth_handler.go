// Package handlers contains the gin HTTP handlers.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

// cookieMaxAge converts the configured token lifetime to seconds.
func cookieMaxAge(cfg *config.JWTConfig) int {
	return cfg.ExpirationHours * 3600
}

type AuthHandler struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthHandler(users repository.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a user account. New accounts have no tenant; a tenant is
// provisioned when the user purchases a plan.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     req.FullName,
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

	token, err := auth.GenerateJWT(user.ID, user.TenantID, &h.cfg.JWT)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login authenticates a user and issues a token on both transports: the JSON
// body for SPA clients and an httpOnly cookie for browser navigation.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account disabled"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.TenantID, &h.cfg.JWT)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout clears the token cookie. Header-based clients just drop the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.cfg.JWT.CookieName, "", -1, "/", "", h.cfg.JWT.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user with its role assignments.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"roles": p.Roles,
	})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetCookie(h.cfg.JWT.CookieName, token, cookieMaxAge(&h.cfg.JWT), "/", "", h.cfg.JWT.CookieSecure, true)
}
