package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func guardConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          "guard-secret",
		ExpirationHours: 1,
		CookieName:      "access_token",
	}
}

func guardRouter(cfg *config.JWTConfig, p *authz.Principal) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if p != nil {
			c.Set("principal", p)
		}
		c.Next()
	})
	router.Use(TenantGuard(cfg, TenantGuardExemptPrefixes))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	router.GET("/api/appointments", ok)
	router.POST("/api/auth/login", ok)
	router.GET("/admin/tenants", ok)
	return router
}

func doGuard(router *gin.Engine, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTenantGuardMismatchRejected(t *testing.T) {
	cfg := guardConfig()
	currentTenant := uuid.New()
	staleTenant := uuid.New()

	userID := uuid.New()
	token, err := auth.GenerateJWT(userID, &staleTenant, cfg)
	require.NoError(t, err)

	router := guardRouter(cfg, &authz.Principal{UserID: userID, TenantID: &currentTenant})
	w := doGuard(router, http.MethodGet, "/api/appointments", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTenantGuardMatchingTenantPasses(t *testing.T) {
	cfg := guardConfig()
	tenantID := uuid.New()
	userID := uuid.New()

	token, err := auth.GenerateJWT(userID, &tenantID, cfg)
	require.NoError(t, err)

	router := guardRouter(cfg, &authz.Principal{UserID: userID, TenantID: &tenantID})
	w := doGuard(router, http.MethodGet, "/api/appointments", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantGuardTenantlessTokenPasses(t *testing.T) {
	cfg := guardConfig()
	tenantID := uuid.New()
	userID := uuid.New()

	// issued before onboarding, carries no tenant claim
	token, err := auth.GenerateJWT(userID, nil, cfg)
	require.NoError(t, err)

	router := guardRouter(cfg, &authz.Principal{UserID: userID, TenantID: &tenantID})
	w := doGuard(router, http.MethodGet, "/api/appointments", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantGuardUndecodableTokenPasses(t *testing.T) {
	cfg := guardConfig()
	router := guardRouter(cfg, nil)

	w := doGuard(router, http.MethodGet, "/api/appointments", "not-a-jwt")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantGuardExemptPaths(t *testing.T) {
	cfg := guardConfig()
	staleTenant := uuid.New()
	currentTenant := uuid.New()
	userID := uuid.New()

	token, err := auth.GenerateJWT(userID, &staleTenant, cfg)
	require.NoError(t, err)

	router := guardRouter(cfg, &authz.Principal{UserID: userID, TenantID: &currentTenant})

	w := doGuard(router, http.MethodPost, "/api/auth/login", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGuard(router, http.MethodGet, "/admin/tenants", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantGuardSuperuserExempt(t *testing.T) {
	cfg := guardConfig()
	staleTenant := uuid.New()
	userID := uuid.New()

	token, err := auth.GenerateJWT(userID, &staleTenant, cfg)
	require.NoError(t, err)

	router := guardRouter(cfg, &authz.Principal{UserID: userID, IsSuperuser: true})
	w := doGuard(router, http.MethodGet, "/api/appointments", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
