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

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

func authHarness(t *testing.T) (*repository.MemoryStore, *gin.Engine, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:          "auth-handler-secret",
			ExpirationHours: 1,
			CookieName:      "access_token",
		},
	}
	store := repository.NewMemoryStore()
	h := NewAuthHandler(store.Users(), cfg)

	router := gin.New()
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.POST("/api/auth/logout", h.Logout)
	return store, router, cfg
}

func registerBody(email string) gin.H {
	return gin.H{
		"email":     email,
		"password":  "secret-pass",
		"full_name": "Ana Gomez",
	}
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	store, router, cfg := authHarness(t)

	w := doJSON(router, http.MethodPost, "/api/auth/register", registerBody("Ana@Example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.NotEqual(t, uuid.Nil, resp.User.ID)

	claims, err := auth.ValidateJWT(resp.Token, &cfg.JWT)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cfg.JWT.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, resp.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	stored, err := store.Users().GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRegisterTwiceKeepsBothAccounts(t *testing.T) {
	store, router, _ := authHarness(t)
	ctx := context.Background()

	w := doJSON(router, http.MethodPost, "/api/auth/register", registerBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, http.MethodPost, "/api/auth/register", registerBody("bea@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	ana, err := store.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	bea, err := store.Users().GetByEmail(ctx, "bea@example.com")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", ana.Email)
	assert.NotEqual(t, uuid.Nil, ana.ID)
	assert.NotEqual(t, uuid.Nil, bea.ID)
	assert.NotEqual(t, ana.ID, bea.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, router, _ := authHarness(t)

	w := doJSON(router, http.MethodPost, "/api/auth/register", registerBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, http.MethodPost, "/api/auth/register", registerBody("ana@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	_, router, cfg := authHarness(t)

	w := doJSON(router, http.MethodPost, "/api/auth/register", registerBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", gin.H{
		"email": "ana@example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := auth.ValidateJWT(resp.Token, &cfg.JWT)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	_, router, _ := authHarness(t)

	w := doJSON(router, http.MethodPost, "/api/auth/register", registerBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", gin.H{
		"email": "ana@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	store, router, _ := authHarness(t)
	ctx := context.Background()

	w := doJSON(router, http.MethodPost, "/api/auth/register", registerBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	user, err := store.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, store.Users().Update(ctx, user))

	w = doJSON(router, http.MethodPost, "/api/auth/login", gin.H{
		"email": "ana@example.com", "password": "secret-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	_, router, cfg := authHarness(t)

	w := doJSON(router, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cfg.JWT.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
