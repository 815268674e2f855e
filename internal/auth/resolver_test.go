package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          "test-secret",
		ExpirationHours: 1,
		CookieName:      "access_token",
	}
}

func resolverFixture(t *testing.T) (*Resolver, *models.User, string) {
	t.Helper()

	store := repository.NewMemoryStore()
	tenantID := uuid.New()
	user := &models.User{
		ID:       uuid.New(),
		Email:    "owner@example.com",
		TenantID: &tenantID,
		IsActive: true,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))

	cfg := testJWTConfig()
	token, err := GenerateJWT(user.ID, user.TenantID, cfg)
	require.NoError(t, err)

	resolver := NewResolver(repository.Identity{Users: store.Users(), Roles: store.RoleAssignments()}, cfg)
	return resolver, user, token
}

func TestResolveHeaderToken(t *testing.T) {
	resolver, user, token := resolverFixture(t)

	p, err := resolver.Resolve(context.Background(), "Bearer "+token, "")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, user.ID, p.UserID)
	require.NotNil(t, p.TenantID)
	assert.Equal(t, *user.TenantID, *p.TenantID)
}

func TestResolveCookieToken(t *testing.T) {
	resolver, user, token := resolverFixture(t)

	p, err := resolver.Resolve(context.Background(), "", token)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, user.ID, p.UserID)
}

func TestResolveHeaderWinsOverCookie(t *testing.T) {
	resolver, user, token := resolverFixture(t)

	// garbage cookie next to a valid header must not matter
	p, err := resolver.Resolve(context.Background(), "Bearer "+token, "garbage")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, user.ID, p.UserID)
}

func TestResolveBadHeaderFallsBackToCookie(t *testing.T) {
	resolver, user, token := resolverFixture(t)

	p, err := resolver.Resolve(context.Background(), "Bearer not-a-token", token)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, user.ID, p.UserID)
}

func TestResolveAnonymous(t *testing.T) {
	resolver, _, _ := resolverFixture(t)

	p, err := resolver.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = resolver.Resolve(context.Background(), "Basic abc", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = resolver.Resolve(context.Background(), "", "garbage")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestResolveUnknownSubject(t *testing.T) {
	resolver, _, _ := resolverFixture(t)

	cfg := testJWTConfig()
	token, err := GenerateJWT(uuid.New(), nil, cfg)
	require.NoError(t, err)

	p, err := resolver.Resolve(context.Background(), "Bearer "+token, "")
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
	assert.Nil(t, p)
}

func TestResolveInactiveUser(t *testing.T) {
	store := repository.NewMemoryStore()
	user := &models.User{ID: uuid.New(), Email: "gone@example.com", IsActive: false}
	require.NoError(t, store.Users().Create(context.Background(), user))

	cfg := testJWTConfig()
	token, err := GenerateJWT(user.ID, nil, cfg)
	require.NoError(t, err)

	resolver := NewResolver(repository.Identity{Users: store.Users(), Roles: store.RoleAssignments()}, cfg)
	p, err := resolver.Resolve(context.Background(), "Bearer "+token, "")
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
	assert.Nil(t, p)
}

func TestResolveWrongSecret(t *testing.T) {
	resolver, user, _ := resolverFixture(t)

	other := &config.JWTConfig{Secret: "another-secret", ExpirationHours: 1}
	token, err := GenerateJWT(user.ID, user.TenantID, other)
	require.NoError(t, err)

	p, err := resolver.Resolve(context.Background(), "Bearer "+token, "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
