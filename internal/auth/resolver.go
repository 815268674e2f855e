package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

// IdentitySource looks up the stored user and role assignments behind a
// validated token subject.
type IdentitySource interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetRoleAssignments(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error)
}

// Resolver turns request credentials into a principal. Two transports are
// accepted: an Authorization bearer header and the access_token cookie.
type Resolver struct {
	users IdentitySource
	cfg   *config.JWTConfig
}

func NewResolver(users IdentitySource, cfg *config.JWTConfig) *Resolver {
	return &Resolver{users: users, cfg: cfg}
}

// Resolve tries the header token first and falls back to the cookie token.
// A validation failure on one transport never prevents trying the other.
// When neither transport yields a valid token the result is a nil principal
// with no error: absence of credentials is anonymous, not a failure.
func (r *Resolver) Resolve(ctx context.Context, headerValue, cookieValue string) (*authz.Principal, error) {
	var claims *Claims

	if token := bearerToken(headerValue); token != "" {
		if c, err := ValidateJWT(token, r.cfg); err == nil {
			claims = c
		}
	}
	if claims == nil && cookieValue != "" {
		if c, err := ValidateJWT(cookieValue, r.cfg); err == nil {
			claims = c
		}
	}
	if claims == nil {
		return nil, nil
	}

	user, err := r.users.GetUser(ctx, claims.UserID)
	if err != nil {
		// Token is valid but the subject no longer exists.
		return nil, authz.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, authz.ErrUnauthenticated
	}

	roles, err := r.users.GetRoleAssignments(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &authz.Principal{
		UserID:      user.ID,
		TenantID:    user.TenantID,
		IsSuperuser: user.IsSuperuser,
		Roles:       roles,
	}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// value, returning "" when the header is absent or malformed.
func bearerToken(headerValue string) string {
	if headerValue == "" {
		return ""
	}
	parts := strings.Split(headerValue, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
