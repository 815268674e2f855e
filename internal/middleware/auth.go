// Package middleware wires authentication, tenant guarding and plan gating
// into the gin pipeline.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/metrics"
)

const principalKey = "principal"

// Authenticate resolves the request's credentials into a principal and stores
// it in the gin context. Requests without credentials pass through anonymous;
// downstream middleware decides whether that is acceptable.
func Authenticate(resolver *auth.Resolver, cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieValue, _ := c.Cookie(cfg.CookieName)

		principal, err := resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"), cookieValue)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired credentials"})
			c.Abort()
			return
		}
		if principal != nil {
			c.Set(principalKey, principal)
		}

		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, or nil for anonymous
// requests.
func PrincipalFrom(c *gin.Context) *authz.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, ok := v.(*authz.Principal)
	if !ok {
		return nil
	}
	return p
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission rejects principals lacking the permission. Superusers
// always pass.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !p.HasPermission(permission) {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission '" + permission + "' required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperuser restricts a route to platform operators.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !p.IsSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireFeature rejects requests whose tenant plan does not include the
// feature. The denial reason is reported so the frontend can distinguish a
// missing plan from a plan lacking the feature.
func RequireFeature(gate *authz.Gate, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := gate.RequireFeature(c.Request.Context(), PrincipalFrom(c), feature)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check plan features"})
			c.Abort()
			return
		}
		if decision.Allowed() {
			c.Next()
			return
		}

		metrics.GateDenialsTotal.WithLabelValues(string(decision)).Inc()
		status := http.StatusForbidden
		if decision == authz.DecisionUnauthenticated {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{
			"error":   "feature '" + feature + "' is not enabled",
			"reason":  string(decision),
			"feature": feature,
		})
		c.Abort()
	}
}
