package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
)

// TenantGuardExemptPrefixes are the path prefixes the tenant claim guard
// skips: routes that run before a tenant exists, platform admin routes and
// operational endpoints.
var TenantGuardExemptPrefixes = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/password-reset",
	"/api/auth/verify-email",
	"/admin",
	"/docs",
	"/openapi",
	"/health",
	"/metrics",
}

// TenantGuard cross-checks the tenant claim baked into the raw token against
// the tenant the authenticated user currently belongs to. A stale token
// carrying another tenant is rejected even though its signature is valid.
// Tokens that fail to decode are left for the authentication layer to judge.
func TenantGuard(cfg *config.JWTConfig, exemptPrefixes []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range exemptPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token := rawToken(c, cfg.CookieName)
		if token == "" {
			c.Next()
			return
		}

		claims, err := auth.ValidateJWT(token, cfg)
		if err != nil {
			c.Next()
			return
		}

		p := PrincipalFrom(c)
		if p == nil || claims.TenantID == nil {
			c.Next()
			return
		}
		if p.IsSuperuser {
			c.Next()
			return
		}
		if p.TenantID == nil || *p.TenantID != *claims.TenantID {
			c.JSON(http.StatusForbidden, gin.H{"error": "token tenant does not match current tenant"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// rawToken returns the same token the resolver would pick: header first,
// cookie fallback.
func rawToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie
}
