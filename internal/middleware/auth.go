package middleware

import (
	"strings"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	ClaimsKey = "claims"
)

func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated
// session holds role. It must run after Auth.
func RequireRole(role auth.Role) drift.HandlerFunc {
	return func(c *drift.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.Unauthorized("not authenticated")
			return
		}
		if claims.Role != role {
			c.Forbidden("insufficient permissions")
			return
		}

		c.Next()
	}
}

func GetClaims(c *drift.Context) *services.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*services.Claims); ok {
			return claims
		}
	}
	return nil
}
