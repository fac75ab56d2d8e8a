package middleware

import (
	"net/http"
	"slices"
	"strings"

	"freightledger/internal/service"
	"freightledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireRole
const (
	ContextUsername = "username"
	ContextRole     = "userRole"
)

// BearerToken reads the token from the access_token cookie, falling back to
// the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token, true
	}
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

// RequireRole validates the JWT and checks the role claim against allowedRoles.
// With no roles given any authenticated user passes.
func RequireRole(auth service.AuthService, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing. Expected 'Bearer <token>'"))
			return
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(err.Error()))
			return
		}

		if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error("Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextUsername, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
