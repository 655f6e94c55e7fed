package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resort/internal/domain"
	"resort/internal/pkg/response"
)

// RequireRole lets the request through when the token carries one of roles.
// Admins pass every check.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		got := domain.UserRole(role.(string))
		if got == domain.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if got == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
