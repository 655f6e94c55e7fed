package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resort/internal/domain"
	"resort/internal/pkg/jwt"
	"resort/internal/pkg/response"
)

// JWTAuth requires a valid bearer token and stores user_id and role on the context.
// Browsers cannot set headers on a websocket handshake, so an access_token
// query parameter is accepted in place of the header.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && c.Query("access_token") != "" {
			header = "Bearer " + c.Query("access_token")
		}
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// ActorFrom returns the authenticated staff member, or the system actor on public routes.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{UserID: c.GetInt64("user_id"), Role: c.GetString("role")}
}
