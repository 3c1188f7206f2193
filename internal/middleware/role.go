package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stylistbook/internal/pkg/response"
)

const (
	RoleClient  = "client"
	RoleStylist = "stylist"
	RoleAdmin   = "admin"
)

// RequireRole ensures that the authenticated user has one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}
