package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/access"
)

// RequirePermission creates middleware that checks for specific permission.
func RequirePermission(rbac *access.RBAC, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := GetAdmin(c)
		if username == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if !rbac.Can(username, resource, action) {
			slog.Warn("Permission denied",
				"username", username,
				"resource", resource,
				"action", action)
			AbortWithError(c, ErrInsufficientPermissions)
			return
		}

		slog.Debug("Permission granted",
			"username", username,
			"resource", resource,
			"action", action)

		c.Next()
	}
}
