package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teztech/internal/database"
	"teztech/internal/settings"
)

// MaintenanceGate returns 503 for non-admin traffic while maintenance mode
// is enabled in site settings. Admins pass so they can turn it back off.
func MaintenanceGate(store *settings.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := store.GetOrCreate(c.Request.Context())
		if err != nil {
			// Settings being unreadable should not take the site down.
			c.Next()
			return
		}
		if !doc.Maintenance.Enabled {
			c.Next()
			return
		}
		if RoleFromContext(c) == database.RoleAdmin {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":   "maintenance",
			"message": doc.Maintenance.Message,
		})
	}
}
