package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/swisspharma/opsboard-backend/internal/authz"
	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// RequireCapability returns a middleware that allows only users holding
// the given capability. Target-dependent checks re-validate in handlers.
func RequireCapability(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !authz.Can(user, action, nil) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
