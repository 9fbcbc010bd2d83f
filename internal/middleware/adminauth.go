package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stepguard/approval-api/internal/config"
	"github.com/stepguard/approval-api/internal/utils"
)

// AdminAuth verifies admin credentials and binds the admin identity into the
// request context. Credential verification is the trust boundary; everything
// behind this middleware treats the identity as already authenticated.
func AdminAuth(cfg *config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.IsBasicAuthEnabled() {
			// Local development only; production configs keep this enabled.
			c.Set("adminID", "local-admin")
			c.Next()
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || !cfg.ValidateUser(username, password) {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			utils.SendUnauthorizedError(c, "Admin authentication required")
			c.Abort()
			return
		}

		c.Set("adminID", username)
		c.Next()
	}
}
