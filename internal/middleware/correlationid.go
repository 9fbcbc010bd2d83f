package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stepguard/approval-api/pkg/utils"
)

// CorrelationID attaches a correlation ID to every request, reusing one
// supplied by the caller when it is a well-formed UUID
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" || !utils.IsValidUUID(correlationID) {
			correlationID = utils.GenerateID()
		}
		c.Set("correlation_id", correlationID)
		c.Header("X-Correlation-ID", correlationID)
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{"X-Correlation-ID", "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}
