package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mission-dispatch/internal/observability"
	"mission-dispatch/internal/pkg/apperrors"
)

// Bulkhead caps in-flight requests per pool so a flood of location pings
// cannot starve accept/decline mutations of handler capacity.
func Bulkhead(pool string, maxConcurrent int) gin.HandlerFunc {
	sem := make(chan struct{}, maxConcurrent)

	return func(c *gin.Context) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			c.Next()
		default:
			observability.BulkheadRejects.WithLabelValues(pool).Inc()
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apperrors.ErrorResponse{
				Error: apperrors.ErrorBody{
					Code:    "SERVICE_UNAVAILABLE",
					Message: "server is at capacity, please try again later",
				},
			})
		}
	}
}
