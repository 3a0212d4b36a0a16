package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type idempotencyStore interface {
	Check(ctx context.Context, subject, key string) ([]byte, bool, error)
	Set(ctx context.Context, subject, key string, response []byte) error
}

// responseRecorder captures the response body so we can replay it.
type responseRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. A retried Accept that already won must not surface
// INVALID_STATE to the driver who holds the assignment.
func Idempotency(store idempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}

		subject := c.GetString("sub")
		ctx := c.Request.Context()

		cached, found, err := store.Check(ctx, subject, key)
		if err != nil {
			slog.ErrorContext(ctx, "idempotency check failed",
				slog.String("error", err.Error()),
			)
			// fail open
			c.Next()
			return
		}

		if found {
			c.Data(http.StatusOK, "application/json", cached)
			c.Abort()
			return
		}

		rec := &responseRecorder{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		// Only cache successful responses.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			if err := store.Set(ctx, subject, key, rec.body.Bytes()); err != nil {
				slog.ErrorContext(ctx, "idempotency store failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
