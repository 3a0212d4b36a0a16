package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mission-dispatch/internal/jwt"
	"mission-dispatch/internal/pkg/apperrors"
)

var skipAuth = map[string]bool{
	"/auth/token": true,
	"/health":     true,
	"/metrics":    true,
}

func Auth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth[c.Request.URL.Path] {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "missing or malformed authorization")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "auth failed",
				slog.String("path", c.Request.URL.Path),
				slog.String("ip", c.ClientIP()),
				slog.String("error", err.Error()),
			)
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set("sub", claims.Sub)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// bearerToken extracts the credential from the Authorization header, or from
// the `token` query parameter for WebSocket upgrades (browsers cannot set
// headers on a WebSocket handshake).
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}
	return c.Query("token")
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: apperrors.ErrorBody{
			Code:    "UNAUTHORIZED",
			Message: msg,
		},
	})
}
