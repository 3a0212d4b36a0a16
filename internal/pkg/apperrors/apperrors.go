package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "mission-dispatch/internal/errors"
)

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var codeToStatus = map[string]int{
	domainerrors.ErrNotFound:        http.StatusNotFound,
	domainerrors.ErrInvalidState:    http.StatusConflict,
	domainerrors.ErrBusy:            http.StatusServiceUnavailable,
	domainerrors.ErrRaceLost:        http.StatusServiceUnavailable,
	domainerrors.ErrUpstreamFailure: http.StatusBadGateway,
	domainerrors.ErrUnauthorized:    http.StatusUnauthorized,
	domainerrors.ErrForbidden:       http.StatusForbidden,
	domainerrors.ErrConflict:        http.StatusConflict,
	domainerrors.ErrValidation:      http.StatusBadRequest,
	domainerrors.ErrInternal:        http.StatusInternalServerError,
}

// retryable codes get a Retry-After hint so well-behaved callers back off
// instead of hammering the per-mission lock.
var retryable = map[string]bool{
	domainerrors.ErrBusy:     true,
	domainerrors.ErrRaceLost: true,
}

func ToHTTPError(c *gin.Context, err error) {
	var domainErr *domainerrors.DomainError
	if errors.As(err, &domainErr) {
		status, ok := codeToStatus[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		if retryable[domainErr.Code] {
			c.Header("Retry-After", "1")
		}
		c.JSON(status, ErrorResponse{
			Error: ErrorBody{
				Code:    domainErr.Code,
				Message: domainErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{
			Code:    domainerrors.ErrInternal,
			Message: "an unexpected error occurred",
		},
	})
}
