package mission

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mission-dispatch/internal/common"
	"mission-dispatch/internal/pkg/apperrors"
)

// Dispatcher is a local interface to avoid importing the dispatch package
// (circular dep).
type Dispatcher interface {
	StartAssignment(ctx context.Context, missionID string) error
	Cancel(ctx context.Context, missionID, clientID string) error
}

type Handler struct {
	service    Service
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewHandler(service Service, dispatcher Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{service: service, dispatcher: dispatcher, logger: logger}
}

type CreateMissionRequest struct {
	Origin      common.Location `json:"origin" binding:"required"`
	Destination common.Location `json:"destination" binding:"required"`
	Manifest    string          `json:"manifest" binding:"required"`
	CostCents   int64           `json:"cost_cents"`
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) CreateMission(c *gin.Context) {
	var req CreateMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	sub := c.GetString("sub")
	m, err := h.service.CreateMission(c.Request.Context(), sub, req.Origin, req.Destination, req.Manifest, req.CostCents)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mission": m})
}

// -------------------------------------------------------------------------------------------------
// ConfirmPayment marks the mission paid and kicks off the first assignment
// round. The round runs in the background: ranking candidates involves an
// external distance call and must not hold the HTTP request open.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	sub := c.GetString("sub")
	m, err := h.service.ConfirmPayment(c.Request.Context(), id, sub)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.dispatcher.StartAssignment(ctx, id.String()); err != nil {
			h.logger.Warn("dispatch after payment failed",
				slog.String("mission_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"mission": m, "message": "payment confirmed, dispatch started"})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) GetMission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	sub := c.GetString("sub")
	m, err := h.service.GetMission(c.Request.Context(), id, sub)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mission": m})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) GetHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	sub := c.GetString("sub")
	events, err := h.service.GetHistory(c.Request.Context(), id, sub)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) CancelMission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	sub := c.GetString("sub")
	if err := h.dispatcher.Cancel(c.Request.Context(), id.String(), sub); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mission canceled"})
}
