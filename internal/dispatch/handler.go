package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mission-dispatch/internal/mission"
	"mission-dispatch/internal/pkg/apperrors"
)

// Handler is the driver-facing HTTP surface of the offer protocol. Drivers
// on a WebSocket answer inline; these endpoints serve clients that poll.
type Handler struct {
	coordinator *Coordinator
}

func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

func (h *Handler) AcceptOffer(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	driverID := c.GetString("sub")
	if err := h.coordinator.Accept(c.Request.Context(), missionID.String(), driverID); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mission accepted", "mission_id": missionID.String()})
}

func (h *Handler) DeclineOffer(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	driverID := c.GetString("sub")
	if err := h.coordinator.Decline(c.Request.Context(), missionID.String(), driverID); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offer declined", "mission_id": missionID.String()})
}

func (h *Handler) AdvanceStatus(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	driverID := c.GetString("sub")
	next := mission.MissionStatus(req.Status)
	if err := h.coordinator.AdvanceMissionStatus(c.Request.Context(), missionID.String(), driverID, next); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated", "mission_id": missionID.String(), "status": req.Status})
}
