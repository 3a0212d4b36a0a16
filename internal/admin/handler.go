package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mission-dispatch/internal/mission"
	"mission-dispatch/internal/pkg/apperrors"
)

type Handler struct {
	adminService Service
}

func NewHandler(adminService Service) *Handler {
	return &Handler{adminService: adminService}
}

func (h *Handler) ListMissions(c *gin.Context) {
	limit := parseLimit(c)

	var statusPtr *mission.AssignmentStatus
	if s := c.Query("status"); s != "" {
		st := mission.AssignmentStatus(s)
		statusPtr = &st
	}

	missions, err := h.adminService.ListMissions(c.Request.Context(), statusPtr, limit)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"missions": missions, "limit": limit})
}

func (h *Handler) ForceDispatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid mission id"}})
		return
	}

	if err := h.adminService.ForceDispatch(c.Request.Context(), id.String()); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dispatch started", "mission_id": id.String()})
}

func (h *Handler) ListDrivers(c *gin.Context) {
	drivers := h.adminService.DriverPresence()
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "online": len(drivers)})
}

func parseLimit(c *gin.Context) int {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	return limit
}
