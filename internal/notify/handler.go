package notify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainerrors "mission-dispatch/internal/errors"
	"mission-dispatch/internal/mission"
	"mission-dispatch/internal/registry"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	maxFrameSize = 4096
)

// dispatcher is the slice of the coordinator the socket handler needs.
type dispatcher interface {
	Accept(ctx context.Context, missionID, driverID string) error
	Decline(ctx context.Context, missionID, driverID string) error
	AdvanceMissionStatus(ctx context.Context, missionID, driverID string, next mission.MissionStatus) error
}

// Handler upgrades driver and client connections and runs their read loops.
// A driver's socket lifetime defines its registry presence.
type Handler struct {
	hub        *Hub
	reg        *registry.Registry
	dispatcher dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

func NewHandler(hub *Hub, reg *registry.Registry, d dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		reg:        reg,
		dispatcher: d,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// DriverSocket is the driver's persistent connection. Registering precedes
// MarkOnline so an offer triggered by the online hook finds a live session.
func (h *Handler) DriverSocket(c *gin.Context) {
	driverID := c.GetString("sub")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("driver_id", driverID),
			slog.String("error", err.Error()),
		)
		return
	}

	h.hub.Register(driverID, conn)
	h.reg.MarkOnline(c.Request.Context(), driverID)

	h.logger.Info("driver connected", slog.String("driver_id", driverID))

	done := make(chan struct{})
	go h.pingLoop(driverID, conn, done)

	h.readLoop(conn, driverID)

	close(done)
	h.hub.Unregister(driverID, conn)
	h.reg.MarkOffline(context.Background(), driverID)
	_ = conn.Close()

	h.logger.Info("driver disconnected", slog.String("driver_id", driverID))
}

// ClientSocket is the client's notification stream. Inbound frames are
// discarded; the read loop only detects the close.
func (h *Handler) ClientSocket(c *gin.Context) {
	clientID := c.GetString("sub")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
		return
	}

	h.hub.Register(clientID, conn)

	done := make(chan struct{})
	go h.pingLoop(clientID, conn, done)

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	h.hub.Unregister(clientID, conn)
	_ = conn.Close()
}

func (h *Handler) readLoop(conn *websocket.Conn, driverID string) {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame driverFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("driver socket error",
					slog.String("driver_id", driverID),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		h.handleFrame(driverID, frame)
	}
}

func (h *Handler) handleFrame(driverID string, frame driverFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch frame.Type {
	case TypeLocation:
		if err := h.reg.UpdateLocation(ctx, driverID, frame.Lat, frame.Lng); err != nil {
			h.sendError(driverID, frame, err)
		}

	case TypeAccept:
		if err := h.dispatcher.Accept(ctx, frame.MissionID, driverID); err != nil {
			h.sendError(driverID, frame, err)
			return
		}
		h.sendAck(driverID, frame)

	case TypeDecline:
		if err := h.dispatcher.Decline(ctx, frame.MissionID, driverID); err != nil {
			h.sendError(driverID, frame, err)
			return
		}
		h.sendAck(driverID, frame)

	case TypeStatus:
		next := mission.MissionStatus(frame.Status)
		if err := h.dispatcher.AdvanceMissionStatus(ctx, frame.MissionID, driverID, next); err != nil {
			h.sendError(driverID, frame, err)
			return
		}
		h.sendAck(driverID, frame)

	default:
		h.sendError(driverID, frame, domainerrors.NewValidation("unknown frame type "+frame.Type))
	}
}

func (h *Handler) sendAck(driverID string, frame driverFrame) {
	_ = h.hub.Send(driverID, envelope{Type: TypeAck, Payload: ackPayload{
		Of:        frame.Type,
		MissionID: frame.MissionID,
	}})
}

func (h *Handler) sendError(driverID string, frame driverFrame, err error) {
	code := domainerrors.ErrInternal
	msg := "an unexpected error occurred"
	var derr *domainerrors.DomainError
	if errors.As(err, &derr) {
		code = derr.Code
		msg = derr.Message
	}
	_ = h.hub.Send(driverID, envelope{Type: TypeError, Payload: errorPayload{
		Of:      frame.Type,
		Code:    code,
		Message: msg,
	}})
}

func (h *Handler) pingLoop(subject string, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.hub.Ping(subject, conn); err != nil {
				return
			}
		}
	}
}
