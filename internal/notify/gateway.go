package notify

import (
	"context"
	"errors"
	"fmt"

	"mission-dispatch/internal/dispatch"
)

// WSGateway delivers dispatch messages over the live WebSocket sessions in
// the hub. A recipient without a session yields an error the dispatcher
// logs and moves past; the state machine never depends on delivery.
type WSGateway struct {
	hub *Hub
}

var _ dispatch.Gateway = (*WSGateway)(nil)

func NewWSGateway(hub *Hub) *WSGateway {
	return &WSGateway{hub: hub}
}

func (g *WSGateway) SendOffer(_ context.Context, driverID string, offer dispatch.OfferDetails) error {
	return g.deliver(driverID, envelope{Type: TypeMissionOffer, Payload: offer})
}

func (g *WSGateway) SendRevoked(_ context.Context, driverID, missionID string) error {
	return g.deliver(driverID, envelope{Type: TypeOfferRevoked, Payload: missionRef{MissionID: missionID}})
}

func (g *WSGateway) SendExpired(_ context.Context, driverID, missionID string) error {
	return g.deliver(driverID, envelope{Type: TypeOfferExpired, Payload: missionRef{MissionID: missionID}})
}

func (g *WSGateway) SendAssigned(_ context.Context, clientID, missionID, driverID string) error {
	return g.deliver(clientID, envelope{Type: TypeMissionAssigned, Payload: missionRef{MissionID: missionID, DriverID: driverID}})
}

func (g *WSGateway) SendNoDriversAvailable(_ context.Context, clientID, missionID string) error {
	return g.deliver(clientID, envelope{Type: TypeNoDriversAvailable, Payload: missionRef{MissionID: missionID}})
}

func (g *WSGateway) deliver(subject string, env envelope) error {
	err := g.hub.Send(subject, env)
	if errors.Is(err, ErrNoSession) {
		return fmt.Errorf("%s not connected: %w", subject, err)
	}
	return err
}
