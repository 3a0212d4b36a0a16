package dispatch

import "context"

// OfferDetails is the mission summary pushed to a candidate driver together
// with the response deadline.
type OfferDetails struct {
	MissionID        string  `json:"mission_id"`
	OriginLat        float64 `json:"origin_lat"`
	OriginLng        float64 `json:"origin_lng"`
	DestLat          float64 `json:"dest_lat"`
	DestLng          float64 `json:"dest_lng"`
	Manifest         string  `json:"manifest"`
	CostCents        int64   `json:"cost_cents"`
	SecondsToRespond int     `json:"seconds_to_respond"`
}

// Gateway delivers dispatch messages to drivers and clients. Delivery is
// fire-and-forget from the coordinator's perspective: failures are logged,
// never retried, and never roll back a state transition that already
// applied.
type Gateway interface {
	SendOffer(ctx context.Context, driverID string, offer OfferDetails) error
	SendRevoked(ctx context.Context, driverID, missionID string) error
	SendExpired(ctx context.Context, driverID, missionID string) error
	SendAssigned(ctx context.Context, clientID, missionID, driverID string) error
	SendNoDriversAvailable(ctx context.Context, clientID, missionID string) error
}
