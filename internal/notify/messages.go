package notify

// Outbound frame types.
const (
	TypeMissionOffer       = "mission_offer"
	TypeOfferRevoked       = "offer_revoked"
	TypeOfferExpired       = "offer_expired"
	TypeMissionAssigned    = "mission_assigned"
	TypeNoDriversAvailable = "no_drivers_available"
	TypeAck                = "ack"
	TypeError              = "error"
)

// Inbound frame types (driver socket).
const (
	TypeLocation = "location"
	TypeAccept   = "accept"
	TypeDecline  = "decline"
	TypeStatus   = "status"
)

// envelope is the outbound wire format. Payload shape depends on Type.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type missionRef struct {
	MissionID string `json:"mission_id"`
	DriverID  string `json:"driver_id,omitempty"`
}

type ackPayload struct {
	Of        string `json:"of"`
	MissionID string `json:"mission_id,omitempty"`
}

type errorPayload struct {
	Of      string `json:"of"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// driverFrame is the inbound wire format from a driver socket. Fields beyond
// Type are read according to it.
type driverFrame struct {
	Type      string  `json:"type"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
	MissionID string  `json:"mission_id,omitempty"`
	Status    string  `json:"status,omitempty"`
}
