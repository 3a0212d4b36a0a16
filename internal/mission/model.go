package mission

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mission-dispatch/internal/common"
	domainerrors "mission-dispatch/internal/errors"
)

// AssignmentStatus is the dispatch-protocol state of a mission. It is
// independent of MissionStatus, which tracks physical trip progress.
type AssignmentStatus string

const (
	AssignmentUnassigned         AssignmentStatus = "UNASSIGNED"
	AssignmentAssigning          AssignmentStatus = "ASSIGNING"
	AssignmentWaitingForDriver   AssignmentStatus = "WAITING_FOR_DRIVER"
	AssignmentAccepting          AssignmentStatus = "ACCEPTING"
	AssignmentAssigned           AssignmentStatus = "ASSIGNED"
	AssignmentNoDriversAvailable AssignmentStatus = "NO_DRIVERS_AVAILABLE"
	AssignmentNoDriversInRange   AssignmentStatus = "NO_DRIVERS_IN_RANGE"
	AssignmentDistanceCalcFailed AssignmentStatus = "DISTANCE_CALCULATION_FAILED"
	AssignmentCompleted          AssignmentStatus = "COMPLETED"
	AssignmentDriverFree         AssignmentStatus = "DRIVER_FREE"
)

// Retryable reports whether a new assignment round may be started from this
// status. Failure terminals stay re-enterable; an open offer or a live
// assignment must never be restarted underneath.
func (s AssignmentStatus) Retryable() bool {
	switch s {
	case AssignmentWaitingForDriver, AssignmentAssigned, AssignmentAssigning, AssignmentAccepting:
		return false
	case AssignmentCompleted:
		return false
	default:
		return true
	}
}

type MissionStatus string

const (
	StatusPending         MissionStatus = "PENDING"
	StatusAccepted        MissionStatus = "ACCEPTED"
	StatusEnRouteToDepart MissionStatus = "EN_ROUTE_TO_DEPART"
	StatusArrivedAtDepart MissionStatus = "ARRIVED_AT_DEPART"
	StatusLoadingComplete MissionStatus = "LOADING_COMPLETE"
	StatusCompleted       MissionStatus = "COMPLETED"
	StatusCanceled        MissionStatus = "CANCELED"
)

// nextMissionStatus encodes the linear trip progression. Cancellation is
// handled separately because it is only legal before a driver accepts.
var nextMissionStatus = map[MissionStatus]MissionStatus{
	StatusAccepted:        StatusEnRouteToDepart,
	StatusEnRouteToDepart: StatusArrivedAtDepart,
	StatusArrivedAtDepart: StatusLoadingComplete,
	StatusLoadingComplete: StatusCompleted,
}

func (s MissionStatus) CanAdvanceTo(next MissionStatus) bool {
	return nextMissionStatus[s] == next
}

func (s MissionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

type Mission struct {
	ID                    uuid.UUID        `db:"id" json:"id"`
	ClientID              string           `db:"client_id" json:"client_id"`
	OriginLat             float64          `db:"origin_lat" json:"origin_lat"`
	OriginLng             float64          `db:"origin_lng" json:"origin_lng"`
	DestLat               float64          `db:"dest_lat" json:"dest_lat"`
	DestLng               float64          `db:"dest_lng" json:"dest_lng"`
	Manifest              string           `db:"manifest" json:"manifest"`
	CostCents             int64            `db:"cost_cents" json:"cost_cents"`
	PaymentConfirmed      bool             `db:"payment_confirmed" json:"payment_confirmed"`
	AssignmentStatus      AssignmentStatus `db:"assignment_status" json:"assignment_status"`
	CandidateDrivers      pq.StringArray   `db:"candidate_drivers" json:"candidate_drivers"`
	CurrentCandidateIndex int              `db:"current_candidate_index" json:"current_candidate_index"`
	AssignedDriverID      *string          `db:"assigned_driver_id" json:"assigned_driver_id,omitempty"`
	MissionStatus         MissionStatus    `db:"mission_status" json:"mission_status"`
	Version               int64            `db:"version" json:"version"`
	LastAttemptAt         *time.Time       `db:"last_attempt_at" json:"last_attempt_at,omitempty"`
	CreatedAt             time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updated_at"`
}

func New(clientID string, origin, destination common.Location, manifest string, costCents int64) *Mission {
	now := time.Now()
	return &Mission{
		ID:               uuid.New(),
		ClientID:         clientID,
		OriginLat:        origin.Lat,
		OriginLng:        origin.Lng,
		DestLat:          destination.Lat,
		DestLng:          destination.Lng,
		Manifest:         manifest,
		CostCents:        costCents,
		AssignmentStatus: AssignmentUnassigned,
		CandidateDrivers: pq.StringArray{},
		MissionStatus:    StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (m *Mission) Origin() common.Location {
	return common.NewLocation(m.OriginLat, m.OriginLng)
}

func (m *Mission) Destination() common.Location {
	return common.NewLocation(m.DestLat, m.DestLng)
}

// CurrentCandidate returns the driver holding the open offer. Only defined
// while the mission is WAITING_FOR_DRIVER with a valid index.
func (m *Mission) CurrentCandidate() (string, bool) {
	if m.AssignmentStatus != AssignmentWaitingForDriver {
		return "", false
	}
	if m.CurrentCandidateIndex < 0 || m.CurrentCandidateIndex >= len(m.CandidateDrivers) {
		return "", false
	}
	return m.CandidateDrivers[m.CurrentCandidateIndex], true
}

// EnsureStartable validates the StartAssignment preconditions against the
// given cooldown window.
func (m *Mission) EnsureStartable(cooldown time.Duration, now time.Time) error {
	if !m.PaymentConfirmed {
		return domainerrors.NewInvalidState("mission " + m.ID.String() + " is not payment-confirmed")
	}
	if m.MissionStatus.IsTerminal() {
		return domainerrors.MissionInvalidTransition(string(m.MissionStatus), "start assignment")
	}
	if !m.AssignmentStatus.Retryable() {
		return domainerrors.NewInvalidState(
			"mission " + m.ID.String() + " is " + string(m.AssignmentStatus) + ", cannot start assignment")
	}
	if m.LastAttemptAt != nil && now.Sub(*m.LastAttemptAt) < cooldown {
		return domainerrors.AssignmentCoolingDown(m.ID.String())
	}
	return nil
}

// History event types. The history log is append-only; these names are part
// of the audit contract and must not be renamed casually.
const (
	EventAssignmentStarted  = "ASSIGNMENT_STARTED"
	EventOfferSent          = "OFFER_SENT"
	EventOfferDeclined      = "OFFER_DECLINED"
	EventOfferRevoked       = "OFFER_REVOKED"
	EventMissionTimeout     = "MISSION_TIMEOUT"
	EventDriverDisconnected = "DRIVER_DISCONNECTED"
	EventMissionAssigned    = "MISSION_ASSIGNED"
	EventNoDriversAvailable = "NO_DRIVERS_AVAILABLE"
	EventNoDriversInRange   = "NO_DRIVERS_IN_RANGE"
	EventDistanceCalcFailed = "DISTANCE_CALCULATION_FAILED"
	EventStatusAdvanced     = "STATUS_ADVANCED"
	EventMissionCanceled    = "MISSION_CANCELED"
	EventDriverFreed        = "DRIVER_FREED"
)

type HistoryEvent struct {
	ID          int64     `db:"id" json:"id"`
	MissionID   uuid.UUID `db:"mission_id" json:"mission_id"`
	EventType   string    `db:"event_type" json:"event_type"`
	Details     string    `db:"details" json:"details"`
	TriggeredBy string    `db:"triggered_by" json:"triggered_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
