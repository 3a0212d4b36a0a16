package admin

import (
	"context"

	"mission-dispatch/internal/mission"
	"mission-dispatch/internal/registry"
)

// Dispatcher is a local interface to avoid importing the dispatch package
// (circular dep).
type Dispatcher interface {
	StartAssignment(ctx context.Context, missionID string) error
}

type Service interface {
	ListMissions(ctx context.Context, status *mission.AssignmentStatus, limit int) ([]*mission.Mission, error)
	ForceDispatch(ctx context.Context, missionID string) error
	DriverPresence() []registry.Presence
}

type service struct {
	store      mission.Store
	reg        *registry.Registry
	dispatcher Dispatcher
}

func NewService(store mission.Store, reg *registry.Registry, dispatcher Dispatcher) Service {
	return &service{store: store, reg: reg, dispatcher: dispatcher}
}

func (s *service) ListMissions(ctx context.Context, status *mission.AssignmentStatus, limit int) ([]*mission.Mission, error) {
	statuses := []mission.AssignmentStatus{
		mission.AssignmentUnassigned,
		mission.AssignmentAssigning,
		mission.AssignmentWaitingForDriver,
		mission.AssignmentAccepting,
		mission.AssignmentAssigned,
		mission.AssignmentNoDriversAvailable,
		mission.AssignmentNoDriversInRange,
		mission.AssignmentDistanceCalcFailed,
		mission.AssignmentCompleted,
		mission.AssignmentDriverFree,
	}
	if status != nil {
		statuses = []mission.AssignmentStatus{*status}
	}
	return s.store.FindByStatus(ctx, statuses, limit)
}

// ForceDispatch starts an assignment round regardless of the retry
// scheduler. Cooldown and state preconditions still apply.
func (s *service) ForceDispatch(ctx context.Context, missionID string) error {
	return s.dispatcher.StartAssignment(ctx, missionID)
}

func (s *service) DriverPresence() []registry.Presence {
	return s.reg.Snapshot()
}
