package mission

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"mission-dispatch/internal/common"
	domainerrors "mission-dispatch/internal/errors"
)

type Service interface {
	CreateMission(ctx context.Context, clientID string, origin, destination common.Location, manifest string, costCents int64) (*Mission, error)
	GetMission(ctx context.Context, id uuid.UUID, clientID string) (*Mission, error)
	GetHistory(ctx context.Context, id uuid.UUID, clientID string) ([]HistoryEvent, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, clientID string) (*Mission, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

// -------------------------------------------------------------------------------------------------
func (s *service) CreateMission(ctx context.Context, clientID string, origin, destination common.Location, manifest string, costCents int64) (*Mission, error) {
	if err := common.ValidateLatLng(origin.Lat, origin.Lng); err != nil {
		return nil, domainerrors.NewValidation("origin: " + err.Error())
	}
	if err := common.ValidateLatLng(destination.Lat, destination.Lng); err != nil {
		return nil, domainerrors.NewValidation("destination: " + err.Error())
	}
	if strings.TrimSpace(manifest) == "" {
		return nil, domainerrors.NewValidation("manifest must not be empty")
	}
	if costCents < 0 {
		return nil, domainerrors.NewValidation("cost must not be negative")
	}

	m := New(clientID, origin, destination, manifest, costCents)
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetMission(ctx context.Context, id uuid.UUID, clientID string) (*Mission, error) {
	m, err := s.store.Get(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if clientID != "" && m.ClientID != clientID {
		return nil, domainerrors.NewForbidden("mission belongs to another client")
	}
	return m, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetHistory(ctx context.Context, id uuid.UUID, clientID string) ([]HistoryEvent, error) {
	if _, err := s.GetMission(ctx, id, clientID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, id.String())
}

// -------------------------------------------------------------------------------------------------
func (s *service) ConfirmPayment(ctx context.Context, id uuid.UUID, clientID string) (*Mission, error) {
	m, err := s.GetMission(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	if m.MissionStatus.IsTerminal() {
		return nil, domainerrors.MissionInvalidTransition(string(m.MissionStatus), "confirm payment")
	}

	applied, err := s.store.ConfirmPayment(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domainerrors.NewConflict("payment already confirmed for mission " + id.String())
	}
	m.PaymentConfirmed = true
	return m, nil
}
