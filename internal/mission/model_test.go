package mission

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"mission-dispatch/internal/common"
	domainerrors "mission-dispatch/internal/errors"
)

func newTestMission() *Mission {
	return New("client-1", common.NewLocation(24.7, 46.7), common.NewLocation(24.8, 46.8), "2 pallets", 5000)
}

func TestNew_Defaults(t *testing.T) {
	m := newTestMission()

	if m.AssignmentStatus != AssignmentUnassigned {
		t.Fatalf("expected UNASSIGNED, got %s", m.AssignmentStatus)
	}
	if m.MissionStatus != StatusPending {
		t.Fatalf("expected PENDING, got %s", m.MissionStatus)
	}
	if m.ID == uuid.Nil {
		t.Fatal("expected non-nil UUID")
	}
	if m.PaymentConfirmed {
		t.Fatal("expected payment unconfirmed")
	}
	if m.AssignedDriverID != nil {
		t.Fatal("expected no assigned driver")
	}
	if len(m.CandidateDrivers) != 0 {
		t.Fatal("expected empty candidate list")
	}
}

func TestMission_Origin_Destination(t *testing.T) {
	m := newTestMission()

	if o := m.Origin(); o.Lat != 24.7 || o.Lng != 46.7 {
		t.Fatalf("origin mismatch: (%f, %f)", o.Lat, o.Lng)
	}
	if d := m.Destination(); d.Lat != 24.8 || d.Lng != 46.8 {
		t.Fatalf("destination mismatch: (%f, %f)", d.Lat, d.Lng)
	}
}

// --- AssignmentStatus ---

func TestAssignmentStatus_Retryable(t *testing.T) {
	retryable := []AssignmentStatus{
		AssignmentUnassigned,
		AssignmentNoDriversAvailable,
		AssignmentNoDriversInRange,
		AssignmentDistanceCalcFailed,
		AssignmentDriverFree,
	}
	for _, s := range retryable {
		if !s.Retryable() {
			t.Errorf("expected %s to be retryable", s)
		}
	}

	notRetryable := []AssignmentStatus{
		AssignmentAssigning,
		AssignmentWaitingForDriver,
		AssignmentAccepting,
		AssignmentAssigned,
		AssignmentCompleted,
	}
	for _, s := range notRetryable {
		if s.Retryable() {
			t.Errorf("expected %s to NOT be retryable", s)
		}
	}
}

// --- MissionStatus ---

func TestMissionStatus_LinearProgression(t *testing.T) {
	chain := []MissionStatus{
		StatusAccepted,
		StatusEnRouteToDepart,
		StatusArrivedAtDepart,
		StatusLoadingComplete,
		StatusCompleted,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !chain[i].CanAdvanceTo(chain[i+1]) {
			t.Errorf("expected %s -> %s to be legal", chain[i], chain[i+1])
		}
	}
}

func TestMissionStatus_NoSkipping(t *testing.T) {
	if StatusAccepted.CanAdvanceTo(StatusArrivedAtDepart) {
		t.Fatal("must not skip EN_ROUTE_TO_DEPART")
	}
	if StatusAccepted.CanAdvanceTo(StatusCompleted) {
		t.Fatal("must not jump to COMPLETED")
	}
	if StatusCompleted.CanAdvanceTo(StatusAccepted) {
		t.Fatal("must not leave a terminal status")
	}
	if StatusEnRouteToDepart.CanAdvanceTo(StatusAccepted) {
		t.Fatal("must not move backwards")
	}
}

func TestMissionStatus_IsTerminal(t *testing.T) {
	if !StatusCompleted.IsTerminal() || !StatusCanceled.IsTerminal() {
		t.Fatal("expected COMPLETED and CANCELED to be terminal")
	}
	if StatusPending.IsTerminal() || StatusAccepted.IsTerminal() {
		t.Fatal("expected PENDING and ACCEPTED to not be terminal")
	}
}

// --- CurrentCandidate ---

func TestCurrentCandidate_OnlyWhileWaiting(t *testing.T) {
	m := newTestMission()
	m.CandidateDrivers = []string{"d1", "d2"}
	m.CurrentCandidateIndex = 1

	if _, ok := m.CurrentCandidate(); ok {
		t.Fatal("expected no candidate while UNASSIGNED")
	}

	m.AssignmentStatus = AssignmentWaitingForDriver
	got, ok := m.CurrentCandidate()
	if !ok || got != "d2" {
		t.Fatalf("expected d2, got %q (ok=%v)", got, ok)
	}
}

func TestCurrentCandidate_IndexOutOfRange(t *testing.T) {
	m := newTestMission()
	m.AssignmentStatus = AssignmentWaitingForDriver
	m.CandidateDrivers = []string{"d1"}
	m.CurrentCandidateIndex = 1

	if _, ok := m.CurrentCandidate(); ok {
		t.Fatal("expected no candidate when index runs past the list")
	}
}

// --- EnsureStartable ---

func TestEnsureStartable_HappyPath(t *testing.T) {
	m := newTestMission()
	m.PaymentConfirmed = true

	if err := m.EnsureStartable(30*time.Second, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureStartable_PaymentRequired(t *testing.T) {
	m := newTestMission()

	err := m.EnsureStartable(30*time.Second, time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	assertCode(t, err, domainerrors.ErrInvalidState)
}

func TestEnsureStartable_TerminalMission(t *testing.T) {
	m := newTestMission()
	m.PaymentConfirmed = true
	m.MissionStatus = StatusCanceled

	if err := m.EnsureStartable(30*time.Second, time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureStartable_OpenOffer(t *testing.T) {
	m := newTestMission()
	m.PaymentConfirmed = true
	m.AssignmentStatus = AssignmentWaitingForDriver

	err := m.EnsureStartable(30*time.Second, time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	assertCode(t, err, domainerrors.ErrInvalidState)
}

func TestEnsureStartable_Cooldown(t *testing.T) {
	m := newTestMission()
	m.PaymentConfirmed = true
	m.AssignmentStatus = AssignmentNoDriversAvailable

	recent := time.Now().Add(-10 * time.Second)
	m.LastAttemptAt = &recent

	err := m.EnsureStartable(30*time.Second, time.Now())
	if err == nil {
		t.Fatal("expected cooldown error")
	}
	assertCode(t, err, domainerrors.ErrBusy)

	old := time.Now().Add(-31 * time.Second)
	m.LastAttemptAt = &old
	if err := m.EnsureStartable(30*time.Second, time.Now()); err != nil {
		t.Fatalf("unexpected error after cooldown elapsed: %v", err)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	de, ok := err.(*domainerrors.DomainError)
	if !ok {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Code != code {
		t.Fatalf("expected %s, got %s", code, de.Code)
	}
}
