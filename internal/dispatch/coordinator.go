package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"mission-dispatch/internal/events"
	domainerrors "mission-dispatch/internal/errors"
	"mission-dispatch/internal/mission"
	"mission-dispatch/internal/observability"
	"mission-dispatch/internal/registry"
	"mission-dispatch/internal/routing"
)

// triggeredBy values recorded in the history log.
const (
	actorDispatcher = "dispatcher"
	actorScheduler  = "timeout-scheduler"
	actorRegistry   = "driver-registry"
)

type advanceCause int

const (
	causeDecline advanceCause = iota
	causeTimeout
)

type Config struct {
	OfferTimeout  time.Duration
	RetryCooldown time.Duration
	LockWait      time.Duration
	MaxRadiusKM   float64
	RetryBatch    int
}

// Coordinator owns the offer/accept/decline/timeout protocol. Every
// operation serializes on the mission's lock; conditional writes against the
// store are the second line of defense when several instances share one
// database. External calls follow write-then-notify: a driver is never told
// about an offer whose state write did not apply.
type Coordinator struct {
	store    mission.Store
	reg      *registry.Registry
	ranker   *DistanceRanker
	gateway  Gateway
	events   *events.Publisher
	timeouts *TimeoutScheduler
	locks    *missionLocks
	inflight *inflightSet
	cfg      Config
	logger   *slog.Logger

	// onDriverFreed feeds the retry queue when a completed mission releases
	// its driver. Optional; set during wiring.
	onDriverFreed func(driverID string)
}

func NewCoordinator(
	store mission.Store,
	reg *registry.Registry,
	router routing.Service,
	gateway Gateway,
	publisher *events.Publisher,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	c := &Coordinator{
		store:    store,
		reg:      reg,
		ranker:   NewDistanceRanker(router, cfg.MaxRadiusKM),
		gateway:  gateway,
		events:   publisher,
		locks:    newMissionLocks(cfg.LockWait),
		inflight: newInflightSet(),
		cfg:      cfg,
		logger:   logger,
	}
	c.timeouts = NewTimeoutScheduler(c.onOfferTimeout)
	return c
}

// SetDriverFreedHook registers the callback invoked when a driver finishes a
// mission and becomes dispatchable again.
func (c *Coordinator) SetDriverFreedHook(fn func(driverID string)) {
	c.onDriverFreed = fn
}

// StartAssignment runs one assignment round: rank reachable drivers by
// travel distance and offer the mission to the nearest. The distance lookup
// happens before the mission lock is taken — it is the highest-latency step,
// and an ASSIGNING mission is not mutated by anyone else.
func (c *Coordinator) StartAssignment(ctx context.Context, missionID string) error {
	if !c.inflight.TryAdd(missionID) {
		return domainerrors.AssignmentBusy(missionID)
	}
	defer c.inflight.Remove(missionID)

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		return err
	}
	if err := m.EnsureStartable(c.cfg.RetryCooldown, time.Now()); err != nil {
		return err
	}

	// Claim the round. Losing this CAS means another instance started first.
	now := time.Now()
	assigning := mission.AssignmentAssigning
	applied, err := c.store.ConditionalUpdate(ctx, missionID, m.AssignmentStatus, mission.UpdateFields{
		AssignmentStatus: &assigning,
		LastAttemptAt:    &now,
	})
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("assignment already claimed for mission " + missionID)
	}
	c.appendHistory(ctx, missionID, mission.EventAssignmentStarted, "", actorDispatcher)

	busy, err := c.assignedDrivers(ctx)
	if err != nil {
		c.rollbackRound(ctx, missionID)
		return err
	}

	available := c.reg.ListAvailable(busy)
	if len(available) == 0 {
		return c.failRound(ctx, m, mission.AssignmentNoDriversAvailable,
			mission.EventNoDriversAvailable, "no connected drivers with a known position")
	}

	candidates, err := c.ranker.Rank(ctx, m.Origin(), available)
	if err != nil {
		c.logger.Warn("distance ranking failed",
			slog.String("mission_id", missionID),
			slog.String("error", err.Error()),
		)
		return c.failRound(ctx, m, mission.AssignmentDistanceCalcFailed,
			mission.EventDistanceCalcFailed, err.Error())
	}
	if len(candidates) == 0 {
		return c.failRound(ctx, m, mission.AssignmentNoDriversInRange,
			mission.EventNoDriversInRange,
			fmt.Sprintf("all %d drivers beyond %.0f km", len(available), c.cfg.MaxRadiusKM))
	}

	ids := make([]string, len(candidates))
	for i, cand := range candidates {
		ids[i] = cand.DriverID
	}

	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		c.rollbackRound(ctx, missionID)
		return err
	}
	defer release()

	waiting := mission.AssignmentWaitingForDriver
	first := 0
	applied, err = c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentAssigning, mission.UpdateFields{
		AssignmentStatus:      &waiting,
		CandidateDrivers:      &ids,
		CurrentCandidateIndex: &first,
	})
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("mission " + missionID + " left ASSIGNING during ranking")
	}

	m.CandidateDrivers = ids
	m.CurrentCandidateIndex = first
	m.AssignmentStatus = waiting
	c.sendOffer(ctx, m, ids[first])
	return nil
}

// Accept finalizes the assignment for the driver currently holding the open
// offer. Any precondition failure leaves the mission untouched.
func (c *Coordinator) Accept(ctx context.Context, missionID, driverID string) error {
	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		return err
	}
	defer release()

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		return err
	}
	current, ok := m.CurrentCandidate()
	if !ok || current != driverID {
		return domainerrors.NotCurrentCandidate(missionID, driverID)
	}

	// Double-booking guard: the registry snapshot was advisory, re-validate
	// against the store before finalizing.
	other, err := c.store.ActiveAssignmentForDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if other != nil {
		return domainerrors.DriverAlreadyBooked(driverID)
	}

	assigned := mission.AssignmentAssigned
	accepted := mission.StatusAccepted
	applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
		AssignmentStatus: &assigned,
		AssignedDriverID: &driverID,
		MissionStatus:    &accepted,
	})
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("mission " + missionID + " changed state during accept")
	}

	c.timeouts.Cancel(missionID)
	c.appendHistory(ctx, missionID, mission.EventMissionAssigned, "accepted by driver "+driverID, driverID)
	observability.AssignmentsTotal.Inc()
	c.publish(missionID, mission.EventMissionAssigned, driverID, "")

	if err := c.gateway.SendAssigned(ctx, m.ClientID, missionID, driverID); err != nil {
		c.logger.Warn("assigned notification failed",
			slog.String("mission_id", missionID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Decline records the current candidate's refusal and advances the offer to
// the next ranked driver.
func (c *Coordinator) Decline(ctx context.Context, missionID, driverID string) error {
	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		return err
	}
	defer release()

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		return err
	}
	current, ok := m.CurrentCandidate()
	if !ok || current != driverID {
		return domainerrors.NotCurrentCandidate(missionID, driverID)
	}

	c.appendHistory(ctx, missionID, mission.EventOfferDeclined, "declined by driver "+driverID, driverID)
	observability.DeclinesTotal.Inc()
	return c.advanceLocked(ctx, m, causeDecline, driverID)
}

// OnDriverDisconnected removes a disconnected driver from the mission's
// candidate list. If the driver held the open offer the next candidate is
// offered immediately; an exhausted list ends the round.
func (c *Coordinator) OnDriverDisconnected(ctx context.Context, missionID, driverID string) error {
	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		return err
	}
	defer release()

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		return err
	}
	if m.AssignmentStatus != mission.AssignmentWaitingForDriver {
		return nil
	}

	removed := -1
	remaining := make([]string, 0, len(m.CandidateDrivers))
	for i, id := range m.CandidateDrivers {
		if id == driverID {
			removed = i
			continue
		}
		remaining = append(remaining, id)
	}
	if removed == -1 {
		return nil
	}

	c.appendHistory(ctx, missionID, mission.EventDriverDisconnected, "driver "+driverID+" went offline", actorRegistry)

	idx := m.CurrentCandidateIndex
	switch {
	case removed < idx:
		// current offer holder is unaffected, shift the index left
		idx--
		waiting := mission.AssignmentWaitingForDriver
		applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
			AssignmentStatus:      &waiting,
			CandidateDrivers:      &remaining,
			CurrentCandidateIndex: &idx,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domainerrors.NewRaceLost("mission " + missionID + " changed state during disconnect handling")
		}
		return nil

	case removed > idx:
		waiting := mission.AssignmentWaitingForDriver
		applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
			AssignmentStatus: &waiting,
			CandidateDrivers: &remaining,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domainerrors.NewRaceLost("mission " + missionID + " changed state during disconnect handling")
		}
		return nil

	default:
		// the offer holder vanished
		c.timeouts.Cancel(missionID)

		if idx < len(remaining) {
			waiting := mission.AssignmentWaitingForDriver
			applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
				AssignmentStatus:      &waiting,
				CandidateDrivers:      &remaining,
				CurrentCandidateIndex: &idx,
			})
			if err != nil {
				return err
			}
			if !applied {
				return domainerrors.NewRaceLost("mission " + missionID + " changed state during disconnect handling")
			}
			m.CandidateDrivers = remaining
			m.CurrentCandidateIndex = idx
			c.sendOffer(ctx, m, remaining[idx])
			return nil
		}

		unavailable := mission.AssignmentNoDriversAvailable
		applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
			AssignmentStatus: &unavailable,
			CandidateDrivers: &remaining,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domainerrors.NewRaceLost("mission " + missionID + " changed state during disconnect handling")
		}
		c.appendHistory(ctx, missionID, mission.EventNoDriversAvailable, "candidate list exhausted by disconnect", actorRegistry)
		observability.AssignmentFailures.WithLabelValues("no_drivers_available").Inc()
		c.publish(missionID, mission.EventNoDriversAvailable, driverID, "")
		c.notifyNoDrivers(ctx, m.ClientID, missionID)
		return nil
	}
}

// HandleDriverOffline sweeps every mission currently waiting on the given
// driver. Invoked by the registry's offline hook.
func (c *Coordinator) HandleDriverOffline(driverID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	missions, err := c.store.WaitingOnDriver(ctx, driverID)
	if err != nil {
		c.logger.Error("offline sweep failed",
			slog.String("driver_id", driverID),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, m := range missions {
		if err := c.OnDriverDisconnected(ctx, m.ID.String(), driverID); err != nil {
			c.logger.Warn("disconnect handling failed",
				slog.String("mission_id", m.ID.String()),
				slog.String("driver_id", driverID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// RetryPending re-dispatches a bounded batch of payment-confirmed missions
// stranded in a no-drivers terminal. Busy and RaceLost are expected under
// contention and skipped quietly.
func (c *Coordinator) RetryPending(ctx context.Context) {
	missions, err := c.store.FindRetryable(ctx, []mission.AssignmentStatus{
		mission.AssignmentNoDriversAvailable,
		mission.AssignmentNoDriversInRange,
	}, c.cfg.RetryCooldown, c.cfg.RetryBatch)
	if err != nil {
		c.logger.Error("retry scan failed", slog.String("error", err.Error()))
		return
	}

	for _, m := range missions {
		err := c.StartAssignment(ctx, m.ID.String())
		if err == nil {
			continue
		}
		var derr *domainerrors.DomainError
		if stderrors.As(err, &derr) && (derr.Code == domainerrors.ErrBusy || derr.Code == domainerrors.ErrRaceLost) {
			continue
		}
		c.logger.Warn("retry dispatch failed",
			slog.String("mission_id", m.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// AdvanceMissionStatus moves the operational state machine forward on behalf
// of the assigned driver. Completing the trip frees the driver and makes it
// a retry trigger for stranded missions.
func (c *Coordinator) AdvanceMissionStatus(ctx context.Context, missionID, driverID string, next mission.MissionStatus) error {
	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		return err
	}
	defer release()

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		return err
	}
	if m.AssignedDriverID == nil || *m.AssignedDriverID != driverID {
		return domainerrors.DriverNotAssigned(missionID, driverID)
	}
	if !m.MissionStatus.CanAdvanceTo(next) {
		return domainerrors.MissionInvalidTransition(string(m.MissionStatus), string(next))
	}

	applied, err := c.store.AdvanceMissionStatus(ctx, missionID, m.MissionStatus, next)
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("mission " + missionID + " status changed during advance")
	}
	c.appendHistory(ctx, missionID, mission.EventStatusAdvanced,
		string(m.MissionStatus)+" -> "+string(next), driverID)

	if next == mission.StatusCompleted {
		free := mission.AssignmentDriverFree
		applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentAssigned, mission.UpdateFields{
			AssignmentStatus: &free,
		})
		if err != nil {
			return err
		}
		if applied {
			c.appendHistory(ctx, missionID, mission.EventDriverFreed, "driver "+driverID+" released", driverID)
			c.publish(missionID, mission.EventDriverFreed, driverID, "")
			if c.onDriverFreed != nil {
				c.onDriverFreed(driverID)
			}
		}
	}
	return nil
}

// Cancel withdraws a mission on behalf of its client. An open offer is
// revoked; a mission already accepted by a driver cannot be canceled here.
func (c *Coordinator) Cancel(ctx context.Context, missionID, clientID string) error {
	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		return err
	}
	defer release()

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		return err
	}
	if clientID != "" && m.ClientID != clientID {
		return domainerrors.NewForbidden("mission belongs to another client")
	}
	if m.MissionStatus.IsTerminal() {
		return domainerrors.MissionInvalidTransition(string(m.MissionStatus), string(mission.StatusCanceled))
	}
	if m.AssignmentStatus == mission.AssignmentAssigned || m.AssignmentStatus == mission.AssignmentAccepting {
		return domainerrors.NewInvalidState("mission " + missionID + " already has a driver, cannot cancel")
	}

	current, hadOffer := m.CurrentCandidate()

	canceled := mission.StatusCanceled
	completed := mission.AssignmentCompleted
	applied, err := c.store.ConditionalUpdate(ctx, missionID, m.AssignmentStatus, mission.UpdateFields{
		AssignmentStatus: &completed,
		MissionStatus:    &canceled,
	})
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("mission " + missionID + " changed state during cancel")
	}

	c.timeouts.Cancel(missionID)
	c.appendHistory(ctx, missionID, mission.EventMissionCanceled, "", m.ClientID)
	c.publish(missionID, mission.EventMissionCanceled, "", "")

	if hadOffer {
		if err := c.gateway.SendRevoked(ctx, current, missionID); err != nil {
			c.logger.Warn("revoke notification failed",
				slog.String("mission_id", missionID),
				slog.String("driver_id", current),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// onOfferTimeout is the scheduler callback. The interim may have resolved
// the offer already, so it re-checks state under the lock and no-ops when
// the mission is no longer waiting.
func (c *Coordinator) onOfferTimeout(missionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	release, err := c.locks.Acquire(ctx, missionID)
	if err != nil {
		c.logger.Warn("timeout handler could not lock mission",
			slog.String("mission_id", missionID),
		)
		return
	}
	defer release()

	m, err := c.store.Get(ctx, missionID)
	if err != nil {
		c.logger.Error("timeout handler load failed",
			slog.String("mission_id", missionID),
			slog.String("error", err.Error()),
		)
		return
	}
	current, ok := m.CurrentCandidate()
	if !ok {
		return // accepted, declined or disconnected in the interim
	}

	c.appendHistory(ctx, missionID, mission.EventMissionTimeout,
		"driver "+current+" did not respond in time", actorScheduler)
	observability.OfferTimeoutsTotal.Inc()

	if err := c.advanceLocked(ctx, m, causeTimeout, actorScheduler); err != nil {
		c.logger.Warn("timeout advance failed",
			slog.String("mission_id", missionID),
			slog.String("error", err.Error()),
		)
	}
}

// advanceLocked moves the open offer to the next ranked candidate, or ends
// the round when the list is exhausted. Caller holds the mission lock and m
// is WAITING_FOR_DRIVER.
func (c *Coordinator) advanceLocked(ctx context.Context, m *mission.Mission, cause advanceCause, triggeredBy string) error {
	missionID := m.ID.String()
	previous := m.CandidateDrivers[m.CurrentCandidateIndex]
	next := m.CurrentCandidateIndex + 1

	c.timeouts.Cancel(missionID)

	if next < len(m.CandidateDrivers) {
		waiting := mission.AssignmentWaitingForDriver
		applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
			AssignmentStatus:      &waiting,
			CurrentCandidateIndex: &next,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domainerrors.NewRaceLost("mission " + missionID + " changed state during advance")
		}

		c.notifyOfferClosed(ctx, previous, missionID, cause)
		m.CurrentCandidateIndex = next
		c.sendOffer(ctx, m, m.CandidateDrivers[next])
		return nil
	}

	exhausted := mission.AssignmentNoDriversInRange
	applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentWaitingForDriver, mission.UpdateFields{
		AssignmentStatus: &exhausted,
	})
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("mission " + missionID + " changed state during advance")
	}

	c.appendHistory(ctx, missionID, mission.EventNoDriversInRange, "candidate list exhausted", triggeredBy)
	observability.AssignmentFailures.WithLabelValues("no_drivers_in_range").Inc()
	c.publish(missionID, mission.EventNoDriversInRange, previous, "")

	c.notifyOfferClosed(ctx, previous, missionID, cause)
	c.notifyNoDrivers(ctx, m.ClientID, missionID)
	return nil
}

// sendOffer records, notifies and arms the timeout for one candidate. The
// state write has already applied when this is called.
func (c *Coordinator) sendOffer(ctx context.Context, m *mission.Mission, driverID string) {
	missionID := m.ID.String()
	c.appendHistory(ctx, missionID, mission.EventOfferSent, "offered to driver "+driverID, actorDispatcher)

	offer := OfferDetails{
		MissionID:        missionID,
		OriginLat:        m.OriginLat,
		OriginLng:        m.OriginLng,
		DestLat:          m.DestLat,
		DestLng:          m.DestLng,
		Manifest:         m.Manifest,
		CostCents:        m.CostCents,
		SecondsToRespond: int(c.cfg.OfferTimeout.Seconds()),
	}
	if err := c.gateway.SendOffer(ctx, driverID, offer); err != nil {
		c.logger.Warn("offer notification failed",
			slog.String("mission_id", missionID),
			slog.String("driver_id", driverID),
			slog.String("error", err.Error()),
		)
	}

	c.timeouts.Arm(missionID, c.cfg.OfferTimeout)
	observability.OffersTotal.Inc()
	c.publish(missionID, mission.EventOfferSent, driverID, "")
}

func (c *Coordinator) notifyOfferClosed(ctx context.Context, driverID, missionID string, cause advanceCause) {
	var err error
	if cause == causeTimeout {
		err = c.gateway.SendExpired(ctx, driverID, missionID)
	} else {
		err = c.gateway.SendRevoked(ctx, driverID, missionID)
	}
	if err != nil {
		c.logger.Warn("offer close notification failed",
			slog.String("mission_id", missionID),
			slog.String("driver_id", driverID),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Coordinator) notifyNoDrivers(ctx context.Context, clientID, missionID string) {
	if err := c.gateway.SendNoDriversAvailable(ctx, clientID, missionID); err != nil {
		c.logger.Warn("no-drivers notification failed",
			slog.String("mission_id", missionID),
			slog.String("error", err.Error()),
		)
	}
}

// failRound ends an ASSIGNING round in a failure terminal. The failure is
// recorded as mission state rather than propagated: the caller sees nil and
// external triggers retry later.
func (c *Coordinator) failRound(ctx context.Context, m *mission.Mission, status mission.AssignmentStatus, eventType, details string) error {
	missionID := m.ID.String()
	applied, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentAssigning, mission.UpdateFields{
		AssignmentStatus: &status,
	})
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewRaceLost("mission " + missionID + " left ASSIGNING during ranking")
	}

	c.appendHistory(ctx, missionID, eventType, details, actorDispatcher)
	observability.AssignmentFailures.WithLabelValues(failureReason(status)).Inc()
	c.publish(missionID, eventType, "", details)
	c.notifyNoDrivers(ctx, m.ClientID, missionID)
	return nil
}

// rollbackRound returns a claimed round to UNASSIGNED when an internal step
// failed before any offer went out. The cooldown stamp stays.
func (c *Coordinator) rollbackRound(ctx context.Context, missionID string) {
	unassigned := mission.AssignmentUnassigned
	if _, err := c.store.ConditionalUpdate(ctx, missionID, mission.AssignmentAssigning, mission.UpdateFields{
		AssignmentStatus: &unassigned,
	}); err != nil {
		c.logger.Error("round rollback failed",
			slog.String("mission_id", missionID),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Coordinator) assignedDrivers(ctx context.Context) (map[string]bool, error) {
	missions, err := c.store.FindByStatus(ctx, []mission.AssignmentStatus{mission.AssignmentAssigned}, 10000)
	if err != nil {
		return nil, err
	}
	busy := make(map[string]bool, len(missions))
	for _, m := range missions {
		if m.AssignedDriverID != nil {
			busy[*m.AssignedDriverID] = true
		}
	}
	return busy, nil
}

func (c *Coordinator) appendHistory(ctx context.Context, missionID, eventType, details, triggeredBy string) {
	if err := c.store.AppendHistory(ctx, missionID, eventType, details, triggeredBy); err != nil {
		c.logger.Error("history append failed",
			slog.String("mission_id", missionID),
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Coordinator) publish(missionID, eventType, driverID, details string) {
	c.events.Publish(events.DispatchEvent{
		MissionID: missionID,
		Type:      eventType,
		DriverID:  driverID,
		Details:   details,
	})
}

func failureReason(status mission.AssignmentStatus) string {
	switch status {
	case mission.AssignmentNoDriversAvailable:
		return "no_drivers_available"
	case mission.AssignmentNoDriversInRange:
		return "no_drivers_in_range"
	case mission.AssignmentDistanceCalcFailed:
		return "distance_calculation_failed"
	default:
		return "other"
	}
}
