package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	domainerrors "mission-dispatch/internal/errors"
)

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// missionLocks is a keyed mutex with bounded acquisition. Unrelated missions
// dispatch fully in parallel; entries are reference-counted so the map does
// not grow with every mission ever seen.
type missionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	wait    time.Duration
}

func newMissionLocks(wait time.Duration) *missionLocks {
	return &missionLocks{
		entries: make(map[string]*lockEntry),
		wait:    wait,
	}
}

// Acquire blocks up to the configured wait for the mission's lock and
// returns a release func. Timeout or context cancellation yields Busy with
// no state touched, safe to retry.
func (l *missionLocks) Acquire(ctx context.Context, missionID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[missionID]
	if !ok {
		e = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[missionID] = e
	}
	e.refs++
	l.mu.Unlock()

	acquireCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	if err := e.sem.Acquire(acquireCtx, 1); err != nil {
		l.release(missionID, e, false)
		return nil, domainerrors.AssignmentBusy(missionID)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(missionID, e, true) })
	}, nil
}

func (l *missionLocks) release(missionID string, e *lockEntry, held bool) {
	if held {
		e.sem.Release(1)
	}
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, missionID)
	}
	l.mu.Unlock()
}
