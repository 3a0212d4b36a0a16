package dispatch

import (
	"context"
	"log/slog"
	"time"

	"mission-dispatch/internal/observability"
)

// RetryQueue turns driver-reachable events (a driver connecting, moving, or
// finishing a mission) into bounded re-dispatch sweeps. The channel is the
// backpressure valve: when it is full the event is dropped, which is safe
// because any later event or sweep covers the same stranded missions.
type RetryQueue struct {
	ch     chan string
	coord  *Coordinator
	logger *slog.Logger
}

func NewRetryQueue(capacity int, coord *Coordinator, logger *slog.Logger) *RetryQueue {
	return &RetryQueue{
		ch:     make(chan string, capacity),
		coord:  coord,
		logger: logger,
	}
}

// Enqueue never blocks the caller. Registry hooks run on connection
// goroutines and must not stall on dispatch work.
func (q *RetryQueue) Enqueue(driverID string) {
	select {
	case q.ch <- driverID:
	default:
		q.logger.Debug("retry queue full, dropping reachable event",
			slog.String("driver_id", driverID),
		)
	}
	observability.RetryQueueDepth.Set(float64(len(q.ch)))
}

// Run drains the queue until ctx is canceled. Consecutive events are
// coalesced into a single sweep since RetryPending scans globally rather
// than per driver.
func (q *RetryQueue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case driverID := <-q.ch:
			q.drain()
			observability.RetryQueueDepth.Set(float64(len(q.ch)))

			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			q.coord.RetryPending(sweepCtx)
			cancel()

			q.logger.Debug("retry sweep completed",
				slog.String("triggered_by", driverID),
			)
		}
	}
}

func (q *RetryQueue) drain() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}
