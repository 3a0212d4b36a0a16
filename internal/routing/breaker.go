package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mission-dispatch/internal/common"
)

type breakerState int

const (
	stateClosed   breakerState = iota // normal operation
	stateOpen                         // rejecting calls
	stateHalfOpen                     // allowing one probe call
)

// Breaker decorates a routing Service with a circuit breaker so a dead
// routing vendor fails assignment rounds fast instead of queueing goroutines
// behind HTTP timeouts.
type Breaker struct {
	inner Service

	mu              sync.Mutex
	state           breakerState
	failures        int
	threshold       int
	cooldown        time.Duration
	lastFailureTime time.Time
}

func NewBreaker(inner Service, threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		inner:     inner,
		state:     stateClosed,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

func (b *Breaker) Distance(ctx context.Context, origin, destination common.Location) (float64, error) {
	if !b.allow() {
		return 0, fmt.Errorf("%w: circuit open", ErrUnavailable)
	}
	v, err := b.inner.Distance(ctx, origin, destination)
	b.record(err)
	return v, err
}

func (b *Breaker) Duration(ctx context.Context, origin, destination common.Location) (float64, error) {
	if !b.allow() {
		return 0, fmt.Errorf("%w: circuit open", ErrUnavailable)
	}
	v, err := b.inner.Duration(ctx, origin, destination)
	b.record(err)
	return v, err
}

func (b *Breaker) DistanceMatrix(ctx context.Context, origin common.Location, destinations []common.Location) ([]float64, error) {
	if !b.allow() {
		return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
	}
	v, err := b.inner.DistanceMatrix(ctx, origin, destinations)
	b.record(err)
	return v, err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(b.lastFailureTime) > b.cooldown {
			b.state = stateHalfOpen
			return true
		}
		return false
	case stateHalfOpen:
		return false // only one probe at a time
	}
	return false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = stateClosed
		b.failures = 0
		return
	}

	b.failures++
	b.lastFailureTime = time.Now()
	if b.state == stateHalfOpen || b.failures >= b.threshold {
		b.state = stateOpen
	}
}
