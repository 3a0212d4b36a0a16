package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"mission-dispatch/internal/common"
)

type scriptedService struct {
	err   error
	calls int
}

func (s *scriptedService) Distance(context.Context, common.Location, common.Location) (float64, error) {
	s.calls++
	return 100, s.err
}

func (s *scriptedService) Duration(context.Context, common.Location, common.Location) (float64, error) {
	s.calls++
	return 60, s.err
}

func (s *scriptedService) DistanceMatrix(context.Context, common.Location, []common.Location) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float64{100}, nil
}

func callMatrix(b *Breaker) error {
	_, err := b.DistanceMatrix(context.Background(), common.NewLocation(24.7, 46.7),
		[]common.Location{common.NewLocation(24.8, 46.8)})
	return err
}

// --- Breaker ---

func TestBreaker_PassesThroughWhenClosed(t *testing.T) {
	inner := &scriptedService{}
	b := NewBreaker(inner, 3, time.Minute)

	if err := callMatrix(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	inner := &scriptedService{err: errors.New("vendor down")}
	b := NewBreaker(inner, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := callMatrix(b); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 inner calls, got %d", inner.calls)
	}

	// circuit now open: call rejected without touching the vendor
	err := callMatrix(b)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("open circuit must not call inner, got %d calls", inner.calls)
	}
}

func TestBreaker_HalfOpenProbeCloses(t *testing.T) {
	inner := &scriptedService{err: errors.New("vendor down")}
	b := NewBreaker(inner, 1, 10*time.Millisecond)

	if err := callMatrix(b); err == nil {
		t.Fatal("expected error")
	}
	if err := callMatrix(b); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	inner.err = nil // vendor recovered

	if err := callMatrix(b); err != nil {
		t.Fatalf("probe should succeed: %v", err)
	}
	// closed again: subsequent calls flow through
	if err := callMatrix(b); err != nil {
		t.Fatalf("unexpected error after close: %v", err)
	}
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	inner := &scriptedService{err: errors.New("vendor down")}
	b := NewBreaker(inner, 1, 10*time.Millisecond)

	if err := callMatrix(b); err == nil {
		t.Fatal("expected error")
	}

	time.Sleep(20 * time.Millisecond)

	// probe fails, circuit snaps open again
	if err := callMatrix(b); err == nil {
		t.Fatal("expected probe failure")
	}
	calls := inner.calls
	if err := callMatrix(b); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if inner.calls != calls {
		t.Fatal("reopened circuit must not call inner")
	}
}
