package dispatch

import (
	"sync"
	"testing"
	"time"
)

type firedRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *firedRecorder) fire(id string) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

func (r *firedRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func TestTimeoutScheduler_Fires(t *testing.T) {
	rec := &firedRecorder{}
	s := NewTimeoutScheduler(rec.fire)

	s.Arm("m1", 10*time.Millisecond)

	deadline := time.After(time.Second)
	for rec.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("timer never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if s.Armed("m1") {
		t.Fatal("fired timer should be removed")
	}
}

func TestTimeoutScheduler_CancelPreventsFiring(t *testing.T) {
	rec := &firedRecorder{}
	s := NewTimeoutScheduler(rec.fire)

	s.Arm("m1", 30*time.Millisecond)
	s.Cancel("m1")

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("canceled timer fired %d times", rec.count())
	}
	if s.Armed("m1") {
		t.Fatal("canceled timer still armed")
	}
}

func TestTimeoutScheduler_RearmReplaces(t *testing.T) {
	rec := &firedRecorder{}
	s := NewTimeoutScheduler(rec.fire)

	s.Arm("m1", 30*time.Millisecond)
	s.Arm("m1", 500*time.Millisecond)

	// the first timer was replaced, nothing fires in its window
	time.Sleep(100 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("replaced timer fired %d times", rec.count())
	}
	if !s.Armed("m1") {
		t.Fatal("replacement timer should still be armed")
	}
	s.Cancel("m1")
}

func TestTimeoutScheduler_CancelUnknownIsNoOp(t *testing.T) {
	s := NewTimeoutScheduler(func(string) {})
	s.Cancel("never-armed")
}
