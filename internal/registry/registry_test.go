package registry

import (
	"context"
	"testing"

	domainerrors "mission-dispatch/internal/errors"
)

func TestMarkOnline_Idempotent(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	r.MarkOnline(ctx, "d1")
	r.MarkOnline(ctx, "d1")

	if r.Count() != 1 {
		t.Fatalf("expected 1 driver, got %d", r.Count())
	}
	if !r.IsOnline("d1") {
		t.Fatal("expected d1 online")
	}
}

func TestMarkOffline_RemovesDriver(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	r.MarkOnline(ctx, "d1")
	r.MarkOffline(ctx, "d1")

	if r.IsOnline("d1") {
		t.Fatal("expected d1 offline")
	}
	if r.Count() != 0 {
		t.Fatalf("expected 0 drivers, got %d", r.Count())
	}
}

func TestUpdateLocation_OfflineDriver(t *testing.T) {
	r := New(nil)

	err := r.UpdateLocation(context.Background(), "ghost", 24.7, 46.7)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateLocation_InvalidCoordinates(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	r.MarkOnline(ctx, "d1")

	if err := r.UpdateLocation(ctx, "d1", 91, 0); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestUpdateLocation_StoresPosition(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	r.MarkOnline(ctx, "d1")

	if err := r.UpdateLocation(ctx, "d1", 24.7, 46.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, ok := r.Location("d1")
	if !ok {
		t.Fatal("expected location")
	}
	if loc.Lat != 24.7 || loc.Lng != 46.7 {
		t.Fatalf("location mismatch: (%f, %f)", loc.Lat, loc.Lng)
	}
}

// --- ListAvailable ---

func TestListAvailable_SkipsDriversWithoutPosition(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	r.MarkOnline(ctx, "d1")
	r.MarkOnline(ctx, "d2")
	_ = r.UpdateLocation(ctx, "d2", 24.7, 46.7)

	out := r.ListAvailable(nil)
	if len(out) != 1 || out[0].DriverID != "d2" {
		t.Fatalf("expected only d2, got %v", out)
	}
}

func TestListAvailable_ExcludesBusySet(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	for _, id := range []string{"d1", "d2", "d3"} {
		r.MarkOnline(ctx, id)
		_ = r.UpdateLocation(ctx, id, 24.7, 46.7)
	}

	out := r.ListAvailable(map[string]bool{"d2": true})
	if len(out) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(out))
	}
	for _, p := range out {
		if p.DriverID == "d2" {
			t.Fatal("d2 should have been excluded")
		}
	}
}

func TestListAvailable_DeterministicOrder(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	for _, id := range []string{"d3", "d1", "d2"} {
		r.MarkOnline(ctx, id)
		_ = r.UpdateLocation(ctx, id, 24.7, 46.7)
	}

	out := r.ListAvailable(nil)
	want := []string{"d1", "d2", "d3"}
	for i, p := range out {
		if p.DriverID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.DriverID)
		}
	}
}

// --- Hooks ---

func TestHooks_OnlineAndOffline(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	var offline, reachable []string
	r.SetHooks(
		func(id string) { offline = append(offline, id) },
		func(id string) { reachable = append(reachable, id) },
	)

	r.MarkOnline(ctx, "d1")
	if len(reachable) != 1 || reachable[0] != "d1" {
		t.Fatalf("expected reachable hook on connect, got %v", reachable)
	}

	// reconnect of an already-tracked driver must not refire
	r.MarkOnline(ctx, "d1")
	if len(reachable) != 1 {
		t.Fatalf("expected no duplicate reachable event, got %v", reachable)
	}

	_ = r.UpdateLocation(ctx, "d1", 24.7, 46.7)
	if len(reachable) != 2 {
		t.Fatalf("expected reachable hook on location update, got %v", reachable)
	}

	r.MarkOffline(ctx, "d1")
	if len(offline) != 1 || offline[0] != "d1" {
		t.Fatalf("expected offline hook, got %v", offline)
	}

	// offline of an unknown driver must not fire
	r.MarkOffline(ctx, "ghost")
	if len(offline) != 1 {
		t.Fatalf("expected no offline event for unknown driver, got %v", offline)
	}
}
