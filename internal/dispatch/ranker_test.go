package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"mission-dispatch/internal/common"
	"mission-dispatch/internal/registry"
	"mission-dispatch/internal/routing"
)

// fakeRouter serves distances keyed by destination coordinates.
type fakeRouter struct {
	meters map[common.Location]float64
	err    error
	short  bool // return one element too few, simulating a bad vendor row
}

func (f *fakeRouter) Distance(_ context.Context, _, d common.Location) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.meters[d], nil
}

func (f *fakeRouter) Duration(context.Context, common.Location, common.Location) (float64, error) {
	return 0, nil
}

func (f *fakeRouter) DistanceMatrix(_ context.Context, _ common.Location, dests []common.Location) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, 0, len(dests))
	for _, d := range dests {
		out = append(out, f.meters[d])
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func presence(id string, lat, lng float64) registry.Presence {
	return registry.Presence{DriverID: id, Lat: lat, Lng: lng, ConnectedAt: time.Now(), UpdatedAt: time.Now()}
}

func TestRank_OrdersByDistance(t *testing.T) {
	drivers := []registry.Presence{
		presence("d1", 24.70, 46.70),
		presence("d2", 24.71, 46.71),
		presence("d3", 24.72, 46.72),
	}
	router := &fakeRouter{meters: map[common.Location]float64{
		drivers[0].Location(): 5000,
		drivers[1].Location(): 1000,
		drivers[2].Location(): 3000,
	}}

	r := NewDistanceRanker(router, 15)
	got, err := r.Rank(context.Background(), common.NewLocation(24.7, 46.7), drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"d2", "d3", "d1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i, c := range got {
		if c.DriverID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], c.DriverID)
		}
	}
}

func TestRank_FiltersBeyondRadius(t *testing.T) {
	drivers := []registry.Presence{
		presence("near", 24.70, 46.70),
		presence("far", 24.71, 46.71),
	}
	router := &fakeRouter{meters: map[common.Location]float64{
		drivers[0].Location(): 14000,
		drivers[1].Location(): 16000,
	}}

	r := NewDistanceRanker(router, 15)
	got, err := r.Rank(context.Background(), common.NewLocation(24.7, 46.7), drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].DriverID != "near" {
		t.Fatalf("expected only the near driver, got %v", got)
	}
}

func TestRank_TiesKeepSnapshotOrder(t *testing.T) {
	drivers := []registry.Presence{
		presence("d1", 24.70, 46.70),
		presence("d2", 24.71, 46.71),
	}
	router := &fakeRouter{meters: map[common.Location]float64{
		drivers[0].Location(): 2000,
		drivers[1].Location(): 2000,
	}}

	r := NewDistanceRanker(router, 15)
	got, err := r.Rank(context.Background(), common.NewLocation(24.7, 46.7), drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].DriverID != "d1" || got[1].DriverID != "d2" {
		t.Fatalf("tie broke snapshot order: %v", got)
	}
}

func TestRank_EmptySnapshot(t *testing.T) {
	r := NewDistanceRanker(&fakeRouter{}, 15)
	got, err := r.Rank(context.Background(), common.NewLocation(24.7, 46.7), nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for empty snapshot, got %v, %v", got, err)
	}
}

func TestRank_RouterError(t *testing.T) {
	r := NewDistanceRanker(&fakeRouter{err: routing.ErrUnavailable}, 15)
	_, err := r.Rank(context.Background(), common.NewLocation(24.7, 46.7), []registry.Presence{presence("d1", 24.7, 46.7)})
	if !errors.Is(err, routing.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRank_SizeMismatch(t *testing.T) {
	drivers := []registry.Presence{
		presence("d1", 24.70, 46.70),
		presence("d2", 24.71, 46.71),
	}
	router := &fakeRouter{meters: map[common.Location]float64{}, short: true}

	r := NewDistanceRanker(router, 15)
	_, err := r.Rank(context.Background(), common.NewLocation(24.7, 46.7), drivers)
	if !errors.Is(err, routing.ErrMatrixSizeMismatch) {
		t.Fatalf("expected ErrMatrixSizeMismatch, got %v", err)
	}
}
