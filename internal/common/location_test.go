package common

import (
	"math"
	"testing"
)

func TestHaversineDistance_KnownPair(t *testing.T) {
	// Riyadh to Jeddah, roughly 850 km
	riyadh := NewLocation(24.7136, 46.6753)
	jeddah := NewLocation(21.4858, 39.1925)

	d := HaversineDistance(riyadh, jeddah)
	if d < 800 || d > 900 {
		t.Fatalf("expected ~850 km, got %f", d)
	}
}

func TestHaversineDistance_SamePoint(t *testing.T) {
	p := NewLocation(24.7, 46.7)
	if d := HaversineDistance(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineMeters(t *testing.T) {
	a := NewLocation(24.7, 46.7)
	b := NewLocation(24.8, 46.8)

	km := HaversineDistance(a, b)
	m := HaversineMeters(a, b)
	if math.Abs(m-km*1000) > 1e-6 {
		t.Fatalf("meters mismatch: %f vs %f", m, km*1000)
	}
}

func TestLocation_IsZero(t *testing.T) {
	if !(Location{}).IsZero() {
		t.Fatal("expected zero location")
	}
	if NewLocation(24.7, 46.7).IsZero() {
		t.Fatal("expected non-zero location")
	}
}

func TestValidateLatLng(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 24.7, 46.7, false},
		{"lat too high", 91, 0, true},
		{"lat too low", -91, 0, true},
		{"lng too high", 0, 181, true},
		{"lng too low", 0, -181, true},
		{"boundary", 90, 180, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLatLng(tc.lat, tc.lng)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
