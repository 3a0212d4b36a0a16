package common

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

var ErrInvalidLatLng = errors.New("invalid latitude or longitude")

type Location struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

func NewLocation(lat, lng float64) Location {
	return Location{Lat: lat, Lng: lng}
}

// IsZero reports whether the location is the null-island placeholder used
// for drivers that connected but never sent a position.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

func HaversineDistance(a, b Location) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	aLat := degreesToRadians(a.Lat)
	bLat := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(aLat)*math.Cos(bLat)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

// HaversineMeters is HaversineDistance expressed in meters, the unit the
// routing collaborator reports.
func HaversineMeters(a, b Location) float64 {
	return HaversineDistance(a, b) * 1000.0
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

func ValidateLatLng(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidLatLng)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidLatLng)
	}
	return nil
}
