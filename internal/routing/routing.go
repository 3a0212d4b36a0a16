// Package routing wraps the external travel-distance collaborator. The
// dispatch core only depends on the Service interface; the Mapbox client and
// the circuit breaker are wiring details.
package routing

import (
	"context"
	"errors"

	"mission-dispatch/internal/common"
)

var (
	// ErrMatrixSizeMismatch means the collaborator returned a result row
	// whose element count does not match the request. Treated as a fatal
	// integrity error for that call, never silently truncated.
	ErrMatrixSizeMismatch = errors.New("distance matrix size does not match request")

	// ErrUnavailable means the collaborator is down or the breaker is open.
	ErrUnavailable = errors.New("routing service unavailable")
)

type Service interface {
	// Distance returns driving distance in meters.
	Distance(ctx context.Context, origin, destination common.Location) (float64, error)
	// Duration returns driving time in seconds.
	Duration(ctx context.Context, origin, destination common.Location) (float64, error)
	// DistanceMatrix returns driving distances in meters from one origin to
	// each destination, in request order.
	DistanceMatrix(ctx context.Context, origin common.Location, destinations []common.Location) ([]float64, error)
}
