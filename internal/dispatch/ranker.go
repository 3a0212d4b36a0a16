package dispatch

import (
	"context"
	"sort"

	"mission-dispatch/internal/common"
	"mission-dispatch/internal/registry"
	"mission-dispatch/internal/routing"
)

type Candidate struct {
	DriverID string
	Meters   float64
}

// DistanceRanker turns a driver snapshot into the ordered candidate list
// for one assignment round: travel distance from the mission origin,
// ascending, drivers beyond the radius dropped. Ties keep the snapshot
// order, which the registry makes deterministic per call.
type DistanceRanker struct {
	router     routing.Service
	maxRadiusM float64
}

func NewDistanceRanker(router routing.Service, maxRadiusKM float64) *DistanceRanker {
	return &DistanceRanker{
		router:     router,
		maxRadiusM: maxRadiusKM * 1000.0,
	}
}

func (r *DistanceRanker) Rank(ctx context.Context, origin common.Location, drivers []registry.Presence) ([]Candidate, error) {
	if len(drivers) == 0 {
		return nil, nil
	}

	destinations := make([]common.Location, len(drivers))
	for i, d := range drivers {
		destinations[i] = d.Location()
	}

	meters, err := r.router.DistanceMatrix(ctx, origin, destinations)
	if err != nil {
		return nil, err
	}
	if len(meters) != len(drivers) {
		return nil, routing.ErrMatrixSizeMismatch
	}

	candidates := make([]Candidate, 0, len(drivers))
	for i, d := range drivers {
		if meters[i] > r.maxRadiusM {
			continue
		}
		candidates = append(candidates, Candidate{DriverID: d.DriverID, Meters: meters[i]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Meters < candidates[j].Meters
	})
	return candidates, nil
}
