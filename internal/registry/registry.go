package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"mission-dispatch/internal/common"
	domainerrors "mission-dispatch/internal/errors"
	"mission-dispatch/internal/observability"
	redisx "mission-dispatch/internal/redis"
)

// Presence is the ephemeral record of a connected driver. Membership in the
// registry is the definition of "online"; profile data lives elsewhere.
type Presence struct {
	DriverID    string    `json:"driver_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	ConnectedAt time.Time `json:"connected_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Presence) Location() common.Location {
	return common.NewLocation(p.Lat, p.Lng)
}

// Registry tracks currently connected drivers and their last-known
// positions. Reads are point-in-time snapshots; callers re-validate driver
// state before finalizing anything, so no external locking is needed.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]*Presence

	cache *redisx.DriverLocationCache // optional write-through, survives restarts

	onOffline   func(driverID string)
	onReachable func(driverID string)
}

func New(cache *redisx.DriverLocationCache) *Registry {
	return &Registry{
		drivers: make(map[string]*Presence),
		cache:   cache,
	}
}

// SetHooks wires the dispatch-side reactions: onOffline is invoked when a
// driver with possible candidacies disconnects, onReachable whenever a
// driver becomes a plausible dispatch target again. Hooks run outside the
// registry lock.
func (r *Registry) SetHooks(onOffline, onReachable func(driverID string)) {
	r.onOffline = onOffline
	r.onReachable = onReachable
}

func (r *Registry) MarkOnline(ctx context.Context, driverID string) {
	now := time.Now()

	r.mu.Lock()
	p, existed := r.drivers[driverID]
	if !existed {
		p = &Presence{DriverID: driverID, ConnectedAt: now, UpdatedAt: now}
		if r.cache != nil {
			// seed from the last position before a reconnect, best effort
			if cached, err := r.cache.Get(ctx, driverID); err == nil && cached != nil {
				p.Lat, p.Lng = cached.Lat, cached.Lng
			}
		}
		r.drivers[driverID] = p
	}
	r.mu.Unlock()

	if !existed {
		observability.DriversOnline.Inc()
		if r.onReachable != nil {
			r.onReachable(driverID)
		}
	}
}

func (r *Registry) MarkOffline(ctx context.Context, driverID string) {
	r.mu.Lock()
	_, existed := r.drivers[driverID]
	delete(r.drivers, driverID)
	r.mu.Unlock()

	if existed {
		observability.DriversOnline.Dec()
		if r.onOffline != nil {
			r.onOffline(driverID)
		}
	}
}

func (r *Registry) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if err := common.ValidateLatLng(lat, lng); err != nil {
		return domainerrors.NewValidation(err.Error())
	}

	r.mu.Lock()
	p, ok := r.drivers[driverID]
	if ok {
		p.Lat, p.Lng = lat, lng
		p.UpdatedAt = time.Now()
	}
	r.mu.Unlock()

	if !ok {
		return domainerrors.DriverNotFound(driverID)
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, driverID, common.NewLocation(lat, lng))
	}
	if r.onReachable != nil {
		r.onReachable(driverID)
	}
	return nil
}

// ListAvailable snapshots the connected drivers with a known position,
// excluding the given busy set. The result is ordered by driver id so a
// single call sees one deterministic iteration order.
func (r *Registry) ListAvailable(excluding map[string]bool) []Presence {
	r.mu.RLock()
	out := make([]Presence, 0, len(r.drivers))
	for id, p := range r.drivers {
		if excluding[id] {
			continue
		}
		if p.Location().IsZero() {
			continue
		}
		out = append(out, *p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out
}

func (r *Registry) IsOnline(driverID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.drivers[driverID]
	return ok
}

func (r *Registry) Location(driverID string) (common.Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.drivers[driverID]
	if !ok {
		return common.Location{}, false
	}
	return p.Location(), true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drivers)
}

// Snapshot returns every presence, online drivers without a position
// included. Admin surface only.
func (r *Registry) Snapshot() []Presence {
	r.mu.RLock()
	out := make([]Presence, 0, len(r.drivers))
	for _, p := range r.drivers {
		out = append(out, *p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out
}
