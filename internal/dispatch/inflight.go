package dispatch

import "sync"

// inflightSet is the cheap early-rejection guard: at most one
// StartAssignment per mission may be in flight, checked before any lock or
// store access.
type inflightSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{ids: make(map[string]struct{})}
}

func (s *inflightSet) TryAdd(missionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[missionID]; ok {
		return false
	}
	s.ids[missionID] = struct{}{}
	return true
}

func (s *inflightSet) Remove(missionID string) {
	s.mu.Lock()
	delete(s.ids, missionID)
	s.mu.Unlock()
}
