package analyses

import "sync"

// sequencer hands out increasing numbers per view slot so a response that
// resolves after a newer trigger can be dropped.
type sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func (s *sequencer) next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = make(map[string]uint64)
	}
	s.latest[key]++
	return s.latest[key]
}

func (s *sequencer) isLatest(key string, n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == n
}
