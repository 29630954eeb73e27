package gradebook

import "sync"

type cell struct {
	studentID    int
	assignmentID int
}

// sequencer issues increasing tokens per grade cell so that late responses can be recognised.
type sequencer struct {
	mu     sync.Mutex
	latest map[cell]uint64
}

func newSequencer() *sequencer {
	return &sequencer{latest: make(map[cell]uint64)}
}

func (s *sequencer) next(c cell) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[c]++
	return s.latest[c]
}

// current reports whether token is still the latest issued for c.
func (s *sequencer) current(c cell, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[c] == token
}

