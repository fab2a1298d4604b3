package volume

import "sync"

// State is the client gain shared between the control listener and the
// capture callback. The critical section is a single load or store, so the
// capture context never waits on the lock for more than that.
type State struct {
	mu sync.Mutex
	v  float32
}

// New returns a State holding v. The caller is expected to have validated v;
// out-of-range initial values are clamped through Set and fall back to 0.
func New(v float32) *State {
	s := &State{}
	if !s.Set(v) {
		s.v = 0
	}
	return s
}

// Set commits v if it is within [0.0, 1.0] and reports whether it did.
// Out-of-range values (including NaN) leave the previous value unchanged.
func (s *State) Set(v float32) bool {
	if !(v >= 0 && v <= 1) {
		return false
	}
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
	return true
}

// Get returns a snapshot of the current gain.
func (s *State) Get() float32 {
	s.mu.Lock()
	v := s.v
	s.mu.Unlock()
	return v
}
