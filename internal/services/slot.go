package services

import "sync"

// Slot holds one outcome until the consumer acknowledges it. Producers never
// clear a slot on their own; the reader shows the value once and calls Clear.
type Slot[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

// Set stores v, replacing any unacknowledged value.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = v, true
}

// Get returns the value and whether one is pending.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}

// Clear acknowledges the value. It reports true only for the call that
// actually removed something, so a second Clear is a no-op.
func (s *Slot[T]) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return false
	}
	var zero T
	s.value, s.set = zero, false
	return true
}
