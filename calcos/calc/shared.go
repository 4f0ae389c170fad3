package calc

import "sync"

// Shared guards one Engine with a single mutex.
//
// The zero value is ready to use.
type Shared struct {
	mu sync.Mutex
	e  Engine
}

// Apply applies c and returns the resulting display.
func (s *Shared) Apply(c Command) (Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.e.Apply(c); err != nil {
		return s.e.Display(), err
	}
	return s.e.Display(), nil
}

// LastError returns the engine's last evaluation error.
func (s *Shared) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LastError()
}

// Display returns a snapshot of the engine display.
func (s *Shared) Display() Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Display()
}

// Reset returns the engine to the Idle state.
func (s *Shared) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.PressClear()
}
