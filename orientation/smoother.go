package orientation

import "sync"

// Smoother holds the current and target orientation. All methods are safe for concurrent use
// and always observe both triples as a whole.
type Smoother struct {
	mu      sync.Mutex
	factor  float32
	current Vec3
	target  Vec3
}

// NewSmoother creates a Smoother at rest at the origin. Factors outside [0, 1] are clamped.
func NewSmoother(factor float32) *Smoother {
	return &Smoother{factor: clampFactor(factor)}
}

func clampFactor(factor float32) float32 {
	switch {
	case factor < 0:
		return 0
	case factor > 1:
		return 1
	}
	return factor
}

// Factor returns the smoothing factor.
func (s *Smoother) Factor() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factor
}

// SetFactor changes the smoothing factor from the next Step on. Values are clamped as in NewSmoother.
func (s *Smoother) SetFactor(factor float32) {
	s.mu.Lock()
	s.factor = clampFactor(factor)
	s.mu.Unlock()
}

// SetTarget retargets the smoother. The current orientation is untouched until the next Step.
func (s *Smoother) SetTarget(v Vec3) {
	s.mu.Lock()
	s.target = v
	s.mu.Unlock()
}

// Target returns the orientation being converged to.
func (s *Smoother) Target() Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Current returns the last smoothed orientation without advancing.
func (s *Smoother) Current() Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Step advances one tick and returns the new current orientation.
func (s *Smoother) Step() Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Tick(s.current, s.target, s.factor)
	return s.current
}

// Reset snaps both current and target to v.
func (s *Smoother) Reset(v Vec3) {
	s.mu.Lock()
	s.current, s.target = v, v
	s.mu.Unlock()
}
