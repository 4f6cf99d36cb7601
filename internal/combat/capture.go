package combat

import "sync"

// ScoreState counts reached bases per side. Safe for concurrent readers.
type ScoreState struct {
	mu     sync.Mutex
	allied int
	enemy  int
}

func (s *ScoreState) Increment(side Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if side == Enemy {
		s.enemy++
	} else {
		s.allied++
	}
}

func (s *ScoreState) Reset() {
	s.mu.Lock()
	s.allied, s.enemy = 0, 0
	s.mu.Unlock()
}

func (s *ScoreState) Snapshot() (allied, enemy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allied, s.enemy
}

// BoundaryTrigger reports which base, if any, a marker position has reached.
type BoundaryTrigger interface {
	Reached(position float64) (Side, bool)
}

// MarkerRanger is implemented by boundaries that also bound marker travel.
// The match clamps the marker to ±MarkerRange; a boundary without it leaves
// the marker unclamped.
type MarkerRanger interface {
	MarkerRange() float64
}

// FixedBoundary places the enemy base at +Limit and the allied base at -Limit.
type FixedBoundary struct {
	Limit float64
}

func (b FixedBoundary) MarkerRange() float64 { return b.Limit }

func (b FixedBoundary) Reached(position float64) (Side, bool) {
	if b.Limit <= 0 {
		return Allied, false
	}
	switch {
	case position >= b.Limit:
		return Enemy, true
	case position <= -b.Limit:
		return Allied, true
	}
	return Allied, false
}

// Resolver closes a rope once its marker reaches a base.
type Resolver struct {
	Score  *ScoreState
	Notify Observer
	Log    Logger
}

// Resolve scores the capture for base, wipes the weaker side and detaches
// everyone from the rope. A second call for the same rope is a no-op.
func (rs *Resolver) Resolve(r *Rope, base Side) error {
	if r.Captured() {
		return nil
	}
	if err := r.fire(eventCapture); err != nil {
		return err
	}
	if rs.Score != nil {
		rs.Score.Increment(base)
	}
	r.recomputeTotals()
	allied, enemy := r.Totals()

	switch {
	case allied < enemy:
		for _, a := range r.Allies() {
			a.Die()
		}
	case allied > enemy:
		for _, e := range r.Enemies() {
			e.Die()
		}
	}
	if rs.Log != nil {
		rs.Log.Logf("rope", r.ID, "rope %d captured at %s base (allied %d vs enemy %d)", r.Index, base, allied, enemy)
	}

	for _, a := range r.Allies() {
		r.vacate(a)
	}
	for _, e := range r.Enemies() {
		r.vacate(e)
	}
	if rs.Notify != nil {
		rs.Notify.OnRopeCaptured(r, base)
	}
	return nil
}
