package texture

import "math"

// Scroller advances a texture offset at a constant speed, wrapping it into
// [0, 1) so it can be fed straight to a repeating texture.
type Scroller struct {
	speed  float64
	offset float64
}

// NewScroller returns a scroller moving speed UV units per second.
// Negative speeds scroll backwards.
func NewScroller(speed float64) *Scroller {
	return &Scroller{speed: speed}
}

// Advance moves the offset by speed*dt seconds and returns the new value.
func (s *Scroller) Advance(dt float64) float64 {
	s.offset = wrap(s.offset + s.speed*dt)
	return s.offset
}

// Offset returns the current offset in [0, 1).
func (s *Scroller) Offset() float64 { return s.offset }

// Speed returns the configured speed.
func (s *Scroller) Speed() float64 { return s.speed }

func wrap(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	// -tiny + 1 rounds to 1.
	if x >= 1 {
		x = 0
	}
	return x
}
