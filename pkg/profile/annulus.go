// Package profile builds the 2D cross-sections that are swept along a well path.
package profile

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// DefaultCurveSegments controls how finely each circular boundary is sampled.
// A full circle is sampled with 2*DefaultCurveSegments points.
const DefaultCurveSegments = 4

// ErrInvalidCrossSection is returned for radii that do not describe a ring.
var ErrInvalidCrossSection = errors.New("invalid cross-section")

// Annulus is a ring-shaped cross-section. Outer is counter-clockwise, Inner
// is clockwise, both closed implicitly (the last point connects to the first).
type Annulus struct {
	OuterRadius float64
	InnerRadius float64
	Outer       []v2.Vec
	Inner       []v2.Vec
}

// NewAnnulus samples a ring with the given radii. Both circles start at angle
// -180 degrees; the outer boundary runs counter-clockwise and the inner one
// clockwise so that the inner boundary reads as a hole.
func NewAnnulus(outerRadius, innerRadius float64, curveSegments int) (*Annulus, error) {
	if err := ValidateRadii(outerRadius, innerRadius); err != nil {
		return nil, err
	}
	if curveSegments < 2 {
		return nil, fmt.Errorf("profile: curve segments must be at least 2, got %d", curveSegments)
	}

	n := 2 * curveSegments
	a := &Annulus{
		OuterRadius: outerRadius,
		InnerRadius: innerRadius,
		Outer:       make([]v2.Vec, n),
		Inner:       make([]v2.Vec, n),
	}
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		ccw := -math.Pi + float64(i)*step
		a.Outer[i] = v2.Vec{X: outerRadius * math.Cos(ccw), Y: outerRadius * math.Sin(ccw)}
		cw := math.Pi - float64(i)*step
		a.Inner[i] = v2.Vec{X: innerRadius * math.Cos(cw), Y: innerRadius * math.Sin(cw)}
	}
	return a, nil
}

// ValidateRadii checks outer > inner > 0 with both radii finite. Radii are
// never swapped.
func ValidateRadii(outerRadius, innerRadius float64) error {
	switch {
	case math.IsNaN(outerRadius) || math.IsInf(outerRadius, 0) ||
		math.IsNaN(innerRadius) || math.IsInf(innerRadius, 0):
		return fmt.Errorf("%w: radii must be finite (outer=%v, inner=%v)", ErrInvalidCrossSection, outerRadius, innerRadius)
	case innerRadius <= 0:
		return fmt.Errorf("%w: inner radius %v must be positive", ErrInvalidCrossSection, innerRadius)
	case outerRadius <= innerRadius:
		return fmt.Errorf("%w: outer radius %v must exceed inner radius %v", ErrInvalidCrossSection, outerRadius, innerRadius)
	}
	return nil
}

// Len returns the number of samples on each boundary.
func (a *Annulus) Len() int { return len(a.Outer) }

// InnerMatching returns the inner-boundary index at the same angle as outer
// index i.
func (a *Annulus) InnerMatching(i int) int {
	n := a.Len()
	return (n - i) % n
}

// SignedArea returns the shoelace area of a closed contour; positive for
// counter-clockwise winding.
func SignedArea(contour []v2.Vec) float64 {
	var area float64
	n := len(contour)
	for i := 0; i < n; i++ {
		p, q := contour[i], contour[(i+1)%n]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

// IsClockwise reports whether the contour winds clockwise.
func IsClockwise(contour []v2.Vec) bool {
	return SignedArea(contour) < 0
}

// Area returns the area of the ring as sampled (outer polygon minus hole).
func (a *Annulus) Area() float64 {
	return SignedArea(a.Outer) + SignedArea(a.Inner)
}
