// Package curve evaluates smooth 3D paths through borehole control points.
// The Catmull-Rom spline passes through every control point; arc-length
// reparameterisation gives evenly spaced samples for sweeping a profile.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ArcLengthDivisions is the number of chords used to approximate arc length.
const ArcLengthDivisions = 200

// tangentDelta is the parameter step used for finite-difference tangents.
const tangentDelta = 0.0001

// ErrTooFewPoints is returned when a curve is built from fewer than two points.
var ErrTooFewPoints = errors.New("curve: at least 2 control points are required")

// ErrCoincidentPoints is returned when two consecutive control points coincide.
var ErrCoincidentPoints = errors.New("curve: consecutive control points coincide")

// Kind selects the knot parameterisation of the spline.
type Kind int

const (
	Centripetal Kind = iota // alpha = 0.5, no cusps or self-intersections
	Chordal                 // alpha = 1
	Uniform                 // classic Catmull-Rom with tension
)

func (k Kind) String() string {
	switch k {
	case Centripetal:
		return "centripetal"
	case Chordal:
		return "chordal"
	case Uniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// ParseKind converts a name produced by Kind.String back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "centripetal", "":
		return Centripetal, nil
	case "chordal":
		return Chordal, nil
	case "uniform":
		return Uniform, nil
	}
	return 0, fmt.Errorf("curve: unknown kind %q", s)
}

// CatmullRom is an open Catmull-Rom spline through a fixed set of points.
// It is immutable after construction and safe for concurrent reads.
type CatmullRom struct {
	points  []v3.Vec
	kind    Kind
	tension float64
	lengths []float64 // cumulative chord lengths, len ArcLengthDivisions+1
}

// NewCatmullRom builds a spline of the given parameterisation through
// points. tension is only used by Uniform.
func NewCatmullRom(points []v3.Vec, kind Kind, tension float64) (*CatmullRom, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	for i, p := range points {
		if !finite(p) {
			return nil, fmt.Errorf("curve: control point %d is not finite: %v", i, p)
		}
	}
	for i := 1; i < len(points); i++ {
		if points[i].Sub(points[i-1]).Length() == 0 {
			return nil, fmt.Errorf("%w: points %d and %d", ErrCoincidentPoints, i-1, i)
		}
	}

	pts := make([]v3.Vec, len(points))
	copy(pts, points)
	c := &CatmullRom{points: pts, kind: kind, tension: tension}
	c.lengths = c.computeLengths(ArcLengthDivisions)
	return c, nil
}

// Points returns a copy of the control points.
func (c *CatmullRom) Points() []v3.Vec {
	out := make([]v3.Vec, len(c.points))
	copy(out, c.points)
	return out
}

// Kind returns the parameterisation.
func (c *CatmullRom) Kind() Kind { return c.kind }

// Point evaluates the curve at parameter t in [0,1]. Parameter t is uniform per
// segment, not per unit length; see PointAt.
func (c *CatmullRom) Point(t float64) v3.Vec {
	pts := c.points
	l := len(pts)

	p := float64(l-1) * t
	seg := int(math.Floor(p))
	weight := p - float64(seg)
	if seg >= l-1 {
		seg = l - 2
		weight = 1
	}
	if seg < 0 {
		seg = 0
		weight = 0
	}

	var p0, p3 v3.Vec
	if seg > 0 {
		p0 = pts[seg-1]
	} else {
		// Extrapolate a phantom point before the start.
		p0 = pts[0].Sub(pts[1]).Add(pts[0])
	}
	p1 := pts[seg]
	p2 := pts[seg+1]
	if seg+2 < l {
		p3 = pts[seg+2]
	} else {
		p3 = pts[l-1].Sub(pts[l-2]).Add(pts[l-1])
	}

	var px, py, pz cubicPoly
	switch c.kind {
	case Centripetal, Chordal:
		pow := 0.25
		if c.kind == Chordal {
			pow = 0.5
		}
		dt0 := math.Pow(dist2(p0, p1), pow)
		dt1 := math.Pow(dist2(p1, p2), pow)
		dt2 := math.Pow(dist2(p2, p3), pow)

		// Safety check for repeated points.
		if dt1 < 1e-4 {
			dt1 = 1.0
		}
		if dt0 < 1e-4 {
			dt0 = dt1
		}
		if dt2 < 1e-4 {
			dt2 = dt1
		}
		px = nonuniformPoly(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2)
		py = nonuniformPoly(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2)
		pz = nonuniformPoly(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2)
	default:
		px = uniformPoly(p0.X, p1.X, p2.X, p3.X, c.tension)
		py = uniformPoly(p0.Y, p1.Y, p2.Y, p3.Y, c.tension)
		pz = uniformPoly(p0.Z, p1.Z, p2.Z, p3.Z, c.tension)
	}

	return v3.Vec{X: px.calc(weight), Y: py.calc(weight), Z: pz.calc(weight)}
}

// Length returns the approximate arc length of the curve.
func (c *CatmullRom) Length() float64 {
	return c.lengths[len(c.lengths)-1]
}

// PointAt evaluates the curve at arc-length fraction u in [0,1].
func (c *CatmullRom) PointAt(u float64) v3.Vec {
	return c.Point(c.uToT(u))
}

// Tangent returns the unit tangent at parameter t.
func (c *CatmullRom) Tangent(t float64) v3.Vec {
	t1 := t - tangentDelta
	t2 := t + tangentDelta
	if t1 < 0 {
		t1 = 0
	}
	if t2 > 1 {
		t2 = 1
	}
	return c.Point(t2).Sub(c.Point(t1)).Normalize()
}

// TangentAt returns the unit tangent at arc-length fraction u.
func (c *CatmullRom) TangentAt(u float64) v3.Vec {
	return c.Tangent(c.uToT(u))
}

// SpacedPoints returns divisions+1 points equidistant along the arc.
func (c *CatmullRom) SpacedPoints(divisions int) []v3.Vec {
	pts := make([]v3.Vec, 0, divisions+1)
	for i := 0; i <= divisions; i++ {
		pts = append(pts, c.PointAt(float64(i)/float64(divisions)))
	}
	return pts
}

// computeLengths accumulates chord lengths over evenly spaced parameters.
func (c *CatmullRom) computeLengths(divisions int) []float64 {
	lengths := make([]float64, 0, divisions+1)
	lengths = append(lengths, 0)
	last := c.Point(0)
	var sum float64
	for i := 1; i <= divisions; i++ {
		cur := c.Point(float64(i) / float64(divisions))
		sum += cur.Sub(last).Length()
		lengths = append(lengths, sum)
		last = cur
	}
	return lengths
}

// uToT maps an arc-length fraction to the curve parameter by binary search
// over the cumulative length table and linear interpolation within a chord.
func (c *CatmullRom) uToT(u float64) float64 {
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	total := c.Length()
	target := u * total
	n := len(c.lengths)

	// First index whose cumulative length is >= target.
	i := sort.SearchFloat64s(c.lengths, target)
	if i == 0 {
		return 0
	}
	if i >= n {
		return 1
	}
	if c.lengths[i] == target {
		return float64(i) / float64(n-1)
	}

	before := c.lengths[i-1]
	segLen := c.lengths[i] - before
	frac := (target - before) / segLen
	return (float64(i-1) + frac) / float64(n-1)
}

func dist2(a, b v3.Vec) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

func finite(v v3.Vec) bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Cubic polynomials
// ---------------------------------------------------------------------------

// cubicPoly is c0 + c1*t + c2*t^2 + c3*t^3 with the Hermite boundary
// conditions p(0)=x0, p(1)=x1, p'(0)=t0, p'(1)=t1.
type cubicPoly struct {
	c0, c1, c2, c3 float64
}

func hermite(x0, x1, t0, t1 float64) cubicPoly {
	return cubicPoly{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func uniformPoly(x0, x1, x2, x3, tension float64) cubicPoly {
	return hermite(x1, x2, tension*(x2-x0), tension*(x3-x1))
}

func nonuniformPoly(x0, x1, x2, x3, dt0, dt1, dt2 float64) cubicPoly {
	// Tangents over [t1,t2], then rescaled to the unit interval.
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1
	return hermite(x1, x2, t1, t2)
}

func (p cubicPoly) calc(t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return p.c0 + p.c1*t + p.c2*t2 + p.c3*t3
}
