// Package sweep builds tube meshes by sweeping an annulus cross-section along
// a Catmull-Rom path, then projects planar texture coordinates onto them.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/welltube/pkg/curve"
	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/profile"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidCrossSection is returned when the radii do not satisfy
// outer > inner > 0. It is the same value as profile.ErrInvalidCrossSection.
var ErrInvalidCrossSection = profile.ErrInvalidCrossSection

// ErrDegeneratePath is returned when the path cannot produce at least one
// extrusion step.
var ErrDegeneratePath = errors.New("degenerate path")

// MaxSteps bounds the extrusion so a huge path cannot exhaust memory. A
// step emits a few dozen vertices, so this is already tens of millions.
const MaxSteps = 1_000_000

// ErrTooManySteps is returned when a path's arc length rounds to more than
// MaxSteps. It wraps ErrDegeneratePath.
var ErrTooManySteps = fmt.Errorf("%w: too many steps", ErrDegeneratePath)

// ErrDegenerateBoundingBox is returned when the mesh has no X or Y extent,
// which would make the planar UV projection divide by zero.
var ErrDegenerateBoundingBox = errors.New("degenerate bounding box")

type options struct {
	curveSegments int
}

// Option customises BuildSweptRing.
type Option func(*options)

// WithCurveSegments sets how finely each circle is sampled: 2*n points.
// Defaults to profile.DefaultCurveSegments.
func WithCurveSegments(n int) Option {
	return func(o *options) { o.curveSegments = n }
}

// PathTension is the Catmull-Rom tension used for curve.Uniform paths.
const PathTension = 0.5

// NewPath builds a Catmull-Rom path of the given kind through points. Any
// construction failure (too few, non-finite or coincident points) is
// reported as ErrDegeneratePath.
func NewPath(points []v3.Vec, kind curve.Kind) (*curve.CatmullRom, error) {
	c, err := curve.NewCatmullRom(points, kind, PathTension)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w: %v", ErrDegeneratePath, err)
	}
	return c, nil
}

// StepCount returns the number of extrusion steps for path: its arc length
// rounded to the nearest integer, one step per unit length.
func StepCount(path *curve.CatmullRom) (int, error) {
	if path == nil {
		return 0, fmt.Errorf("sweep: %w: nil path", ErrDegeneratePath)
	}
	length := path.Length()
	if math.IsNaN(length) || math.IsInf(length, 0) {
		return 0, fmt.Errorf("sweep: %w: arc length is %v", ErrDegeneratePath, length)
	}
	// Checked before converting; int(math.Round(x)) is undefined past MaxInt.
	if math.Round(length) > MaxSteps {
		return 0, fmt.Errorf("sweep: %w: arc length %.4g needs more than %d", ErrTooManySteps, length, MaxSteps)
	}
	steps := int(math.Round(length))
	if steps < 1 {
		return 0, fmt.Errorf("sweep: %w: arc length %.4f rounds to zero steps", ErrDegeneratePath, length)
	}
	return steps, nil
}

// BuildSweptRing extrudes a ring with the given radii along path and returns
// an indexed, watertight mesh with normals and identical UV1/UV2 channels.
// Inputs are not modified and the builder keeps no reference to the result.
func BuildSweptRing(outerRadius, innerRadius float64, path *curve.CatmullRom, opts ...Option) (*kernel.Mesh, error) {
	o := options{curveSegments: profile.DefaultCurveSegments}
	for _, opt := range opts {
		opt(&o)
	}

	if err := profile.ValidateRadii(outerRadius, innerRadius); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	steps, err := StepCount(path)
	if err != nil {
		return nil, err
	}
	ring, err := profile.NewAnnulus(outerRadius, innerRadius, o.curveSegments)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	centres := path.SpacedPoints(steps)
	frames := path.ComputeFrames(steps)

	b := newBuilder(ring.Len(), steps)
	place := func(s int, x, y float64) v3.Vec {
		return centres[s].Add(frames.Normals[s].MulScalar(x)).Add(frames.Binormals[s].MulScalar(y))
	}

	// Side walls: one band per boundary. Outer winds counter-clockwise and
	// inner clockwise, so the same quad winding faces outward on the outer
	// wall and into the bore on the inner wall.
	b.wall(ring.Outer, steps, place)
	b.wall(ring.Inner, steps, place)

	// Caps at both ends, pairing each outer sample with the inner sample
	// at the same angle.
	inner := make([]v2.Vec, ring.Len())
	for i := range inner {
		inner[i] = ring.Inner[ring.InnerMatching(i)]
	}
	b.cap(ring.Outer, inner, 0, false, place)
	b.cap(ring.Outer, inner, steps, true, place)

	mesh := b.mesh()
	mesh.ComputeNormals()
	if err := PlanarUV(mesh); err != nil {
		return nil, err
	}
	return mesh, nil
}

// PlanarUV assigns uv = ((x-minX)/extentX, (y-minY)/extentY) to every vertex
// of m from its own bounding box and copies the result into UV2s. Values are
// not clamped.
func PlanarUV(m *kernel.Mesh) error {
	return PlanarUVInBox(m, m.BoundingBox())
}

// PlanarUVInBox projects like PlanarUV but normalises against bb. Vertices
// outside bb get coordinates outside [0,1].
func PlanarUVInBox(m *kernel.Mesh, bb sdf.Box3) error {
	size := bb.Size()
	if !(size.X > 0) || !(size.Y > 0) || math.IsInf(size.X, 0) || math.IsInf(size.Y, 0) {
		return fmt.Errorf("sweep: %w: extent x=%v y=%v", ErrDegenerateBoundingBox, size.X, size.Y)
	}
	n := m.VertexCount()
	uvs := make([]float32, n*2)
	for i := 0; i < n; i++ {
		p := m.Position(i)
		uvs[i*2] = float32((p.X - bb.Min.X) / size.X)
		uvs[i*2+1] = float32((p.Y - bb.Min.Y) / size.Y)
	}
	m.UVs = uvs
	m.UV2s = append([]float32(nil), uvs...)
	return nil
}
