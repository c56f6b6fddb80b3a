package graph

import (
	"fmt"

	"github.com/chazu/welltube/pkg/curve"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Vectors
// ---------------------------------------------------------------------------

// Vec3 is a plain 3D vector as it appears in scripts and JSON.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// V3 converts to the geometry vector type.
func (v Vec3) V3() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------------
// Well
// ---------------------------------------------------------------------------

// WellData is a ring cross-section swept along a trajectory.
// Created by the (well ...) Lisp form.
type WellData struct {
	OuterRadius   float64 `json:"outer_radius"`
	InnerRadius   float64 `json:"inner_radius"`
	Path          []Vec3  `json:"path"`
	CurveSegments int     `json:"curve_segments,omitempty"` // 0 = default
	Curve         string  `json:"curve,omitempty"`          // spline kind, "" = centripetal
	Texture       string  `json:"texture,omitempty"`        // texture name, "" = untextured
}

func (WellData) nodeData() {}

// CurveKind parses Curve.
func (d WellData) CurveKind() (curve.Kind, error) {
	return curve.ParseKind(d.Curve)
}

// PathV3 returns the control points as geometry vectors.
func (d WellData) PathV3() []v3.Vec {
	pts := make([]v3.Vec, len(d.Path))
	for i, p := range d.Path {
		pts[i] = p.V3()
	}
	return pts
}

// ---------------------------------------------------------------------------
// Marker
// ---------------------------------------------------------------------------

// MarkerShape distinguishes between marker solids.
type MarkerShape int

const (
	MarkerSphere   MarkerShape = iota // radius
	MarkerBox                         // size
	MarkerCylinder                    // radius + height, axis along Z
)

func (s MarkerShape) String() string {
	switch s {
	case MarkerSphere:
		return "sphere"
	case MarkerBox:
		return "box"
	case MarkerCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// ParseMarkerShape maps a script keyword to a MarkerShape.
func ParseMarkerShape(s string) (MarkerShape, error) {
	switch s {
	case "sphere":
		return MarkerSphere, nil
	case "box":
		return MarkerBox, nil
	case "cylinder":
		return MarkerCylinder, nil
	}
	return 0, fmt.Errorf("graph: unknown marker shape %q, expected sphere, box or cylinder", s)
}

// MarkerData is a solid landmark (target, casing shoe, wellhead).
// Created by the (marker ...) Lisp form.
type MarkerData struct {
	Shape    MarkerShape `json:"shape"`
	Radius   float64     `json:"radius,omitempty"`
	Height   float64     `json:"height,omitempty"`
	Size     Vec3        `json:"size,omitempty"`
	Segments int         `json:"segments,omitempty"`
	Color    Color       `json:"color"`
}

func (MarkerData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to its children.
// Created by the (place ...) Lisp form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (a field, a pad).
// Created by the (group ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
