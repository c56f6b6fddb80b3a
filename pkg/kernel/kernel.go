// Package kernel holds the render mesh shared by every part of a scene and
// the solid kernel interface used to build marker geometry.
//
// Well tubes are swept directly into Meshes; only markers go through a
// Kernel, so a kernel needs a handful of primitives plus placement.
package kernel

// Solid is a kernel-specific handle to marker geometry.
type Solid interface {
	BoundingBox() (min, max [3]float64)
}

// Kernel builds marker solids and meshes them. Primitives are centred on
// the origin; segments is a tessellation hint that smooth kernels ignore.
type Kernel interface {
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64, segments int) Solid

	Translate(s Solid, x, y, z float64) Solid
	// Rotate applies Euler angles in degrees, X first.
	Rotate(s Solid, x, y, z float64) Solid

	ToMesh(s Solid) (*Mesh, error)
}
