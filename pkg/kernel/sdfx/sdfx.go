// Package sdfx builds scene marker solids on github.com/deadsy/sdfx signed
// distance fields and meshes them with marching cubes.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/welltube/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells is the marching cubes resolution along a marker's longest
// axis. Markers are small and numerous, so this is far coarser than a CAD
// export would use.
const DefaultMeshCells = 48

// MinMeshCells is the coarsest resolution that still closes a sphere.
const MinMeshCells = 8

// ErrEmptyMesh is returned when a solid meshes to nothing, usually because
// it is smaller than one marching cubes cell.
var ErrEmptyMesh = errors.New("sdfx: marching cubes produced no triangles")

type solid struct {
	sdf sdf.SDF3
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.sdf.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// Kernel meshes marker primitives through sdfx.
type Kernel struct {
	cells int
}

// New returns a kernel at DefaultMeshCells resolution.
func New() *Kernel {
	return NewWithCells(DefaultMeshCells)
}

// NewWithCells returns a kernel that meshes with cells marching cubes cells
// along the longest bounding box axis, never fewer than MinMeshCells.
func NewWithCells(cells int) *Kernel {
	return &Kernel{cells: max(cells, MinMeshCells)}
}

// Cells reports the marching cubes resolution.
func (k *Kernel) Cells() int { return k.cells }

func must(s sdf.SDF3, err error) kernel.Solid {
	// Marker sizes are validated before tessellation, so a failure here is a
	// programming error.
	if err != nil {
		panic(fmt.Sprintf("sdfx: %v", err))
	}
	return &solid{sdf: s}
}

func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	return must(sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0))
}

// Cylinder is centred on the origin along Z. The SDF is smooth, so segments
// only matters for polygonal kernels.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	return must(sdf.Cylinder3D(height, radius, 0))
}

func (k *Kernel) Sphere(radius float64, segments int) kernel.Solid {
	return must(sdf.Sphere3D(radius))
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate applies X, then Y, then Z rotations given in degrees.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.RotateZ(sdf.DtoR(z)).Mul(sdf.RotateY(sdf.DtoR(y))).Mul(sdf.RotateX(sdf.DtoR(x)))
	return k.transform(s, m)
}

func (k *Kernel) transform(s kernel.Solid, m sdf.M44) kernel.Solid {
	return &solid{sdf: sdf.Transform3D(s.(*solid).sdf, m)}
}

// ToMesh meshes s with marching cubes, welds coincident corners and gives
// the result smooth per-vertex normals.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	tris := render.ToTriangles(s.(*solid).sdf, render.NewMarchingCubesUniform(k.cells))
	if len(tris) == 0 {
		return nil, ErrEmptyMesh
	}
	m := weld(tris, s.(*solid).sdf.BoundingBox())
	if m.TriangleCount() == 0 {
		return nil, ErrEmptyMesh
	}
	m.ComputeNormals()
	return m, nil
}
