//go:build manifold

// Package manifold builds scene markers with the Manifold C library
// (https://github.com/elalish/manifold) through cgo. Its primitives are
// exact polygons with shared vertices, so marker meshes stay small and the
// segments hint sets how round they look.
//
// Requires manifoldc under /usr/local. Build with -tags=manifold.
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/chazu/welltube/pkg/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// ErrEmptyMesh is returned when Manifold yields no triangles for a marker.
var ErrEmptyMesh = errors.New("manifold: marker produced no triangles")

// MinSegments keeps round markers from degenerating into prisms.
const MinSegments = 6

type solid struct {
	ptr *C.ManifoldManifold
}

func own(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		C.manifold_delete_manifold(s.ptr)
	})
	return s
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(bb)
	min = [3]float64{float64(C.manifold_box_min_x(bb)), float64(C.manifold_box_min_y(bb)), float64(C.manifold_box_min_z(bb))}
	max = [3]float64{float64(C.manifold_box_max_x(bb)), float64(C.manifold_box_max_y(bb)), float64(C.manifold_box_max_z(bb))}
	runtime.KeepAlive(s)
	return min, max
}

// Kernel meshes marker primitives through Manifold.
type Kernel struct{}

// New returns a Manifold marker kernel.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

func segs(n int) C.int {
	return C.int(max(n, MinSegments))
}

func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	return own(C.manifold_cube(C.manifold_alloc_manifold(), C.double(x), C.double(y), C.double(z), 1))
}

// Cylinder is centred on the origin along Z.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	return own(C.manifold_cylinder(C.manifold_alloc_manifold(),
		C.double(height), C.double(radius), C.double(radius), segs(segments), 1))
}

func (k *Kernel) Sphere(radius float64, segments int) kernel.Solid {
	return own(C.manifold_sphere(C.manifold_alloc_manifold(), C.double(radius), segs(segments)))
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	src := s.(*solid)
	out := own(C.manifold_translate(C.manifold_alloc_manifold(), src.ptr, C.double(x), C.double(y), C.double(z)))
	runtime.KeepAlive(src)
	return out
}

// Rotate applies Euler angles in degrees, X first.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	src := s.(*solid)
	out := own(C.manifold_rotate(C.manifold_alloc_manifold(), src.ptr, C.double(x), C.double(y), C.double(z)))
	runtime.KeepAlive(src)
	return out
}

// ToMesh copies positions and triangles out of MeshGL and computes smooth
// normals, matching the shading of the sdfx markers.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	src := s.(*solid)
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), src.ptr)
	defer C.manifold_delete_meshgl(gl)
	defer runtime.KeepAlive(src)

	numVert := int(C.manifold_meshgl_num_vert(gl))
	numTri := int(C.manifold_meshgl_num_tri(gl))
	if numVert == 0 || numTri == 0 {
		return nil, ErrEmptyMesh
	}

	// Properties are interleaved per vertex; position is always first.
	numProp := int(C.manifold_meshgl_num_prop(gl))
	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)

	m := &kernel.Mesh{
		Vertices: make([]float32, numVert*3),
		Indices:  make([]uint32, numTri*3),
	}
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&m.Indices[0])), gl)
	for i := 0; i < numVert; i++ {
		copy(m.Vertices[i*3:i*3+3], props[i*numProp:i*numProp+3])
	}
	m.ComputeNormals()
	return m, nil
}
