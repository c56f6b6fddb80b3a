package sweep

import (
	"github.com/chazu/welltube/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// placeFunc maps profile coordinates (x, y) at sweep step s to world space.
type placeFunc func(s int, x, y float64) v3.Vec

// builder accumulates vertices and triangles. Walls and caps get their own
// vertices so that normals do not bleed across the sharp rim edges.
type builder struct {
	vertices []float32
	indices  []uint32
}

func newBuilder(samples, steps int) *builder {
	verts := 2*(steps+1)*samples + 2*2*samples
	tris := 2*steps*samples*2 + 2*samples*2
	return &builder{
		vertices: make([]float32, 0, verts*3),
		indices:  make([]uint32, 0, tris*3),
	}
}

func (b *builder) add(p v3.Vec) uint32 {
	idx := uint32(len(b.vertices) / 3)
	b.vertices = append(b.vertices, float32(p.X), float32(p.Y), float32(p.Z))
	return idx
}

func (b *builder) tri(a, c, d uint32) {
	b.indices = append(b.indices, a, c, d)
}

// wall emits a closed band of quads for one boundary across all steps.
func (b *builder) wall(contour []v2.Vec, steps int, place placeFunc) {
	n := len(contour)
	base := uint32(len(b.vertices) / 3)
	for s := 0; s <= steps; s++ {
		for _, p := range contour {
			b.add(place(s, p.X, p.Y))
		}
	}

	at := func(s, i int) uint32 { return base + uint32(s*n+i%n) }
	for s := 0; s < steps; s++ {
		for i := 0; i < n; i++ {
			p0 := at(s, i)
			p1 := at(s, i+1)
			p2 := at(s+1, i+1)
			p3 := at(s+1, i)
			b.tri(p0, p1, p3)
			b.tri(p1, p2, p3)
		}
	}
}

// cap emits the ring face at step s. outer[i] and inner[i] share an angle.
// The end cap faces along the path tangent, the start cap against it.
func (b *builder) cap(outer, inner []v2.Vec, s int, end bool, place placeFunc) {
	n := len(outer)
	base := uint32(len(b.vertices) / 3)
	for i := 0; i < n; i++ {
		b.add(place(s, outer[i].X, outer[i].Y))
		b.add(place(s, inner[i].X, inner[i].Y))
	}

	o := func(i int) uint32 { return base + uint32((i%n)*2) }
	in := func(i int) uint32 { return base + uint32((i%n)*2+1) }
	for i := 0; i < n; i++ {
		if end {
			b.tri(o(i), o(i+1), in(i+1))
			b.tri(o(i), in(i+1), in(i))
		} else {
			b.tri(o(i), in(i+1), o(i+1))
			b.tri(o(i), in(i), in(i+1))
		}
	}
}

func (b *builder) mesh() *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: b.vertices,
		Indices:  b.indices,
	}
}
