package sdfx

import (
	"math"

	"github.com/chazu/welltube/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
)

// weldTolerance is the fraction of the bounding box diagonal under which two
// marching cubes corners count as the same vertex.
const weldTolerance = 1e-6

// weld indexes a triangle soup, sharing corners that coincide within
// tolerance and dropping triangles that collapse as a result.
func weld(tris []*sdf.Triangle3, bb sdf.Box3) *kernel.Mesh {
	step := bb.Size().Length() * weldTolerance
	if step <= 0 {
		step = weldTolerance
	}

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*3),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	seen := make(map[[3]int64]uint32, len(tris))

	for _, t := range tris {
		var idx [3]uint32
		for j, p := range t {
			key := [3]int64{
				int64(math.Round(p.X / step)),
				int64(math.Round(p.Y / step)),
				int64(math.Round(p.Z / step)),
			}
			i, ok := seen[key]
			if !ok {
				i = uint32(m.VertexCount())
				seen[key] = i
				m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			}
			idx[j] = i
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		m.Indices = append(m.Indices, idx[0], idx[1], idx[2])
	}
	return m
}
