package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle,
// uvs and uv2s have 2 floats per vertex when present.
type Mesh struct {
	Vertices []float32 `json:"vertices"`          // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`           // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`           // [i0,i1,i2, ...] triangles
	UVs      []float32 `json:"uvs,omitempty"`
	UV2s     []float32 `json:"uv2s,omitempty"`    // second channel for aux maps
	PartName string    `json:"partName"`          // which scene node this came from
	Color    string    `json:"color,omitempty"`   // "#rrggbb" for flat-shaded markers
	Texture  string    `json:"texture,omitempty"` // texture name for wells
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns vertex i.
func (m *Mesh) Position(i int) v3.Vec {
	return v3.Vec{
		X: float64(m.Vertices[i*3]),
		Y: float64(m.Vertices[i*3+1]),
		Z: float64(m.Vertices[i*3+2]),
	}
}

// BoundingBox returns the axis-aligned bounding box of the vertices.
// An empty mesh yields a zero box.
func (m *Mesh) BoundingBox() sdf.Box3 {
	n := m.VertexCount()
	if n == 0 {
		return sdf.Box3{}
	}
	lo := m.Position(0)
	hi := lo
	for i := 1; i < n; i++ {
		p := m.Position(i)
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Centroid returns the mean vertex position.
func (m *Mesh) Centroid() v3.Vec {
	var sum v3.Vec
	n := m.VertexCount()
	if n == 0 {
		return sum
	}
	for i := 0; i < n; i++ {
		sum = sum.Add(m.Position(i))
	}
	return sum.DivScalar(float64(n))
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]float32(nil), m.Vertices...),
		Normals:  append([]float32(nil), m.Normals...),
		Indices:  append([]uint32(nil), m.Indices...),
		UVs:      append([]float32(nil), m.UVs...),
		UV2s:     append([]float32(nil), m.UV2s...),
		PartName: m.PartName,
		Color:    m.Color,
		Texture:  m.Texture,
	}
}

// Transform applies m44 to positions in place. Normals are rotated by the
// same matrix with translation removed, then renormalised; UVs are untouched.
func (m *Mesh) Transform(m44 sdf.M44) {
	origin := m44.MulPosition(v3.Vec{})
	for i := 0; i < m.VertexCount(); i++ {
		p := m44.MulPosition(m.Position(i))
		m.Vertices[i*3] = float32(p.X)
		m.Vertices[i*3+1] = float32(p.Y)
		m.Vertices[i*3+2] = float32(p.Z)
	}
	for i := 0; i < len(m.Normals)/3; i++ {
		n := v3.Vec{X: float64(m.Normals[i*3]), Y: float64(m.Normals[i*3+1]), Z: float64(m.Normals[i*3+2])}
		r := m44.MulPosition(n).Sub(origin)
		if l := r.Length(); l > 1e-12 {
			r = r.DivScalar(l)
		}
		m.Normals[i*3] = float32(r.X)
		m.Normals[i*3+1] = float32(r.Y)
		m.Normals[i*3+2] = float32(r.Z)
	}
}

// RotateAboutWorldAxis rotates the mesh by radians around an axis through
// the world origin.
func (m *Mesh) RotateAboutWorldAxis(axis v3.Vec, radians float64) {
	m.Transform(sdf.Rotate3d(axis.Normalize(), radians))
}

// RotateAboutObjectAxis rotates the mesh by radians around an axis through
// its own centroid.
func (m *Mesh) RotateAboutObjectAxis(axis v3.Vec, radians float64) {
	c := m.Centroid()
	t := sdf.Translate3d(c).Mul(sdf.Rotate3d(axis.Normalize(), radians)).Mul(sdf.Translate3d(c.Neg()))
	m.Transform(t)
}

// ComputeNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex.
func (m *Mesh) ComputeNormals() {
	numVerts := m.VertexCount()
	normals := make([]float64, numVerts*3)

	for t := 0; t < m.TriangleCount(); t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		a, b, c := m.Position(int(i0)), m.Position(int(i1)), m.Position(int(i2))

		// Unnormalised, so larger faces weigh more.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3] += n.X
			normals[idx*3+1] += n.Y
			normals[idx*3+2] += n.Z
		}
	}

	m.Normals = make([]float32, numVerts*3)
	for i := 0; i < numVerts; i++ {
		nx, ny, nz := normals[i*3], normals[i*3+1], normals[i*3+2]
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			m.Normals[i*3] = float32(nx / length)
			m.Normals[i*3+1] = float32(ny / length)
			m.Normals[i*3+2] = float32(nz / length)
		}
	}
}
