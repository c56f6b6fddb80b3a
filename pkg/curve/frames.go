package curve

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Frames holds one orthonormal frame per sample along a curve. For every i,
// (Normals[i], Binormals[i], Tangents[i]) is right-handed.
type Frames struct {
	Tangents  []v3.Vec
	Normals   []v3.Vec
	Binormals []v3.Vec
}

// Len returns the number of frames.
func (f *Frames) Len() int { return len(f.Tangents) }

// ComputeFrames returns segments+1 rotation-minimising frames sampled at
// evenly spaced arc-length fractions. The first normal is the world axis least
// aligned with the starting tangent (X, then Y, then Z on ties), projected
// onto the plane orthogonal to it; later normals are parallel-transported.
func (c *CatmullRom) ComputeFrames(segments int) *Frames {
	n := segments + 1
	f := &Frames{
		Tangents:  make([]v3.Vec, n),
		Normals:   make([]v3.Vec, n),
		Binormals: make([]v3.Vec, n),
	}

	for i := 0; i < n; i++ {
		f.Tangents[i] = c.TangentAt(float64(i) / float64(segments))
	}

	t0 := f.Tangents[0]
	axis := leastAlignedAxis(t0)
	f.Normals[0] = axis.Sub(t0.MulScalar(axis.Dot(t0))).Normalize()
	f.Binormals[0] = t0.Cross(f.Normals[0])

	for i := 1; i < n; i++ {
		f.Normals[i] = f.Normals[i-1]
		prev, cur := f.Tangents[i-1], f.Tangents[i]
		vec := prev.Cross(cur)
		if vec.Length() > 1e-12 {
			vec = vec.Normalize()
			theta := math.Acos(clamp(prev.Dot(cur), -1, 1))
			f.Normals[i] = rotateAbout(f.Normals[i], vec, theta)
		}
		f.Binormals[i] = cur.Cross(f.Normals[i])
	}

	return f
}

func leastAlignedAxis(t v3.Vec) v3.Vec {
	axis := v3.Vec{X: 1}
	min := math.Abs(t.X)
	if ay := math.Abs(t.Y); ay < min {
		min = ay
		axis = v3.Vec{Y: 1}
	}
	if az := math.Abs(t.Z); az < min {
		axis = v3.Vec{Z: 1}
	}
	return axis
}

// rotateAbout rotates v around the unit axis k by theta (Rodrigues).
func rotateAbout(v, k v3.Vec, theta float64) v3.Vec {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return v.MulScalar(cos).
		Add(k.Cross(v).MulScalar(sin)).
		Add(k.MulScalar(k.Dot(v) * (1 - cos)))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
