package curve

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramesAlongZ(t *testing.T) {
	c := straight(t, 10)
	f := c.ComputeFrames(10)
	require.Equal(t, 11, f.Len())

	for i := 0; i < f.Len(); i++ {
		assertVec(t, v3.Vec{X: 1}, f.Normals[i])
		assertVec(t, v3.Vec{Y: 1}, f.Binormals[i])
	}
}

func TestFramesOrthonormal(t *testing.T) {
	pts := []v3.Vec{{}, {X: 5, Z: -20}, {X: 30, Y: 10, Z: -50}, {X: 80, Y: 40, Z: -60}}
	c, err := NewCatmullRom(pts, Centripetal, 0.5)
	require.NoError(t, err)

	f := c.ComputeFrames(64)
	for i := 0; i < f.Len(); i++ {
		tan, n, b := f.Tangents[i], f.Normals[i], f.Binormals[i]
		assert.InDelta(t, 1, tan.Length(), 1e-9)
		assert.InDelta(t, 1, n.Length(), 1e-6)
		assert.InDelta(t, 1, b.Length(), 1e-6)
		assert.InDelta(t, 0, tan.Dot(n), 1e-6, "T.N at %d", i)
		assert.InDelta(t, 0, tan.Dot(b), 1e-6, "T.B at %d", i)
		assert.InDelta(t, 0, n.Dot(b), 1e-6, "N.B at %d", i)
	}
}

func TestLeastAlignedAxis(t *testing.T) {
	assert.Equal(t, v3.Vec{X: 1}, leastAlignedAxis(v3.Vec{Z: 1}))
	assert.Equal(t, v3.Vec{Y: 1}, leastAlignedAxis(v3.Vec{X: 1}))
	assert.Equal(t, v3.Vec{Z: 1}, leastAlignedAxis(v3.Vec{X: 0.6, Y: 0.8}))
}

func assertVec(t *testing.T, want, got v3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-12)
	assert.InDelta(t, want.Y, got.Y, 1e-12)
	assert.InDelta(t, want.Z, got.Z, 1e-12)
}
