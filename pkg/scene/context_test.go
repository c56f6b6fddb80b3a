package scene

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initContext(t *testing.T, opts Options) *Context {
	t.Helper()
	res := newBuilder().Build(wellAndMarker)
	require.True(t, res.OK(), "build errors: %v", res.Errors)
	c, err := Init(res, opts)
	require.NoError(t, err)
	return c
}

func TestInitRejectsFailedBuild(t *testing.T) {
	res := newBuilder().Build(`(+ 1`)
	_, err := Init(res, Options{Width: 10, Height: 10})
	assert.True(t, errors.Is(err, ErrNotBuilt), "got %v", err)

	_, err = Init(nil, Options{Width: 10, Height: 10})
	assert.True(t, errors.Is(err, ErrNotBuilt), "got %v", err)
}

func TestInitRejectsBadViewport(t *testing.T) {
	res := newBuilder().Build(wellAndMarker)
	_, err := Init(res, Options{})
	assert.True(t, errors.Is(err, ErrBadViewport), "got %v", err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, cfg.Window.Width, opts.Width)
	assert.Equal(t, cfg.Texture.ScrollSpeed, opts.ScrollSpeed)
	assert.Equal(t, cfg.Animation.SpinRate, opts.SpinRate)
}

func TestUpdateAdvancesFrame(t *testing.T) {
	c := initContext(t, Options{Width: 800, Height: 400, ScrollSpeed: 0.5, SpinRate: math.Pi})

	f := c.Update(0.5)
	assert.Equal(t, uint64(1), f.Number)
	assert.InDelta(t, 0.5, f.Time, 1e-12)
	assert.InDelta(t, 0.25, f.Offset, 1e-12)
	assert.InDelta(t, math.Pi/2, f.Spin, 1e-12)
	assert.InDelta(t, 2.0, f.Aspect, 1e-12)

	f = c.Update(3)
	assert.Equal(t, uint64(2), f.Number)
	assert.InDelta(t, 0.75, f.Offset, 1e-12)
	assert.InDelta(t, 1.5*math.Pi, f.Spin, 1e-9) // 3.5π wraps to 1.5π
	assert.Equal(t, f, c.Snapshot())
}

func TestUpdateIgnoresBadDelta(t *testing.T) {
	c := initContext(t, Options{Width: 1, Height: 1, ScrollSpeed: 1, SpinRate: 1})
	for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
		f := c.Update(dt)
		assert.Zero(t, f.Time)
		assert.Zero(t, f.Offset)
		assert.Zero(t, f.Spin)
	}
	assert.Equal(t, uint64(3), c.Snapshot().Number)
}

func TestResize(t *testing.T) {
	c := initContext(t, Options{Width: 100, Height: 100})
	require.NoError(t, c.Resize(1920, 1080))
	f := c.Snapshot()
	assert.Equal(t, 1920, f.Width)
	assert.InDelta(t, 1920.0/1080.0, f.Aspect, 1e-12)

	err := c.Resize(0, 1080)
	assert.True(t, errors.Is(err, ErrBadViewport))
	assert.Equal(t, 1920, c.Snapshot().Width, "failed resize keeps the old viewport")
}

func TestPosedMeshes(t *testing.T) {
	c := initContext(t, Options{Width: 1, Height: 1, SpinRate: math.Pi / 2})
	base := c.Meshes()
	require.Len(t, base, 2)

	// No spin yet: copies equal to the originals.
	posed := c.PosedMeshes()
	assert.Equal(t, base[0].Vertices, posed[0].Vertices)

	c.Update(1) // quarter turn
	posed = c.PosedMeshes()

	// Well vertices turn a quarter about world Z: (x, y) becomes (-y, x).
	well := posed[0]
	p := base[0].Position(0)
	q := well.Position(0)
	assert.InDelta(t, -p.Y, q.X, 1e-4)
	assert.InDelta(t, p.X, q.Y, 1e-4)
	assert.InDelta(t, p.Z, q.Z, 1e-4)

	// The marker turns with the scene, about world Z like the well.
	before := base[1].Centroid()
	after := posed[1].Centroid()
	assert.InDelta(t, -before.Y, after.X, 1e-3)
	assert.InDelta(t, before.X, after.Y, 1e-3)
	assert.InDelta(t, before.Z, after.Z, 1e-3)

	// Originals are untouched.
	assert.Equal(t, p, c.Meshes()[0].Position(0))
}

// nearestVertex returns the distance from p to the closest vertex of m.
func nearestVertex(m *kernel.Mesh, p v3.Vec) float64 {
	best := math.Inf(1)
	for i := 0; i < m.VertexCount(); i++ {
		best = math.Min(best, m.Position(i).Sub(p).Length())
	}
	return best
}

func TestPosedMarkerStaysAtWellEnd(t *testing.T) {
	res := newBuilder().Build(`
(well "deviated" :outer 5 :inner 4
  :path (list (vec3 0 0 0) (vec3 0 100 -100)))
(marker "target" :radius 2)
(place (ref "target") :at (vec3 0 100 -100))
`)
	require.True(t, res.OK(), "build errors: %v", res.Errors)
	c, err := Init(res, Options{Width: 1, Height: 1, SpinRate: math.Pi / 2})
	require.NoError(t, err)

	posed := c.PosedMeshes()
	gap := nearestVertex(posed[0], posed[1].Centroid())

	c.Update(1) // quarter turn
	posed = c.PosedMeshes()
	marker := posed[1].Centroid()
	assert.InDelta(t, -100, marker.X, 0.5)
	assert.InDelta(t, 0, marker.Y, 0.5)
	assert.InDelta(t, -100, marker.Z, 0.5)
	assert.InDelta(t, gap, nearestVertex(posed[0], marker), 1e-3, "marker drifted off the well end")
}

func TestLoadKeepsFrameState(t *testing.T) {
	c := initContext(t, Options{Width: 640, Height: 480, ScrollSpeed: 0.1})
	c.Update(1)

	res := newBuilder().Build(`(marker "solo" :radius 1)`)
	require.NoError(t, c.Load(res))
	assert.Len(t, c.Meshes(), 1)
	assert.Equal(t, uint64(1), c.Snapshot().Number)
	assert.Equal(t, 640, c.Snapshot().Width)

	err := c.Load(newBuilder().Build(`(`))
	assert.True(t, errors.Is(err, ErrNotBuilt))
	assert.Len(t, c.Meshes(), 1)
}

func TestConcurrentUpdateAndSnapshot(t *testing.T) {
	c := initContext(t, Options{Width: 10, Height: 10, ScrollSpeed: 0.3, SpinRate: 1})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c.Update(1.0 / 60)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			f := c.Snapshot()
			if f.Offset < 0 || f.Offset >= 1 {
				t.Errorf("offset %v out of range", f.Offset)
				return
			}
			_ = c.PosedMeshes()
		}
	}()
	wg.Wait()
	assert.Equal(t, uint64(500), c.Snapshot().Number)
}

func TestDriverRunsUntilCancelled(t *testing.T) {
	d := NewDriver(200)
	assert.Equal(t, 5*time.Millisecond, d.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	var total float64
	err := d.Run(ctx, func(dt float64) error {
		calls++
		total += dt
		if calls == 5 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Greater(t, total, 0.0)
}

func TestDriverStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := NewDriver(500).Run(context.Background(), func(float64) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 3, calls)
}

func TestDriverClampsFPS(t *testing.T) {
	assert.Equal(t, time.Second, NewDriver(0).Interval())
}

func TestDriverUsesClock(t *testing.T) {
	d := NewDriver(1000)
	base := time.Unix(0, 0)
	tick := 0
	d.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * 250 * time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var dts []float64
	_ = d.Run(ctx, func(dt float64) error {
		dts = append(dts, dt)
		if len(dts) == 2 {
			cancel()
		}
		return nil
	})
	assert.Equal(t, []float64{0.25, 0.25}, dts)
}
