package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/texture"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNotBuilt is returned by Init and Load for a failed build.
var ErrNotBuilt = errors.New("scene: build has errors")

// ErrBadViewport is returned by Resize for non-positive sizes.
var ErrBadViewport = errors.New("scene: bad viewport")

var zAxis = v3.Vec{Z: 1}

// Options configure the animated state of a Context.
type Options struct {
	Width, Height int

	// ScrollSpeed is the texture offset advance in UV units per second.
	ScrollSpeed float64

	// SpinRate turns the scene about world Z, in radians per second.
	SpinRate float64
}

// OptionsFromConfig picks the animation settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		ScrollSpeed: cfg.Texture.ScrollSpeed,
		SpinRate:    cfg.Animation.SpinRate,
	}
}

// Frame is the per-frame state streamed to the frontend.
type Frame struct {
	Number uint64  `json:"frame"`
	Time   float64 `json:"time"`   // seconds since Init
	Offset float64 `json:"offset"` // texture offset in [0, 1)
	Spin   float64 `json:"spin"`   // radians in [0, 2π)
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Aspect float64 `json:"aspect"`
}

// Context holds everything the renderer needs: meshes, camera and lights,
// viewport and animation state. It is safe for concurrent use.
type Context struct {
	mu       sync.RWMutex
	meshes   []*kernel.Mesh
	settings graph.Settings
	scroller *texture.Scroller
	spinRate float64
	frame    Frame
}

// Init creates a Context from a successful build.
func Init(res *Result, opts Options) (*Context, error) {
	if res == nil || !res.OK() {
		return nil, ErrNotBuilt
	}
	c := &Context{
		scroller: texture.NewScroller(opts.ScrollSpeed),
		spinRate: opts.SpinRate,
	}
	c.setResult(res)
	if err := c.Resize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	logging.L().Info("scene initialised", "component", "scene",
		"meshes", len(res.Meshes), "width", opts.Width, "height", opts.Height)
	return c, nil
}

func (c *Context) setResult(res *Result) {
	c.meshes = res.Meshes
	c.settings = res.Settings
}

// Load swaps in a new build, keeping viewport and animation state.
func (c *Context) Load(res *Result) error {
	if res == nil || !res.OK() {
		return ErrNotBuilt
	}
	c.mu.Lock()
	c.setResult(res)
	c.mu.Unlock()
	logging.L().Info("scene reloaded", "component", "scene", "meshes", len(res.Meshes))
	return nil
}

// Update advances the animation by dt seconds and returns the new frame.
// Negative or non-finite dt values are treated as zero.
func (c *Context) Update(dt float64) Frame {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame.Number++
	c.frame.Time += dt
	c.frame.Offset = c.scroller.Advance(dt)
	c.frame.Spin = math.Mod(c.frame.Spin+c.spinRate*dt, 2*math.Pi)
	if c.frame.Spin < 0 {
		c.frame.Spin += 2 * math.Pi
	}
	logging.L().Debug("frame", "component", "scene", "n", c.frame.Number, "offset", c.frame.Offset)
	return c.frame
}

// Resize records a new viewport. The camera aspect follows it.
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadViewport, width, height)
	}
	c.mu.Lock()
	c.frame.Width = width
	c.frame.Height = height
	c.frame.Aspect = float64(width) / float64(height)
	c.mu.Unlock()
	return nil
}

// Snapshot returns the current frame state.
func (c *Context) Snapshot() Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// Settings returns the scene's camera, lights and background.
func (c *Context) Settings() graph.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Meshes returns the meshes as built, without spin applied. The slice is
// shared; callers must not modify the meshes.
func (c *Context) Meshes() []*kernel.Mesh {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meshes
}

// PosedMeshes returns copies of the meshes with the current spin applied.
// The whole scene turns about world Z, as the viewer draws it, so placed
// markers stay where they were put relative to the wells.
func (c *Context) PosedMeshes() []*kernel.Mesh {
	c.mu.RLock()
	meshes, spin := c.meshes, c.frame.Spin
	c.mu.RUnlock()

	out := make([]*kernel.Mesh, len(meshes))
	for i, m := range meshes {
		posed := m.Clone()
		if spin != 0 {
			posed.RotateAboutWorldAxis(zAxis, spin)
		}
		out[i] = posed
	}
	return out
}
