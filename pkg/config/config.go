// Package config loads welltube settings from a TOML file layered over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure from Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the full application configuration.
type Config struct {
	Window    Window    `toml:"window"`
	Render    Render    `toml:"render"`
	Camera    Camera    `toml:"camera"`
	Texture   Texture   `toml:"texture"`
	Animation Animation `toml:"animation"`
	Server    Server    `toml:"server"`
	Log       Log       `toml:"log"`
}

// Window configures the desktop shell.
type Window struct {
	// title bar text
	Title string `toml:"title"`

	// initial size in pixels
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Render configures the frame loop and the renderer the frontend creates.
type Render struct {
	// target frames per second of the frame driver
	FPS int `toml:"fps"`

	// device pixel ratio; 0 lets the browser decide
	PixelRatio float64 `toml:"pixel_ratio"`

	// clear colour, used when the script does not set one
	Background graph.Color `toml:"background"`

	// marching cubes cells along the longest axis of a marker
	MarkerCells int `toml:"marker_cells"`

	// marker kernel: sdfx, or manifold in builds tagged manifold
	Kernel string `toml:"kernel"`
}

// Camera holds the default camera, used when the script does not set one.
type Camera struct {
	Position [3]float64 `toml:"position"`
	LookAt   [3]float64 `toml:"look_at"`

	// vertical field of view in degrees
	FOV  float64 `toml:"fov"`
	Near float64 `toml:"near"`
	Far  float64 `toml:"far"`
}

// Texture configures the procedural stripe texture wrapped on wells.
type Texture struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// number of stripe pairs across the width
	Stripes int `toml:"stripes"`

	// stripe colours, cycled in order
	Colors []graph.Color `toml:"colors"`

	// texture offset advance in UV units per second; 0 stops scrolling
	ScrollSpeed float64 `toml:"scroll_speed"`
}

// Animation configures per-frame motion of the scene.
type Animation struct {
	// rotation of well meshes about world Z in radians per second;
	// 0 disables the spin
	SpinRate float64 `toml:"spin_rate"`
}

// Server configures the browser frontend server.
type Server struct {
	Addr string `toml:"addr"`
}

// Log configures the process logger.
type Log struct {
	// debug, info, warn or error
	Level string `toml:"level"`

	// text or json
	Format string `toml:"format"`
}

// Default returns the built-in configuration. Camera and background mirror
// graph.DefaultSettings.
func Default() *Config {
	s := graph.DefaultSettings()
	return &Config{
		Window: Window{
			Title:  "welltube",
			Width:  1280,
			Height: 800,
		},
		Render: Render{
			FPS:         60,
			Background:  s.Background,
			MarkerCells: 48,
			Kernel:      "sdfx",
		},
		Camera: Camera{
			Position: vec3(s.Camera.Position),
			LookAt:   vec3(s.Camera.LookAt),
			FOV:      s.Camera.FOV,
			Near:     s.Camera.Near,
			Far:      s.Camera.Far,
		},
		Texture: Texture{
			Width:       512,
			Height:      64,
			Stripes:     8,
			Colors:      []graph.Color{graph.MustColor("#d9a441"), graph.MustColor("#5a3d1e")},
			ScrollSpeed: 0.25,
		},
		Animation: Animation{
			// One hundredth of a radian per frame at 60 fps.
			SpinRate: 0.6,
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

func vec3(v graph.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Load reads the TOML file at path over Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := cfg.Decode(f); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	logging.L().Debug("config loaded", "path", path)
	return cfg, nil
}

// Decode overlays TOML from r onto c and validates the result. Keys that do
// not map to a field are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return err
	}
	return c.Validate()
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	check(c.Render.FPS > 0 && c.Render.FPS <= 240, "render.fps %d outside 1..240", c.Render.FPS)
	check(c.Render.PixelRatio >= 0, "render.pixel_ratio %g is negative", c.Render.PixelRatio)
	check(c.Render.MarkerCells >= 8, "render.marker_cells %d below 8", c.Render.MarkerCells)
	check(c.Render.Kernel == "sdfx" || c.Render.Kernel == "manifold", "render.kernel %q, expected sdfx or manifold", c.Render.Kernel)
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov %g outside (0, 180)", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far, "camera near %g / far %g must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	check(c.Camera.Position != c.Camera.LookAt, "camera.position equals camera.look_at")
	check(c.Texture.Width > 0 && c.Texture.Height > 0, "texture size %dx%d must be positive", c.Texture.Width, c.Texture.Height)
	check(c.Texture.Stripes > 0, "texture.stripes %d must be positive", c.Texture.Stripes)
	check(len(c.Texture.Colors) >= 2, "texture.colors needs at least 2 colours, got %d", len(c.Texture.Colors))
	check(c.Server.Addr != "", "server.addr is empty")
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		check(false, "log.level: %v", err)
	}
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format %q, expected text or json", c.Log.Format)

	return errors.Join(errs...)
}

// SceneDefaults returns graph settings seeded from this configuration, for
// scripts that leave camera or background unset.
func (c *Config) SceneDefaults() graph.Settings {
	s := graph.DefaultSettings()
	s.Camera.Position = graph.Vec3{X: c.Camera.Position[0], Y: c.Camera.Position[1], Z: c.Camera.Position[2]}
	s.Camera.LookAt = graph.Vec3{X: c.Camera.LookAt[0], Y: c.Camera.LookAt[1], Z: c.Camera.LookAt[2]}
	s.Camera.FOV = c.Camera.FOV
	s.Camera.Near = c.Camera.Near
	s.Camera.Far = c.Camera.Far
	s.Background = c.Render.Background
	return s
}
