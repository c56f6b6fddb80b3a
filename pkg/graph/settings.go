package graph

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ---------------------------------------------------------------------------
// Colour
// ---------------------------------------------------------------------------

// Color is an sRGB colour that serialises as "#rrggbb".
type Color struct {
	colorful.Color
}

// ParseColor accepts "#rrggbb", "#rgb" or "0xrrggbb".
func ParseColor(s string) (Color, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = "#" + s[2:]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("graph: invalid colour %q: %w", s, err)
	}
	return Color{c}, nil
}

// MustColor is ParseColor for constants.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ---------------------------------------------------------------------------
// Scene settings
// ---------------------------------------------------------------------------

// Camera describes a perspective camera. Projection is the frontend's job;
// the graph only carries placement.
type Camera struct {
	Position Vec3    `json:"position"`
	LookAt   Vec3    `json:"look_at"`
	FOV      float64 `json:"fov"` // vertical, degrees
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Color     Color   `json:"color"`
	Intensity float64 `json:"intensity"`
}

// HemisphereLight fades from a sky colour above to a ground colour below.
type HemisphereLight struct {
	Sky       Color   `json:"sky"`
	Ground    Color   `json:"ground"`
	Intensity float64 `json:"intensity"`
}

// Settings holds graph-wide scene settings.
type Settings struct {
	Camera     Camera          `json:"camera"`
	Ambient    AmbientLight    `json:"ambient"`
	Hemisphere HemisphereLight `json:"hemisphere"`
	Background Color           `json:"background"`
}

// Default scene values.
const (
	DefaultFOV  = 50
	DefaultNear = 0.1
	DefaultFar  = 2000
)

// DefaultSettings returns a camera above and behind the origin, a soft
// white ambient light, a warm hemisphere light and a light grey background.
func DefaultSettings() Settings {
	return Settings{
		Camera: Camera{
			Position: Vec3{0, 10, 15},
			FOV:      DefaultFOV,
			Near:     DefaultNear,
			Far:      DefaultFar,
		},
		Ambient: AmbientLight{
			Color:     MustColor("#404040"),
			Intensity: 1,
		},
		Hemisphere: HemisphereLight{
			Sky:       MustColor("#ffffbb"),
			Ground:    MustColor("#080820"),
			Intensity: 0.7,
		},
		Background: MustColor("#c0c0c0"),
	}
}
