// Package texture paints the procedural stripe texture wrapped on well
// tubes and tracks its scrolling offset.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/gogpu/gg"
)

// ErrInvalidOptions is returned for non-positive sizes, no stripes or fewer
// than two colours.
var ErrInvalidOptions = errors.New("texture: invalid options")

// Options describe a stripe texture. Bands run across U: the image is split
// into 2*Stripes vertical bands filled with Colors in turn.
type Options struct {
	Width   int
	Height  int
	Stripes int
	Colors  []graph.Color

	// TickWidth draws a line of the last colour on every band edge;
	// 0 disables it.
	TickWidth float64
}

// OptionsFromConfig picks the texture settings out of cfg. Ticks are one
// pixel wide.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Width:     cfg.Texture.Width,
		Height:    cfg.Texture.Height,
		Stripes:   cfg.Texture.Stripes,
		Colors:    cfg.Texture.Colors,
		TickWidth: 1,
	}
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	case o.Stripes <= 0:
		return fmt.Errorf("%w: %d stripes", ErrInvalidOptions, o.Stripes)
	case len(o.Colors) < 2:
		return fmt.Errorf("%w: need at least 2 colours, got %d", ErrInvalidOptions, len(o.Colors))
	case o.TickWidth < 0:
		return fmt.Errorf("%w: negative tick width", ErrInvalidOptions)
	}
	return nil
}

// SetLogger routes the painting library's diagnostics to l.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

func paint(o Options) (*gg.Context, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(o.Width, o.Height)
	dc.ClearWithColor(gg.FromColor(o.Colors[0]))

	bands := 2 * o.Stripes
	bandWidth := float64(o.Width) / float64(bands)
	h := float64(o.Height)
	for i := 1; i < bands; i++ {
		c := o.Colors[i%len(o.Colors)]
		if c == o.Colors[0] {
			continue
		}
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*bandWidth, 0, bandWidth, h)
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("texture: band %d: %w", i, err)
		}
	}

	if o.TickWidth > 0 {
		dc.SetColor(o.Colors[len(o.Colors)-1])
		dc.SetLineWidth(o.TickWidth)
		for i := 1; i < bands; i++ {
			x := float64(i) * bandWidth
			dc.DrawLine(x, 0, x, h)
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("texture: ticks: %w", err)
		}
	}

	logging.L().Debug("texture painted", "component", "texture",
		"width", o.Width, "height", o.Height, "bands", bands)
	return dc, nil
}

// Paint renders the stripe texture.
func Paint(o Options) (image.Image, error) {
	dc, err := paint(o)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// WritePNG renders the stripe texture as PNG to w.
func WritePNG(w io.Writer, o Options) error {
	dc, err := paint(o)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("texture: encode: %w", err)
	}
	return nil
}

// PNG renders the stripe texture and returns the encoded bytes.
func PNG(o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
