package scene

import (
	"strings"
	"testing"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/engine"
	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/kernel/sdfx"
)

func newBuilder() *Builder {
	return NewBuilder(engine.NewEngine(), sdfx.New())
}

const wellAndMarker = `
(well "producer" :outer 5 :inner 4 :texture :stripes
  :path (list (vec3 0 0 0) (vec3 0 0 -10)))
(marker "target" :radius 2)
(place (ref "target") :at (vec3 0 0 -10))
(camera :position (vec3 0 -40 20))
`

func TestBuildSuccess(t *testing.T) {
	res := newBuilder().Build(wellAndMarker)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(res.Meshes))
	}
	if res.Meshes[0].Texture != "stripes" || res.Meshes[0].Color != "" {
		t.Errorf("well mesh texture/colour = %q/%q", res.Meshes[0].Texture, res.Meshes[0].Color)
	}
	if res.Meshes[1].Color != "#ff0000" {
		t.Errorf("marker colour = %q, want #ff0000", res.Meshes[1].Color)
	}
	if res.Settings.Camera.Position.Y != -40 {
		t.Errorf("camera = %+v", res.Settings.Camera)
	}
}

func TestBuildPaletteForUntexturedWells(t *testing.T) {
	res := newBuilder().Build(`
(well "a" :outer 2 :inner 1 :path (list (vec3 0 0 0) (vec3 0 0 -5)))
(well "b" :outer 2 :inner 1 :path (list (vec3 9 0 0) (vec3 9 0 -5)))
`)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Meshes[0].Color != colorPalette[0] || res.Meshes[1].Color != colorPalette[1] {
		t.Errorf("colours = %q, %q", res.Meshes[0].Color, res.Meshes[1].Color)
	}
}

func TestBuildEvalError(t *testing.T) {
	res := newBuilder().Build(`(well "a" :outer 5`)
	if res.OK() {
		t.Fatal("expected errors for unbalanced source")
	}
	if len(res.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(res.Meshes))
	}
}

func TestBuildValidationError(t *testing.T) {
	res := newBuilder().Build(`(well "bad" :outer 4 :inner 5 :path (list (vec3 0 0 0) (vec3 0 0 -10)))`)
	if res.OK() {
		t.Fatal("expected a validation error for swapped radii")
	}
	if res.Errors[0].Node != "bad" {
		t.Errorf("error node = %q, want bad", res.Errors[0].Node)
	}
}

func TestBuildRejectsUnboundedWell(t *testing.T) {
	res := newBuilder().Build(`(well "deep" :outer 5 :inner 4 :path (list (vec3 0 0 0) (vec3 0 0 -1e15)))`)
	if res.OK() {
		t.Fatal("expected an error for a well too long to sweep")
	}
	if res.Errors[0].Node != "deep" || !strings.Contains(res.Errors[0].Message, "too many steps") {
		t.Errorf("error = %+v, want a step limit error on deep", res.Errors[0])
	}
	if len(res.Meshes) != 0 {
		t.Errorf("got %d meshes, want none", len(res.Meshes))
	}
}

type panickingKernel struct{ *sdfx.Kernel }

func (panickingKernel) Sphere(float64, int) kernel.Solid { panic("kernel exploded") }

func TestBuildRecoversFromPanic(t *testing.T) {
	res := NewBuilder(engine.NewEngine(), panickingKernel{sdfx.New()}).Build(`(marker "m" :radius 1)`)
	if res.OK() {
		t.Fatal("expected an error from a panicking kernel")
	}
	if !strings.Contains(res.Errors[0].Message, "kernel exploded") {
		t.Errorf("error = %q", res.Errors[0].Message)
	}
	if len(res.Meshes) != 0 {
		t.Errorf("got %d meshes, want none", len(res.Meshes))
	}
}

func TestBuildWarnings(t *testing.T) {
	res := newBuilder().Build(`(marker :radius 1)`)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "no wells") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a no-wells warning, got %v", res.Warnings)
	}
}

func TestBuildEmptySource(t *testing.T) {
	res := newBuilder().Build("")
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Meshes == nil || len(res.Meshes) != 0 {
		t.Errorf("expected empty non-nil meshes, got %v", res.Meshes)
	}
}

func TestBuilderFromConfigUsesDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Background = graph.MustColor("#102030")
	cfg.Camera.FOV = 35

	b, err := NewBuilderFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewBuilderFromConfig: %v", err)
	}
	res := b.Build(`(marker "m" :radius 1)`)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if got := res.Settings.Background.Hex(); got != "#102030" {
		t.Errorf("background = %s, want #102030", got)
	}
	if res.Settings.Camera.FOV != 35 {
		t.Errorf("fov = %v, want 35", res.Settings.Camera.FOV)
	}
}

func TestMarkerKernel(t *testing.T) {
	cfg := config.Default()
	if _, err := MarkerKernel(cfg); err != nil {
		t.Errorf("sdfx kernel: %v", err)
	}

	cfg.Render.Kernel = "cgal"
	if _, err := MarkerKernel(cfg); err == nil || !strings.Contains(err.Error(), "cgal") {
		t.Errorf("expected unknown kernel error, got %v", err)
	}
	if _, err := NewBuilderFromConfig(cfg); err == nil {
		t.Error("NewBuilderFromConfig should fail for an unknown kernel")
	}
}
