package main

import (
	"os"
	"testing"

	"github.com/chazu/welltube/pkg/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(config.Default())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

// TestE2EVerticalExample exercises the full pipeline: script source → engine
// → graph → tessellate → meshes. This is the same path that the Wails
// Evaluate binding takes, but without the Wails runtime.
func TestE2EVerticalExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/vertical.lisp")
	if err != nil {
		t.Fatalf("failed to read vertical.lisp: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	m := result.Meshes[0]
	if m.PartName != "vertical" {
		t.Errorf("expected part name 'vertical', got %q", m.PartName)
	}
	if m.VertexCount() != 208 || m.TriangleCount() != 352 {
		t.Errorf("got %d vertices / %d triangles, want 208 / 352", m.VertexCount(), m.TriangleCount())
	}
	if m.Texture != "stripes" {
		t.Errorf("expected stripes texture, got %q", m.Texture)
	}
	if len(m.UVs) != 2*m.VertexCount() {
		t.Errorf("expected one UV per vertex, got %d values", len(m.UVs))
	}
}

// TestE2EFieldExample builds a multi-well scene with surveys, markers,
// placements, a group and scene settings.
func TestE2EFieldExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/field.lisp")
	if err != nil {
		t.Fatalf("failed to read field.lisp: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	expectedParts := map[string]bool{
		"north":        false,
		"east":         false,
		"pilot":        false,
		"target-north": false,
		"target-east":  false,
		"kickoff":      false,
	}
	if len(result.Meshes) != len(expectedParts) {
		t.Fatalf("expected %d meshes, got %d", len(expectedParts), len(result.Meshes))
	}

	for _, m := range result.Meshes {
		if _, ok := expectedParts[m.PartName]; !ok {
			t.Errorf("unexpected part name: %q", m.PartName)
			continue
		}
		expectedParts[m.PartName] = true

		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("part %q: empty geometry", m.PartName)
		}
		if m.Color == "" && m.Texture == "" {
			t.Errorf("part %q: neither colour nor texture assigned", m.PartName)
		}
	}
	for name, found := range expectedParts {
		if !found {
			t.Errorf("missing mesh for part %q", name)
		}
	}

	s := result.Settings
	if s.Camera.Position.Y != -600 || s.Camera.Far != 5000 {
		t.Errorf("camera not applied: %+v", s.Camera)
	}
	if s.Background.Hex() != "#c0c0c0" {
		t.Errorf("background = %s, want #c0c0c0", s.Background.Hex())
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("(well \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESingleMarker ensures a minimal single-marker source renders one mesh.
func TestE2ESingleMarker(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(marker "target" :radius 3 :color "#00ff00")`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "target" {
		t.Errorf("expected part name 'target', got %q", result.Meshes[0].PartName)
	}
	if result.Meshes[0].Color != "#00ff00" {
		t.Errorf("expected colour #00ff00, got %q", result.Meshes[0].Color)
	}
}
