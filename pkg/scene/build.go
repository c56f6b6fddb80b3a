// Package scene turns scene scripts into render-ready results and owns the
// per-frame state the frontend animates from.
package scene

import (
	"fmt"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/engine"
	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/kernel/manifold"
	"github.com/chazu/welltube/pkg/kernel/sdfx"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/tessellate"
)

// colorPalette assigns distinct colours to untextured wells.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Message is a JSON-serializable diagnostic for the frontend.
type Message struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

// Result is the full output of building a script.
type Result struct {
	Meshes   []*kernel.Mesh `json:"meshes"`
	Settings graph.Settings `json:"settings"`
	Errors   []Message      `json:"errors"`
	Warnings []Message      `json:"warnings"`
}

// OK reports whether the build produced no errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Builder runs the script pipeline: evaluate, validate, tessellate.
type Builder struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// NewBuilder returns a Builder using the given engine and marker kernel.
func NewBuilder(eng *engine.Engine, k kernel.Kernel) *Builder {
	return &Builder{engine: eng, kernel: k}
}

// MarkerKernel returns the marker kernel named by cfg.Render.Kernel.
func MarkerKernel(cfg *config.Config) (kernel.Kernel, error) {
	switch cfg.Render.Kernel {
	case "", "sdfx":
		return sdfx.NewWithCells(cfg.Render.MarkerCells), nil
	case "manifold":
		k, err := manifold.New()
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		return k, nil
	}
	return nil, fmt.Errorf("scene: unknown marker kernel %q", cfg.Render.Kernel)
}

// NewBuilderFromConfig returns a Builder whose engine starts every script
// from the configured scene defaults and whose markers come from the
// configured kernel.
func NewBuilderFromConfig(cfg *config.Config) (*Builder, error) {
	k, err := MarkerKernel(cfg)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine()
	eng.SetSceneDefaults(cfg.SceneDefaults())
	return NewBuilder(eng, k), nil
}

// Build evaluates source and returns meshes plus diagnostics. It never
// panics and never returns nil; failures are reported in Result.Errors.
func (b *Builder) Build(source string) (result *Result) {
	log := logging.L().With("component", "scene")
	result = &Result{
		Meshes:   []*kernel.Mesh{},
		Errors:   []Message{},
		Warnings: []Message{},
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("build panicked", "panic", r)
			result.Meshes = []*kernel.Mesh{}
			result.Errors = append(result.Errors, Message{Message: fmt.Sprintf("internal error: %v", r)})
		}
	}()

	// Step 1: Evaluate the script into a scene graph.
	g, evalErrs, err := b.engine.Evaluate(source)
	if err != nil {
		log.Warn("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, Message{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, Message{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	result.Settings = g.Settings

	// Step 2: Validate structure, geometry and settings.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, Message{Node: nodeName(g, w.NodeID), Message: w.Message})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, Message{Node: nodeName(g, e.NodeID), Message: e.Message})
		}
		return result
	}

	// Step 3: Tessellate the graph into triangle meshes.
	meshes, err := tessellate.Tessellate(g, b.kernel)
	if err != nil {
		log.Warn("tessellate error", "err", err)
		result.Errors = append(result.Errors, Message{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 4: Give every untextured, uncoloured mesh a palette colour.
	for i, m := range meshes {
		if m.Color == "" && m.Texture == "" {
			m.Color = colorPalette[i%len(colorPalette)]
		}
	}
	result.Meshes = append(result.Meshes, meshes...)

	log.Info("scene built", "meshes", len(meshes), "warnings", len(result.Warnings))
	return result
}

func nodeName(g *graph.SceneGraph, id graph.NodeID) string {
	if id.IsZero() {
		return ""
	}
	if n := g.Get(id); n != nil {
		return n.DisplayName()
	}
	return id.Short()
}
