package graph

import (
	"math"

	"github.com/chazu/welltube/pkg/profile"
	"github.com/chazu/welltube/pkg/sweep"
)

// MaxSweepSteps is the step count above which a well is flagged as
// producing a very large mesh.
const MaxSweepSteps = 20000

// checkWells confirms each well has a ring cross-section and a path the
// sweep builder can extrude at least once.
func checkWells(g *SceneGraph, r *report) {
	for _, n := range g.Wells() {
		wd, ok := n.Data.(WellData)
		if !ok {
			continue
		}
		name := n.DisplayName()

		if err := profile.ValidateRadii(wd.OuterRadius, wd.InnerRadius); err != nil {
			r.errorf(n.ID, "well %q: %v", name, err)
		}
		if wd.CurveSegments < 0 || wd.CurveSegments == 1 {
			r.errorf(n.ID, "well %q: curve segments %d, must be 0 (default) or at least 2", name, wd.CurveSegments)
		}

		kind, err := wd.CurveKind()
		if err != nil {
			r.errorf(n.ID, "well %q: %v", name, err)
			continue
		}
		path, err := sweep.NewPath(wd.PathV3(), kind)
		if err != nil {
			r.errorf(n.ID, "well %q: %v", name, err)
			continue
		}
		steps, err := sweep.StepCount(path)
		switch {
		case err != nil:
			r.errorf(n.ID, "well %q: %v", name, err)
		case steps > MaxSweepSteps:
			r.warnf(n.ID, "well %q sweeps %d steps (over %d); consider rescaling the trajectory", name, steps, MaxSweepSteps)
		}
	}
}

// checkMarkers confirms each marker's dimensions are positive and finite
// for its shape.
func checkMarkers(g *SceneGraph, r *report) {
	for _, n := range g.Markers() {
		md, ok := n.Data.(MarkerData)
		if !ok {
			continue
		}
		positive := func(what string, v float64) {
			if !(v > 0) || math.IsInf(v, 0) {
				r.errorf(n.ID, "marker %q: %s is %.4f, must be positive", n.DisplayName(), what, v)
			}
		}
		switch md.Shape {
		case MarkerSphere:
			positive("radius", md.Radius)
		case MarkerBox:
			positive("size X", md.Size.X)
			positive("size Y", md.Size.Y)
			positive("size Z", md.Size.Z)
		case MarkerCylinder:
			positive("radius", md.Radius)
			positive("height", md.Height)
		default:
			r.errorf(n.ID, "marker %q: unknown shape %d", n.DisplayName(), int(md.Shape))
		}
	}
}

// checkSettings rejects cameras that cannot project and warns about scenes
// with nothing to follow.
func checkSettings(g *SceneGraph, r *report) {
	cam := g.Settings.Camera
	if cam.Position == cam.LookAt {
		r.errorf(NodeID{}, "camera position %s equals its look-at point", cam.Position)
	}
	if !(cam.FOV > 0 && cam.FOV < 180) {
		r.errorf(NodeID{}, "camera fov %.2f must be between 0 and 180 degrees", cam.FOV)
	}
	if !(cam.Near > 0) || !(cam.Far > cam.Near) {
		r.errorf(NodeID{}, "camera clip planes near=%.4f far=%.4f must satisfy 0 < near < far", cam.Near, cam.Far)
	}
	if g.Settings.Ambient.Intensity < 0 || g.Settings.Hemisphere.Intensity < 0 {
		r.errorf(NodeID{}, "light intensities must not be negative")
	}
	if len(g.Nodes) > 0 && len(g.Wells()) == 0 {
		r.warnf(NodeID{}, "scene has no wells")
	}
}
