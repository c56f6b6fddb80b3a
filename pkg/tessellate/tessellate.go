// Package tessellate walks a scene graph and produces triangle meshes.
// Wells are swept into tubes; markers are built with a geometry kernel.
// One mesh is produced per geometry node reached from a root.
package tessellate

import (
	"fmt"

	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/sweep"
	"github.com/deadsy/sdfx/sdf"
)

// DefaultMarkerSegments is used when a marker does not set :segments.
const DefaultMarkerSegments = 32

// transformStack holds the placements between the current node and its root,
// outermost first.
type transformStack struct {
	frames []graph.TransformData
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(td graph.TransformData) {
	ts.frames = append(ts.frames, td)
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 0 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

func (ts *transformStack) empty() bool {
	return len(ts.frames) == 0
}

// localMatrix is translation after rotation. Rotation applies X, then Y,
// then Z, in degrees.
func localMatrix(td graph.TransformData) sdf.M44 {
	m := sdf.Identity3d()
	if td.Translation != nil {
		m = sdf.Translate3d(td.Translation.V3())
	}
	if r := td.Rotation; r != nil {
		rot := sdf.RotateZ(sdf.DtoR(r.Z)).Mul(sdf.RotateY(sdf.DtoR(r.Y))).Mul(sdf.RotateX(sdf.DtoR(r.X)))
		m = m.Mul(rot)
	}
	return m
}

// matrix returns the accumulated world transform.
func (ts *transformStack) matrix() sdf.M44 {
	m := sdf.Identity3d()
	for _, td := range ts.frames {
		m = m.Mul(localMatrix(td))
	}
	return m
}

// place applies the stack to a kernel solid, innermost placement first, so
// the kernel sees the same composition as matrix().
func (ts *transformStack) place(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.frames) - 1; i >= 0; i-- {
		td := ts.frames[i]
		if r := td.Rotation; r != nil && !r.IsZero() {
			s = k.Rotate(s, r.X, r.Y, r.Z)
		}
		if t := td.Translation; t != nil && !t.IsZero() {
			s = k.Translate(s, t.X, t.Y, t.Z)
		}
	}
	return s
}

// Tessellate walks the scene graph and produces one triangle mesh per well
// and marker. Markers use the provided geometry kernel. The tessellator is
// read-only and never mutates the graph.
func Tessellate(g *graph.SceneGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", root.DisplayName(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting meshes.
func walkNode(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodeWell:
		return handleWell(n, ts)

	case graph.NodeMarker:
		return handleMarker(k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts)

	case graph.NodeGroup:
		return handleChildren(g, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handleWell sweeps the well's annulus along its path. UVs are projected in
// the well's own frame before any placement is applied.
func handleWell(n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	wd, ok := n.Data.(graph.WellData)
	if !ok {
		return nil, fmt.Errorf("well node %s has unexpected data type %T", n.DisplayName(), n.Data)
	}

	kind, err := wd.CurveKind()
	if err != nil {
		return nil, fmt.Errorf("well %s: %w", n.DisplayName(), err)
	}
	path, err := sweep.NewPath(wd.PathV3(), kind)
	if err != nil {
		return nil, fmt.Errorf("well %s: %w", n.DisplayName(), err)
	}
	var opts []sweep.Option
	if wd.CurveSegments > 0 {
		opts = append(opts, sweep.WithCurveSegments(wd.CurveSegments))
	}
	mesh, err := sweep.BuildSweptRing(wd.OuterRadius, wd.InnerRadius, path, opts...)
	if err != nil {
		return nil, fmt.Errorf("well %s: %w", n.DisplayName(), err)
	}

	if !ts.empty() {
		mesh.Transform(ts.matrix())
	}
	mesh.PartName = n.DisplayName()
	mesh.Texture = wd.Texture
	return []*kernel.Mesh{mesh}, nil
}

// handleMarker creates a kernel primitive for a marker node.
func handleMarker(k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	md, ok := n.Data.(graph.MarkerData)
	if !ok {
		return nil, fmt.Errorf("marker node %s has unexpected data type %T", n.DisplayName(), n.Data)
	}

	segments := md.Segments
	if segments <= 0 {
		segments = DefaultMarkerSegments
	}

	var solid kernel.Solid
	switch md.Shape {
	case graph.MarkerSphere:
		solid = k.Sphere(md.Radius, segments)
	case graph.MarkerBox:
		solid = k.Box(md.Size.X, md.Size.Y, md.Size.Z)
	case graph.MarkerCylinder:
		solid = k.Cylinder(md.Height, md.Radius, segments)
	default:
		return nil, fmt.Errorf("marker %s has unsupported shape %v", n.DisplayName(), md.Shape)
	}

	solid = ts.place(k, solid)

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for marker %s: %w", n.DisplayName(), err)
	}
	mesh.PartName = n.DisplayName()
	mesh.Color = md.Color.Hex()
	return []*kernel.Mesh{mesh}, nil
}

// handleTransform pushes the placement, recurses into children, then pops.
func handleTransform(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.DisplayName(), n.Data)
	}

	ts.push(td)
	defer ts.pop()
	return handleChildren(g, k, n, ts)
}

// handleChildren recurses into children transparently.
func handleChildren(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
