package engine

import (
	"fmt"

	"github.com/chazu/welltube/pkg/curve"
	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/trajectory"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sceneBuilder is the per-evaluation state the builtins close over.
type sceneBuilder struct {
	g    *graph.SceneGraph
	anon int // suffix counter for unnamed nodes, reset every evaluation
}

// nodeID returns the ID for a node of the given kind. Named nodes hash
// their name; unnamed ones take the next anonymous suffix so IDs stay
// stable across evaluations of the same source.
func (b *sceneBuilder) nodeID(kind, name string) graph.NodeID {
	if name != "" {
		return graph.NewNodeID(kind + "/" + name)
	}
	b.anon++
	return graph.NewNodeID(fmt.Sprintf("%s/_anon_%d", kind, b.anon))
}

// claimName fails if name is already bound to another node.
func (b *sceneBuilder) claimName(form, name string) error {
	if name == "" {
		return nil
	}
	if b.g.Lookup(name) != nil {
		return fmt.Errorf("%s: name %q already defined", form, name)
	}
	return nil
}

// adopt makes children part of a parent: they stop being roots.
func (b *sceneBuilder) adopt(children []graph.NodeID) {
	for _, c := range children {
		b.g.RemoveRoot(c)
	}
}

// optionalName consumes a leading string positional argument.
func optionalName(pa *kwArgs) (string, error) {
	if len(pa.positional) == 0 {
		return "", nil
	}
	if _, ok := pa.positional[0].(*zygo.SexpStr); !ok {
		return "", nil
	}
	name, err := toString(pa.positional[0])
	if err != nil {
		return "", err
	}
	pa.positional = pa.positional[1:]
	return name, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment.
// The builtins populate g during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.SceneGraph) {
	b := &sceneBuilder{g: g}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}

		return &sexpVec3{vec: graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (survey :origin (vec3 0 0 0) (list 0 0 0) (list 500 12 45) ...)
	// Each station is (md inc azi) in degrees.
	// -----------------------------------------------------------------------
	env.AddFunction("survey", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var origin graph.Vec3
		if err := pa.vec("origin", &origin); err != nil {
			return zygo.SexpNull, fmt.Errorf("survey: %w", err)
		}

		stations := make([]trajectory.Station, 0, len(pa.positional))
		for i, item := range pa.positional {
			vals, err := sexpListToSlice(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("survey: station %d: %w", i, err)
			}
			if len(vals) != 3 {
				return zygo.SexpNull, fmt.Errorf("survey: station %d: want (md inc azi), got %d values", i, len(vals))
			}
			var st [3]float64
			for j := range st {
				f, err := toFloat64(vals[j])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("survey: station %d: %w", i, err)
				}
				st[j] = f
			}
			stations = append(stations, trajectory.Station{MD: st[0], Inc: st[1], Azi: st[2]})
		}

		pts, err := trajectory.MinimumCurvature(stations, origin.V3())
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("survey: %w", err)
		}
		return &sexpPath{points: fromV3(trajectory.DropCoincident(pts))}, nil
	})

	// -----------------------------------------------------------------------
	// (well "name" :outer 5 :inner 4 :path [(vec3 0 0 0) (vec3 0 0 -10)]
	//       :segments 4 :curve :chordal :texture "stripes")
	// -----------------------------------------------------------------------
	env.AddFunction("well", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		wellName, err := optionalName(&pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("well: name: %w", err)
		}
		if wellName == "" {
			return zygo.SexpNull, fmt.Errorf("well requires a name as first argument")
		}
		if err := b.claimName("well", wellName); err != nil {
			return zygo.SexpNull, err
		}

		wd := graph.WellData{}
		if err := pa.float("outer", &wd.OuterRadius); err != nil {
			return zygo.SexpNull, fmt.Errorf("well: %w", err)
		}
		if err := pa.float("inner", &wd.InnerRadius); err != nil {
			return zygo.SexpNull, fmt.Errorf("well: %w", err)
		}
		if err := pa.integer("segments", &wd.CurveSegments); err != nil {
			return zygo.SexpNull, fmt.Errorf("well: %w", err)
		}
		if v, ok := pa.kw["curve"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("well: curve: %w", err)
			}
			kind, err := curve.ParseKind(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("well: %w", err)
			}
			wd.Curve = kind.String()
		}
		if v, ok := pa.kw["texture"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("well: texture: %w", err)
			}
			wd.Texture = s
		}
		v, ok := pa.kw["path"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("well: :path is required")
		}
		if wd.Path, err = toPath(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("well: path: %w", err)
		}

		id := b.nodeID("well", wellName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeWell,
			Name: wellName,
			Data: wd,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: wellName}, nil
	})

	// -----------------------------------------------------------------------
	// (marker "target" :shape :sphere :radius 5 :color "#ff0000")
	// (marker :shape :box :size (vec3 2 2 2))
	// (marker :shape :cylinder :radius 1 :height 10)
	// -----------------------------------------------------------------------
	env.AddFunction("marker", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		markerName, err := optionalName(&pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("marker: name: %w", err)
		}
		if err := b.claimName("marker", markerName); err != nil {
			return zygo.SexpNull, err
		}

		md := graph.MarkerData{Shape: graph.MarkerSphere, Color: graph.MustColor("#ff0000")}
		if v, ok := pa.kw["shape"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("marker: shape: %w", err)
			}
			if md.Shape, err = graph.ParseMarkerShape(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("marker: %w", err)
			}
		}
		for _, err := range []error{
			pa.float("radius", &md.Radius),
			pa.float("height", &md.Height),
			pa.vec("size", &md.Size),
			pa.integer("segments", &md.Segments),
			pa.color("color", &md.Color),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("marker: %w", err)
			}
		}

		id := b.nodeID("marker", markerName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeMarker,
			Name: markerName,
			Data: md,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: markerName}, nil
	})

	// -----------------------------------------------------------------------
	// (ref "name")
	// -----------------------------------------------------------------------
	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires a name argument")
		}

		refName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: name: %w", err)
		}

		n := g.Lookup(refName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("ref: no node named %q", refName)
		}

		return &sexpNodeRef{id: n.ID, name: refName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (ref "target") :at (vec3 0 0 -70) :rotate (vec3 0 0 45))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}

		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if _, ok := pa.kw["at"]; ok {
			var at graph.Vec3
			if err := pa.vec("at", &at); err != nil {
				return zygo.SexpNull, fmt.Errorf("place: %w", err)
			}
			td.Translation = &at
		}
		if _, ok := pa.kw["rotate"]; ok {
			var rot graph.Vec3
			if err := pa.vec("rotate", &rot); err != nil {
				return zygo.SexpNull, fmt.Errorf("place: %w", err)
			}
			td.Rotation = &rot
		}

		// Anonymous: a node may be placed more than once.
		id := b.nodeID("place", "")
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})
		b.adopt([]graph.NodeID{childID})
		g.AddRoot(id)

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (group "pad-a" (ref "producer") (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		groupName, err := optionalName(&pa)
		if err != nil || groupName == "" {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}
		if err := b.claimName("group", groupName); err != nil {
			return zygo.SexpNull, err
		}

		var children []graph.NodeID
		for i, arg := range pa.positional {
			ref, ok := arg.(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("group: child %d: expected node reference, got %T (%s)",
					i+1, arg, arg.SexpString(nil))
			}
			children = append(children, ref.id)
		}

		gd := graph.GroupData{}
		if v, ok := pa.kw["description"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: description: %w", err)
			}
			gd.Description = s
		}

		id := b.nodeID("group", groupName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     groupName,
			Children: children,
			Data:     gd,
		})
		b.adopt(children)
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: groupName}, nil
	})

	// -----------------------------------------------------------------------
	// (camera :position (vec3 0 10 15) :look-at (vec3 0 0 0) :fov 50)
	// -----------------------------------------------------------------------
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cam := &g.Settings.Camera
		for _, err := range []error{
			pa.vec("position", &cam.Position),
			pa.vec("look-at", &cam.LookAt),
			pa.float("fov", &cam.FOV),
			pa.float("near", &cam.Near),
			pa.float("far", &cam.Far),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: %w", err)
			}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (ambient-light :color 0x404040 :intensity 1)
	// -----------------------------------------------------------------------
	env.AddFunction("ambient_light", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		l := &g.Settings.Ambient
		for _, err := range []error{
			pa.color("color", &l.Color),
			pa.float("intensity", &l.Intensity),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ambient-light: %w", err)
			}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (hemisphere-light :sky 0xffffbb :ground 0x080820 :intensity 0.7)
	// -----------------------------------------------------------------------
	env.AddFunction("hemisphere_light", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		l := &g.Settings.Hemisphere
		for _, err := range []error{
			pa.color("sky", &l.Sky),
			pa.color("ground", &l.Ground),
			pa.float("intensity", &l.Intensity),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hemisphere-light: %w", err)
			}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (background "#c0c0c0")
	// -----------------------------------------------------------------------
	env.AddFunction("background", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("background requires exactly 1 argument, got %d", len(args))
		}
		c, err := toColor(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("background: %w", err)
		}
		g.Settings.Background = c
		return zygo.SexpNull, nil
	})
}

func fromV3(pts []v3.Vec) []graph.Vec3 {
	out := make([]graph.Vec3, len(pts))
	for i, p := range pts {
		out[i] = graph.Vec3{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}
