package graph

import (
	"fmt"
	"sort"
)

// ValidationSeverity says whether a finding stops a build.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the build
	SeverityWarning                           // reported, scene still renders
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError is one finding, tied to a node when NodeID is set.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning is an advisory finding as reported to callers.
type ValidationWarning struct {
	NodeID  NodeID `json:"node_id"`
	Message string `json:"message"`
}

// ValidationResult splits findings into blocking errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether nothing blocks the build.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// report accumulates findings from the individual checks.
type report []ValidationError

func (r *report) errorf(id NodeID, format string, args ...any) {
	*r = append(*r, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (r *report) warnf(id NodeID, format string, args ...any) {
	*r = append(*r, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (r report) result() ValidationResult {
	var res ValidationResult
	for _, f := range r {
		if f.Severity == SeverityWarning {
			res.Warnings = append(res.Warnings, ValidationWarning{NodeID: f.NodeID, Message: f.Message})
		} else {
			res.Errors = append(res.Errors, f)
		}
	}
	return res
}

// Validate checks the graph's structure: links resolve, names are unique,
// there are no cycles and every node's payload matches its kind. It never
// mutates g.
func Validate(g *SceneGraph) []ValidationError {
	var r report
	checkLinks(g, &r)
	checkNames(g, &r)
	checkKinds(g, &r)
	checkTopology(g, &r)
	return r
}

// ValidateAll runs the structural checks followed by well and marker
// geometry and the scene settings.
func ValidateAll(g *SceneGraph) ValidationResult {
	r := report(Validate(g))
	checkWells(g, &r)
	checkMarkers(g, &r)
	checkSettings(g, &r)
	return r.result()
}

// sortedIDs gives the checks a stable order so repeated builds report
// findings identically.
func sortedIDs(g *SceneGraph) []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func checkLinks(g *SceneGraph, r *report) {
	for _, id := range g.Roots {
		if _, ok := g.Nodes[id]; !ok {
			r.errorf(NodeID{}, "root reference %s does not exist", id.Short())
		}
	}
	for _, id := range sortedIDs(g) {
		for _, child := range g.Nodes[id].Children {
			if _, ok := g.Nodes[child]; !ok {
				r.errorf(id, "child reference %s does not exist", child.Short())
			}
		}
	}
}

func checkNames(g *SceneGraph, r *report) {
	indexed := make([]string, 0, len(g.NameIndex))
	for name := range g.NameIndex {
		indexed = append(indexed, name)
	}
	sort.Strings(indexed)
	for _, name := range indexed {
		if id := g.NameIndex[name]; g.Nodes[id] == nil {
			r.errorf(NodeID{}, "name %q indexes non-existent node %s", name, id.Short())
		}
	}

	owners := make(map[string]int)
	var names []string
	for _, n := range g.Nodes {
		if n.Name == "" {
			continue
		}
		if owners[n.Name] == 0 {
			names = append(names, n.Name)
		}
		owners[n.Name]++
	}
	sort.Strings(names)
	for _, name := range names {
		if count := owners[name]; count > 1 {
			r.errorf(NodeID{}, "duplicate name %q used by %d nodes", name, count)
		}
	}
}

func checkKinds(g *SceneGraph, r *report) {
	for _, id := range sortedIDs(g) {
		n := g.Nodes[id]
		var ok bool
		switch n.Kind {
		case NodeWell:
			_, ok = n.Data.(WellData)
		case NodeMarker:
			_, ok = n.Data.(MarkerData)
		case NodeTransform:
			_, ok = n.Data.(TransformData)
		case NodeGroup:
			_, ok = n.Data.(GroupData)
		}
		if !ok {
			r.errorf(id, "%s node carries %T data", n.Kind, n.Data)
		}
		if n.Kind.IsGeometry() && len(n.Children) > 0 {
			r.errorf(id, "%s node %q cannot have children", n.Kind, n.DisplayName())
		}
	}
}

// checkTopology walks from the roots, reporting back edges as cycles, then
// sweeps the nodes the walk never reached. Those are orphans; any cycle
// among them is still an error.
func checkTopology(g *SceneGraph, r *report) {
	const (
		unseen = iota
		open
		done
	)
	state := make(map[NodeID]int, len(g.Nodes))

	var visit func(id NodeID)
	visit = func(id NodeID) {
		n, ok := g.Nodes[id]
		if !ok || state[id] == done {
			return
		}
		state[id] = open
		for _, child := range n.Children {
			if state[child] == open {
				r.errorf(child, "cycle detected: %q is its own ancestor", g.Nodes[child].DisplayName())
				continue
			}
			visit(child)
		}
		state[id] = done
	}

	for _, id := range g.Roots {
		visit(id)
	}
	for _, id := range sortedIDs(g) {
		if state[id] != unseen {
			continue
		}
		r.warnf(id, "node %q is not reachable from any root (orphan)", g.Nodes[id].DisplayName())
		visit(id)
	}
}
