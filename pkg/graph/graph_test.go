package graph

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewSceneGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Settings.Camera.Position != (Vec3{0, 10, 15}) {
		t.Errorf("default camera position = %v, want (0, 10, 15)", g.Settings.Camera.Position)
	}
	if got := g.Settings.Background.Hex(); got != "#c0c0c0" {
		t.Errorf("default background = %s, want #c0c0c0", got)
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("well/alpha")
	node := &Node{
		ID:   id,
		Kind: NodeWell,
		Name: "alpha",
		Data: WellData{
			OuterRadius: 5,
			InnerRadius: 4,
			Path:        []Vec3{{0, 0, 0}, {0, 0, -10}},
		},
	}
	g.AddNode(node)
	g.AddRoot(id)
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}

	found := g.Lookup("alpha")
	if found == nil {
		t.Fatal("Lookup('alpha') returned nil")
	}
	if found.ID != id {
		t.Errorf("lookup returned wrong node")
	}

	if must := g.MustLookup("alpha"); must.ID != id {
		t.Errorf("MustLookup returned wrong node")
	}

	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}

	if got := g.Get(id); got == nil || got.Name != "alpha" {
		t.Errorf("Get by ID failed")
	}

	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id.Short())
	}

	g.RemoveRoot(id)
	if len(g.Roots) != 0 {
		t.Errorf("roots after RemoveRoot = %v, want empty", g.Roots)
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestWellsAndMarkers(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: NewNodeID("well/b"), Kind: NodeWell, Name: "b", Data: WellData{}})
	g.AddNode(&Node{ID: NewNodeID("well/a"), Kind: NodeWell, Name: "a", Data: WellData{}})
	g.AddNode(&Node{ID: NewNodeID("marker/t"), Kind: NodeMarker, Name: "target", Data: MarkerData{}})

	wells := g.Wells()
	if len(wells) != 2 {
		t.Fatalf("Wells() count = %d, want 2", len(wells))
	}
	if wells[0].Name != "a" || wells[1].Name != "b" {
		t.Errorf("Wells() order = %s, %s; want a, b", wells[0].Name, wells[1].Name)
	}
	if markers := g.Markers(); len(markers) != 1 {
		t.Errorf("Markers() count = %d, want 1", len(markers))
	}
}

func TestChildren(t *testing.T) {
	g := New()

	childID := NewNodeID("well/producer")
	parentID := NewNodeID("group/pad")

	g.AddNode(&Node{ID: childID, Kind: NodeWell, Name: "producer", Data: WellData{}})
	g.AddNode(&Node{
		ID: parentID, Kind: NodeGroup, Name: "pad",
		Children: []NodeID{childID, NewNodeID("missing")},
		Data:     GroupData{},
	})

	children := g.Children(g.Get(parentID))
	if len(children) != 1 {
		t.Fatalf("Children count = %d, want 1 (dangling refs skipped)", len(children))
	}
	if children[0].Name != "producer" {
		t.Errorf("child name = %q, want %q", children[0].Name, "producer")
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("well/main")
	b := NewNodeID("well/main")
	if a != b {
		t.Error("same path should produce same NodeID")
	}
	if c := NewNodeID("well/side"); a == c {
		t.Error("different paths should produce different NodeIDs")
	}
}

func TestNodeIDZero(t *testing.T) {
	var id NodeID
	if !id.IsZero() {
		t.Error("zero-value NodeID should be zero")
	}
	if NewNodeID("something").IsZero() {
		t.Error("non-zero NodeID should not be zero")
	}
}

func TestNodeIDText(t *testing.T) {
	id := NewNodeID("well/main")
	if len(id.Short()) != 8 {
		t.Errorf("Short() len = %d, want 8", len(id.Short()))
	}
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back NodeID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != id {
		t.Errorf("round trip = %s, want %s", back, id)
	}
	if _, err := ParseNodeID("not-a-uuid"); err == nil {
		t.Error("ParseNodeID should reject garbage")
	}
}

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if sum := a.Add(b); sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v, want (5, 7, 9)", sum)
	}
	if v := a.V3(); v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("V3 = %v", v)
	}
	if !(Vec3{}).IsZero() || a.IsZero() {
		t.Error("IsZero wrong")
	}
	if s := (Vec3{1.5, 2.5, 3.5}).String(); s != "(1.5, 2.5, 3.5)" {
		t.Errorf("Vec3.String() = %q", s)
	}
}

func TestNodeDataInterface(t *testing.T) {
	var _ NodeData = WellData{}
	var _ NodeData = MarkerData{}
	var _ NodeData = TransformData{}
	var _ NodeData = GroupData{}
}

func TestStringers(t *testing.T) {
	if NodeWell.String() != "well" {
		t.Errorf("NodeWell.String() = %q", NodeWell.String())
	}
	if NodeKind(99).String() != "unknown" {
		t.Errorf("NodeKind(99).String() = %q", NodeKind(99).String())
	}
	if MarkerCylinder.String() != "cylinder" {
		t.Errorf("MarkerCylinder.String() = %q", MarkerCylinder.String())
	}
	if SeverityWarning.String() != "warning" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
}

func TestParseMarkerShape(t *testing.T) {
	for _, s := range []MarkerShape{MarkerSphere, MarkerBox, MarkerCylinder} {
		got, err := ParseMarkerShape(s.String())
		if err != nil || got != s {
			t.Errorf("ParseMarkerShape(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseMarkerShape("cone"); err == nil {
		t.Error("ParseMarkerShape should reject cone")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ffffbb", "#ffffbb"},
		{"0x080820", "#080820"},
		{"#f00", "#ff0000"},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got := c.Hex(); got != tt.want {
			t.Errorf("ParseColor(%q).Hex() = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseColor("grey"); err == nil {
		t.Error("ParseColor should reject colour names")
	}
}

func TestGraphJSON(t *testing.T) {
	g := New()
	id := NewNodeID("marker/target")
	g.AddNode(&Node{
		ID: id, Kind: NodeMarker, Name: "target",
		Data: MarkerData{Shape: MarkerSphere, Radius: 5, Color: MustColor("#ff0000")},
	})
	g.AddRoot(id)

	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{id.String(), `"#ff0000"`, `"#c0c0c0"`, `"target"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}
