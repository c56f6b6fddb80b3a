package graph

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeWell      NodeKind = iota // swept ring along a trajectory
	NodeMarker                    // solid primitive (sphere, box, cylinder)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping
)

func (k NodeKind) String() string {
	switch k {
	case NodeWell:
		return "well"
	case NodeMarker:
		return "marker"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// IsGeometry reports whether nodes of this kind produce a mesh.
func (k NodeKind) IsGeometry() bool {
	return k == NodeWell || k == NodeMarker
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// DisplayName returns the node's name, or its short ID when unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
