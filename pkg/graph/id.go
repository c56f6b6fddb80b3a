package graph

import (
	"github.com/google/uuid"
)

// NodeID identifies a node. IDs are name-based (UUIDv5) so that the same
// script always produces the same IDs.
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// idNamespace scopes welltube node IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("welltube/scene-node"))

// NewNodeID derives a stable ID from a path such as "well/main".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(idNamespace, []byte(path)))
}

// ParseNodeID parses the canonical string form.
func ParseNodeID(s string) (NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ZeroID, err
	}
	return NodeID(u), nil
}

func (id NodeID) String() string { return uuid.UUID(id).String() }

// Short returns the first 8 hex digits, enough for log and error messages.
func (id NodeID) Short() string { return id.String()[:8] }

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// MarshalText lets NodeID serve as a JSON map key.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(b []byte) error {
	parsed, err := ParseNodeID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
