package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID is a content-addressed identifier for graph nodes: the SHA-256 of
// the node's path in the script (kind and name).
type NodeID [32]byte

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives a NodeID from a path such as "wall/front".
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// String returns the full hex form.
func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 8 hex digits, for messages.
func (id NodeID) Short() string { return hex.EncodeToString(id[:4]) }

// MarshalText encodes the id as hex so it can key JSON objects.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex id.
func (id *NodeID) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != len(id) {
		return fmt.Errorf("graph: node id %q: want %d hex digits", b, 2*len(id))
	}
	_, err := hex.Decode(id[:], b)
	return err
}

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodeWall NodeKind = iota // base face doors are built into
	NodeDoor                 // door construction applied to walls
)

func (k NodeKind) String() string {
	switch k {
	case NodeWall:
		return "wall"
	case NodeDoor:
		return "door"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph. A door's Children
// are the walls it is built into.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Seq      int      `json:"seq"` // insertion order, set by AddNode
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
