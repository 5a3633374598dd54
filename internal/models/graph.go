// Package models defines the core data structures of a harness workspace.
// It includes entity definitions and the persisted document layout.
package models

type NodeKind string

const (
	NodeKindConnector    NodeKind = "connector"
	NodeKindSplice       NodeKind = "splice"
	NodeKindIntermediate NodeKind = "intermediate"
)

func (k NodeKind) IsValid() bool {
	switch k {
	case NodeKindConnector, NodeKindSplice, NodeKindIntermediate:
		return true
	}
	return false
}

// Position is opaque canvas payload; the engine never interprets it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a routing graph vertex. Its ID doubles as the technical identifier.
type Node struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"kind"`
	ConnectorID string   `json:"connector_id,omitempty"`
	SpliceID    string   `json:"splice_id,omitempty"`
	Label       string   `json:"label,omitempty"`
}

// Segment is a physical harness section between two nodes.
type Segment struct {
	ID            string  `json:"id"`
	NodeA         string  `json:"node_a"`
	NodeB         string  `json:"node_b"`
	LengthMm      float64 `json:"length_mm"`
	SubNetworkTag string  `json:"sub_network_tag,omitempty"`
}

// Other returns the node on the opposite side of nodeID, or "" when the
// segment does not touch nodeID.
func (s Segment) Other(nodeID string) string {
	switch nodeID {
	case s.NodeA:
		return s.NodeB
	case s.NodeB:
		return s.NodeA
	}
	return ""
}

func (s Segment) Touches(nodeID string) bool {
	return s.NodeA == nodeID || s.NodeB == nodeID
}
