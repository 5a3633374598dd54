package models

import (
	"sort"

	"github.com/mohae/deepcopy"
)

// Scope is the entity collection owned by one network: id-keyed maps plus
// insertion-order lists.
type Scope struct {
	Connectors     map[string]Connector `json:"connectors"`
	ConnectorOrder []string             `json:"connector_order"`
	Splices        map[string]Splice    `json:"splices"`
	SpliceOrder    []string             `json:"splice_order"`
	Nodes          map[string]Node      `json:"nodes"`
	NodeOrder      []string             `json:"node_order"`
	Segments       map[string]Segment   `json:"segments"`
	SegmentOrder   []string             `json:"segment_order"`
	Wires          map[string]Wire      `json:"wires"`
	WireOrder      []string             `json:"wire_order"`
	NodePositions  map[string]Position  `json:"node_positions"`
}

type Selection struct {
	Kind EntityKind `json:"kind,omitempty"`
	ID   string     `json:"id,omitempty"`
}

// Document is the whole mutable workspace: the unit of undo/redo snapshots,
// import/export and save/restore.
type Document struct {
	Networks        []Network         `json:"networks"`
	ActiveNetworkID string            `json:"active_network_id"`
	Scopes          map[string]*Scope `json:"scopes"`
	Selection       Selection         `json:"selection"`
	Preferences     map[string]string `json:"preferences"`
}

func NewScope() *Scope {
	s := &Scope{}
	s.Normalize()
	return s
}

func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so that documents
// compare equal across export and import.
func (s *Scope) Normalize() {
	if s.Connectors == nil {
		s.Connectors = map[string]Connector{}
	}
	if s.Splices == nil {
		s.Splices = map[string]Splice{}
	}
	if s.Nodes == nil {
		s.Nodes = map[string]Node{}
	}
	if s.Segments == nil {
		s.Segments = map[string]Segment{}
	}
	if s.Wires == nil {
		s.Wires = map[string]Wire{}
	}
	if s.NodePositions == nil {
		s.NodePositions = map[string]Position{}
	}
	s.ConnectorOrder = reconcileOrder(s.ConnectorOrder, s.Connectors)
	s.SpliceOrder = reconcileOrder(s.SpliceOrder, s.Splices)
	s.NodeOrder = reconcileOrder(s.NodeOrder, s.Nodes)
	s.SegmentOrder = reconcileOrder(s.SegmentOrder, s.Segments)
	s.WireOrder = reconcileOrder(s.WireOrder, s.Wires)
	for id, w := range s.Wires {
		if w.RouteSegmentIDs == nil {
			w.RouteSegmentIDs = []string{}
			s.Wires[id] = w
		}
	}
}

func (d *Document) Normalize() {
	if d.Networks == nil {
		d.Networks = []Network{}
	}
	if d.Scopes == nil {
		d.Scopes = map[string]*Scope{}
	}
	if d.Preferences == nil {
		d.Preferences = map[string]string{}
	}
	for _, n := range d.Networks {
		if d.Scopes[n.ID] == nil {
			d.Scopes[n.ID] = NewScope()
		}
	}
	for _, s := range d.Scopes {
		if s != nil {
			s.Normalize()
		}
	}
}

// Clone returns a deep copy sharing no memory with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return deepcopy.Copy(d).(*Document)
}

func (s *Scope) Clone() *Scope {
	if s == nil {
		return nil
	}
	return deepcopy.Copy(s).(*Scope)
}

// ActiveScope returns the collection of the active network, or nil.
func (d *Document) ActiveScope() *Scope {
	if d.ActiveNetworkID == "" {
		return nil
	}
	return d.Scopes[d.ActiveNetworkID]
}

func (d *Document) Network(id string) (Network, int, bool) {
	for i, n := range d.Networks {
		if n.ID == id {
			return n, i, true
		}
	}
	return Network{}, -1, false
}

func (s *Scope) ConnectorList() []Connector {
	out := make([]Connector, 0, len(s.ConnectorOrder))
	for _, id := range s.ConnectorOrder {
		if c, ok := s.Connectors[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Scope) SpliceList() []Splice {
	out := make([]Splice, 0, len(s.SpliceOrder))
	for _, id := range s.SpliceOrder {
		if sp, ok := s.Splices[id]; ok {
			out = append(out, sp)
		}
	}
	return out
}

func (s *Scope) NodeList() []Node {
	out := make([]Node, 0, len(s.NodeOrder))
	for _, id := range s.NodeOrder {
		if n, ok := s.Nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Scope) SegmentList() []Segment {
	out := make([]Segment, 0, len(s.SegmentOrder))
	for _, id := range s.SegmentOrder {
		if seg, ok := s.Segments[id]; ok {
			out = append(out, seg)
		}
	}
	return out
}

func (s *Scope) WireList() []Wire {
	out := make([]Wire, 0, len(s.WireOrder))
	for _, id := range s.WireOrder {
		if w, ok := s.Wires[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// RepresentingNode returns the node standing for a connector or splice.
func (s *Scope) RepresentingNode(kind NodeKind, entityID string) (Node, bool) {
	for _, id := range s.NodeOrder {
		n, ok := s.Nodes[id]
		if !ok || n.Kind != kind {
			continue
		}
		if kind == NodeKindConnector && n.ConnectorID == entityID {
			return n, true
		}
		if kind == NodeKindSplice && n.SpliceID == entityID {
			return n, true
		}
	}
	return Node{}, false
}

// IncidentSegments returns, in segment order, the segments touching nodeID.
func (s *Scope) IncidentSegments(nodeID string) []Segment {
	var out []Segment
	for _, seg := range s.SegmentList() {
		if seg.Touches(nodeID) {
			out = append(out, seg)
		}
	}
	return out
}

// reconcileOrder drops order entries with no entity and appends, sorted,
// entities missing from the order.
func reconcileOrder[T any](order []string, items map[string]T) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, id := range order {
		if _, ok := items[id]; ok && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	var missing []string
	for id := range items {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return append(out, missing...)
}

// RemoveID drops id from an order list, preserving the remaining order.
func RemoveID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
