package store

import "github.com/wirescope/core/internal/models"

func (s *Store) Networks() []models.Network {
	return append([]models.Network{}, s.doc.Networks...)
}

// ActiveNetwork returns the network being edited.
func (s *Store) ActiveNetwork() (models.Network, bool) {
	n, _, ok := s.doc.Network(s.doc.ActiveNetworkID)
	return n, ok
}

func (s *Store) Connector(id string) (models.Connector, bool) {
	scope := s.Scope()
	if scope == nil {
		return models.Connector{}, false
	}
	c, ok := scope.Connectors[id]
	return c, ok
}

func (s *Store) Splice(id string) (models.Splice, bool) {
	scope := s.Scope()
	if scope == nil {
		return models.Splice{}, false
	}
	sp, ok := scope.Splices[id]
	return sp, ok
}

func (s *Store) Node(id string) (models.Node, bool) {
	scope := s.Scope()
	if scope == nil {
		return models.Node{}, false
	}
	n, ok := scope.Nodes[id]
	return n, ok
}

func (s *Store) Segment(id string) (models.Segment, bool) {
	scope := s.Scope()
	if scope == nil {
		return models.Segment{}, false
	}
	seg, ok := scope.Segments[id]
	return seg, ok
}

func (s *Store) Wire(id string) (models.Wire, bool) {
	scope := s.Scope()
	if scope == nil {
		return models.Wire{}, false
	}
	w, ok := scope.Wires[id]
	return w, ok
}

// The list getters return entities of the active scope in insertion order,
// or nil when no network is active.

func (s *Store) Connectors() []models.Connector {
	if scope := s.Scope(); scope != nil {
		return scope.ConnectorList()
	}
	return nil
}

func (s *Store) Splices() []models.Splice {
	if scope := s.Scope(); scope != nil {
		return scope.SpliceList()
	}
	return nil
}

func (s *Store) Nodes() []models.Node {
	if scope := s.Scope(); scope != nil {
		return scope.NodeList()
	}
	return nil
}

func (s *Store) Segments() []models.Segment {
	if scope := s.Scope(); scope != nil {
		return scope.SegmentList()
	}
	return nil
}

func (s *Store) Wires() []models.Wire {
	if scope := s.Scope(); scope != nil {
		return scope.WireList()
	}
	return nil
}
