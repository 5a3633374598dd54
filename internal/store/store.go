// Package store implements create, update and delete for every harness
// entity inside the active network's scope. Each operation validates fully
// before writing, so a refused call leaves the document untouched.
package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/routing"
)

type Store struct {
	doc   *models.Document
	newID func() string
}

// Open wraps a document for mutation. The document is normalized in place.
func Open(doc *models.Document) *Store {
	if doc == nil {
		doc = models.NewDocument()
	}
	doc.Normalize()
	return &Store{doc: doc, newID: uuid.NewString}
}

// View wraps a document that is already normalized, for queries. Unlike Open
// it never writes to doc.
func View(doc *models.Document) *Store {
	if doc == nil {
		doc = models.NewDocument()
	}
	return &Store{doc: doc, newID: uuid.NewString}
}

// WithIDGenerator replaces uuid generation, for deterministic fixtures.
func (s *Store) WithIDGenerator(fn func() string) *Store {
	if fn != nil {
		s.newID = fn
	}
	return s
}

func (s *Store) Document() *models.Document {
	return s.doc
}

func (s *Store) scope() (*models.Scope, error) {
	scope := s.doc.ActiveScope()
	if scope == nil {
		return nil, ErrNoActiveNetwork
	}
	return scope, nil
}

// Scope returns the active scope, or nil when no network is active.
func (s *Store) Scope() *models.Scope {
	return s.doc.ActiveScope()
}

// IsTechnicalIDTaken reports whether candidate is already used by another
// entity of the kind. Networks are checked across the workspace, every other
// kind within the active scope. excludeID lets an entity keep its own id.
func (s *Store) IsTechnicalIDTaken(kind models.EntityKind, candidate, excludeID string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}

	if kind == models.KindNetwork {
		for _, n := range s.doc.Networks {
			if n.ID != excludeID && n.TechnicalID == candidate {
				return true
			}
		}
		return false
	}

	scope := s.doc.ActiveScope()
	if scope == nil {
		return false
	}
	switch kind {
	case models.KindConnector:
		for id, c := range scope.Connectors {
			if id != excludeID && c.TechnicalID == candidate {
				return true
			}
		}
	case models.KindSplice:
		for id, sp := range scope.Splices {
			if id != excludeID && sp.TechnicalID == candidate {
				return true
			}
		}
	case models.KindWire:
		for id, w := range scope.Wires {
			if id != excludeID && w.TechnicalID == candidate {
				return true
			}
		}
	case models.KindNode:
		_, taken := scope.Nodes[candidate]
		return taken && candidate != excludeID
	case models.KindSegment:
		_, taken := scope.Segments[candidate]
		return taken && candidate != excludeID
	}
	return false
}

func (s *Store) CreateNetwork(n models.Network) (models.Network, error) {
	n = trimNetwork(n)
	if n.ID == "" {
		n.ID = s.newID()
	}
	if _, _, exists := s.doc.Network(n.ID); exists {
		return models.Network{}, invalid(models.KindNetwork, n.ID, "id", ErrInvalid, "id already exists")
	}
	if err := s.checkNetwork(n); err != nil {
		return models.Network{}, err
	}

	s.doc.Networks = append(s.doc.Networks, n)
	s.doc.Scopes[n.ID] = models.NewScope()
	s.doc.ActiveNetworkID = n.ID
	return n, nil
}

func (s *Store) UpdateNetwork(n models.Network) (models.Network, error) {
	n = trimNetwork(n)
	_, idx, exists := s.doc.Network(n.ID)
	if !exists {
		return models.Network{}, notFound(models.KindNetwork, n.ID)
	}
	if err := s.checkNetwork(n); err != nil {
		return models.Network{}, err
	}
	s.doc.Networks[idx] = n
	return n, nil
}

func (s *Store) checkNetwork(n models.Network) error {
	if n.Name == "" {
		return invalid(models.KindNetwork, n.ID, "name", ErrRequired, "name is required")
	}
	if n.TechnicalID == "" {
		return invalid(models.KindNetwork, n.ID, "technical_id", ErrRequired, "technical id is required")
	}
	if s.IsTechnicalIDTaken(models.KindNetwork, n.TechnicalID, n.ID) {
		return invalid(models.KindNetwork, n.ID, "technical_id", ErrDuplicateTechnicalID, "technical id %q already used", n.TechnicalID)
	}
	return nil
}

// SelectNetwork makes a network the active editing scope.
func (s *Store) SelectNetwork(id string) error {
	if _, _, exists := s.doc.Network(id); !exists {
		return notFound(models.KindNetwork, id)
	}
	s.doc.ActiveNetworkID = id
	return nil
}

// DuplicateNetwork deep-copies a network's scope under fresh connector,
// splice and wire ids. Node and segment ids are scope-local technical ids and
// are kept. The copy becomes active.
func (s *Store) DuplicateNetwork(id string) (models.Network, error) {
	src, _, exists := s.doc.Network(id)
	if !exists {
		return models.Network{}, notFound(models.KindNetwork, id)
	}
	srcScope := s.doc.Scopes[id]
	if srcScope == nil {
		srcScope = models.NewScope()
	}

	dup := models.Network{
		ID:          s.newID(),
		Name:        src.Name + " (copy)",
		TechnicalID: s.uniqueNetworkTechnicalID(src.TechnicalID + "-copy"),
		Description: src.Description,
	}

	copied := srcScope.Clone()
	scope := models.NewScope()
	scope.NodePositions = copied.NodePositions

	connectorIDs := make(map[string]string, len(copied.Connectors))
	for _, c := range copied.ConnectorList() {
		connectorIDs[c.ID] = s.newID()
		c.ID = connectorIDs[c.ID]
		scope.Connectors[c.ID] = c
		scope.ConnectorOrder = append(scope.ConnectorOrder, c.ID)
	}
	spliceIDs := make(map[string]string, len(copied.Splices))
	for _, sp := range copied.SpliceList() {
		spliceIDs[sp.ID] = s.newID()
		sp.ID = spliceIDs[sp.ID]
		scope.Splices[sp.ID] = sp
		scope.SpliceOrder = append(scope.SpliceOrder, sp.ID)
	}
	for _, n := range copied.NodeList() {
		if mapped, ok := connectorIDs[n.ConnectorID]; ok {
			n.ConnectorID = mapped
		}
		if mapped, ok := spliceIDs[n.SpliceID]; ok {
			n.SpliceID = mapped
		}
		scope.Nodes[n.ID] = n
		scope.NodeOrder = append(scope.NodeOrder, n.ID)
	}
	for _, seg := range copied.SegmentList() {
		scope.Segments[seg.ID] = seg
		scope.SegmentOrder = append(scope.SegmentOrder, seg.ID)
	}
	remap := func(ep models.WireEndpoint) models.WireEndpoint {
		if mapped, ok := connectorIDs[ep.ConnectorID]; ok {
			ep.ConnectorID = mapped
		}
		if mapped, ok := spliceIDs[ep.SpliceID]; ok {
			ep.SpliceID = mapped
		}
		return ep
	}
	for _, w := range copied.WireList() {
		w.ID = s.newID()
		w.EndpointA = remap(w.EndpointA)
		w.EndpointB = remap(w.EndpointB)
		scope.Wires[w.ID] = w
		scope.WireOrder = append(scope.WireOrder, w.ID)
	}

	s.doc.Networks = append(s.doc.Networks, dup)
	s.doc.Scopes[dup.ID] = scope
	s.doc.ActiveNetworkID = dup.ID
	return dup, nil
}

func (s *Store) uniqueNetworkTechnicalID(base string) string {
	candidate := base
	for i := 2; s.IsTechnicalIDTaken(models.KindNetwork, candidate, ""); i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return candidate
}

// DeleteNetwork removes a network and its whole scope. The active pointer
// moves to the first remaining network.
func (s *Store) DeleteNetwork(id string) error {
	_, idx, exists := s.doc.Network(id)
	if !exists {
		return notFound(models.KindNetwork, id)
	}
	s.doc.Networks = append(s.doc.Networks[:idx:idx], s.doc.Networks[idx+1:]...)
	delete(s.doc.Scopes, id)

	if s.doc.ActiveNetworkID == id {
		s.doc.ActiveNetworkID = ""
		if len(s.doc.Networks) > 0 {
			s.doc.ActiveNetworkID = s.doc.Networks[0].ID
		}
		s.doc.Selection = models.Selection{}
	}
	if s.doc.Selection.Kind == models.KindNetwork && s.doc.Selection.ID == id {
		s.doc.Selection = models.Selection{}
	}
	return nil
}

// reroute refreshes every wire route of the scope after a graph change.
func reroute(scope *models.Scope) {
	routing.RerouteAll(scope)
}

func (s *Store) clearSelectionOf(kind models.EntityKind, id string) {
	if s.doc.Selection.Kind == kind && s.doc.Selection.ID == id {
		s.doc.Selection = models.Selection{}
	}
}

func trimNetwork(n models.Network) models.Network {
	n.ID = strings.TrimSpace(n.ID)
	n.Name = strings.TrimSpace(n.Name)
	n.TechnicalID = strings.TrimSpace(n.TechnicalID)
	n.Description = strings.TrimSpace(n.Description)
	return n
}
