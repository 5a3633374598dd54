package store

import (
	"math"
	"strings"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/occupancy"
)

func (s *Store) CreateConnector(c models.Connector) (models.Connector, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Connector{}, err
	}
	c = trimConnector(c)
	if c.ID == "" {
		c.ID = s.newID()
	}
	if _, exists := scope.Connectors[c.ID]; exists {
		return models.Connector{}, invalid(models.KindConnector, c.ID, "id", ErrInvalid, "id already exists")
	}
	if err := s.checkConnector(scope, c); err != nil {
		return models.Connector{}, err
	}

	scope.Connectors[c.ID] = c
	scope.ConnectorOrder = append(scope.ConnectorOrder, c.ID)
	return c, nil
}

func (s *Store) UpdateConnector(c models.Connector) (models.Connector, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Connector{}, err
	}
	c = trimConnector(c)
	if _, exists := scope.Connectors[c.ID]; !exists {
		return models.Connector{}, notFound(models.KindConnector, c.ID)
	}
	if err := s.checkConnector(scope, c); err != nil {
		return models.Connector{}, err
	}

	scope.Connectors[c.ID] = c
	return c, nil
}

// UpsertConnector updates when the id exists and creates otherwise.
func (s *Store) UpsertConnector(c models.Connector) (models.Connector, error) {
	if scope := s.Scope(); scope != nil && c.ID != "" {
		if _, exists := scope.Connectors[strings.TrimSpace(c.ID)]; exists {
			return s.UpdateConnector(c)
		}
	}
	return s.CreateConnector(c)
}

func (s *Store) checkConnector(scope *models.Scope, c models.Connector) error {
	if c.Name == "" {
		return invalid(models.KindConnector, c.ID, "name", ErrRequired, "name is required")
	}
	if c.TechnicalID == "" {
		return invalid(models.KindConnector, c.ID, "technical_id", ErrRequired, "technical id is required")
	}
	if s.IsTechnicalIDTaken(models.KindConnector, c.TechnicalID, c.ID) {
		return invalid(models.KindConnector, c.ID, "technical_id", ErrDuplicateTechnicalID, "technical id %q already used", c.TechnicalID)
	}
	if c.CavityCount <= 0 {
		return invalid(models.KindConnector, c.ID, "cavity_count", ErrInvalid, "cavity count must be positive")
	}
	if used := highestUsedIndex(scope, models.EndpointConnectorCavity, c.ID); used > c.CavityCount {
		return invalid(models.KindConnector, c.ID, "cavity_count", ErrStillReferenced, "cavity %d is still used by a wire", used)
	}
	return nil
}

// DeleteConnector removes a connector that no wire uses. Its representing
// node, when it has no segments, is detached into an intermediate node.
func (s *Store) DeleteConnector(id string) error {
	scope, err := s.scope()
	if err != nil {
		return err
	}
	c, exists := scope.Connectors[id]
	if !exists {
		return notFound(models.KindConnector, id)
	}
	if err := checkSlotEntityUnused(scope, models.KindConnector, models.NodeKindConnector, id); err != nil {
		return err
	}

	if node, ok := scope.RepresentingNode(models.NodeKindConnector, id); ok {
		scope.Nodes[node.ID] = detachedNode(node, c.TechnicalID)
	}
	delete(scope.Connectors, id)
	scope.ConnectorOrder = models.RemoveID(scope.ConnectorOrder, id)
	s.clearSelectionOf(models.KindConnector, id)
	return nil
}

func (s *Store) CreateSplice(sp models.Splice) (models.Splice, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Splice{}, err
	}
	sp = trimSplice(sp)
	if sp.ID == "" {
		sp.ID = s.newID()
	}
	if _, exists := scope.Splices[sp.ID]; exists {
		return models.Splice{}, invalid(models.KindSplice, sp.ID, "id", ErrInvalid, "id already exists")
	}
	if err := s.checkSplice(scope, sp); err != nil {
		return models.Splice{}, err
	}

	scope.Splices[sp.ID] = sp
	scope.SpliceOrder = append(scope.SpliceOrder, sp.ID)
	return sp, nil
}

func (s *Store) UpdateSplice(sp models.Splice) (models.Splice, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Splice{}, err
	}
	sp = trimSplice(sp)
	if _, exists := scope.Splices[sp.ID]; !exists {
		return models.Splice{}, notFound(models.KindSplice, sp.ID)
	}
	if err := s.checkSplice(scope, sp); err != nil {
		return models.Splice{}, err
	}

	scope.Splices[sp.ID] = sp
	return sp, nil
}

func (s *Store) UpsertSplice(sp models.Splice) (models.Splice, error) {
	if scope := s.Scope(); scope != nil && sp.ID != "" {
		if _, exists := scope.Splices[strings.TrimSpace(sp.ID)]; exists {
			return s.UpdateSplice(sp)
		}
	}
	return s.CreateSplice(sp)
}

func (s *Store) checkSplice(scope *models.Scope, sp models.Splice) error {
	if sp.Name == "" {
		return invalid(models.KindSplice, sp.ID, "name", ErrRequired, "name is required")
	}
	if sp.TechnicalID == "" {
		return invalid(models.KindSplice, sp.ID, "technical_id", ErrRequired, "technical id is required")
	}
	if s.IsTechnicalIDTaken(models.KindSplice, sp.TechnicalID, sp.ID) {
		return invalid(models.KindSplice, sp.ID, "technical_id", ErrDuplicateTechnicalID, "technical id %q already used", sp.TechnicalID)
	}
	if sp.PortCount <= 0 {
		return invalid(models.KindSplice, sp.ID, "port_count", ErrInvalid, "port count must be positive")
	}
	if used := highestUsedIndex(scope, models.EndpointSplicePort, sp.ID); used > sp.PortCount {
		return invalid(models.KindSplice, sp.ID, "port_count", ErrStillReferenced, "port %d is still used by a wire", used)
	}
	return nil
}

func (s *Store) DeleteSplice(id string) error {
	scope, err := s.scope()
	if err != nil {
		return err
	}
	sp, exists := scope.Splices[id]
	if !exists {
		return notFound(models.KindSplice, id)
	}
	if err := checkSlotEntityUnused(scope, models.KindSplice, models.NodeKindSplice, id); err != nil {
		return err
	}

	if node, ok := scope.RepresentingNode(models.NodeKindSplice, id); ok {
		scope.Nodes[node.ID] = detachedNode(node, sp.TechnicalID)
	}
	delete(scope.Splices, id)
	scope.SpliceOrder = models.RemoveID(scope.SpliceOrder, id)
	s.clearSelectionOf(models.KindSplice, id)
	return nil
}

// checkSlotEntityUnused refuses a connector or splice delete while a wire
// endpoint or a segment on its node still depends on it.
func checkSlotEntityUnused(scope *models.Scope, kind models.EntityKind, nodeKind models.NodeKind, id string) error {
	for _, w := range scope.WireList() {
		for _, end := range []models.WireEnd{models.EndA, models.EndB} {
			ep := w.Endpoint(end)
			if ep.IsSet() && ep.EntityID() == id && endpointKindFor(nodeKind) == ep.Kind {
				occupant := occupancy.Occupant{WireID: w.ID, WireTechnicalID: w.TechnicalID, End: end}
				return invalid(kind, id, "", ErrStillReferenced, "still referenced by wire endpoint %s", occupant)
			}
		}
	}
	if node, ok := scope.RepresentingNode(nodeKind, id); ok {
		if segs := scope.IncidentSegments(node.ID); len(segs) > 0 {
			return invalid(kind, id, "", ErrStillReferenced, "node %s is still referenced by segment %s", node.ID, segs[0].ID)
		}
	}
	return nil
}

func endpointKindFor(nodeKind models.NodeKind) models.EndpointKind {
	if nodeKind == models.NodeKindSplice {
		return models.EndpointSplicePort
	}
	return models.EndpointConnectorCavity
}

func detachedNode(n models.Node, label string) models.Node {
	return models.Node{ID: n.ID, Kind: models.NodeKindIntermediate, Label: label}
}

func highestUsedIndex(scope *models.Scope, kind models.EndpointKind, entityID string) int {
	highest := 0
	for _, w := range scope.Wires {
		for _, ep := range []models.WireEndpoint{w.EndpointA, w.EndpointB} {
			if ep.Kind == kind && ep.EntityID() == entityID && ep.Index() > highest {
				highest = ep.Index()
			}
		}
	}
	return highest
}

func (s *Store) CreateNode(n models.Node) (models.Node, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Node{}, err
	}
	n = trimNode(n)
	if n.ID == "" {
		return models.Node{}, invalid(models.KindNode, "", "id", ErrRequired, "id is required")
	}
	if s.IsTechnicalIDTaken(models.KindNode, n.ID, "") {
		return models.Node{}, invalid(models.KindNode, n.ID, "id", ErrDuplicateTechnicalID, "id %q already used", n.ID)
	}
	if err := checkNode(scope, n); err != nil {
		return models.Node{}, err
	}

	scope.Nodes[n.ID] = n
	scope.NodeOrder = append(scope.NodeOrder, n.ID)
	reroute(scope)
	return n, nil
}

func (s *Store) UpdateNode(n models.Node) (models.Node, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Node{}, err
	}
	n = trimNode(n)
	if _, exists := scope.Nodes[n.ID]; !exists {
		return models.Node{}, notFound(models.KindNode, n.ID)
	}
	if err := checkNode(scope, n); err != nil {
		return models.Node{}, err
	}

	scope.Nodes[n.ID] = n
	reroute(scope)
	return n, nil
}

func (s *Store) UpsertNode(n models.Node) (models.Node, error) {
	if scope := s.Scope(); scope != nil {
		if _, exists := scope.Nodes[strings.TrimSpace(n.ID)]; exists {
			return s.UpdateNode(n)
		}
	}
	return s.CreateNode(n)
}

// checkNode enforces the node kind contract and that a connector or splice
// is represented by at most one node.
func checkNode(scope *models.Scope, n models.Node) error {
	switch n.Kind {
	case models.NodeKindConnector:
		if n.ConnectorID == "" {
			return invalid(models.KindNode, n.ID, "connector_id", ErrRequired, "connector node needs a connector")
		}
		if _, ok := scope.Connectors[n.ConnectorID]; !ok {
			return invalid(models.KindNode, n.ID, "connector_id", ErrNotFound, "connector %s not found", n.ConnectorID)
		}
		if other, ok := scope.RepresentingNode(models.NodeKindConnector, n.ConnectorID); ok && other.ID != n.ID {
			return invalid(models.KindNode, n.ID, "connector_id", ErrInvalid, "connector already represented by node %s", other.ID)
		}
	case models.NodeKindSplice:
		if n.SpliceID == "" {
			return invalid(models.KindNode, n.ID, "splice_id", ErrRequired, "splice node needs a splice")
		}
		if _, ok := scope.Splices[n.SpliceID]; !ok {
			return invalid(models.KindNode, n.ID, "splice_id", ErrNotFound, "splice %s not found", n.SpliceID)
		}
		if other, ok := scope.RepresentingNode(models.NodeKindSplice, n.SpliceID); ok && other.ID != n.ID {
			return invalid(models.KindNode, n.ID, "splice_id", ErrInvalid, "splice already represented by node %s", other.ID)
		}
	case models.NodeKindIntermediate:
	default:
		return invalid(models.KindNode, n.ID, "kind", ErrInvalid, "unknown node kind %q", n.Kind)
	}
	return nil
}

// DeleteNode refuses while any segment still ends on the node.
func (s *Store) DeleteNode(id string) error {
	scope, err := s.scope()
	if err != nil {
		return err
	}
	if _, exists := scope.Nodes[id]; !exists {
		return notFound(models.KindNode, id)
	}
	if segs := scope.IncidentSegments(id); len(segs) > 0 {
		return invalid(models.KindNode, id, "", ErrStillReferenced, "still referenced by segment %s", segs[0].ID)
	}

	delete(scope.Nodes, id)
	delete(scope.NodePositions, id)
	scope.NodeOrder = models.RemoveID(scope.NodeOrder, id)
	s.clearSelectionOf(models.KindNode, id)
	reroute(scope)
	return nil
}

func (s *Store) CreateSegment(seg models.Segment) (models.Segment, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Segment{}, err
	}
	seg = trimSegment(seg)
	if seg.ID == "" {
		return models.Segment{}, invalid(models.KindSegment, "", "id", ErrRequired, "id is required")
	}
	if s.IsTechnicalIDTaken(models.KindSegment, seg.ID, "") {
		return models.Segment{}, invalid(models.KindSegment, seg.ID, "id", ErrDuplicateTechnicalID, "id %q already used", seg.ID)
	}
	if err := checkSegment(scope, seg); err != nil {
		return models.Segment{}, err
	}

	scope.Segments[seg.ID] = seg
	scope.SegmentOrder = append(scope.SegmentOrder, seg.ID)
	reroute(scope)
	return seg, nil
}

func (s *Store) UpdateSegment(seg models.Segment) (models.Segment, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Segment{}, err
	}
	seg = trimSegment(seg)
	if _, exists := scope.Segments[seg.ID]; !exists {
		return models.Segment{}, notFound(models.KindSegment, seg.ID)
	}
	if err := checkSegment(scope, seg); err != nil {
		return models.Segment{}, err
	}

	scope.Segments[seg.ID] = seg
	reroute(scope)
	return seg, nil
}

func (s *Store) UpsertSegment(seg models.Segment) (models.Segment, error) {
	if scope := s.Scope(); scope != nil {
		if _, exists := scope.Segments[strings.TrimSpace(seg.ID)]; exists {
			return s.UpdateSegment(seg)
		}
	}
	return s.CreateSegment(seg)
}

func checkSegment(scope *models.Scope, seg models.Segment) error {
	if seg.NodeA == "" {
		return invalid(models.KindSegment, seg.ID, "node_a", ErrRequired, "node A is required")
	}
	if seg.NodeB == "" {
		return invalid(models.KindSegment, seg.ID, "node_b", ErrRequired, "node B is required")
	}
	if _, ok := scope.Nodes[seg.NodeA]; !ok {
		return invalid(models.KindSegment, seg.ID, "node_a", ErrNotFound, "node %s not found", seg.NodeA)
	}
	if _, ok := scope.Nodes[seg.NodeB]; !ok {
		return invalid(models.KindSegment, seg.ID, "node_b", ErrNotFound, "node %s not found", seg.NodeB)
	}
	if seg.NodeA == seg.NodeB {
		return invalid(models.KindSegment, seg.ID, "node_b", ErrInvalid, "segment cannot start and end on %s", seg.NodeA)
	}
	if seg.LengthMm < 0 || math.IsNaN(seg.LengthMm) || math.IsInf(seg.LengthMm, 0) {
		return invalid(models.KindSegment, seg.ID, "length_mm", ErrInvalid, "length must be a non-negative number")
	}
	return nil
}

// DeleteSegment always succeeds for an existing segment. Auto wires are
// re-routed; locked wires keep their now-broken route for the user to fix.
func (s *Store) DeleteSegment(id string) error {
	scope, err := s.scope()
	if err != nil {
		return err
	}
	if _, exists := scope.Segments[id]; !exists {
		return notFound(models.KindSegment, id)
	}

	delete(scope.Segments, id)
	scope.SegmentOrder = models.RemoveID(scope.SegmentOrder, id)
	s.clearSelectionOf(models.KindSegment, id)
	reroute(scope)
	return nil
}

func trimConnector(c models.Connector) models.Connector {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.TechnicalID = strings.TrimSpace(c.TechnicalID)
	c.ManufacturerReference = strings.TrimSpace(c.ManufacturerReference)
	return c
}

func trimSplice(sp models.Splice) models.Splice {
	sp.ID = strings.TrimSpace(sp.ID)
	sp.Name = strings.TrimSpace(sp.Name)
	sp.TechnicalID = strings.TrimSpace(sp.TechnicalID)
	sp.ManufacturerReference = strings.TrimSpace(sp.ManufacturerReference)
	return sp
}

func trimNode(n models.Node) models.Node {
	n.ID = strings.TrimSpace(n.ID)
	n.ConnectorID = strings.TrimSpace(n.ConnectorID)
	n.SpliceID = strings.TrimSpace(n.SpliceID)
	n.Label = strings.TrimSpace(n.Label)
	switch n.Kind {
	case models.NodeKindConnector:
		n.SpliceID, n.Label = "", ""
	case models.NodeKindSplice:
		n.ConnectorID, n.Label = "", ""
	case models.NodeKindIntermediate:
		n.ConnectorID, n.SpliceID = "", ""
	}
	return n
}

func trimSegment(seg models.Segment) models.Segment {
	seg.ID = strings.TrimSpace(seg.ID)
	seg.NodeA = strings.TrimSpace(seg.NodeA)
	seg.NodeB = strings.TrimSpace(seg.NodeB)
	seg.SubNetworkTag = strings.TrimSpace(seg.SubNetworkTag)
	return seg
}
