package store

import (
	"math"
	"strings"

	"github.com/wirescope/core/internal/models"
)

// SetNodePosition stores a node's canvas position, or clears it when pos is
// nil. Positions are opaque view state.
func (s *Store) SetNodePosition(nodeID string, pos *models.Position) error {
	scope, err := s.scope()
	if err != nil {
		return err
	}
	if _, exists := scope.Nodes[nodeID]; !exists {
		return notFound(models.KindNode, nodeID)
	}
	if pos == nil {
		delete(scope.NodePositions, nodeID)
		return nil
	}
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
		return invalid(models.KindNode, nodeID, "position", ErrInvalid, "position must be finite")
	}
	scope.NodePositions[nodeID] = *pos
	return nil
}

// SetSelection points the selection at an entity of the active scope, or at
// a network. An empty kind clears it.
func (s *Store) SetSelection(sel models.Selection) error {
	sel.ID = strings.TrimSpace(sel.ID)
	if sel.Kind == "" {
		s.doc.Selection = models.Selection{}
		return nil
	}
	if !sel.Kind.IsValid() {
		return invalid(sel.Kind, sel.ID, "kind", ErrInvalid, "unknown selection kind %q", sel.Kind)
	}
	if !s.exists(sel.Kind, sel.ID) {
		return notFound(sel.Kind, sel.ID)
	}
	s.doc.Selection = sel
	return nil
}

func (s *Store) exists(kind models.EntityKind, id string) bool {
	if kind == models.KindNetwork {
		_, _, ok := s.doc.Network(id)
		return ok
	}
	scope := s.doc.ActiveScope()
	if scope == nil {
		return false
	}
	var ok bool
	switch kind {
	case models.KindConnector:
		_, ok = scope.Connectors[id]
	case models.KindSplice:
		_, ok = scope.Splices[id]
	case models.KindNode:
		_, ok = scope.Nodes[id]
	case models.KindSegment:
		_, ok = scope.Segments[id]
	case models.KindWire:
		_, ok = scope.Wires[id]
	}
	return ok
}

// SetPreference stores an opaque UI preference. An empty value removes it.
func (s *Store) SetPreference(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &ValidationError{Field: "preference", Err: ErrRequired, Reason: "preference key is required"}
	}
	if value == "" {
		delete(s.doc.Preferences, key)
		return nil
	}
	s.doc.Preferences[key] = value
	return nil
}
