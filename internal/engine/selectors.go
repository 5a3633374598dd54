package engine

import (
	"github.com/mohae/deepcopy"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/occupancy"
	"github.com/wirescope/core/internal/routing"
	"github.com/wirescope/core/internal/store"
	"github.com/wirescope/core/internal/validation"
)

// Selectors return copies; callers may keep or modify them freely.

// HistoryStatus reports undo/redo availability.
type HistoryStatus struct {
	CanUndo   bool   `json:"can_undo"`
	CanRedo   bool   `json:"can_redo"`
	UndoDepth int    `json:"undo_depth"`
	RedoDepth int    `json:"redo_depth"`
	Limit     int    `json:"limit"`
	Version   uint64 `json:"version"`
}

func (e *Engine) History() HistoryStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return HistoryStatus{
		CanUndo:   e.history.CanUndo(),
		CanRedo:   e.history.CanRedo(),
		UndoDepth: e.history.UndoDepth(),
		RedoDepth: e.history.RedoDepth(),
		Limit:     e.history.Limit(),
		Version:   e.version,
	}
}

// Version increases with every committed change, undo, redo and replace.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Document returns a deep copy of the present workspace.
func (e *Engine) Document() *models.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Present().Clone()
}

// read runs fn against a read-only store over the present document.
func (e *Engine) read(fn func(s *store.Store)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(store.View(e.history.Present()))
}

func (e *Engine) Networks() []models.Network {
	var out []models.Network
	e.read(func(s *store.Store) { out = s.Networks() })
	return out
}

func (e *Engine) ActiveNetwork() (models.Network, bool) {
	var (
		n  models.Network
		ok bool
	)
	e.read(func(s *store.Store) { n, ok = s.ActiveNetwork() })
	return n, ok
}

func (e *Engine) Connectors() []models.Connector {
	var out []models.Connector
	e.read(func(s *store.Store) { out = cloneList(s.Connectors()) })
	return out
}

func (e *Engine) Splices() []models.Splice {
	var out []models.Splice
	e.read(func(s *store.Store) { out = cloneList(s.Splices()) })
	return out
}

func (e *Engine) Nodes() []models.Node {
	var out []models.Node
	e.read(func(s *store.Store) { out = s.Nodes() })
	return out
}

func (e *Engine) Segments() []models.Segment {
	var out []models.Segment
	e.read(func(s *store.Store) { out = s.Segments() })
	return out
}

func (e *Engine) Wires() []models.Wire {
	var out []models.Wire
	e.read(func(s *store.Store) { out = cloneList(s.Wires()) })
	return out
}

func (e *Engine) Wire(id string) (models.Wire, bool) {
	var (
		w  models.Wire
		ok bool
	)
	e.read(func(s *store.Store) {
		w, ok = s.Wire(id)
		w = deepcopy.Copy(w).(models.Wire)
	})
	return w, ok
}

func (e *Engine) IsTechnicalIDTaken(kind models.EntityKind, candidate, excludeID string) bool {
	var taken bool
	e.read(func(s *store.Store) { taken = s.IsTechnicalIDTaken(kind, candidate, excludeID) })
	return taken
}

// Graph returns the routing graph of the active scope.
func (e *Engine) Graph() *routing.GraphIndex {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.derivedLocked().graph
	out := &routing.GraphIndex{
		NodeIDs:       append([]string{}, g.NodeIDs...),
		EdgesByNodeID: make(map[string][]routing.Edge, len(g.EdgesByNodeID)),
	}
	for id, edges := range g.EdgesByNodeID {
		out.EdgesByNodeID[id] = append([]routing.Edge{}, edges...)
	}
	return out
}

// Issues returns every validation issue of the present state, ordered.
func (e *Engine) Issues() []validation.Issue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]validation.Issue{}, e.derivedLocked().issues...)
}

func (e *Engine) IssueSummary() validation.Summary {
	return validation.Summarize(e.Issues())
}

// SlotReport is the occupancy of one connector or splice.
type SlotReport struct {
	Kind     models.EntityKind `json:"kind"`
	ID       string            `json:"id"`
	Slots    []occupancy.Slot  `json:"slots"`
	NextFree int               `json:"next_free"`
}

// Occupancy lists the cavities of a connector or the ports of a splice.
func (e *Engine) Occupancy(kind models.EntityKind, id string) (SlotReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	scope := e.history.Present().ActiveScope()
	if scope == nil {
		return SlotReport{}, store.ErrNoActiveNetwork
	}
	var (
		slots []occupancy.Slot
		err   error
	)
	switch kind {
	case models.KindConnector:
		slots, err = occupancy.ConnectorSlots(scope, id)
	case models.KindSplice:
		slots, err = occupancy.SpliceSlots(scope, id)
	default:
		err = occupancy.ErrInvalidTarget
	}
	if err != nil {
		return SlotReport{}, err
	}
	return SlotReport{Kind: kind, ID: id, Slots: slots, NextFree: occupancy.NextFree(slots)}, nil
}

// cloneList deep-copies entities that hold pointers or slices.
func cloneList[T any](items []T) []T {
	return deepcopy.Copy(items).([]T)
}
