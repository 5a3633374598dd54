package engine

import (
	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/store"
)

// Action is one intent applied to the store. Tracked actions are recorded in
// the undo history; untracked ones change view state only.
type Action interface {
	Name() string
	Tracked() bool
	Apply(s *store.Store) (any, error)
}

type UpsertNetwork struct {
	Network models.Network `json:"network"`
}

func (UpsertNetwork) Name() string  { return "network.upsert" }
func (UpsertNetwork) Tracked() bool { return true }
func (a UpsertNetwork) Apply(s *store.Store) (any, error) {
	if _, _, exists := s.Document().Network(a.Network.ID); exists {
		return s.UpdateNetwork(a.Network)
	}
	return s.CreateNetwork(a.Network)
}

type DeleteNetwork struct {
	ID string `json:"id"`
}

func (DeleteNetwork) Name() string  { return "network.delete" }
func (DeleteNetwork) Tracked() bool { return true }
func (a DeleteNetwork) Apply(s *store.Store) (any, error) {
	return nil, s.DeleteNetwork(a.ID)
}

type DuplicateNetwork struct {
	ID string `json:"id"`
}

func (DuplicateNetwork) Name() string  { return "network.duplicate" }
func (DuplicateNetwork) Tracked() bool { return true }
func (a DuplicateNetwork) Apply(s *store.Store) (any, error) {
	return s.DuplicateNetwork(a.ID)
}

// SelectNetwork switches the editing scope. It is view state.
type SelectNetwork struct {
	ID string `json:"id"`
}

func (SelectNetwork) Name() string  { return "network.select" }
func (SelectNetwork) Tracked() bool { return false }
func (a SelectNetwork) Apply(s *store.Store) (any, error) {
	return nil, s.SelectNetwork(a.ID)
}

type UpsertConnector struct {
	Connector models.Connector `json:"connector"`
}

func (UpsertConnector) Name() string  { return "connector.upsert" }
func (UpsertConnector) Tracked() bool { return true }
func (a UpsertConnector) Apply(s *store.Store) (any, error) {
	return s.UpsertConnector(a.Connector)
}

type DeleteConnector struct {
	ID string `json:"id"`
}

func (DeleteConnector) Name() string  { return "connector.delete" }
func (DeleteConnector) Tracked() bool { return true }
func (a DeleteConnector) Apply(s *store.Store) (any, error) {
	return nil, s.DeleteConnector(a.ID)
}

type UpsertSplice struct {
	Splice models.Splice `json:"splice"`
}

func (UpsertSplice) Name() string  { return "splice.upsert" }
func (UpsertSplice) Tracked() bool { return true }
func (a UpsertSplice) Apply(s *store.Store) (any, error) {
	return s.UpsertSplice(a.Splice)
}

type DeleteSplice struct {
	ID string `json:"id"`
}

func (DeleteSplice) Name() string  { return "splice.delete" }
func (DeleteSplice) Tracked() bool { return true }
func (a DeleteSplice) Apply(s *store.Store) (any, error) {
	return nil, s.DeleteSplice(a.ID)
}

type UpsertNode struct {
	Node models.Node `json:"node"`
}

func (UpsertNode) Name() string  { return "node.upsert" }
func (UpsertNode) Tracked() bool { return true }
func (a UpsertNode) Apply(s *store.Store) (any, error) {
	return s.UpsertNode(a.Node)
}

type DeleteNode struct {
	ID string `json:"id"`
}

func (DeleteNode) Name() string  { return "node.delete" }
func (DeleteNode) Tracked() bool { return true }
func (a DeleteNode) Apply(s *store.Store) (any, error) {
	return nil, s.DeleteNode(a.ID)
}

type UpsertSegment struct {
	Segment models.Segment `json:"segment"`
}

func (UpsertSegment) Name() string  { return "segment.upsert" }
func (UpsertSegment) Tracked() bool { return true }
func (a UpsertSegment) Apply(s *store.Store) (any, error) {
	return s.UpsertSegment(a.Segment)
}

type DeleteSegment struct {
	ID string `json:"id"`
}

func (DeleteSegment) Name() string  { return "segment.delete" }
func (DeleteSegment) Tracked() bool { return true }
func (a DeleteSegment) Apply(s *store.Store) (any, error) {
	return nil, s.DeleteSegment(a.ID)
}

type UpsertWire struct {
	Wire models.Wire `json:"wire"`
}

func (UpsertWire) Name() string  { return "wire.upsert" }
func (UpsertWire) Tracked() bool { return true }
func (a UpsertWire) Apply(s *store.Store) (any, error) {
	return s.UpsertWire(a.Wire)
}

type DeleteWire struct {
	ID string `json:"id"`
}

func (DeleteWire) Name() string  { return "wire.delete" }
func (DeleteWire) Tracked() bool { return true }
func (a DeleteWire) Apply(s *store.Store) (any, error) {
	return nil, s.DeleteWire(a.ID)
}

// SetWireRoute locks a wire to the comma separated Route, or returns it to
// auto routing when Locked is false.
type SetWireRoute struct {
	WireID string `json:"wire_id"`
	Locked bool   `json:"locked"`
	Route  string `json:"route"`
}

func (SetWireRoute) Name() string  { return "wire.route" }
func (SetWireRoute) Tracked() bool { return true }
func (a SetWireRoute) Apply(s *store.Store) (any, error) {
	return s.SetWireRoute(a.WireID, a.Locked, a.Route)
}

type ReserveSlot struct {
	WireID string              `json:"wire_id"`
	End    models.WireEnd      `json:"end"`
	Target models.WireEndpoint `json:"target"`
}

func (ReserveSlot) Name() string  { return "slot.reserve" }
func (ReserveSlot) Tracked() bool { return true }
func (a ReserveSlot) Apply(s *store.Store) (any, error) {
	return s.ReserveSlot(a.WireID, a.End, a.Target)
}

type ReleaseSlot struct {
	WireID string         `json:"wire_id"`
	End    models.WireEnd `json:"end"`
}

func (ReleaseSlot) Name() string  { return "slot.release" }
func (ReleaseSlot) Tracked() bool { return true }
func (a ReleaseSlot) Apply(s *store.Store) (any, error) {
	return s.ReleaseSlot(a.WireID, a.End)
}

// SetNodePosition moves a node on the canvas; a nil Position clears it.
type SetNodePosition struct {
	NodeID   string           `json:"node_id"`
	Position *models.Position `json:"position"`
}

func (SetNodePosition) Name() string  { return "node.position" }
func (SetNodePosition) Tracked() bool { return false }
func (a SetNodePosition) Apply(s *store.Store) (any, error) {
	return nil, s.SetNodePosition(a.NodeID, a.Position)
}

type SetSelection struct {
	Selection models.Selection `json:"selection"`
}

func (SetSelection) Name() string  { return "selection.set" }
func (SetSelection) Tracked() bool { return false }
func (a SetSelection) Apply(s *store.Store) (any, error) {
	return nil, s.SetSelection(a.Selection)
}

type SetPreference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (SetPreference) Name() string  { return "preference.set" }
func (SetPreference) Tracked() bool { return false }
func (a SetPreference) Apply(s *store.Store) (any, error) {
	return nil, s.SetPreference(a.Key, a.Value)
}
