package store

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/occupancy"
	"github.com/wirescope/core/internal/parser"
	"github.com/wirescope/core/internal/routing"
)

// CreateWire stores a new wire. Both endpoints must reference free, in-range
// slots. An unlocked wire is auto-routed; a locked one must carry a valid
// forced route.
func (s *Store) CreateWire(w models.Wire) (models.Wire, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Wire{}, err
	}
	w = trimWire(w)
	if w.ID == "" {
		w.ID = s.newID()
	}
	if _, exists := scope.Wires[w.ID]; exists {
		return models.Wire{}, invalid(models.KindWire, w.ID, "id", ErrInvalid, "id already exists")
	}
	if err := s.checkWire(scope, w); err != nil {
		return models.Wire{}, err
	}
	if !w.EndpointA.IsSet() {
		return models.Wire{}, invalid(models.KindWire, w.ID, "endpoint_a", ErrRequired, "endpoint A is required")
	}
	if !w.EndpointB.IsSet() {
		return models.Wire{}, invalid(models.KindWire, w.ID, "endpoint_b", ErrRequired, "endpoint B is required")
	}
	if w.EndpointA.SameSlot(w.EndpointB) {
		return models.Wire{}, invalid(models.KindWire, w.ID, "endpoint_b", ErrInvalid, "both ends cannot share %s", w.EndpointB)
	}
	for _, end := range []models.WireEnd{models.EndA, models.EndB} {
		if err := checkEndpoint(scope, w, end); err != nil {
			return models.Wire{}, err
		}
	}

	routed, err := routeWire(scope, w)
	if err != nil {
		return models.Wire{}, err
	}
	scope.Wires[routed.ID] = routed
	scope.WireOrder = append(scope.WireOrder, routed.ID)
	return routed, nil
}

// UpdateWire replaces a stored wire. A locked route is re-checked only when
// the route or an endpoint changed, so a stale route can still be renamed.
func (s *Store) UpdateWire(w models.Wire) (models.Wire, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Wire{}, err
	}
	w = trimWire(w)
	prev, exists := scope.Wires[w.ID]
	if !exists {
		return models.Wire{}, notFound(models.KindWire, w.ID)
	}
	if err := s.checkWire(scope, w); err != nil {
		return models.Wire{}, err
	}
	if w.EndpointA.IsSet() && w.EndpointA.SameSlot(w.EndpointB) {
		return models.Wire{}, invalid(models.KindWire, w.ID, "endpoint_b", ErrInvalid, "both ends cannot share %s", w.EndpointB)
	}
	for _, end := range []models.WireEnd{models.EndA, models.EndB} {
		if !w.Endpoint(end).IsSet() {
			continue
		}
		if err := checkEndpoint(scope, w, end); err != nil {
			return models.Wire{}, err
		}
	}

	routeChanged := w.IsRouteLocked != prev.IsRouteLocked ||
		!sameIDs(w.RouteSegmentIDs, prev.RouteSegmentIDs) ||
		!sameLink(w.EndpointA, prev.EndpointA) ||
		!sameLink(w.EndpointB, prev.EndpointB)

	routed := w
	switch {
	case !w.IsRouteLocked:
		routed = routing.Reroute(scope, routing.BuildScopeGraph(scope), w)
	case routeChanged:
		routed, err = routeWire(scope, w)
		if err != nil {
			return models.Wire{}, err
		}
	default:
		routed.LengthMm = routing.RouteLength(scope, w.RouteSegmentIDs)
	}
	scope.Wires[routed.ID] = routed
	return routed, nil
}

func (s *Store) UpsertWire(w models.Wire) (models.Wire, error) {
	if scope := s.Scope(); scope != nil && w.ID != "" {
		if _, exists := scope.Wires[strings.TrimSpace(w.ID)]; exists {
			return s.UpdateWire(w)
		}
	}
	return s.CreateWire(w)
}

func (s *Store) DeleteWire(id string) error {
	scope, err := s.scope()
	if err != nil {
		return err
	}
	if _, exists := scope.Wires[id]; !exists {
		return notFound(models.KindWire, id)
	}
	delete(scope.Wires, id)
	scope.WireOrder = models.RemoveID(scope.WireOrder, id)
	s.clearSelectionOf(models.KindWire, id)
	return nil
}

// SetWireRoute switches a wire between auto and locked routing. routeText is
// the comma separated segment list for a locked route and is ignored when
// unlocking. A rejected lock leaves the previous route in place.
func (s *Store) SetWireRoute(wireID string, locked bool, routeText string) (models.Wire, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Wire{}, err
	}
	w, exists := scope.Wires[wireID]
	if !exists {
		return models.Wire{}, notFound(models.KindWire, wireID)
	}

	if !locked {
		w.IsRouteLocked = false
		w = routing.Reroute(scope, routing.BuildScopeGraph(scope), w)
		scope.Wires[wireID] = w
		return w, nil
	}

	ids, err := parser.ParseRouteList(routeText)
	if err != nil {
		return models.Wire{}, invalid(models.KindWire, wireID, "route_segment_ids", ErrInvalid, "%v", err)
	}
	w.IsRouteLocked = true
	w.RouteSegmentIDs = ids
	routed, err := routeWire(scope, w)
	if err != nil {
		return models.Wire{}, err
	}
	scope.Wires[wireID] = routed
	return routed, nil
}

// ReserveSlot points one end of a wire at a cavity or port and re-routes the
// wire, since its endpoint node may have moved.
func (s *Store) ReserveSlot(wireID string, end models.WireEnd, target models.WireEndpoint) (models.Wire, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Wire{}, err
	}
	if _, exists := scope.Wires[wireID]; !exists {
		return models.Wire{}, notFound(models.KindWire, wireID)
	}
	if other, ok := otherEnd(end); ok && scope.Wires[wireID].Endpoint(other).SameSlot(target) {
		return models.Wire{}, invalid(models.KindWire, wireID, "endpoint_"+strings.ToLower(string(end)), ErrInvalid, "both ends cannot share %s", target)
	}

	w, err := occupancy.Reserve(scope, wireID, end, target)
	if err != nil {
		return models.Wire{}, slotError(wireID, end, err)
	}
	// Locked wires keep their path even if it no longer fits the new end.
	w = routing.Reroute(scope, routing.BuildScopeGraph(scope), w)
	scope.Wires[wireID] = w
	return w, nil
}

// ReleaseSlot clears the slot link of one end of a wire.
func (s *Store) ReleaseSlot(wireID string, end models.WireEnd) (models.Wire, error) {
	scope, err := s.scope()
	if err != nil {
		return models.Wire{}, err
	}
	if _, exists := scope.Wires[wireID]; !exists {
		return models.Wire{}, notFound(models.KindWire, wireID)
	}
	w, err := occupancy.Release(scope, wireID, end)
	if err != nil {
		return models.Wire{}, slotError(wireID, end, err)
	}
	w = routing.Reroute(scope, routing.BuildScopeGraph(scope), w)
	scope.Wires[wireID] = w
	return w, nil
}

func otherEnd(end models.WireEnd) (models.WireEnd, bool) {
	switch end {
	case models.EndA:
		return models.EndB, true
	case models.EndB:
		return models.EndA, true
	}
	return "", false
}

// slotError keeps SlotOccupiedError as is and maps the other occupancy
// failures onto the store taxonomy.
func slotError(wireID string, end models.WireEnd, err error) error {
	var occupied *occupancy.SlotOccupiedError
	if errors.As(err, &occupied) {
		return err
	}
	field := "endpoint_" + strings.ToLower(string(end))
	switch {
	case errors.Is(err, occupancy.ErrUnknownEntity):
		return invalid(models.KindWire, wireID, field, ErrNotFound, "%v", err)
	default:
		return invalid(models.KindWire, wireID, field, ErrInvalid, "%v", err)
	}
}

func (s *Store) checkWire(scope *models.Scope, w models.Wire) error {
	if w.Name == "" {
		return invalid(models.KindWire, w.ID, "name", ErrRequired, "name is required")
	}
	if w.TechnicalID == "" {
		return invalid(models.KindWire, w.ID, "technical_id", ErrRequired, "technical id is required")
	}
	if s.IsTechnicalIDTaken(models.KindWire, w.TechnicalID, w.ID) {
		return invalid(models.KindWire, w.ID, "technical_id", ErrDuplicateTechnicalID, "technical id %q already used", w.TechnicalID)
	}
	if w.SectionMm2 <= 0 || math.IsNaN(w.SectionMm2) || math.IsInf(w.SectionMm2, 0) {
		return invalid(models.KindWire, w.ID, "section_mm2", ErrInvalid, "section must be a positive number")
	}
	if err := checkColor(w); err != nil {
		return err
	}
	for _, end := range []models.WireEnd{models.EndA, models.EndB} {
		ep := w.Endpoint(end)
		field := "endpoint_" + strings.ToLower(string(end))
		if utf8.RuneCountInString(ep.ConnectionRef) > models.MaxEndpointRef {
			return invalid(models.KindWire, w.ID, field, ErrInvalid, "connection reference longer than %d characters", models.MaxEndpointRef)
		}
		if utf8.RuneCountInString(ep.SealRef) > models.MaxEndpointRef {
			return invalid(models.KindWire, w.ID, field, ErrInvalid, "seal reference longer than %d characters", models.MaxEndpointRef)
		}
	}
	return nil
}

func checkColor(w models.Wire) error {
	c := w.Color
	switch c.Mode {
	case models.ColorModeNone:
	case models.ColorModeCatalog:
		if !models.IsCatalogColor(c.Primary) {
			return invalid(models.KindWire, w.ID, "color", ErrInvalid, "unknown catalog colour %q", c.Primary)
		}
		if c.Secondary != "" {
			if !models.IsCatalogColor(c.Secondary) {
				return invalid(models.KindWire, w.ID, "color", ErrInvalid, "unknown catalog colour %q", c.Secondary)
			}
			if c.Secondary == c.Primary {
				return invalid(models.KindWire, w.ID, "color", ErrInvalid, "secondary colour repeats the primary")
			}
		}
	case models.ColorModeFree:
		if c.Label == "" {
			return invalid(models.KindWire, w.ID, "color", ErrRequired, "free colour needs a label")
		}
		if utf8.RuneCountInString(c.Label) > models.MaxFreeColorLabel {
			return invalid(models.KindWire, w.ID, "color", ErrInvalid, "colour label longer than %d characters", models.MaxFreeColorLabel)
		}
	default:
		return invalid(models.KindWire, w.ID, "color", ErrInvalid, "unknown colour mode %q", c.Mode)
	}
	return nil
}

// checkEndpoint verifies one end of w against the slots of the scope, with
// the wire's own stored endpoint counted as free.
func checkEndpoint(scope *models.Scope, w models.Wire, end models.WireEnd) error {
	ep := w.Endpoint(end)
	field := "endpoint_" + strings.ToLower(string(end))
	switch ep.Kind {
	case models.EndpointConnectorCavity:
		if _, ok := scope.Connectors[ep.ConnectorID]; !ok {
			return invalid(models.KindWire, w.ID, field, ErrNotFound, "connector %s not found", ep.ConnectorID)
		}
	case models.EndpointSplicePort:
		if _, ok := scope.Splices[ep.SpliceID]; !ok {
			return invalid(models.KindWire, w.ID, field, ErrNotFound, "splice %s not found", ep.SpliceID)
		}
	default:
		return invalid(models.KindWire, w.ID, field, ErrInvalid, "unknown endpoint kind %q", ep.Kind)
	}

	self := &occupancy.Occupant{WireID: w.ID, WireTechnicalID: w.TechnicalID, End: end}
	if err := occupancy.CheckTarget(scope, ep, self); err != nil {
		return slotError(w.ID, end, err)
	}
	return nil
}

// routeWire resolves the route of w without writing it.
func routeWire(scope *models.Scope, w models.Wire) (models.Wire, error) {
	if !w.IsRouteLocked {
		return routing.Reroute(scope, routing.BuildScopeGraph(scope), w), nil
	}
	route, err := routing.ForcedRoute(scope, w, w.RouteSegmentIDs)
	if err != nil {
		return models.Wire{}, err
	}
	w.RouteSegmentIDs = route.SegmentIDs
	w.LengthMm = route.LengthMm
	return w, nil
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameLink(a, b models.WireEndpoint) bool {
	return a.Kind == b.Kind && a.EntityID() == b.EntityID() && a.Index() == b.Index()
}

func trimWire(w models.Wire) models.Wire {
	w.ID = strings.TrimSpace(w.ID)
	w.Name = strings.TrimSpace(w.Name)
	w.TechnicalID = strings.TrimSpace(w.TechnicalID)
	w.Color.Primary = strings.TrimSpace(w.Color.Primary)
	w.Color.Secondary = strings.TrimSpace(w.Color.Secondary)
	w.Color.Label = strings.TrimSpace(w.Color.Label)
	if w.Color.Mode == "" {
		w.Color.Mode = models.ColorModeNone
	}
	if w.Color.Mode != models.ColorModeCatalog {
		w.Color.Primary, w.Color.Secondary = "", ""
	}
	if w.Color.Mode != models.ColorModeFree {
		w.Color.Label = ""
	}
	w.EndpointA = trimEndpoint(w.EndpointA)
	w.EndpointB = trimEndpoint(w.EndpointB)
	ids := make([]string, 0, len(w.RouteSegmentIDs))
	for _, id := range w.RouteSegmentIDs {
		ids = append(ids, strings.TrimSpace(id))
	}
	w.RouteSegmentIDs = ids
	return w
}

func trimEndpoint(ep models.WireEndpoint) models.WireEndpoint {
	ep.ConnectorID = strings.TrimSpace(ep.ConnectorID)
	ep.SpliceID = strings.TrimSpace(ep.SpliceID)
	ep.ConnectionRef = strings.TrimSpace(ep.ConnectionRef)
	ep.SealRef = strings.TrimSpace(ep.SealRef)
	return ep.WithSlot(ep)
}
