// Package validation derives integrity issues from a workspace document. The
// live model may hold states that mutations tolerate mid-edit; they surface
// here instead of blocking the edit.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/occupancy"
	"github.com/wirescope/core/internal/routing"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Category string

const (
	CategoryDuplicateTechnicalID      Category = "duplicate-technical-id"
	CategorySegmentMissingNode        Category = "segment-missing-node"
	CategorySegmentSelfLoop           Category = "segment-self-loop"
	CategorySegmentDuplicatePair      Category = "segment-duplicate-pair"
	CategorySegmentNegativeLength     Category = "segment-negative-length"
	CategoryWireEndpointMissingEntity Category = "wire-endpoint-missing-entity"
	CategoryWireEndpointOutOfRange    Category = "wire-endpoint-out-of-range"
	CategoryWireEndpointUnassigned    Category = "wire-endpoint-unassigned"
	CategoryWireEndpointUnresolved    Category = "wire-endpoint-unresolved"
	CategorySlotConflict              Category = "slot-conflict"
	CategoryWireRouteMissing          Category = "wire-route-missing"
	CategoryWireRouteStale            Category = "wire-route-stale"
	CategoryWireLengthMismatch        Category = "wire-length-mismatch"
	CategoryNodeMissingEntity         Category = "node-missing-entity"
	CategoryNodeOrphan                Category = "node-orphan"
)

var severities = map[Category]Severity{
	CategoryDuplicateTechnicalID:      SeverityError,
	CategorySegmentMissingNode:        SeverityError,
	CategorySegmentSelfLoop:           SeverityError,
	CategorySegmentDuplicatePair:      SeverityWarning,
	CategorySegmentNegativeLength:     SeverityError,
	CategoryWireEndpointMissingEntity: SeverityError,
	CategoryWireEndpointOutOfRange:    SeverityError,
	CategoryWireEndpointUnassigned:    SeverityWarning,
	CategoryWireEndpointUnresolved:    SeverityWarning,
	CategorySlotConflict:              SeverityError,
	CategoryWireRouteMissing:          SeverityWarning,
	CategoryWireRouteStale:            SeverityError,
	CategoryWireLengthMismatch:        SeverityWarning,
	CategoryNodeMissingEntity:         SeverityError,
	CategoryNodeOrphan:                SeverityWarning,
}

// SeverityOf returns the fixed severity of a category.
func SeverityOf(c Category) Severity {
	return severities[c]
}

// Issue addresses one problem precisely enough for a UI to jump to the
// offending entity. ID is stable across re-derivation of an unchanged model.
type Issue struct {
	ID            string            `json:"id"`
	Category      Category          `json:"category"`
	Severity      Severity          `json:"severity"`
	Message       string            `json:"message"`
	SubScreen     models.EntityKind `json:"sub_screen"`
	SelectionKind models.EntityKind `json:"selection_kind"`
	SelectionID   string            `json:"selection_id"`
}

// lengthTolerance absorbs float drift between stored and summed lengths.
const lengthTolerance = 1e-6

type collector struct {
	issues []Issue
}

func (c *collector) add(category Category, kind models.EntityKind, id, detail, format string, args ...any) {
	issueID := fmt.Sprintf("%s/%s/%s", category, kind, id)
	if detail != "" {
		issueID += "/" + detail
	}
	c.issues = append(c.issues, Issue{
		ID:            issueID,
		Category:      category,
		Severity:      SeverityOf(category),
		Message:       fmt.Sprintf(format, args...),
		SubScreen:     kind,
		SelectionKind: kind,
		SelectionID:   id,
	})
}

// Validate derives every issue of the workspace: network technical ids
// across the document, everything else within the active scope. graph may be
// nil, in which case it is built from the scope.
func Validate(doc *models.Document, graph *routing.GraphIndex) []Issue {
	c := &collector{}
	if doc == nil {
		return []Issue{}
	}

	checkNetworks(c, doc.Networks)

	scope := doc.ActiveScope()
	if scope != nil {
		if graph == nil {
			graph = routing.BuildScopeGraph(scope)
		}
		checkTechnicalIDs(c, scope)
		checkNodes(c, scope)
		checkSegments(c, scope)
		checkWireEndpoints(c, scope)
		checkSlotConflicts(c, scope)
		checkRoutes(c, scope, graph)
	}

	Sort(c.issues)
	if c.issues == nil {
		return []Issue{}
	}
	return c.issues
}

// Sort orders issues errors first, then by category, sub-screen and
// selection id.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SubScreen != b.SubScreen {
			return a.SubScreen < b.SubScreen
		}
		if a.SelectionID != b.SelectionID {
			return a.SelectionID < b.SelectionID
		}
		return a.ID < b.ID
	})
}

func checkNetworks(c *collector, networks []models.Network) {
	seen := make(map[string]int)
	for _, n := range networks {
		seen[n.TechnicalID]++
	}
	for _, n := range networks {
		if n.TechnicalID != "" && seen[n.TechnicalID] > 1 {
			c.add(CategoryDuplicateTechnicalID, models.KindNetwork, n.ID, "",
				"network technical id %q is used %d times", n.TechnicalID, seen[n.TechnicalID])
		}
	}
}

func checkTechnicalIDs(c *collector, scope *models.Scope) {
	report := func(kind models.EntityKind, ids, technical []string) {
		count := make(map[string]int, len(technical))
		for _, t := range technical {
			count[t]++
		}
		for i, id := range ids {
			if t := technical[i]; t != "" && count[t] > 1 {
				c.add(CategoryDuplicateTechnicalID, kind, id, "",
					"%s technical id %q is used %d times", kind, t, count[t])
			}
		}
	}

	var ids, technical []string
	for _, e := range scope.ConnectorList() {
		ids, technical = append(ids, e.ID), append(technical, e.TechnicalID)
	}
	report(models.KindConnector, ids, technical)

	ids, technical = nil, nil
	for _, e := range scope.SpliceList() {
		ids, technical = append(ids, e.ID), append(technical, e.TechnicalID)
	}
	report(models.KindSplice, ids, technical)

	ids, technical = nil, nil
	for _, e := range scope.WireList() {
		ids, technical = append(ids, e.ID), append(technical, e.TechnicalID)
	}
	report(models.KindWire, ids, technical)
}

func checkNodes(c *collector, scope *models.Scope) {
	for _, n := range scope.NodeList() {
		switch n.Kind {
		case models.NodeKindConnector:
			if _, ok := scope.Connectors[n.ConnectorID]; !ok {
				c.add(CategoryNodeMissingEntity, models.KindNode, n.ID, "",
					"node %s references missing connector %q", n.ID, n.ConnectorID)
			}
		case models.NodeKindSplice:
			if _, ok := scope.Splices[n.SpliceID]; !ok {
				c.add(CategoryNodeMissingEntity, models.KindNode, n.ID, "",
					"node %s references missing splice %q", n.ID, n.SpliceID)
			}
		case models.NodeKindIntermediate:
			if len(scope.IncidentSegments(n.ID)) == 0 {
				c.add(CategoryNodeOrphan, models.KindNode, n.ID, "",
					"intermediate node %s has no segment", n.ID)
			}
		}
	}
}

func checkSegments(c *collector, scope *models.Scope) {
	pairs := make(map[string]string)
	for _, seg := range sortedSegments(scope) {
		for _, end := range []struct{ label, node string }{{"A", seg.NodeA}, {"B", seg.NodeB}} {
			if _, ok := scope.Nodes[end.node]; !ok {
				c.add(CategorySegmentMissingNode, models.KindSegment, seg.ID, end.label,
					"segment %s end %s references missing node %q", seg.ID, end.label, end.node)
			}
		}
		if seg.NodeA == seg.NodeB {
			c.add(CategorySegmentSelfLoop, models.KindSegment, seg.ID, "",
				"segment %s starts and ends on node %s", seg.ID, seg.NodeA)
		} else {
			key := pairKey(seg.NodeA, seg.NodeB)
			if first, dup := pairs[key]; dup {
				c.add(CategorySegmentDuplicatePair, models.KindSegment, seg.ID, "",
					"segment %s duplicates %s between %s and %s", seg.ID, first, seg.NodeA, seg.NodeB)
			} else {
				pairs[key] = seg.ID
			}
		}
		if seg.LengthMm < 0 || math.IsNaN(seg.LengthMm) {
			c.add(CategorySegmentNegativeLength, models.KindSegment, seg.ID, "",
				"segment %s has invalid length %g mm", seg.ID, seg.LengthMm)
		}
	}
}

func sortedSegments(scope *models.Scope) []models.Segment {
	segs := scope.SegmentList()
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].ID < segs[j].ID })
	return segs
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func checkWireEndpoints(c *collector, scope *models.Scope) {
	for _, w := range scope.WireList() {
		for _, end := range []models.WireEnd{models.EndA, models.EndB} {
			ep := w.Endpoint(end)
			detail := string(end)
			name := wireName(w)
			if !ep.IsSet() {
				c.add(CategoryWireEndpointUnassigned, models.KindWire, w.ID, detail,
					"wire %s end %s is not assigned to a cavity or port", name, end)
				continue
			}

			count, exists := slotCount(scope, ep)
			if !exists {
				c.add(CategoryWireEndpointMissingEntity, models.KindWire, w.ID, detail,
					"wire %s end %s references missing %s", name, end, ep)
				continue
			}
			if ep.Index() < 1 || ep.Index() > count {
				c.add(CategoryWireEndpointOutOfRange, models.KindWire, w.ID, detail,
					"wire %s end %s references %s outside 1..%d", name, end, ep, count)
			}
			if _, err := routing.EndpointNode(scope, ep); err != nil {
				c.add(CategoryWireEndpointUnresolved, models.KindWire, w.ID, detail,
					"wire %s end %s: %s has no node in the network", name, end, ep)
			}
		}
	}
}

func slotCount(scope *models.Scope, ep models.WireEndpoint) (int, bool) {
	switch ep.Kind {
	case models.EndpointConnectorCavity:
		conn, ok := scope.Connectors[ep.ConnectorID]
		return conn.CavityCount, ok
	case models.EndpointSplicePort:
		sp, ok := scope.Splices[ep.SpliceID]
		return sp.PortCount, ok
	}
	return 0, false
}

func checkSlotConflicts(c *collector, scope *models.Scope) {
	for _, conflict := range occupancy.Conflicts(scope) {
		holders := make([]string, 0, len(conflict.Occupants))
		for _, o := range conflict.Occupants {
			holders = append(holders, o.String())
		}
		kind := models.KindConnector
		if conflict.Target.Kind == models.EndpointSplicePort {
			kind = models.KindSplice
		}
		c.add(CategorySlotConflict, kind, conflict.Target.EntityID(), fmt.Sprint(conflict.Target.Index()),
			"%s is held by %s", conflict.Target, strings.Join(holders, ", "))
	}
}

func checkRoutes(c *collector, scope *models.Scope, graph *routing.GraphIndex) {
	var components map[string]int
	for _, w := range scope.WireList() {
		name := wireName(w)
		start, end, err := routing.WireNodes(scope, w)
		if err == nil {
			switch {
			case w.IsRouteLocked && !routing.RouteIsValid(scope, w):
				c.add(CategoryWireRouteStale, models.KindWire, w.ID, "",
					"wire %s has a locked route that no longer joins %s and %s", name, start, end)
			case len(w.RouteSegmentIDs) > 0 && !routing.RouteIsValid(scope, w):
				c.add(CategoryWireRouteStale, models.KindWire, w.ID, "",
					"wire %s has a stored route that no longer joins %s and %s", name, start, end)
			case !w.IsRouteLocked && start != end && len(w.RouteSegmentIDs) == 0:
				if components == nil {
					components = routing.ComponentIndex(graph)
				}
				reason := "no path was found"
				if components[start] != components[end] {
					reason = "endpoints lie in disconnected parts of the network"
				}
				c.add(CategoryWireRouteMissing, models.KindWire, w.ID, "",
					"wire %s has no route between %s and %s: %s", name, start, end, reason)
			}
		}

		if expected := routing.RouteLength(scope, w.RouteSegmentIDs); math.Abs(expected-w.LengthMm) > lengthTolerance {
			c.add(CategoryWireLengthMismatch, models.KindWire, w.ID, "",
				"wire %s length %g mm differs from its route length %g mm", name, w.LengthMm, expected)
		}
	}
}

func wireName(w models.Wire) string {
	if w.TechnicalID != "" {
		return w.TechnicalID
	}
	return w.ID
}
