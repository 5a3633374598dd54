package routing

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/wirescope/core/internal/models"
)

// epsilon absorbs float rounding when comparing summed lengths.
const epsilon = 1e-9

// Route is the outcome of resolving a wire.
type Route struct {
	SegmentIDs []string `json:"segment_ids"`
	LengthMm   float64  `json:"length_mm"`
	Found      bool     `json:"found"`
}

// EndpointNode resolves a wire endpoint to the node representing its
// connector or splice.
func EndpointNode(scope *models.Scope, ep models.WireEndpoint) (string, error) {
	var (
		node models.Node
		ok   bool
	)
	switch ep.Kind {
	case models.EndpointConnectorCavity:
		node, ok = scope.RepresentingNode(models.NodeKindConnector, ep.ConnectorID)
	case models.EndpointSplicePort:
		node, ok = scope.RepresentingNode(models.NodeKindSplice, ep.SpliceID)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedEndpoint, ep)
	}
	return node.ID, nil
}

// WireNodes resolves both endpoints of a wire.
func WireNodes(scope *models.Scope, wire models.Wire) (string, string, error) {
	start, err := EndpointNode(scope, wire.EndpointA)
	if err != nil {
		return "", "", err
	}
	end, err := EndpointNode(scope, wire.EndpointB)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

// ShortestPath returns the minimum-length segment path between two nodes.
// Among equal-length paths it returns the one whose segment id sequence sorts
// first. ok is false when the nodes are not connected.
func ShortestPath(graph *GraphIndex, from, to string) (Route, bool) {
	if !graph.HasNode(from) || !graph.HasNode(to) {
		return Route{SegmentIDs: []string{}}, false
	}
	if from == to {
		return Route{SegmentIDs: []string{}, Found: true}, true
	}

	fromStart := dijkstra(graph, from)
	total, reachable := fromStart[to]
	if !reachable {
		return Route{SegmentIDs: []string{}}, false
	}
	toEnd := dijkstra(graph, to)

	path := smallestShortestPath(graph, from, to, total, toEnd)
	return Route{SegmentIDs: path, LengthMm: total, Found: true}, true
}

func dijkstra(graph *GraphIndex, source string) map[string]float64 {
	dist := map[string]float64{source: 0}
	settled := map[string]bool{}

	pq := &distQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &distItem{node: source, dist: 0, seq: seq})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*distItem)
		if settled[item.node] {
			continue
		}
		settled[item.node] = true

		for _, e := range graph.Edges(item.node) {
			if settled[e.NeighborNodeID] {
				continue
			}
			candidate := item.dist + e.Weight
			current, seen := dist[e.NeighborNodeID]
			if !seen || candidate < current-epsilon {
				dist[e.NeighborNodeID] = candidate
				seq++
				heap.Push(pq, &distItem{node: e.NeighborNodeID, dist: candidate, seq: seq})
			}
		}
	}
	return dist
}

// smallestShortestPath searches depth first from start over edges that keep
// the walked length plus the remaining distance equal to total. Edges are
// sorted by segment id, so the first simple path reaching end has the
// smallest id sequence. Zero-length segments can lead into dead ends or
// loops on that subgraph; the search backs out of those.
func smallestShortestPath(graph *GraphIndex, from, to string, total float64, toEnd map[string]float64) []string {
	path := []string{}
	onPath := map[string]bool{from: true}

	var walk func(node string, walked float64) bool
	walk = func(node string, walked float64) bool {
		if node == to {
			return true
		}
		for _, e := range graph.Edges(node) {
			next := e.NeighborNodeID
			if onPath[next] {
				continue
			}
			remaining, ok := toEnd[next]
			if !ok || math.Abs(walked+e.Weight+remaining-total) > epsilon {
				continue
			}
			onPath[next] = true
			path = append(path, e.SegmentID)
			if walk(next, walked+e.Weight) {
				return true
			}
			path = path[:len(path)-1]
			onPath[next] = false
		}
		return false
	}
	walk(from, 0)
	return path
}

// AutoRoute computes the shortest route of a wire. A missing path is not an
// error: the route comes back empty with Found=false.
func AutoRoute(scope *models.Scope, graph *GraphIndex, wire models.Wire) (Route, error) {
	start, end, err := WireNodes(scope, wire)
	if err != nil {
		return Route{SegmentIDs: []string{}}, err
	}
	route, _ := ShortestPath(graph, start, end)
	return route, nil
}

// ForcedRoute checks an explicit segment chain for a wire. The chain may be
// given from either end; it is stored oriented from endpoint A.
func ForcedRoute(scope *models.Scope, wire models.Wire, segmentIDs []string) (Route, error) {
	start, end, err := WireNodes(scope, wire)
	if err != nil {
		return Route{}, &RouteError{WireID: wire.ID, Err: err}
	}

	length := 0.0
	for _, id := range segmentIDs {
		seg, ok := scope.Segments[id]
		if !ok {
			return Route{}, &RouteError{WireID: wire.ID, Detail: id, Err: ErrUnknownSegment}
		}
		length += seg.LengthMm
	}

	if len(segmentIDs) == 0 {
		if start == end {
			return Route{SegmentIDs: []string{}, Found: true}, nil
		}
		return Route{}, &RouteError{WireID: wire.ID, Err: ErrEmptyRoute}
	}

	tail, err := walkChain(scope, start, segmentIDs)
	if err == nil && tail == end {
		return Route{SegmentIDs: append([]string{}, segmentIDs...), LengthMm: length, Found: true}, nil
	}

	reversed := make([]string, len(segmentIDs))
	for i, id := range segmentIDs {
		reversed[len(segmentIDs)-1-i] = id
	}
	tailRev, errRev := walkChain(scope, start, reversed)
	if errRev == nil && tailRev == end {
		return Route{SegmentIDs: reversed, LengthMm: length, Found: true}, nil
	}

	if err != nil && errRev != nil {
		if broken := chainBreak(scope, segmentIDs); broken != "" {
			return Route{}, &RouteError{WireID: wire.ID, Detail: broken, Err: ErrBrokenChain}
		}
	}
	return Route{}, &RouteError{
		WireID: wire.ID,
		Detail: fmt.Sprintf("expected chain between %s and %s", start, end),
		Err:    ErrEndpointMismatch,
	}
}

// walkChain follows segments from a starting node and returns the node the
// chain ends on.
func walkChain(scope *models.Scope, from string, segmentIDs []string) (string, error) {
	current := from
	for _, id := range segmentIDs {
		next := scope.Segments[id].Other(current)
		if next == "" {
			return "", ErrBrokenChain
		}
		current = next
	}
	return current, nil
}

// chainBreak names the first consecutive pair sharing no node, if any.
func chainBreak(scope *models.Scope, segmentIDs []string) string {
	for i := 1; i < len(segmentIDs); i++ {
		a := scope.Segments[segmentIDs[i-1]]
		b := scope.Segments[segmentIDs[i]]
		if !a.Touches(b.NodeA) && !a.Touches(b.NodeB) {
			return fmt.Sprintf("%s and %s share no node", a.ID, b.ID)
		}
	}
	return ""
}

// RouteLength sums the lengths of the segments that still exist.
func RouteLength(scope *models.Scope, segmentIDs []string) float64 {
	total := 0.0
	for _, id := range segmentIDs {
		if seg, ok := scope.Segments[id]; ok {
			total += seg.LengthMm
		}
	}
	return total
}

// RouteIsValid reports whether a stored route is still a contiguous chain
// between the wire's resolved endpoint nodes.
func RouteIsValid(scope *models.Scope, wire models.Wire) bool {
	_, err := ForcedRoute(scope, wire, wire.RouteSegmentIDs)
	return err == nil
}

// Reroute refreshes the stored route of one wire. Auto wires get a fresh
// shortest path; locked wires keep their stored route and only have their
// length recomputed.
func Reroute(scope *models.Scope, graph *GraphIndex, wire models.Wire) models.Wire {
	if wire.IsRouteLocked {
		wire.LengthMm = RouteLength(scope, wire.RouteSegmentIDs)
		if wire.RouteSegmentIDs == nil {
			wire.RouteSegmentIDs = []string{}
		}
		return wire
	}
	route, err := AutoRoute(scope, graph, wire)
	if err != nil || !route.Found {
		wire.RouteSegmentIDs = []string{}
		wire.LengthMm = 0
		return wire
	}
	wire.RouteSegmentIDs = route.SegmentIDs
	wire.LengthMm = route.LengthMm
	return wire
}

// RerouteAll refreshes every wire in the scope against one graph build.
func RerouteAll(scope *models.Scope) {
	graph := BuildScopeGraph(scope)
	for _, id := range scope.WireOrder {
		wire, ok := scope.Wires[id]
		if !ok {
			continue
		}
		scope.Wires[id] = Reroute(scope, graph, wire)
	}
}

type distItem struct {
	node  string
	dist  float64
	seq   int
	index int
}

// distQueue is a min-heap on distance; seq keeps equal distances in push
// order so runs are reproducible.
type distQueue []*distItem

func (pq distQueue) Len() int { return len(pq) }
func (pq distQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}
func (pq distQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *distQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*distItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *distQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
