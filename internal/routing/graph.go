// Package routing derives the routing graph from segments and resolves wire
// routes over it, either by shortest path or by validating a forced path.
package routing

import (
	"sort"

	"github.com/wirescope/core/internal/models"
)

type Edge struct {
	NeighborNodeID string  `json:"neighbor_node_id"`
	SegmentID      string  `json:"segment_id"`
	Weight         float64 `json:"weight"`
}

// GraphIndex is the adjacency view of one scope. It is derived, never stored.
type GraphIndex struct {
	NodeIDs       []string          `json:"node_ids"`
	EdgesByNodeID map[string][]Edge `json:"edges_by_node_id"`
}

func (g *GraphIndex) HasNode(id string) bool {
	_, ok := g.EdgesByNodeID[id]
	return ok
}

func (g *GraphIndex) Edges(nodeID string) []Edge {
	return g.EdgesByNodeID[nodeID]
}

// BuildGraph adds one bidirectional edge per segment, weighted by its length.
// Self loops and negative lengths never shorten a route and are left out;
// the validation engine reports them. Edges per node are ordered by segment
// id so shortest-path tie-breaks are reproducible.
func BuildGraph(nodes []models.Node, segments []models.Segment) *GraphIndex {
	graph := &GraphIndex{
		NodeIDs:       []string{},
		EdgesByNodeID: make(map[string][]Edge),
	}

	addNode := func(id string) {
		if id == "" {
			return
		}
		if _, exists := graph.EdgesByNodeID[id]; exists {
			return
		}
		graph.EdgesByNodeID[id] = []Edge{}
		graph.NodeIDs = append(graph.NodeIDs, id)
	}

	for _, node := range nodes {
		addNode(node.ID)
	}

	for _, seg := range segments {
		addNode(seg.NodeA)
		addNode(seg.NodeB)

		if seg.NodeA == "" || seg.NodeB == "" || seg.NodeA == seg.NodeB || seg.LengthMm < 0 {
			continue
		}

		graph.EdgesByNodeID[seg.NodeA] = append(graph.EdgesByNodeID[seg.NodeA], Edge{
			NeighborNodeID: seg.NodeB,
			SegmentID:      seg.ID,
			Weight:         seg.LengthMm,
		})
		graph.EdgesByNodeID[seg.NodeB] = append(graph.EdgesByNodeID[seg.NodeB], Edge{
			NeighborNodeID: seg.NodeA,
			SegmentID:      seg.ID,
			Weight:         seg.LengthMm,
		})
	}

	sort.Strings(graph.NodeIDs)
	for id, edges := range graph.EdgesByNodeID {
		sort.SliceStable(edges, func(i, j int) bool {
			return edges[i].SegmentID < edges[j].SegmentID
		})
		graph.EdgesByNodeID[id] = edges
	}

	return graph
}

// BuildScopeGraph is BuildGraph over a scope's collections.
func BuildScopeGraph(scope *models.Scope) *GraphIndex {
	return BuildGraph(scope.NodeList(), scope.SegmentList())
}
