package routing

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Components partitions the graph's nodes into connected components. Each
// component is sorted, and components are ordered by their first node id.
func Components(graph *GraphIndex) [][]string {
	g := simple.NewUndirectedGraph()
	ids := make(map[string]int64, len(graph.NodeIDs))
	names := make(map[int64]string, len(graph.NodeIDs))
	for i, id := range graph.NodeIDs {
		ids[id] = int64(i)
		names[int64(i)] = id
		g.AddNode(simple.Node(i))
	}

	for _, id := range graph.NodeIDs {
		for _, e := range graph.Edges(id) {
			from, to := ids[id], ids[e.NeighborNodeID]
			if from == to || g.HasEdgeBetween(from, to) {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}

	var out [][]string
	for _, component := range topo.ConnectedComponents(g) {
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, names[n.ID()])
		}
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][0] < out[j][0]
	})
	return out
}

// ComponentIndex maps each node id to the position of its component in
// Components' result.
func ComponentIndex(graph *GraphIndex) map[string]int {
	index := make(map[string]int, len(graph.NodeIDs))
	for i, members := range Components(graph) {
		for _, id := range members {
			index[id] = i
		}
	}
	return index
}
