package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentNormalize(t *testing.T) {
	t.Run("fills nil collections", func(t *testing.T) {
		doc := &Document{Networks: []Network{{ID: "net-1"}}}

		doc.Normalize()

		assert.NotNil(t, doc.Preferences)
		require.NotNil(t, doc.Scopes["net-1"])
		assert.NotNil(t, doc.Scopes["net-1"].Wires)
		assert.NotNil(t, doc.Scopes["net-1"].NodePositions)
	})

	t.Run("reconciles order lists", func(t *testing.T) {
		scope := &Scope{
			Connectors: map[string]Connector{
				"c2": {ID: "c2"},
				"c1": {ID: "c1"},
				"c3": {ID: "c3"},
			},
			ConnectorOrder: []string{"c3", "gone", "c3"},
		}

		scope.Normalize()

		assert.Equal(t, []string{"c3", "c1", "c2"}, scope.ConnectorOrder)
	})

	t.Run("nil routes become empty", func(t *testing.T) {
		scope := &Scope{Wires: map[string]Wire{"w1": {ID: "w1"}}}

		scope.Normalize()

		assert.NotNil(t, scope.Wires["w1"].RouteSegmentIDs)
		assert.Empty(t, scope.Wires["w1"].RouteSegmentIDs)
	})

	t.Run("json round trip preserves a normalized document", func(t *testing.T) {
		doc := NewDocument()
		doc.Networks = []Network{{ID: "net-1", Name: "Main", TechnicalID: "NET-1"}}
		doc.ActiveNetworkID = "net-1"
		doc.Normalize()
		doc.Scopes["net-1"].Wires["w1"] = Wire{ID: "w1", EndpointA: CavityEndpoint("c1", 2), RouteSegmentIDs: []string{}}
		doc.Scopes["net-1"].Normalize()

		data, err := json.Marshal(doc)
		require.NoError(t, err)
		var back Document
		require.NoError(t, json.Unmarshal(data, &back))
		back.Normalize()

		assert.Equal(t, doc, &back)
	})
}

func TestDocumentClone(t *testing.T) {
	doc := NewDocument()
	doc.Networks = []Network{{ID: "net-1", TechnicalID: "NET-1"}}
	doc.ActiveNetworkID = "net-1"
	doc.Normalize()
	scope := doc.ActiveScope()
	scope.Wires["w1"] = Wire{ID: "w1", RouteSegmentIDs: []string{"s1"}}
	scope.Normalize()

	clone := doc.Clone()
	clone.Networks[0].TechnicalID = "CHANGED"
	w := clone.ActiveScope().Wires["w1"]
	w.RouteSegmentIDs[0] = "s9"
	clone.ActiveScope().Wires["w1"] = w
	clone.Preferences["theme"] = "dark"

	assert.Equal(t, "NET-1", doc.Networks[0].TechnicalID)
	assert.Equal(t, []string{"s1"}, scope.Wires["w1"].RouteSegmentIDs)
	assert.Empty(t, doc.Preferences)
	assert.Nil(t, (*Document)(nil).Clone())
}

func TestScopeQueries(t *testing.T) {
	scope := NewScope()
	scope.Nodes["n2"] = Node{ID: "n2", Kind: NodeKindSplice, SpliceID: "sp1"}
	scope.Nodes["n1"] = Node{ID: "n1", Kind: NodeKindConnector, ConnectorID: "c1"}
	scope.Nodes["n3"] = Node{ID: "n3", Kind: NodeKindIntermediate}
	scope.NodeOrder = []string{"n2", "n1", "n3"}
	scope.Segments["s2"] = Segment{ID: "s2", NodeA: "n3", NodeB: "n1"}
	scope.Segments["s1"] = Segment{ID: "s1", NodeA: "n1", NodeB: "n2"}
	scope.SegmentOrder = []string{"s2", "s1"}
	scope.Normalize()

	t.Run("lists follow insertion order", func(t *testing.T) {
		var ids []string
		for _, n := range scope.NodeList() {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []string{"n2", "n1", "n3"}, ids)
	})

	t.Run("representing node", func(t *testing.T) {
		n, ok := scope.RepresentingNode(NodeKindConnector, "c1")
		require.True(t, ok)
		assert.Equal(t, "n1", n.ID)

		n, ok = scope.RepresentingNode(NodeKindSplice, "sp1")
		require.True(t, ok)
		assert.Equal(t, "n2", n.ID)

		_, ok = scope.RepresentingNode(NodeKindConnector, "sp1")
		assert.False(t, ok)
	})

	t.Run("incident segments", func(t *testing.T) {
		segs := scope.IncidentSegments("n1")

		require.Len(t, segs, 2)
		assert.Equal(t, "s2", segs[0].ID)
		assert.Empty(t, scope.IncidentSegments("nope"))
	})

	t.Run("active scope and network lookup", func(t *testing.T) {
		doc := NewDocument()
		assert.Nil(t, doc.ActiveScope())

		doc.Networks = []Network{{ID: "a"}, {ID: "b"}}
		doc.ActiveNetworkID = "b"
		doc.Normalize()

		assert.NotNil(t, doc.ActiveScope())
		_, i, ok := doc.Network("b")
		assert.True(t, ok)
		assert.Equal(t, 1, i)
		_, i, ok = doc.Network("z")
		assert.False(t, ok)
		assert.Equal(t, -1, i)
	})

	t.Run("remove id", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c"}, RemoveID([]string{"a", "b", "c"}, "b"))
		assert.Equal(t, []string{}, RemoveID(nil, "b"))
	})
}
