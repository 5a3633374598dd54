package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/routing"
)

// lineDocument is a clean workspace: connectors CA and CC on nodes A and C
// joined through B, with one auto-routed wire.
func lineDocument() *models.Document {
	doc := models.NewDocument()
	doc.Networks = []models.Network{{ID: "net-1", Name: "Main", TechnicalID: "NET-1"}}
	doc.ActiveNetworkID = "net-1"
	scope := models.NewScope()
	scope.Connectors["CA"] = models.Connector{ID: "CA", Name: "Left", TechnicalID: "X1", CavityCount: 4}
	scope.Connectors["CC"] = models.Connector{ID: "CC", Name: "Right", TechnicalID: "X2", CavityCount: 4}
	scope.Nodes["A"] = models.Node{ID: "A", Kind: models.NodeKindConnector, ConnectorID: "CA"}
	scope.Nodes["B"] = models.Node{ID: "B", Kind: models.NodeKindIntermediate}
	scope.Nodes["C"] = models.Node{ID: "C", Kind: models.NodeKindConnector, ConnectorID: "CC"}
	scope.Segments["S-AB"] = models.Segment{ID: "S-AB", NodeA: "A", NodeB: "B", LengthMm: 10}
	scope.Segments["S-BC"] = models.Segment{ID: "S-BC", NodeA: "B", NodeB: "C", LengthMm: 5}
	scope.Wires["W1"] = models.Wire{
		ID: "W1", Name: "Feed", TechnicalID: "W1", SectionMm2: 1,
		EndpointA:       models.CavityEndpoint("CA", 1),
		EndpointB:       models.CavityEndpoint("CC", 1),
		RouteSegmentIDs: []string{"S-AB", "S-BC"},
		LengthMm:        15,
	}
	doc.Scopes["net-1"] = scope
	doc.Normalize()
	return doc
}

func categories(issues []Issue) []Category {
	out := []Category{}
	for _, issue := range issues {
		out = append(out, issue.Category)
	}
	return out
}

func TestValidate(t *testing.T) {
	t.Run("clean document has no issues", func(t *testing.T) {
		issues := Validate(lineDocument(), nil)

		assert.NotNil(t, issues)
		assert.Empty(t, issues)
	})

	t.Run("nil document and empty workspace", func(t *testing.T) {
		assert.Empty(t, Validate(nil, nil))
		assert.Empty(t, Validate(models.NewDocument(), nil))
	})

	tests := []struct {
		name     string
		mutate   func(doc *models.Document, scope *models.Scope)
		category Category
		selected string
	}{
		{
			name: "duplicate connector technical id",
			mutate: func(_ *models.Document, s *models.Scope) {
				c := s.Connectors["CC"]
				c.TechnicalID = "X1"
				s.Connectors["CC"] = c
			},
			category: CategoryDuplicateTechnicalID,
			selected: "CA",
		},
		{
			name: "duplicate network technical id",
			mutate: func(d *models.Document, _ *models.Scope) {
				d.Networks = append(d.Networks, models.Network{ID: "net-2", Name: "Copy", TechnicalID: "NET-1"})
			},
			category: CategoryDuplicateTechnicalID,
			selected: "net-1",
		},
		{
			name: "segment with missing node",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Segments["S-BX"] = models.Segment{ID: "S-BX", NodeA: "B", NodeB: "X", LengthMm: 1}
			},
			category: CategorySegmentMissingNode,
			selected: "S-BX",
		},
		{
			name: "self loop",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Segments["S-BB"] = models.Segment{ID: "S-BB", NodeA: "B", NodeB: "B", LengthMm: 1}
			},
			category: CategorySegmentSelfLoop,
			selected: "S-BB",
		},
		{
			name: "duplicate node pair",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Segments["S-BA"] = models.Segment{ID: "S-BA", NodeA: "B", NodeB: "A", LengthMm: 30}
			},
			category: CategorySegmentDuplicatePair,
			selected: "S-BA",
		},
		{
			name: "negative length",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Nodes["D"] = models.Node{ID: "D", Kind: models.NodeKindIntermediate}
				s.Segments["S-CD"] = models.Segment{ID: "S-CD", NodeA: "C", NodeB: "D", LengthMm: -2}
			},
			category: CategorySegmentNegativeLength,
			selected: "S-CD",
		},
		{
			name: "wire endpoint on missing connector",
			mutate: func(_ *models.Document, s *models.Scope) {
				w := s.Wires["W1"]
				w.EndpointB = models.CavityEndpoint("ghost", 1)
				s.Wires["W1"] = w
			},
			category: CategoryWireEndpointMissingEntity,
			selected: "W1",
		},
		{
			name: "wire endpoint out of range",
			mutate: func(_ *models.Document, s *models.Scope) {
				w := s.Wires["W1"]
				w.EndpointB = models.CavityEndpoint("CC", 9)
				s.Wires["W1"] = w
			},
			category: CategoryWireEndpointOutOfRange,
			selected: "W1",
		},
		{
			name: "released endpoint",
			mutate: func(_ *models.Document, s *models.Scope) {
				w := s.Wires["W1"]
				w.EndpointB = models.WireEndpoint{}
				w.RouteSegmentIDs, w.LengthMm = []string{}, 0
				s.Wires["W1"] = w
			},
			category: CategoryWireEndpointUnassigned,
			selected: "W1",
		},
		{
			name: "connector without node",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Connectors["CZ"] = models.Connector{ID: "CZ", Name: "Loose", TechnicalID: "X9", CavityCount: 1}
				s.Wires["W2"] = models.Wire{
					ID: "W2", Name: "Loose", TechnicalID: "W2", SectionMm2: 1,
					EndpointA:       models.CavityEndpoint("CA", 2),
					EndpointB:       models.CavityEndpoint("CZ", 1),
					RouteSegmentIDs: []string{},
				}
			},
			category: CategoryWireEndpointUnresolved,
			selected: "W2",
		},
		{
			name: "node with missing connector",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Nodes["D"] = models.Node{ID: "D", Kind: models.NodeKindConnector, ConnectorID: "ghost"}
				s.Segments["S-CD"] = models.Segment{ID: "S-CD", NodeA: "C", NodeB: "D", LengthMm: 2}
			},
			category: CategoryNodeMissingEntity,
			selected: "D",
		},
		{
			name: "orphan intermediate node",
			mutate: func(_ *models.Document, s *models.Scope) {
				s.Nodes["J"] = models.Node{ID: "J", Kind: models.NodeKindIntermediate}
			},
			category: CategoryNodeOrphan,
			selected: "J",
		},
		{
			name: "stale locked route",
			mutate: func(_ *models.Document, s *models.Scope) {
				w := s.Wires["W1"]
				w.IsRouteLocked = true
				w.RouteSegmentIDs = []string{"S-AB"}
				w.LengthMm = 10
				s.Wires["W1"] = w
			},
			category: CategoryWireRouteStale,
			selected: "W1",
		},
		{
			name: "stored length disagrees with route",
			mutate: func(_ *models.Document, s *models.Scope) {
				w := s.Wires["W1"]
				w.LengthMm = 99
				s.Wires["W1"] = w
			},
			category: CategoryWireLengthMismatch,
			selected: "W1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := lineDocument()
			tt.mutate(doc, doc.ActiveScope())
			doc.Normalize()

			issues := FilterByCategory(Validate(doc, nil), tt.category)

			require.NotEmpty(t, issues)
			assert.Equal(t, tt.selected, issues[0].SelectionID)
			assert.Equal(t, SeverityOf(tt.category), issues[0].Severity)
			assert.NotEmpty(t, issues[0].Message)
		})
	}

	t.Run("missing auto route explains disconnection", func(t *testing.T) {
		doc := lineDocument()
		scope := doc.ActiveScope()
		delete(scope.Segments, "S-BC")
		w := scope.Wires["W1"]
		w.RouteSegmentIDs, w.LengthMm = []string{}, 0
		scope.Wires["W1"] = w
		doc.Normalize()

		issues := FilterByCategory(Validate(doc, nil), CategoryWireRouteMissing)

		require.Len(t, issues, 1)
		assert.Equal(t, SeverityWarning, issues[0].Severity)
		assert.Contains(t, issues[0].Message, "disconnected")
	})

	t.Run("broken auto route is stale", func(t *testing.T) {
		tests := []struct {
			name  string
			route []string
		}{
			{"unknown segment", []string{"GHOST"}},
			{"chain stops short", []string{"S-AB"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				doc := lineDocument()
				scope := doc.ActiveScope()
				w := scope.Wires["W1"]
				w.RouteSegmentIDs = tt.route
				w.LengthMm = routing.RouteLength(scope, tt.route)
				scope.Wires["W1"] = w
				doc.Normalize()

				issues := FilterByCategory(Validate(doc, nil), CategoryWireRouteStale)

				require.Len(t, issues, 1)
				assert.Equal(t, "W1", issues[0].SelectionID)
				assert.Equal(t, SeverityError, issues[0].Severity)
				assert.Contains(t, issues[0].Message, "stored route")
			})
		}
	})

	t.Run("slot conflict is reported once per slot", func(t *testing.T) {
		doc := lineDocument()
		scope := doc.ActiveScope()
		scope.Wires["W2"] = models.Wire{
			ID: "W2", Name: "Twin", TechnicalID: "W2", SectionMm2: 1,
			EndpointA:       models.CavityEndpoint("CA", 1),
			EndpointB:       models.CavityEndpoint("CC", 2),
			RouteSegmentIDs: []string{"S-AB", "S-BC"},
			LengthMm:        15,
		}
		doc.Normalize()

		issues := FilterByCategory(Validate(doc, nil), CategorySlotConflict)

		require.Len(t, issues, 1)
		assert.Equal(t, models.KindConnector, issues[0].SelectionKind)
		assert.Equal(t, "CA", issues[0].SelectionID)
		assert.Contains(t, issues[0].Message, "W1:A")
		assert.Contains(t, issues[0].Message, "W2:A")
	})

	t.Run("issues are ordered errors first", func(t *testing.T) {
		doc := lineDocument()
		scope := doc.ActiveScope()
		scope.Nodes["J"] = models.Node{ID: "J", Kind: models.NodeKindIntermediate}
		scope.Segments["S-BB"] = models.Segment{ID: "S-BB", NodeA: "B", NodeB: "B", LengthMm: 1}
		scope.Nodes["K"] = models.Node{ID: "K", Kind: models.NodeKindIntermediate}
		doc.Normalize()

		issues := Validate(doc, nil)

		assert.Equal(t, []Category{CategorySegmentSelfLoop, CategoryNodeOrphan, CategoryNodeOrphan}, categories(issues))
		assert.Equal(t, "J", issues[1].SelectionID)
		assert.Equal(t, "K", issues[2].SelectionID)
	})

	t.Run("ids are stable across derivations", func(t *testing.T) {
		doc := lineDocument()
		doc.ActiveScope().Nodes["J"] = models.Node{ID: "J", Kind: models.NodeKindIntermediate}
		doc.Normalize()

		assert.Equal(t, Validate(doc, nil), Validate(doc.Clone(), nil))
	})
}

func TestConsumers(t *testing.T) {
	issues := []Issue{
		{ID: "1", Category: CategorySegmentSelfLoop, Severity: SeverityError},
		{ID: "2", Category: CategoryNodeOrphan, Severity: SeverityWarning},
		{ID: "3", Category: CategoryNodeOrphan, Severity: SeverityWarning},
		{ID: "4", Category: CategoryDuplicateTechnicalID, Severity: SeverityError},
	}

	t.Run("filter by severity", func(t *testing.T) {
		got := FilterBySeverity(issues, SeverityError)

		assert.Len(t, got, 2)
		assert.Empty(t, FilterBySeverity(nil, SeverityError))
	})

	t.Run("group by category", func(t *testing.T) {
		groups := GroupByCategory(issues)

		require.Len(t, groups, 3)
		assert.Equal(t, CategoryDuplicateTechnicalID, groups[0].Category)
		assert.Equal(t, CategoryNodeOrphan, groups[1].Category)
		assert.Equal(t, SeverityWarning, groups[1].Severity)
		assert.Len(t, groups[1].Issues, 2)
		assert.Equal(t, "2", groups[1].Issues[0].ID)
	})

	t.Run("summary", func(t *testing.T) {
		s := Summarize(issues)

		assert.Equal(t, 4, s.Total)
		assert.Equal(t, 2, s.Errors)
		assert.Equal(t, 2, s.Warnings)
		assert.Equal(t, 2, s.ByCategory[CategoryNodeOrphan])
	})
}

func TestCursor(t *testing.T) {
	issues := []Issue{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	t.Run("next wraps at the end", func(t *testing.T) {
		c := NewCursor(issues)

		var seen []string
		for i := 0; i < 4; i++ {
			issue, ok := c.Next()
			require.True(t, ok)
			seen = append(seen, issue.ID)
		}

		assert.Equal(t, []string{"a", "b", "c", "a"}, seen)
	})

	t.Run("previous wraps at the start", func(t *testing.T) {
		c := NewCursor(issues)

		first, _ := c.Previous()
		second, _ := c.Previous()

		assert.Equal(t, "c", first.ID)
		assert.Equal(t, "b", second.ID)
	})

	t.Run("empty list never moves", func(t *testing.T) {
		c := NewCursor(nil)

		_, ok := c.Next()
		assert.False(t, ok)
		_, ok = c.Previous()
		assert.False(t, ok)
		_, ok = c.Current()
		assert.False(t, ok)
	})

	t.Run("sync keeps the same issue", func(t *testing.T) {
		c := NewCursor(issues)
		c.Next()
		c.Next()

		c.Sync([]Issue{{ID: "z"}, {ID: "b"}})

		current, ok := c.Current()
		require.True(t, ok)
		assert.Equal(t, "b", current.ID)
	})

	t.Run("sync clamps when the issue disappeared", func(t *testing.T) {
		c := NewCursor(issues)
		c.Previous()

		c.Sync([]Issue{{ID: "a"}})

		current, ok := c.Current()
		require.True(t, ok)
		assert.Equal(t, "a", current.ID)
	})

	t.Run("sync to empty clears the position", func(t *testing.T) {
		c := NewCursor(issues)
		c.Next()

		c.Sync(nil)

		_, ok := c.Current()
		assert.False(t, ok)
		_, ok = c.Next()
		assert.False(t, ok)
	})
}
