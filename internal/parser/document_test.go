// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirescope/core/internal/models"
)

func TestParseDocument_Valid(t *testing.T) {
	input := []byte(`{
		"networks": [{"id": "net-1", "name": "Main", "technical_id": "NET-1"}],
		"active_network_id": "net-1",
		"scopes": {
			"net-1": {
				"connectors": {"c1": {"id": "c1", "name": "ECU", "technical_id": "X1", "cavity_count": 4}},
				"wires": {
					"w1": {
						"id": "w1",
						"technical_id": "W1",
						"endpoint_a": {"kind": "connector_cavity", "connector_id": "c1", "cavity_index": 2}
					}
				}
			}
		}
	}`)

	doc, err := ParseDocument(input)

	require.NoError(t, err)
	assert.Equal(t, "net-1", doc.ActiveNetworkID)
	scope := doc.ActiveScope()
	require.NotNil(t, scope)
	assert.Equal(t, []string{"c1"}, scope.ConnectorOrder)
	assert.Equal(t, models.CavityEndpoint("c1", 2), scope.Wires["w1"].EndpointA)
	assert.NotNil(t, scope.Wires["w1"].RouteSegmentIDs)
	assert.NotNil(t, scope.Nodes)
	assert.NotNil(t, doc.Preferences)
}

func TestParseDocument_NetworkWithoutScope(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"networks": [{"id": "a"}, {"id": "b"}]}`))

	require.NoError(t, err)
	assert.Len(t, doc.Scopes, 2)
	assert.Nil(t, doc.ActiveScope())
}

func TestParseDocument_Empty(t *testing.T) {
	_, err := ParseDocument([]byte{})

	assert.Error(t, err)
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument([]byte(`{"networks": [`))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

func TestParseDocument_MissingNetworks(t *testing.T) {
	_, err := ParseDocument([]byte(`{"active_network_id": ""}`))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing networks")
}

func TestParseDocument_InvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"network without id", `{"networks": [{"name": "x"}]}`, "has no id"},
		{"duplicate network", `{"networks": [{"id": "a"}, {"id": "a"}]}`, "duplicate network"},
		{"orphan scope", `{"networks": [{"id": "a"}], "scopes": {"b": {}}}`, "has no network"},
		{"unknown active network", `{"networks": [{"id": "a"}], "active_network_id": "z"}`, "active network"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.input))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRouteList(t *testing.T) {
	t.Run("trims identifiers", func(t *testing.T) {
		ids, err := ParseRouteList(" S1, S2 ,S3")

		require.NoError(t, err)
		assert.Equal(t, []string{"S1", "S2", "S3"}, ids)
	})

	t.Run("blank input is an empty route", func(t *testing.T) {
		ids, err := ParseRouteList("   ")

		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})

	t.Run("empty identifier", func(t *testing.T) {
		_, err := ParseRouteList("S1,,S2")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "position 2")
	})

	t.Run("repeated segment", func(t *testing.T) {
		_, err := ParseRouteList("S1,S2,S1")

		assert.Error(t, err)
	})
}
