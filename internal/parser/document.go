// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wirescope/core/internal/models"
)

// ParseDocument decodes an exported workspace document. It checks shape only;
// integrity problems inside a well-formed document are left to validation.
func ParseDocument(data []byte) (*models.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document data")
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	if doc.Networks == nil {
		return nil, fmt.Errorf("invalid document: missing networks field")
	}

	seen := make(map[string]bool, len(doc.Networks))
	for i, n := range doc.Networks {
		if n.ID == "" {
			return nil, fmt.Errorf("invalid document: network %d has no id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("invalid document: duplicate network id %q", n.ID)
		}
		seen[n.ID] = true
	}

	for id := range doc.Scopes {
		if !seen[id] {
			return nil, fmt.Errorf("invalid document: scope %q has no network", id)
		}
	}

	if doc.ActiveNetworkID != "" && !seen[doc.ActiveNetworkID] {
		return nil, fmt.Errorf("invalid document: active network %q not found", doc.ActiveNetworkID)
	}

	doc.Normalize()
	return &doc, nil
}

// ParseRouteList splits a comma-separated segment identifier list as typed
// for a forced route.
func ParseRouteList(input string) ([]string, error) {
	ids := []string{}
	if strings.TrimSpace(input) == "" {
		return ids, nil
	}

	seen := make(map[string]bool)
	for i, part := range strings.Split(input, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			return nil, fmt.Errorf("invalid route: empty identifier at position %d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("invalid route: segment %q listed twice", id)
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}
