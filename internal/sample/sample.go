// Package sample loads the bundled demonstration workspace. Every entity goes
// through the store, so the sample obeys the same rules as user edits.
package sample

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/store"
)

//go:embed sample.yaml
var sampleYAML []byte

type workspace struct {
	Network       network                    `yaml:"network"`
	Connectors    []connector                `yaml:"connectors"`
	Splices       []splice                   `yaml:"splices"`
	Nodes         []node                     `yaml:"nodes"`
	Segments      []segment                  `yaml:"segments"`
	Wires         []wire                     `yaml:"wires"`
	NodePositions map[string]models.Position `yaml:"node_positions"`
}

type network struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	TechnicalID string `yaml:"technical_id"`
	Description string `yaml:"description"`
}

type connector struct {
	ID                    string `yaml:"id"`
	Name                  string `yaml:"name"`
	TechnicalID           string `yaml:"technical_id"`
	ManufacturerReference string `yaml:"manufacturer_reference"`
	CavityCount           int    `yaml:"cavity_count"`
}

type splice struct {
	ID                    string `yaml:"id"`
	Name                  string `yaml:"name"`
	TechnicalID           string `yaml:"technical_id"`
	ManufacturerReference string `yaml:"manufacturer_reference"`
	PortCount             int    `yaml:"port_count"`
}

type node struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	ConnectorID string `yaml:"connector_id"`
	SpliceID    string `yaml:"splice_id"`
	Label       string `yaml:"label"`
}

type segment struct {
	ID            string  `yaml:"id"`
	NodeA         string  `yaml:"node_a"`
	NodeB         string  `yaml:"node_b"`
	LengthMm      float64 `yaml:"length_mm"`
	SubNetworkTag string  `yaml:"sub_network_tag"`
}

type color struct {
	Mode      string `yaml:"mode"`
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Label     string `yaml:"label"`
}

type endpoint struct {
	Kind          string `yaml:"kind"`
	ConnectorID   string `yaml:"connector_id"`
	CavityIndex   int    `yaml:"cavity_index"`
	SpliceID      string `yaml:"splice_id"`
	PortIndex     int    `yaml:"port_index"`
	ConnectionRef string `yaml:"connection_ref"`
	SealRef       string `yaml:"seal_ref"`
}

type wire struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	TechnicalID string   `yaml:"technical_id"`
	SectionMm2  float64  `yaml:"section_mm2"`
	Color       color    `yaml:"color"`
	EndpointA   endpoint `yaml:"endpoint_a"`
	EndpointB   endpoint `yaml:"endpoint_b"`
	LockedRoute string   `yaml:"locked_route"`
}

func (e endpoint) model() models.WireEndpoint {
	return models.WireEndpoint{
		Kind:          models.EndpointKind(e.Kind),
		ConnectorID:   e.ConnectorID,
		CavityIndex:   e.CavityIndex,
		SpliceID:      e.SpliceID,
		PortIndex:     e.PortIndex,
		ConnectionRef: e.ConnectionRef,
		SealRef:       e.SealRef,
	}
}

// Document builds a fresh workspace holding only the sample network.
func Document() (*models.Document, error) {
	s := store.Open(models.NewDocument())
	if err := Load(s); err != nil {
		return nil, err
	}
	return s.Document(), nil
}

// Load adds the sample network to s and makes it active.
func Load(s *store.Store) error {
	var ws workspace
	if err := yaml.Unmarshal(sampleYAML, &ws); err != nil {
		return fmt.Errorf("sample: decode: %w", err)
	}

	if _, err := s.CreateNetwork(models.Network{
		ID:          ws.Network.ID,
		Name:        ws.Network.Name,
		TechnicalID: ws.Network.TechnicalID,
		Description: ws.Network.Description,
	}); err != nil {
		return fmt.Errorf("sample: network: %w", err)
	}

	for _, c := range ws.Connectors {
		if _, err := s.CreateConnector(models.Connector{
			ID:                    c.ID,
			Name:                  c.Name,
			TechnicalID:           c.TechnicalID,
			ManufacturerReference: c.ManufacturerReference,
			CavityCount:           c.CavityCount,
		}); err != nil {
			return fmt.Errorf("sample: connector %s: %w", c.ID, err)
		}
	}
	for _, sp := range ws.Splices {
		if _, err := s.CreateSplice(models.Splice{
			ID:                    sp.ID,
			Name:                  sp.Name,
			TechnicalID:           sp.TechnicalID,
			ManufacturerReference: sp.ManufacturerReference,
			PortCount:             sp.PortCount,
		}); err != nil {
			return fmt.Errorf("sample: splice %s: %w", sp.ID, err)
		}
	}
	for _, n := range ws.Nodes {
		if _, err := s.CreateNode(models.Node{
			ID:          n.ID,
			Kind:        models.NodeKind(n.Kind),
			ConnectorID: n.ConnectorID,
			SpliceID:    n.SpliceID,
			Label:       n.Label,
		}); err != nil {
			return fmt.Errorf("sample: node %s: %w", n.ID, err)
		}
	}
	for _, seg := range ws.Segments {
		if _, err := s.CreateSegment(models.Segment{
			ID:            seg.ID,
			NodeA:         seg.NodeA,
			NodeB:         seg.NodeB,
			LengthMm:      seg.LengthMm,
			SubNetworkTag: seg.SubNetworkTag,
		}); err != nil {
			return fmt.Errorf("sample: segment %s: %w", seg.ID, err)
		}
	}
	for _, w := range ws.Wires {
		if _, err := s.CreateWire(models.Wire{
			ID:          w.ID,
			Name:        w.Name,
			TechnicalID: w.TechnicalID,
			SectionMm2:  w.SectionMm2,
			Color: models.WireColor{
				Mode:      models.ColorMode(w.Color.Mode),
				Primary:   w.Color.Primary,
				Secondary: w.Color.Secondary,
				Label:     w.Color.Label,
			},
			EndpointA: w.EndpointA.model(),
			EndpointB: w.EndpointB.model(),
		}); err != nil {
			return fmt.Errorf("sample: wire %s: %w", w.ID, err)
		}
		if w.LockedRoute != "" {
			if _, err := s.SetWireRoute(w.ID, true, w.LockedRoute); err != nil {
				return fmt.Errorf("sample: route of %s: %w", w.ID, err)
			}
		}
	}
	for nodeID, pos := range ws.NodePositions {
		pos := pos
		if err := s.SetNodePosition(nodeID, &pos); err != nil {
			return fmt.Errorf("sample: position of %s: %w", nodeID, err)
		}
	}
	return nil
}
