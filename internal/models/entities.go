package models

import "fmt"

type EntityKind string

const (
	KindNetwork   EntityKind = "network"
	KindConnector EntityKind = "connector"
	KindSplice    EntityKind = "splice"
	KindNode      EntityKind = "node"
	KindSegment   EntityKind = "segment"
	KindWire      EntityKind = "wire"
)

func (k EntityKind) IsValid() bool {
	switch k {
	case KindNetwork, KindConnector, KindSplice, KindNode, KindSegment, KindWire:
		return true
	}
	return false
}

type Network struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TechnicalID string `json:"technical_id"`
	Description string `json:"description,omitempty"`
}

type Connector struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	TechnicalID           string    `json:"technical_id"`
	ManufacturerReference string    `json:"manufacturer_reference,omitempty"`
	CavityCount           int       `json:"cavity_count"`
	CalloutPosition       *Position `json:"callout_position,omitempty"`
}

type Splice struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	TechnicalID           string    `json:"technical_id"`
	ManufacturerReference string    `json:"manufacturer_reference,omitempty"`
	PortCount             int       `json:"port_count"`
	CalloutPosition       *Position `json:"callout_position,omitempty"`
}

type ColorMode string

const (
	ColorModeNone    ColorMode = "none"
	ColorModeCatalog ColorMode = "catalog"
	ColorModeFree    ColorMode = "free"
)

// MaxFreeColorLabel bounds the free-text colour label.
const MaxFreeColorLabel = 32

// ColorCatalog lists the IEC 60757 codes accepted in catalog mode.
var ColorCatalog = []string{"BK", "BN", "RD", "OG", "YE", "GN", "BU", "VT", "GY", "WH", "PK", "TQ"}

func IsCatalogColor(id string) bool {
	for _, c := range ColorCatalog {
		if c == id {
			return true
		}
	}
	return false
}

type WireColor struct {
	Mode      ColorMode `json:"mode"`
	Primary   string    `json:"primary,omitempty"`
	Secondary string    `json:"secondary,omitempty"`
	Label     string    `json:"label,omitempty"`
}

type EndpointKind string

const (
	EndpointUnset           EndpointKind = ""
	EndpointConnectorCavity EndpointKind = "connector_cavity"
	EndpointSplicePort      EndpointKind = "splice_port"
)

// MaxEndpointRef bounds connection and seal reference strings.
const MaxEndpointRef = 64

// WireEndpoint is one end of a wire: a connector cavity, a splice port, or
// unset after a release.
type WireEndpoint struct {
	Kind          EndpointKind `json:"kind"`
	ConnectorID   string       `json:"connector_id,omitempty"`
	CavityIndex   int          `json:"cavity_index,omitempty"`
	SpliceID      string       `json:"splice_id,omitempty"`
	PortIndex     int          `json:"port_index,omitempty"`
	ConnectionRef string       `json:"connection_ref,omitempty"`
	SealRef       string       `json:"seal_ref,omitempty"`
}

func CavityEndpoint(connectorID string, cavity int) WireEndpoint {
	return WireEndpoint{Kind: EndpointConnectorCavity, ConnectorID: connectorID, CavityIndex: cavity}
}

func PortEndpoint(spliceID string, port int) WireEndpoint {
	return WireEndpoint{Kind: EndpointSplicePort, SpliceID: spliceID, PortIndex: port}
}

func (e WireEndpoint) IsSet() bool {
	return e.Kind != EndpointUnset
}

// EntityID returns the referenced connector or splice id.
func (e WireEndpoint) EntityID() string {
	switch e.Kind {
	case EndpointConnectorCavity:
		return e.ConnectorID
	case EndpointSplicePort:
		return e.SpliceID
	}
	return ""
}

// Index returns the referenced cavity or port number.
func (e WireEndpoint) Index() int {
	switch e.Kind {
	case EndpointConnectorCavity:
		return e.CavityIndex
	case EndpointSplicePort:
		return e.PortIndex
	}
	return 0
}

// SameSlot reports whether both endpoints address the same cavity or port.
func (e WireEndpoint) SameSlot(o WireEndpoint) bool {
	if !e.IsSet() || e.Kind != o.Kind {
		return false
	}
	return e.EntityID() == o.EntityID() && e.Index() == o.Index()
}

// WithSlot keeps the connection and seal references and swaps the link.
func (e WireEndpoint) WithSlot(target WireEndpoint) WireEndpoint {
	out := WireEndpoint{ConnectionRef: e.ConnectionRef, SealRef: e.SealRef}
	out.Kind = target.Kind
	switch target.Kind {
	case EndpointConnectorCavity:
		out.ConnectorID, out.CavityIndex = target.ConnectorID, target.CavityIndex
	case EndpointSplicePort:
		out.SpliceID, out.PortIndex = target.SpliceID, target.PortIndex
	}
	return out
}

func (e WireEndpoint) String() string {
	switch e.Kind {
	case EndpointConnectorCavity:
		return fmt.Sprintf("connector %s cavity %d", e.ConnectorID, e.CavityIndex)
	case EndpointSplicePort:
		return fmt.Sprintf("splice %s port %d", e.SpliceID, e.PortIndex)
	}
	return "unset"
}

type WireEnd string

const (
	EndA WireEnd = "A"
	EndB WireEnd = "B"
)

func (e WireEnd) IsValid() bool {
	return e == EndA || e == EndB
}

type Wire struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	TechnicalID     string       `json:"technical_id"`
	SectionMm2      float64      `json:"section_mm2"`
	Color           WireColor    `json:"color"`
	EndpointA       WireEndpoint `json:"endpoint_a"`
	EndpointB       WireEndpoint `json:"endpoint_b"`
	RouteSegmentIDs []string     `json:"route_segment_ids"`
	IsRouteLocked   bool         `json:"is_route_locked"`
	LengthMm        float64      `json:"length_mm"`
}

func (w Wire) Endpoint(end WireEnd) WireEndpoint {
	if end == EndB {
		return w.EndpointB
	}
	return w.EndpointA
}

func (w *Wire) SetEndpoint(end WireEnd, ep WireEndpoint) {
	if end == EndB {
		w.EndpointB = ep
		return
	}
	w.EndpointA = ep
}

// RouteUses reports whether segmentID is part of the stored route.
func (w Wire) RouteUses(segmentID string) bool {
	for _, id := range w.RouteSegmentIDs {
		if id == segmentID {
			return true
		}
	}
	return false
}
