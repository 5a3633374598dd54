// Package occupancy tracks which connector cavities and splice ports are held
// by wire endpoints. Occupancy is always derived by scanning wires; nothing
// here is stored.
package occupancy

import (
	"errors"
	"fmt"

	"github.com/wirescope/core/internal/models"
)

var (
	ErrUnknownEntity = errors.New("occupancy: unknown connector or splice")
	ErrOutOfRange    = errors.New("occupancy: index out of range")
	ErrUnknownWire   = errors.New("occupancy: unknown wire")
	ErrInvalidTarget = errors.New("occupancy: invalid target")
	ErrOccupied      = errors.New("occupancy: slot occupied")
)

// Occupant identifies one wire endpoint.
type Occupant struct {
	WireID          string         `json:"wire_id"`
	WireTechnicalID string         `json:"wire_technical_id"`
	End             models.WireEnd `json:"end"`
}

func (o Occupant) String() string {
	name := o.WireTechnicalID
	if name == "" {
		name = o.WireID
	}
	return fmt.Sprintf("%s:%s", name, o.End)
}

type Slot struct {
	Index      int       `json:"index"`
	IsOccupied bool      `json:"is_occupied"`
	Occupant   *Occupant `json:"occupant,omitempty"`
}

// SlotOccupiedError is returned when a reservation targets a held slot.
// SuggestedIndex is the lowest free index, or 0 when none is free.
type SlotOccupiedError struct {
	Target         models.WireEndpoint
	Occupant       Occupant
	SuggestedIndex int
}

func (e *SlotOccupiedError) Error() string {
	msg := fmt.Sprintf("%s is occupied by %s", e.Target, e.Occupant)
	if e.SuggestedIndex > 0 {
		msg += fmt.Sprintf("; next free index is %d", e.SuggestedIndex)
	}
	return msg
}

func (e *SlotOccupiedError) Unwrap() error {
	return ErrOccupied
}

// ConnectorSlots lists cavities 1..cavityCount of a connector.
func ConnectorSlots(scope *models.Scope, connectorID string) ([]Slot, error) {
	c, ok := scope.Connectors[connectorID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, connectorID)
	}
	return buildSlots(scope, models.EndpointConnectorCavity, connectorID, c.CavityCount), nil
}

// SpliceSlots lists ports 1..portCount of a splice.
func SpliceSlots(scope *models.Scope, spliceID string) ([]Slot, error) {
	s, ok := scope.Splices[spliceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, spliceID)
	}
	return buildSlots(scope, models.EndpointSplicePort, spliceID, s.PortCount), nil
}

func buildSlots(scope *models.Scope, kind models.EndpointKind, entityID string, count int) []Slot {
	if count < 0 {
		count = 0
	}
	slots := make([]Slot, count)
	for i := range slots {
		slots[i] = Slot{Index: i + 1}
	}

	for _, w := range scope.WireList() {
		for _, end := range []models.WireEnd{models.EndA, models.EndB} {
			ep := w.Endpoint(end)
			if ep.Kind != kind || ep.EntityID() != entityID {
				continue
			}
			idx := ep.Index()
			if idx < 1 || idx > count || slots[idx-1].IsOccupied {
				continue
			}
			slots[idx-1].IsOccupied = true
			slots[idx-1].Occupant = &Occupant{WireID: w.ID, WireTechnicalID: w.TechnicalID, End: end}
		}
	}
	return slots
}

// NextFree returns the lowest free index, or 0 when every slot is taken.
func NextFree(slots []Slot) int {
	for _, s := range slots {
		if !s.IsOccupied {
			return s.Index
		}
	}
	return 0
}

// SlotsFor lists the slots of whatever entity the endpoint references.
func SlotsFor(scope *models.Scope, target models.WireEndpoint) ([]Slot, error) {
	switch target.Kind {
	case models.EndpointConnectorCavity:
		return ConnectorSlots(scope, target.ConnectorID)
	case models.EndpointSplicePort:
		return SpliceSlots(scope, target.SpliceID)
	}
	return nil, fmt.Errorf("%w: endpoint kind %q", ErrInvalidTarget, target.Kind)
}

// FindOccupant returns the wire endpoint holding the target slot, ignoring
// the endpoint identified by skip.
func FindOccupant(scope *models.Scope, target models.WireEndpoint, skip *Occupant) (Occupant, bool) {
	for _, w := range scope.WireList() {
		for _, end := range []models.WireEnd{models.EndA, models.EndB} {
			if skip != nil && skip.WireID == w.ID && skip.End == end {
				continue
			}
			if w.Endpoint(end).SameSlot(target) {
				return Occupant{WireID: w.ID, WireTechnicalID: w.TechnicalID, End: end}, true
			}
		}
	}
	return Occupant{}, false
}

// CheckTarget verifies that a slot exists, is in range and is free for the
// given endpoint. self may be nil for a wire that is not stored yet.
func CheckTarget(scope *models.Scope, target models.WireEndpoint, self *Occupant) error {
	slots, err := SlotsFor(scope, target)
	if err != nil {
		return err
	}
	idx := target.Index()
	if idx < 1 || idx > len(slots) {
		return fmt.Errorf("%w: %s (1..%d)", ErrOutOfRange, target, len(slots))
	}
	if occupant, taken := FindOccupant(scope, target, self); taken {
		return &SlotOccupiedError{
			Target:         target,
			Occupant:       occupant,
			SuggestedIndex: nextFreeExcluding(slots, self),
		}
	}
	return nil
}

// nextFreeExcluding treats the slot currently held by self as free, since a
// move releases it.
func nextFreeExcluding(slots []Slot, self *Occupant) int {
	for _, s := range slots {
		if !s.IsOccupied {
			return s.Index
		}
		if self != nil && s.Occupant != nil && s.Occupant.WireID == self.WireID && s.Occupant.End == self.End {
			return s.Index
		}
	}
	return 0
}

// Reserve points one wire endpoint at a cavity or port. Reserving the slot
// the endpoint already holds is a no-op. The scope is left untouched on error.
func Reserve(scope *models.Scope, wireID string, end models.WireEnd, target models.WireEndpoint) (models.Wire, error) {
	wire, ok := scope.Wires[wireID]
	if !ok {
		return models.Wire{}, fmt.Errorf("%w: %s", ErrUnknownWire, wireID)
	}
	if !end.IsValid() {
		return models.Wire{}, fmt.Errorf("%w: end %q", ErrInvalidTarget, end)
	}
	if wire.Endpoint(end).SameSlot(target) {
		return wire, nil
	}
	self := &Occupant{WireID: wire.ID, WireTechnicalID: wire.TechnicalID, End: end}
	if err := CheckTarget(scope, target, self); err != nil {
		return models.Wire{}, err
	}

	wire.SetEndpoint(end, wire.Endpoint(end).WithSlot(target))
	scope.Wires[wireID] = wire
	return wire, nil
}

// Release clears the slot link of one wire endpoint.
func Release(scope *models.Scope, wireID string, end models.WireEnd) (models.Wire, error) {
	wire, ok := scope.Wires[wireID]
	if !ok {
		return models.Wire{}, fmt.Errorf("%w: %s", ErrUnknownWire, wireID)
	}
	if !end.IsValid() {
		return models.Wire{}, fmt.Errorf("%w: end %q", ErrInvalidTarget, end)
	}
	wire.SetEndpoint(end, wire.Endpoint(end).WithSlot(models.WireEndpoint{}))
	scope.Wires[wireID] = wire
	return wire, nil
}

// Conflict is a slot referenced by more than one wire endpoint. Only
// imported documents can contain one.
type Conflict struct {
	Target    models.WireEndpoint
	Occupants []Occupant
}

func Conflicts(scope *models.Scope) []Conflict {
	type key struct {
		kind  models.EndpointKind
		id    string
		index int
	}
	held := make(map[key][]Occupant)
	var order []key
	for _, w := range scope.WireList() {
		for _, end := range []models.WireEnd{models.EndA, models.EndB} {
			ep := w.Endpoint(end)
			if !ep.IsSet() {
				continue
			}
			k := key{ep.Kind, ep.EntityID(), ep.Index()}
			if _, seen := held[k]; !seen {
				order = append(order, k)
			}
			held[k] = append(held[k], Occupant{WireID: w.ID, WireTechnicalID: w.TechnicalID, End: end})
		}
	}

	var out []Conflict
	for _, k := range order {
		if len(held[k]) < 2 {
			continue
		}
		out = append(out, Conflict{Target: slotEndpoint(k.kind, k.id, k.index), Occupants: held[k]})
	}
	return out
}

func slotEndpoint(kind models.EndpointKind, id string, index int) models.WireEndpoint {
	if kind == models.EndpointSplicePort {
		return models.PortEndpoint(id, index)
	}
	return models.CavityEndpoint(id, index)
}
