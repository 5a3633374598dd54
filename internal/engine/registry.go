package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	ErrUnknownAction  = errors.New("engine: unknown action type")
	ErrInvalidPayload = errors.New("engine: invalid action payload")
)

// Envelope is the wire form of an action: its name plus a JSON payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Registry maps action names to constructors for decoding envelopes.
type Registry struct {
	factories map[string]func() any
}

func NewRegistry(samples ...Action) *Registry {
	r := &Registry{factories: make(map[string]func() any)}
	for _, sample := range samples {
		r.Register(sample)
	}
	return r
}

// Register makes an action type decodable under its Name.
func (r *Registry) Register(sample Action) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.factories[sample.Name()] = func() any {
		return reflect.New(t).Interface()
	}
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode turns an envelope into a concrete action value.
func (r *Registry) Decode(env Envelope) (Action, error) {
	factory := r.factories[env.Type]
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	target := factory()
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, target); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
		}
	}
	value := reflect.ValueOf(target)
	if value.Kind() == reflect.Ptr && !value.IsNil() {
		if action, ok := value.Elem().Interface().(Action); ok {
			return action, nil
		}
	}
	action, ok := target.(Action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	return action, nil
}

// DefaultRegistry knows every action the engine ships with.
func DefaultRegistry() *Registry {
	return NewRegistry(
		UpsertNetwork{}, DeleteNetwork{}, DuplicateNetwork{}, SelectNetwork{},
		UpsertConnector{}, DeleteConnector{},
		UpsertSplice{}, DeleteSplice{},
		UpsertNode{}, DeleteNode{},
		UpsertSegment{}, DeleteSegment{},
		UpsertWire{}, DeleteWire{}, SetWireRoute{},
		ReserveSlot{}, ReleaseSlot{},
		SetNodePosition{}, SetSelection{}, SetPreference{},
	)
}
