package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedEndpoint is returned when an endpoint has no representing node.
	ErrUnresolvedEndpoint = errors.New("routing: unresolved endpoint")
	// ErrUnknownSegment is returned when a forced route names a missing segment.
	ErrUnknownSegment = errors.New("routing: unknown segment")
	// ErrBrokenChain is returned when consecutive segments share no node.
	ErrBrokenChain = errors.New("routing: segments do not form a contiguous chain")
	// ErrEndpointMismatch is returned when the chain ends are not the wire's nodes.
	ErrEndpointMismatch = errors.New("routing: chain ends do not match wire endpoints")
	// ErrEmptyRoute is returned when a forced route is empty between distinct nodes.
	ErrEmptyRoute = errors.New("routing: empty forced route")
)

// RouteError describes why a forced route was rejected.
type RouteError struct {
	WireID string
	Detail string
	Err    error
}

func (e *RouteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("wire %s: %v", e.WireID, e.Err)
	}
	return fmt.Sprintf("wire %s: %v: %s", e.WireID, e.Err, e.Detail)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}
