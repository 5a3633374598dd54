package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wirescope/core/internal/models"
)

var (
	// ErrNoActiveNetwork is returned by scoped operations when no network is active.
	ErrNoActiveNetwork = errors.New("store: no active network")
	// ErrRequired is returned when a required field is empty.
	ErrRequired = errors.New("store: required field missing")
	// ErrInvalid is returned when a field holds an unacceptable value.
	ErrInvalid = errors.New("store: invalid value")
	// ErrDuplicateTechnicalID is returned when a technical id is already used in scope.
	ErrDuplicateTechnicalID = errors.New("store: duplicate technical id")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrStillReferenced is returned when a delete would leave dependents dangling.
	ErrStillReferenced = errors.New("store: still referenced")
)

// ValidationError is the structured reason a mutation was refused. Nothing is
// written when one is returned.
type ValidationError struct {
	Kind   models.EntityKind
	ID     string
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, p := range []string{string(e.Kind), e.ID, e.Field} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	subject := strings.Join(parts, " ")
	if subject == "" {
		subject = "store"
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", subject, e.Err)
	}
	return fmt.Sprintf("%s: %s", subject, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(kind models.EntityKind, id, field string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, ID: id, Field: field, Err: err, Reason: fmt.Sprintf(format, args...)}
}

func notFound(kind models.EntityKind, id string) *ValidationError {
	return &ValidationError{Kind: kind, ID: id, Err: ErrNotFound, Reason: "not found"}
}
