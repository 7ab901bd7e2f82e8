package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when no target field matches a source field name.
	ErrUnknownField = errors.New("unknown field")
	// ErrEntityNotFound is returned when no principal resolves from an identifier.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrLookupNotFound is returned when no item of the lookup list matches.
	ErrLookupNotFound = errors.New("lookup value not found")
	// ErrTermNotFound is returned when no term of the term set carries the label.
	ErrTermNotFound = errors.New("term not found")
	// ErrUnsupportedFieldKind is returned for fields without a resolver.
	ErrUnsupportedFieldKind = errors.New("unsupported field kind")
	// ErrRemoteIO wraps failures talking to the target store.
	ErrRemoteIO = errors.New("remote i/o failure")
	// ErrMissingKey is returned for records without a unique key value.
	ErrMissingKey = errors.New("record has no key value")
	// ErrKeyFieldNotScalar is returned when the key field would need resolving.
	ErrKeyFieldNotScalar = errors.New("key field is not a scalar field")
)

// FieldError describes why a single field of a record could not be resolved.
type FieldError struct {
	Field string
	Value string
	Kind  ResolutionKind
	Err   error
}

func (e *FieldError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("field %s (%s) value %q: %v", e.Field, e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("field %s value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FailureKind names the category of a resolution failure for reporting.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownField):
		return "UnknownField"
	case errors.Is(err, ErrEntityNotFound):
		return "EntityNotFound"
	case errors.Is(err, ErrLookupNotFound):
		return "LookupNotFound"
	case errors.Is(err, ErrTermNotFound):
		return "TermNotFound"
	case errors.Is(err, ErrUnsupportedFieldKind):
		return "UnsupportedFieldKind"
	case errors.Is(err, ErrMissingKey):
		return "MissingKey"
	case errors.Is(err, ErrRemoteIO):
		return "RemoteIO"
	default:
		return "Error"
	}
}

// IsNotFound reports whether err is one of the per-field not-found failures.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrLookupNotFound) ||
		errors.Is(err, ErrTermNotFound)
}
