package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestFieldErrorUnwrap(t *testing.T) {
	err := &FieldError{Field: "Lookup_x0020_Field", Value: "Nope", Kind: KindCrossCollectionLookup, Err: ErrLookupNotFound}
	wrapped := fmt.Errorf("row 3: %w", err)

	if !errors.Is(wrapped, ErrLookupNotFound) {
		t.Fatalf("expected wrapped error to match ErrLookupNotFound")
	}
	var fieldErr *FieldError
	if !errors.As(wrapped, &fieldErr) || fieldErr.Field != "Lookup_x0020_Field" {
		t.Fatalf("expected FieldError to be extractable, got %v", wrapped)
	}
	if FailureKind(wrapped) != "LookupNotFound" {
		t.Fatalf("unexpected failure kind %s", FailureKind(wrapped))
	}
	if !IsNotFound(wrapped) {
		t.Fatalf("expected not-found classification")
	}
	if IsNotFound(fmt.Errorf("boom: %w", ErrRemoteIO)) {
		t.Fatalf("remote failures are not not-found failures")
	}
}
