package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/rpattn/listimport/internal/domain"
)

func TestLookupPredicate_TextComparesAsString(t *testing.T) {
	predicate, arg, err := lookupPredicate("Title", "Text", " Acme Corp ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if predicate != "i.properties ->> $2 = $3" {
		t.Fatalf("unexpected predicate %q", predicate)
	}
	if arg != "Acme Corp" {
		t.Fatalf("expected trimmed text argument, got %#v", arg)
	}
}

func TestLookupPredicate_NumberComparesNumerically(t *testing.T) {
	predicate, arg, err := lookupPredicate("Code", "Number", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(predicate, "::numeric") || !strings.Contains(predicate, "jsonb_typeof") {
		t.Fatalf("expected numeric comparison guarded by type check, got %q", predicate)
	}
	if arg != float64(42) {
		t.Fatalf("expected float argument, got %#v", arg)
	}
}

func TestLookupPredicate_InvalidNumberNeverMatches(t *testing.T) {
	_, _, err := lookupPredicate("Code", "Integer", "forty-two")
	if !errors.Is(err, domain.ErrLookupNotFound) {
		t.Fatalf("expected ErrLookupNotFound, got %v", err)
	}
}

func TestLookupPredicate_IDUsesPrimaryKey(t *testing.T) {
	predicate, arg, err := lookupPredicate("ID", "Counter", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(predicate, "i.id = $3") {
		t.Fatalf("expected id predicate, got %q", predicate)
	}
	if arg != int64(7) {
		t.Fatalf("expected int64 argument, got %#v", arg)
	}
}

func TestLookupPredicate_Boolean(t *testing.T) {
	_, arg, err := lookupPredicate("Active", "Boolean", "TRUE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arg != true {
		t.Fatalf("expected boolean argument, got %#v", arg)
	}
}

func TestLowerAll(t *testing.T) {
	got := lowerAll([]string{"Title", "MM Field"})
	if got[0] != "title" || got[1] != "mm field" {
		t.Fatalf("unexpected lowered names %v", got)
	}
}
