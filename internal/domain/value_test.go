package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFieldValuesProperties(t *testing.T) {
	termID := uuid.New()
	ts := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)
	values := FieldValues{
		"Title":              ScalarValue{Raw: "Item"},
		"Date_x0020_Field":   ScalarValue{Raw: ts},
		"Person_x0020_Field": EntityReference{LookupID: 11},
		"Lookup_x0020_Field": LookupReference{LookupID: 42},
		"MM_x0020_Field":     TaxonomyReference{Label: "Finance", TermGUID: termID, WssID: UnassignedWssID},
	}

	props := values.Properties()

	if props["Title"] != "Item" {
		t.Fatalf("unexpected title %#v", props["Title"])
	}
	if props["Date_x0020_Field"] != "2023-12-24T00:00:00Z" {
		t.Fatalf("unexpected date %#v", props["Date_x0020_Field"])
	}
	person, ok := props["Person_x0020_Field"].(map[string]any)
	if !ok || person["LookupId"] != int64(11) {
		t.Fatalf("unexpected person value %#v", props["Person_x0020_Field"])
	}
	lookup, ok := props["Lookup_x0020_Field"].(map[string]any)
	if !ok || lookup["LookupId"] != int64(42) {
		t.Fatalf("unexpected lookup value %#v", props["Lookup_x0020_Field"])
	}
	term, ok := props["MM_x0020_Field"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected term value %#v", props["MM_x0020_Field"])
	}
	if term["Label"] != "Finance" || term["TermGuid"] != termID.String() || term["WssId"] != -1 {
		t.Fatalf("unexpected term value %#v", term)
	}
}

func TestValueKinds(t *testing.T) {
	cases := map[ResolutionKind]Value{
		KindScalar:                ScalarValue{Raw: 1.5},
		KindEntityReference:       EntityReference{},
		KindCrossCollectionLookup: LookupReference{},
		KindTaxonomyTerm:          TaxonomyReference{},
	}
	for want, value := range cases {
		if value.Kind() != want {
			t.Fatalf("expected %s, got %s", want, value.Kind())
		}
	}
}
