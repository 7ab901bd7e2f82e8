package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestClassifyType(t *testing.T) {
	cases := []struct {
		typeKind     string
		typeAsString string
		want         ResolutionKind
	}{
		{TypeKindText, "Text", KindScalar},
		{TypeKindNumber, "Number", KindScalar},
		{TypeKindCurrency, "Currency", KindScalar},
		{TypeKindDateTime, "DateTime", KindScalar},
		{TypeKindBoolean, "Boolean", KindScalar},
		{TypeKindChoice, "Choice", KindScalar},
		{TypeKindURL, "URL", KindScalar},
		{TypeKindUser, "User", KindEntityReference},
		{TypeKindLookup, "Lookup", KindCrossCollectionLookup},
		{TypeKindInvalid, TypeAsStringTaxonomy, KindTaxonomyTerm},
		{TypeKindInvalid, TypeAsStringTaxonomyMulti, KindTaxonomyTerm},
		{TypeKindInvalid, "HTML", KindUnsupported},
		{TypeKindInvalid, "", KindUnsupported},
		{"SomethingNew", "SomethingNew", KindScalar},
	}

	for _, tc := range cases {
		if got := ClassifyType(tc.typeKind, tc.typeAsString); got != tc.want {
			t.Fatalf("ClassifyType(%q, %q) = %s, want %s", tc.typeKind, tc.typeAsString, got, tc.want)
		}
	}
}

func TestNewFieldDescriptorKeepsTypeAsString(t *testing.T) {
	termSet := uuid.New()
	field := NewFieldDescriptor(uuid.New(), "MM_x0020_Field", "MM Field", TypeKindInvalid, TypeAsStringTaxonomy, termSet)

	if field.Kind != KindTaxonomyTerm {
		t.Fatalf("expected taxonomy kind, got %s", field.Kind)
	}
	if field.TypeAsString != TypeAsStringTaxonomy {
		t.Fatalf("expected type string to be exposed, got %q", field.TypeAsString)
	}
	if field.TermSetID != termSet {
		t.Fatalf("expected term set id %s, got %s", termSet, field.TermSetID)
	}
	if !field.Matches("mm field") || !field.Matches("MM_x0020_Field") {
		t.Fatalf("expected descriptor to match by title and internal name")
	}
	if field.Matches("mm_x0020_field") {
		t.Fatalf("internal names are case sensitive")
	}
}
