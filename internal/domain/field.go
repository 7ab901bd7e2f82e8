package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ResolutionKind determines how a raw value is transformed before it is stored.
type ResolutionKind string

const (
	KindScalar                ResolutionKind = "SCALAR"
	KindEntityReference       ResolutionKind = "ENTITY_REFERENCE"
	KindCrossCollectionLookup ResolutionKind = "CROSS_COLLECTION_LOOKUP"
	KindTaxonomyTerm          ResolutionKind = "TAXONOMY_TERM"
	// KindUnsupported marks fields that have no resolver (publishing and
	// computed columns). They are skipped, never written.
	KindUnsupported ResolutionKind = "UNSUPPORTED"
)

// Remote field type kinds reported by the list store.
const (
	TypeKindText     = "Text"
	TypeKindNote     = "Note"
	TypeKindNumber   = "Number"
	TypeKindCurrency = "Currency"
	TypeKindDateTime = "DateTime"
	TypeKindBoolean  = "Boolean"
	TypeKindChoice   = "Choice"
	TypeKindURL      = "URL"
	TypeKindUser     = "User"
	TypeKindLookup   = "Lookup"
	TypeKindInvalid  = "Invalid"
)

// Type strings that refine TypeKindInvalid.
const (
	TypeAsStringTaxonomy      = "TaxonomyFieldType"
	TypeAsStringTaxonomyMulti = "TaxonomyFieldTypeMulti"
)

// FieldDescriptor identifies a target field and how values for it are resolved.
type FieldDescriptor struct {
	ListID       uuid.UUID      `json:"list_id"`
	InternalName string         `json:"internal_name"`
	Title        string         `json:"title"`
	TypeKind     string         `json:"type_kind"`
	TypeAsString string         `json:"type_as_string"`
	TermSetID    uuid.UUID      `json:"term_set_id,omitempty"`
	Kind         ResolutionKind `json:"kind"`
}

// NewFieldDescriptor builds a descriptor and classifies it from its remote type strings.
func NewFieldDescriptor(listID uuid.UUID, internalName, title, typeKind, typeAsString string, termSetID uuid.UUID) FieldDescriptor {
	return FieldDescriptor{
		ListID:       listID,
		InternalName: internalName,
		Title:        title,
		TypeKind:     typeKind,
		TypeAsString: typeAsString,
		TermSetID:    termSetID,
		Kind:         ClassifyType(typeKind, typeAsString),
	}
}

// Matches reports whether name refers to this field by internal name or title.
func (f FieldDescriptor) Matches(name string) bool {
	return f.InternalName == name || strings.EqualFold(f.Title, name)
}

// ClassifyType maps the remote type strings of a field onto a ResolutionKind.
// The mapping is total: every input yields exactly one kind.
func ClassifyType(typeKind, typeAsString string) ResolutionKind {
	switch typeKind {
	case TypeKindUser:
		return KindEntityReference
	case TypeKindLookup:
		return KindCrossCollectionLookup
	case TypeKindInvalid:
		switch typeAsString {
		case TypeAsStringTaxonomy, TypeAsStringTaxonomyMulti:
			return KindTaxonomyTerm
		default:
			return KindUnsupported
		}
	default:
		return KindScalar
	}
}
