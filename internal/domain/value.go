package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnassignedWssID is the local alias of a taxonomy term that has not been
// used in the target store yet.
const UnassignedWssID = -1

// Value is a resolved field value. The set of implementations is closed.
type Value interface {
	Kind() ResolutionKind
	// StorageValue returns the representation persisted in item properties.
	StorageValue() any
	sealed()
}

// FieldValues maps a target field internal name to its resolved value.
type FieldValues map[string]Value

// Properties converts the mapping into the property document stored for an item.
func (fv FieldValues) Properties() map[string]any {
	properties := make(map[string]any, len(fv))
	for name, value := range fv {
		properties[name] = value.StorageValue()
	}
	return properties
}

// ScalarValue carries a source value unchanged.
type ScalarValue struct {
	Raw any
}

func (ScalarValue) Kind() ResolutionKind { return KindScalar }

func (v ScalarValue) StorageValue() any {
	if ts, ok := v.Raw.(time.Time); ok {
		return ts.Format(time.RFC3339)
	}
	return v.Raw
}

func (ScalarValue) sealed() {}

// EntityReference points at a materialized site user.
type EntityReference struct {
	LookupID  int64
	LoginName string
}

func (EntityReference) Kind() ResolutionKind { return KindEntityReference }

func (v EntityReference) StorageValue() any {
	return map[string]any{"LookupId": v.LookupID}
}

func (EntityReference) sealed() {}

// LookupReference points at an item of another list.
type LookupReference struct {
	LookupID  int64
	ListTitle string
}

func (LookupReference) Kind() ResolutionKind { return KindCrossCollectionLookup }

func (v LookupReference) StorageValue() any {
	return map[string]any{"LookupId": v.LookupID}
}

func (LookupReference) sealed() {}

// TaxonomyReference points at a term of a term set.
type TaxonomyReference struct {
	Label    string
	TermGUID uuid.UUID
	WssID    int
}

func (TaxonomyReference) Kind() ResolutionKind { return KindTaxonomyTerm }

func (v TaxonomyReference) StorageValue() any {
	return map[string]any{
		"Label":    v.Label,
		"TermGuid": v.TermGUID.String(),
		"WssId":    v.WssID,
	}
}

func (TaxonomyReference) sealed() {}
