package resolve

import (
	"context"
	"fmt"

	"github.com/rpattn/listimport/internal/domain"
)

// Resolver converts a raw field value into the representation its target
// field accepts.
type Resolver struct {
	entities *EntityResolver
	lookups  *LookupResolver
	terms    *TaxonomyResolver
}

func NewResolver(entities *EntityResolver, lookups *LookupResolver, terms *TaxonomyResolver) *Resolver {
	return &Resolver{entities: entities, lookups: lookups, terms: terms}
}

// Resolve dispatches on the field's ResolutionKind.
func (r *Resolver) Resolve(ctx context.Context, field domain.FieldDescriptor, raw any) (domain.Value, error) {
	switch field.Kind {
	case domain.KindScalar:
		return domain.ScalarValue{Raw: raw}, nil
	case domain.KindEntityReference:
		ref, err := r.entities.Resolve(ctx, domain.FormatRaw(raw))
		return value(ref, err)
	case domain.KindCrossCollectionLookup:
		ref, err := r.lookups.Resolve(ctx, domain.FormatRaw(raw))
		return value(ref, err)
	case domain.KindTaxonomyTerm:
		ref, err := r.terms.Resolve(ctx, domain.FormatRaw(raw), field.TermSetID)
		return value(ref, err)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFieldKind, field.InternalName, field.TypeAsString)
	}
}

// value keeps a failed resolution from surfacing as a non-nil Value.
func value[T domain.Value](v T, err error) (domain.Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
