package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpattn/listimport/internal/cache"
	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"

	"github.com/google/uuid"
)

// TaxonomyResolver turns a label into a reference to a term of a term set.
type TaxonomyResolver struct {
	taxonomy repository.TaxonomyRepository
	config   config.TaxonomyConfig
	remote   *Remote
	memo     memo
}

func NewTaxonomyResolver(taxonomy repository.TaxonomyRepository, cfg config.TaxonomyConfig, remote *Remote) *TaxonomyResolver {
	return &TaxonomyResolver{taxonomy: taxonomy, config: cfg, remote: remote}
}

// WithCache enables the cross-run resolution cache.
func (r *TaxonomyResolver) WithCache(store cache.Store, ttl time.Duration, logger *slog.Logger) *TaxonomyResolver {
	r.memo = newMemo(store, ttl, logger)
	return r
}

// Resolve finds the first term of termSetID labeled label in the configured
// locale. The returned reference carries the unassigned local alias.
func (r *TaxonomyResolver) Resolve(ctx context.Context, label string, termSetID uuid.UUID) (domain.TaxonomyReference, error) {
	match := domain.NewLabelMatch(label, r.config.LCID, r.config.TrimUnavailable)
	if match.TermLabel == "" {
		return domain.TaxonomyReference{}, fmt.Errorf("%w: empty label", domain.ErrTermNotFound)
	}
	if termSetID == uuid.Nil {
		return domain.TaxonomyReference{}, fmt.Errorf("%w: field has no term set", domain.ErrTermNotFound)
	}

	key := fmt.Sprintf("term:%s:%d:%t:%s", termSetID, match.LCID, match.TrimUnavailable, match.TermLabel)
	return cached(ctx, r.memo, key, func() (domain.TaxonomyReference, error) {
		return r.resolve(ctx, match, termSetID)
	})
}

func (r *TaxonomyResolver) resolve(ctx context.Context, match domain.LabelMatch, termSetID uuid.UUID) (domain.TaxonomyReference, error) {
	store, err := call(ctx, r.remote, "default term store", r.taxonomy.DefaultTermStore)
	if err != nil {
		return domain.TaxonomyReference{}, err
	}

	set, err := call(ctx, r.remote, "get term set", func(ctx context.Context) (domain.TermSet, error) {
		return r.taxonomy.GetTermSet(ctx, store.ID, termSetID)
	})
	if err != nil {
		return domain.TaxonomyReference{}, err
	}

	terms, err := call(ctx, r.remote, "get terms", func(ctx context.Context) ([]domain.Term, error) {
		return r.taxonomy.GetTermsByLabel(ctx, set.ID, match)
	})
	if err != nil {
		return domain.TaxonomyReference{}, err
	}
	if len(terms) == 0 {
		return domain.TaxonomyReference{}, fmt.Errorf("%w: %q in term set %s", domain.ErrTermNotFound, match.TermLabel, termSetID)
	}

	return domain.TaxonomyReference{
		Label:    match.TermLabel,
		TermGUID: terms[0].ID,
		WssID:    domain.UnassignedWssID,
	}, nil
}
