package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type taxonomyRepository struct {
	pool *pgxpool.Pool
}

// NewTaxonomyRepository wires term store reads backed by pgxpool.
func NewTaxonomyRepository(pool *pgxpool.Pool) TaxonomyRepository {
	return &taxonomyRepository{pool: pool}
}

func (r *taxonomyRepository) DefaultTermStore(ctx context.Context) (domain.TermStore, error) {
	if r.pool == nil {
		return domain.TermStore{}, fmt.Errorf("taxonomy repository not initialized")
	}

	var store domain.TermStore
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, is_default
		 FROM term_stores
		 WHERE is_default
		 LIMIT 1`,
	).Scan(&store.ID, &store.Name, &store.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TermStore{}, fmt.Errorf("%w: no default term store", domain.ErrTermNotFound)
		}
		return domain.TermStore{}, fmt.Errorf("failed to load default term store: %w", err)
	}
	return store, nil
}

func (r *taxonomyRepository) GetTermSet(ctx context.Context, termStoreID uuid.UUID, termSetID uuid.UUID) (domain.TermSet, error) {
	if r.pool == nil {
		return domain.TermSet{}, fmt.Errorf("taxonomy repository not initialized")
	}

	var set domain.TermSet
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, term_store_id, name
		 FROM term_sets
		 WHERE id = $1 AND term_store_id = $2`,
		termSetID,
		termStoreID,
	).Scan(&set.ID, &set.TermStoreID, &set.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TermSet{}, fmt.Errorf("%w: term set %s not in store %s", domain.ErrTermNotFound, termSetID, termStoreID)
		}
		return domain.TermSet{}, fmt.Errorf("failed to load term set: %w", err)
	}
	return set, nil
}

func (r *taxonomyRepository) GetTermsByLabel(ctx context.Context, termSetID uuid.UUID, match domain.LabelMatch) ([]domain.Term, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("taxonomy repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT t.id, t.term_set_id, t.name, t.path, t.is_available_for_tagging
		 FROM terms t
		 WHERE t.term_set_id = $1
		   AND EXISTS (
		     SELECT 1 FROM term_labels l
		     WHERE l.term_id = t.id AND l.lcid = $2 AND l.label = $3
		   )
		   AND (NOT $4 OR t.is_available_for_tagging)
		 ORDER BY t.path, t.id`,
		termSetID,
		match.LCID,
		match.TermLabel,
		match.TrimUnavailable,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	terms := []domain.Term{}
	for rows.Next() {
		var term domain.Term
		// path is decoded by the ltree codec registered on connect.
		var path pgtype.Text
		if err := rows.Scan(&term.ID, &term.TermSetID, &term.Name, &path, &term.IsAvailableForTagging); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		term.Path = path.String
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate terms: %w", err)
	}
	return terms, nil
}
