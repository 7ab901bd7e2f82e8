package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type fieldRepository struct {
	pool *pgxpool.Pool
}

// NewFieldRepository wires a field metadata repository backed by pgxpool.
func NewFieldRepository(pool *pgxpool.Pool) FieldRepository {
	return &fieldRepository{pool: pool}
}

const selectFieldColumns = `SELECT f.list_id, f.internal_name, f.title, f.type_kind, f.type_as_string, f.term_set_id
	 FROM list_fields f
	 JOIN lists l ON l.id = f.list_id`

func (r *fieldRepository) GetByNames(ctx context.Context, listTitle string, names []string) ([]domain.FieldDescriptor, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("field repository not initialized")
	}
	if len(names) == 0 {
		return []domain.FieldDescriptor{}, nil
	}

	rows, err := r.pool.Query(
		ctx,
		selectFieldColumns+`
		 WHERE l.title = $1
		   AND (f.internal_name = ANY($2) OR lower(f.title) = ANY($3))
		 ORDER BY f.position, f.internal_name`,
		listTitle,
		names,
		lowerAll(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query list fields: %w", err)
	}
	return collectFields(rows)
}

func (r *fieldRepository) List(ctx context.Context, listTitle string) ([]domain.FieldDescriptor, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("field repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		selectFieldColumns+`
		 WHERE l.title = $1
		 ORDER BY f.position, f.internal_name`,
		listTitle,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	return collectFields(rows)
}

func collectFields(rows pgx.Rows) ([]domain.FieldDescriptor, error) {
	defer rows.Close()

	fields := []domain.FieldDescriptor{}
	for rows.Next() {
		var (
			listID       uuid.UUID
			internalName string
			title        string
			typeKind     string
			typeAsString string
			termSetID    pgtype.UUID
		)
		if err := rows.Scan(&listID, &internalName, &title, &typeKind, &typeAsString, &termSetID); err != nil {
			return nil, fmt.Errorf("failed to scan list field: %w", err)
		}

		var termSet uuid.UUID
		if termSetID.Valid {
			termSet = uuid.UUID(termSetID.Bytes)
		}
		fields = append(fields, domain.NewFieldDescriptor(listID, internalName, title, typeKind, typeAsString, termSet))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list fields: %w", err)
	}
	return fields, nil
}

func lowerAll(values []string) []string {
	lowered := make([]string, len(values))
	for i, value := range values {
		lowered[i] = strings.ToLower(value)
	}
	return lowered
}
