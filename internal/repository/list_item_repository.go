package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrListNotFound is returned when the named list does not exist.
var ErrListNotFound = errors.New("list not found")

// idFieldName addresses the item primary key instead of a property.
const idFieldName = "ID"

type listItemRepository struct {
	pool *pgxpool.Pool
}

// NewListItemRepository wires list item reads and writes backed by pgxpool.
func NewListItemRepository(pool *pgxpool.Pool) ListItemRepository {
	return &listItemRepository{pool: pool}
}

// Exists compares the stored text form of fieldName with value. Values are
// always bound as parameters, never spliced into the statement.
func (r *listItemRepository) Exists(ctx context.Context, listTitle string, fieldName string, value string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("list item repository not initialized")
	}

	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM list_items i
		   JOIN lists l ON l.id = i.list_id
		   WHERE l.title = $1
		     AND i.properties ->> $2 = $3
		 )`,
		listTitle,
		fieldName,
		value,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return exists, nil
}

func (r *listItemRepository) FindFirst(ctx context.Context, listTitle string, fieldName string, fieldType string, value string) (domain.ListItem, bool, error) {
	if r.pool == nil {
		return domain.ListItem{}, false, fmt.Errorf("list item repository not initialized")
	}

	predicate, arg, err := lookupPredicate(fieldName, fieldType, value)
	if err != nil {
		return domain.ListItem{}, false, err
	}

	var (
		item       domain.ListItem
		properties []byte
		createdAt  time.Time
	)
	err = r.pool.QueryRow(
		ctx,
		`SELECT i.id, i.list_id, i.properties, i.created_at
		 FROM list_items i
		 JOIN lists l ON l.id = i.list_id
		 WHERE l.title = $1
		   AND `+predicate+`
		 ORDER BY i.id
		 LIMIT 1`,
		listTitle,
		fieldName,
		arg,
	).Scan(&item.ID, &item.ListID, &properties, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ListItem{}, false, nil
		}
		return domain.ListItem{}, false, fmt.Errorf("failed to query lookup list: %w", err)
	}

	if err := json.Unmarshal(properties, &item.Properties); err != nil {
		return domain.ListItem{}, false, fmt.Errorf("failed to decode item properties: %w", err)
	}
	item.CreatedAt = createdAt
	return item, true, nil
}

func (r *listItemRepository) Create(ctx context.Context, listTitle string, properties map[string]any) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("list item repository not initialized")
	}

	payload, err := json.Marshal(properties)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal properties: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(
		ctx,
		`INSERT INTO list_items (list_id, properties)
		 SELECT id, $2
		 FROM lists
		 WHERE title = $1
		 RETURNING id`,
		listTitle,
		payload,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrListNotFound, listTitle)
		}
		return 0, fmt.Errorf("failed to create list item: %w", err)
	}
	return id, nil
}

// lookupPredicate builds the equality predicate for a lookup match field.
// $2 is always the field name and $3 the returned argument. A value that
// cannot be represented in fieldType can never match.
func lookupPredicate(fieldName string, fieldType string, value string) (string, any, error) {
	value = strings.TrimSpace(value)

	if fieldName == idFieldName {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q is not an item id", domain.ErrLookupNotFound, value)
		}
		return "($2::text IS NOT NULL AND i.id = $3)", id, nil
	}

	switch strings.ToLower(fieldType) {
	case "number", "currency", "integer", "counter":
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q is not a number", domain.ErrLookupNotFound, value)
		}
		return `CASE WHEN jsonb_typeof(i.properties -> $2) = 'number'
		              THEN (i.properties ->> $2)::numeric = $3::numeric
		              ELSE false
		         END`, number, nil
	case "boolean":
		flag, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q is not a boolean", domain.ErrLookupNotFound, value)
		}
		return "i.properties -> $2 = to_jsonb($3::boolean)", flag, nil
	default:
		return "i.properties ->> $2 = $3", value, nil
	}
}
