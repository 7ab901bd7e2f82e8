package fieldloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"

	"github.com/graph-gophers/dataloader"
)

// FieldLoader batches and memoizes field descriptor lookups for one list
// for the lifetime of an import run.
type FieldLoader struct {
	Loader    *dataloader.Loader
	listTitle string
}

func NewFieldLoader(repo repository.FieldRepository, listTitle string) *FieldLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		names := keys.Keys()

		fields, err := repo.GetByNames(ctx, listTitle, names)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, name := range names {
			results[i] = &dataloader.Result{
				Error: fmt.Errorf("%w: %s not found in list %s", domain.ErrUnknownField, name, listTitle),
			}
			for _, field := range fields {
				if field.Matches(name) {
					results[i] = &dataloader.Result{Data: field}
					break
				}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &FieldLoader{Loader: loader, listTitle: listTitle}
}

// Load returns the descriptor for name. Unknown fields stay cached for the
// run; other failures are evicted so the next record retries them.
func (l *FieldLoader) Load(ctx context.Context, name string) (domain.FieldDescriptor, error) {
	key := dataloader.StringKey(name)
	data, err := l.Loader.Load(ctx, key)()
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownField) {
			l.Loader.Clear(ctx, key)
		}
		return domain.FieldDescriptor{}, err
	}

	field, ok := data.(domain.FieldDescriptor)
	if !ok {
		return domain.FieldDescriptor{}, fmt.Errorf("unexpected field loader result %T", data)
	}
	return field, nil
}
