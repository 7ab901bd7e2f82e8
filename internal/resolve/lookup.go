package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpattn/listimport/internal/cache"
	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"
)

// LookupResolver turns a display value into a reference to an item of the
// configured lookup list.
type LookupResolver struct {
	items  repository.ListItemRepository
	config config.LookupConfig
	remote *Remote
	memo   memo
}

func NewLookupResolver(items repository.ListItemRepository, cfg config.LookupConfig, remote *Remote) *LookupResolver {
	return &LookupResolver{items: items, config: cfg, remote: remote}
}

// WithCache enables the cross-run resolution cache.
func (r *LookupResolver) WithCache(store cache.Store, ttl time.Duration, logger *slog.Logger) *LookupResolver {
	r.memo = newMemo(store, ttl, logger)
	return r
}

// Resolve returns the first item whose lookup field equals value.
func (r *LookupResolver) Resolve(ctx context.Context, value string) (domain.LookupReference, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.LookupReference{}, fmt.Errorf("%w: empty value", domain.ErrLookupNotFound)
	}

	key := fmt.Sprintf("lookup:%s:%s:%s:%s", r.config.ListName, r.config.FieldName, r.config.FieldType, value)
	return cached(ctx, r.memo, key, func() (domain.LookupReference, error) {
		item, err := call(ctx, r.remote, "find lookup item", func(ctx context.Context) (domain.ListItem, error) {
			item, found, err := r.items.FindFirst(ctx, r.config.ListName, r.config.FieldName, r.config.FieldType, value)
			if err != nil {
				return domain.ListItem{}, err
			}
			if !found {
				return domain.ListItem{}, fmt.Errorf("%w: %q in %s", domain.ErrLookupNotFound, value, r.config.ListName)
			}
			return item, nil
		})
		if err != nil {
			return domain.LookupReference{}, err
		}
		return domain.LookupReference{LookupID: item.ID, ListTitle: r.config.ListName}, nil
	})
}
