package resolve

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rpattn/listimport/internal/cache"
)

// memo wraps a cache.Store. A nil store disables caching. Cache failures
// are logged and otherwise ignored; only successful resolutions are stored.
type memo struct {
	store  cache.Store
	ttl    time.Duration
	logger *slog.Logger
}

func cached[T any](ctx context.Context, m memo, key string, load func() (T, error)) (T, error) {
	if m.store == nil {
		return load()
	}

	if raw, ok, err := m.store.Get(ctx, key); err != nil {
		m.logger.Warn("resolution cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		var hit T
		if err := json.Unmarshal([]byte(raw), &hit); err == nil {
			return hit, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if payload, err := json.Marshal(value); err == nil {
		if err := m.store.Set(ctx, key, string(payload), m.ttl); err != nil {
			m.logger.Warn("resolution cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return value, nil
}

func newMemo(store cache.Store, ttl time.Duration, logger *slog.Logger) memo {
	if logger == nil {
		logger = slog.Default()
	}
	return memo{store: store, ttl: ttl, logger: logger}
}
