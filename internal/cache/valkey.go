package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/listimport/internal/config"

	"github.com/valkey-io/valkey-go"
)

// Store is a string key/value cache shared across import runs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// ValkeyStore keeps resolved references in valkey.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

var _ Store = (*ValkeyStore)(nil)

// NewValkeyClient connects to valkey and verifies the connection.
func NewValkeyClient(ctx context.Context, cfg config.CacheConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	resp := client.Do(ctx, client.B().Ping().Build())
	if err := resp.Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	return client, nil
}

// NewValkeyStore namespaces every key under prefix.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(s.prefix+key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("valkey get: %w", err)
	}
	return value, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var cmd valkey.Completed
	if ttl > 0 {
		seconds := max(int64(ttl/time.Second), 1)
		cmd = s.client.B().Set().Key(s.prefix + key).Value(value).ExSeconds(seconds).Build()
	} else {
		cmd = s.client.B().Set().Key(s.prefix + key).Value(value).Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set: %w", err)
	}
	return nil
}
