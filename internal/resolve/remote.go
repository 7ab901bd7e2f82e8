package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/domain"
)

// Remote bounds calls to the target store: every attempt runs under a
// timeout and failures other than not-found answers are retried a fixed
// number of times before surfacing as domain.ErrRemoteIO.
type Remote struct {
	timeout  time.Duration
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

func NewRemote(cfg config.RemoteConfig, logger *slog.Logger) *Remote {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		timeout:  cfg.CallTimeout,
		attempts: attempts,
		delay:    cfg.RetryDelay,
		logger:   logger,
	}
}

// Do runs fn until it succeeds, returns a not-found answer, or the attempts
// are exhausted.
func (r *Remote) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		lastErr = r.attempt(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if domain.IsNotFound(lastErr) || errors.Is(lastErr, domain.ErrUnsupportedFieldKind) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == r.attempts {
			break
		}

		r.logger.Warn("remote call failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if r.delay > 0 {
			timer := time.NewTimer(r.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRemoteIO, op, lastErr)
}

func (r *Remote) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return fn(callCtx)
}

// call is Do for operations that return a value.
func call[T any](ctx context.Context, r *Remote, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, op, func(ctx context.Context) error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}
