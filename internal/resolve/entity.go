package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpattn/listimport/internal/cache"
	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"
)

// EntityResolver turns a person identifier into a site user reference.
type EntityResolver struct {
	directory repository.DirectoryRepository
	remote    *Remote
	memo      memo
}

func NewEntityResolver(directory repository.DirectoryRepository, remote *Remote) *EntityResolver {
	return &EntityResolver{directory: directory, remote: remote}
}

// WithCache enables the cross-run resolution cache.
func (r *EntityResolver) WithCache(store cache.Store, ttl time.Duration, logger *slog.Logger) *EntityResolver {
	r.memo = newMemo(store, ttl, logger)
	return r
}

// Resolve searches the directory for identifier, restricted to users from
// any source, and makes sure the first match exists as a site user.
func (r *EntityResolver) Resolve(ctx context.Context, identifier string) (domain.EntityReference, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.EntityReference{}, fmt.Errorf("%w: empty identifier", domain.ErrEntityNotFound)
	}

	key := "entity:" + strings.ToLower(identifier)
	return cached(ctx, r.memo, key, func() (domain.EntityReference, error) {
		return r.resolve(ctx, identifier)
	})
}

func (r *EntityResolver) resolve(ctx context.Context, identifier string) (domain.EntityReference, error) {
	principal, err := call(ctx, r.remote, "resolve principal", func(ctx context.Context) (domain.Principal, error) {
		principal, found, err := r.directory.ResolvePrincipal(ctx, identifier, domain.PrincipalTypeUser, domain.PrincipalSourceAll)
		if err != nil {
			return domain.Principal{}, err
		}
		if !found {
			return domain.Principal{}, fmt.Errorf("%w: %q", domain.ErrEntityNotFound, identifier)
		}
		return principal, nil
	})
	if err != nil {
		return domain.EntityReference{}, err
	}

	user, err := call(ctx, r.remote, "ensure user", func(ctx context.Context) (domain.SiteUser, error) {
		return r.directory.EnsureUser(ctx, principal.LoginName)
	})
	if err != nil {
		return domain.EntityReference{}, err
	}
	if user.ID <= 0 {
		return domain.EntityReference{}, fmt.Errorf("%w: %q has no site user", domain.ErrEntityNotFound, identifier)
	}

	return domain.EntityReference{LookupID: user.ID, LoginName: user.LoginName}, nil
}
