package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type directoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository wires the principal directory backed by pgxpool.
func NewDirectoryRepository(pool *pgxpool.Pool) DirectoryRepository {
	return &directoryRepository{pool: pool}
}

// Matches on login rank before email, and email before display name.
func (r *directoryRepository) ResolvePrincipal(ctx context.Context, input string, principalType domain.PrincipalType, source domain.PrincipalSource) (domain.Principal, bool, error) {
	if r.pool == nil {
		return domain.Principal{}, false, fmt.Errorf("directory repository not initialized")
	}

	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return domain.Principal{}, false, nil
	}

	var principal domain.Principal
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, login_name, display_name, email, principal_type, source
		 FROM principals
		 WHERE (principal_type & $2) <> 0
		   AND (source & $3) <> 0
		   AND (lower(login_name) = $1 OR lower(email) = $1 OR lower(display_name) = $1)
		 ORDER BY CASE
		            WHEN lower(login_name) = $1 THEN 0
		            WHEN lower(email) = $1 THEN 1
		            ELSE 2
		          END,
		          id
		 LIMIT 1`,
		needle,
		int(principalType),
		int(source),
	).Scan(
		&principal.ID,
		&principal.LoginName,
		&principal.DisplayName,
		&principal.Email,
		&principal.Type,
		&principal.Source,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Principal{}, false, nil
		}
		return domain.Principal{}, false, fmt.Errorf("failed to resolve principal: %w", err)
	}

	return principal, true, nil
}

func (r *directoryRepository) EnsureUser(ctx context.Context, loginName string) (domain.SiteUser, error) {
	if r.pool == nil {
		return domain.SiteUser{}, fmt.Errorf("directory repository not initialized")
	}

	var user domain.SiteUser
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO site_users (login_name, title, email)
		 SELECT login_name, display_name, email
		 FROM principals
		 WHERE login_name = $1
		 ON CONFLICT (login_name) DO UPDATE SET title = EXCLUDED.title, email = EXCLUDED.email
		 RETURNING id, login_name, title, email`,
		loginName,
	).Scan(&user.ID, &user.LoginName, &user.Title, &user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SiteUser{}, fmt.Errorf("%w: no principal with login %q", domain.ErrEntityNotFound, loginName)
		}
		return domain.SiteUser{}, fmt.Errorf("failed to ensure site user: %w", err)
	}

	return user, nil
}
