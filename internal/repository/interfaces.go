package repository

import (
	"context"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/google/uuid"
)

// FieldRepository supplies target field metadata.
type FieldRepository interface {
	// GetByNames returns the descriptors of listTitle whose internal name or
	// title matches one of names. Unmatched names are simply absent.
	GetByNames(ctx context.Context, listTitle string, names []string) ([]domain.FieldDescriptor, error)
	List(ctx context.Context, listTitle string) ([]domain.FieldDescriptor, error)
}

// DirectoryRepository resolves people against the principal directory.
type DirectoryRepository interface {
	// ResolvePrincipal returns the first principal matching input by login,
	// email or display name, restricted to the given type and source sets.
	ResolvePrincipal(ctx context.Context, input string, principalType domain.PrincipalType, source domain.PrincipalSource) (domain.Principal, bool, error)
	// EnsureUser materializes the principal as a site user and returns it.
	EnsureUser(ctx context.Context, loginName string) (domain.SiteUser, error)
}

// ListItemRepository reads and writes list items. It is both the existence
// gate and the writer of an import.
type ListItemRepository interface {
	Exists(ctx context.Context, listTitle string, fieldName string, value string) (bool, error)
	// FindFirst returns the lowest-id item of listTitle whose fieldName equals
	// value under the comparison semantics of fieldType.
	FindFirst(ctx context.Context, listTitle string, fieldName string, fieldType string, value string) (domain.ListItem, bool, error)
	Create(ctx context.Context, listTitle string, properties map[string]any) (int64, error)
}

// TaxonomyRepository reads the term store.
type TaxonomyRepository interface {
	DefaultTermStore(ctx context.Context) (domain.TermStore, error)
	GetTermSet(ctx context.Context, termStoreID uuid.UUID, termSetID uuid.UUID) (domain.TermSet, error)
	// GetTermsByLabel returns matching terms in depth-first path order.
	GetTermsByLabel(ctx context.Context, termSetID uuid.UUID, match domain.LabelMatch) ([]domain.Term, error)
}

// ImportLogRepository stores import failures for later correction.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, listTitle string, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error)
}
