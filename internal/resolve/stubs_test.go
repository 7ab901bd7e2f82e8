package resolve

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/domain"

	"github.com/google/uuid"
)

func testRemote(attempts int) *Remote {
	return NewRemote(config.RemoteConfig{
		CallTimeout: time.Second,
		MaxAttempts: attempts,
	}, nil)
}

type stubDirectory struct {
	principals []domain.Principal
	users      map[string]domain.SiteUser
	failures   int
	calls      int
	ensured    []string
}

func (s *stubDirectory) ResolvePrincipal(ctx context.Context, input string, principalType domain.PrincipalType, source domain.PrincipalSource) (domain.Principal, bool, error) {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return domain.Principal{}, false, context.DeadlineExceeded
	}
	for _, principal := range s.principals {
		if principal.Type&principalType == 0 || principal.Source&source == 0 {
			continue
		}
		if strings.EqualFold(principal.LoginName, input) ||
			strings.EqualFold(principal.Email, input) ||
			strings.EqualFold(principal.DisplayName, input) {
			return principal, true, nil
		}
	}
	return domain.Principal{}, false, nil
}

func (s *stubDirectory) EnsureUser(ctx context.Context, loginName string) (domain.SiteUser, error) {
	s.ensured = append(s.ensured, loginName)
	user, ok := s.users[loginName]
	if !ok {
		return domain.SiteUser{}, domain.ErrEntityNotFound
	}
	return user, nil
}

type stubItems struct {
	items   map[string][]domain.ListItem
	created []map[string]any
	calls   int
	err     error
}

func (s *stubItems) Exists(ctx context.Context, listTitle, fieldName, value string) (bool, error) {
	for _, item := range s.items[listTitle] {
		if domain.FormatRaw(item.Properties[fieldName]) == value {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubItems) FindFirst(ctx context.Context, listTitle, fieldName, fieldType, value string) (domain.ListItem, bool, error) {
	s.calls++
	if s.err != nil {
		return domain.ListItem{}, false, s.err
	}
	for _, item := range s.items[listTitle] {
		if domain.FormatRaw(item.Properties[fieldName]) == value {
			return item, true, nil
		}
	}
	return domain.ListItem{}, false, nil
}

func (s *stubItems) Create(ctx context.Context, listTitle string, properties map[string]any) (int64, error) {
	s.created = append(s.created, properties)
	return int64(len(s.created)), nil
}

type stubTaxonomy struct {
	store domain.TermStore
	sets  map[uuid.UUID][]domain.Term
	// labels maps a term id to its labels per lcid.
	labels map[uuid.UUID]map[int]string
	block  bool
}

func (s *stubTaxonomy) DefaultTermStore(ctx context.Context) (domain.TermStore, error) {
	return s.store, nil
}

func (s *stubTaxonomy) GetTermSet(ctx context.Context, termStoreID, termSetID uuid.UUID) (domain.TermSet, error) {
	if _, ok := s.sets[termSetID]; !ok || termStoreID != s.store.ID {
		return domain.TermSet{}, domain.ErrTermNotFound
	}
	return domain.TermSet{ID: termSetID, TermStoreID: termStoreID}, nil
}

func (s *stubTaxonomy) GetTermsByLabel(ctx context.Context, termSetID uuid.UUID, match domain.LabelMatch) ([]domain.Term, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	var terms []domain.Term
	for _, term := range s.sets[termSetID] {
		if match.TrimUnavailable && !term.IsAvailableForTagging {
			continue
		}
		if s.labels[term.ID][match.LCID] == match.TermLabel {
			terms = append(terms, term)
		}
	}
	return terms, nil
}

type stubFields struct {
	fields map[string]domain.FieldDescriptor
}

func (s *stubFields) Load(ctx context.Context, name string) (domain.FieldDescriptor, error) {
	field, ok := s.fields[name]
	if !ok {
		return domain.FieldDescriptor{}, domain.ErrUnknownField
	}
	return field, nil
}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
