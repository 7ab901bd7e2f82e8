package fieldloader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"

	"github.com/google/uuid"
)

func TestFieldLoaderMemoizesDescriptors(t *testing.T) {
	repo := &stubFieldRepo{fields: []domain.FieldDescriptor{
		domain.NewFieldDescriptor(uuid.New(), "Title", "Title", domain.TypeKindText, "Text", uuid.Nil),
	}}
	loader := NewFieldLoader(repo, "Import Target")

	for i := 0; i < 3; i++ {
		field, err := loader.Load(context.Background(), "Title")
		if err != nil {
			t.Fatalf("load returned error: %v", err)
		}
		if field.Kind != domain.KindScalar {
			t.Fatalf("unexpected kind %s", field.Kind)
		}
	}

	if repo.callCount() != 1 {
		t.Fatalf("expected a single metadata lookup, got %d", repo.callCount())
	}
}

func TestFieldLoaderMatchesTitle(t *testing.T) {
	repo := &stubFieldRepo{fields: []domain.FieldDescriptor{
		domain.NewFieldDescriptor(uuid.New(), "Person_x0020_Field", "Person Field", domain.TypeKindUser, "User", uuid.Nil),
	}}
	loader := NewFieldLoader(repo, "Import Target")

	field, err := loader.Load(context.Background(), "Person Field")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if field.InternalName != "Person_x0020_Field" {
		t.Fatalf("expected canonical internal name, got %q", field.InternalName)
	}
}

func TestFieldLoaderUnknownField(t *testing.T) {
	loader := NewFieldLoader(&stubFieldRepo{}, "Import Target")

	_, err := loader.Load(context.Background(), "Nope")
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestFieldLoaderRetriesTransientFailures(t *testing.T) {
	repo := &stubFieldRepo{
		err: errors.New("connection reset"),
		fields: []domain.FieldDescriptor{
			domain.NewFieldDescriptor(uuid.New(), "Title", "Title", domain.TypeKindText, "Text", uuid.Nil),
		},
	}
	loader := NewFieldLoader(repo, "Import Target")

	if _, err := loader.Load(context.Background(), "Title"); err == nil {
		t.Fatalf("expected first load to fail")
	}

	repo.setErr(nil)
	if _, err := loader.Load(context.Background(), "Title"); err != nil {
		t.Fatalf("expected second load to succeed after eviction, got %v", err)
	}
	if repo.callCount() != 2 {
		t.Fatalf("expected two metadata lookups, got %d", repo.callCount())
	}
}

type stubFieldRepo struct {
	mu     sync.Mutex
	fields []domain.FieldDescriptor
	err    error
	calls  int
}

func (s *stubFieldRepo) GetByNames(ctx context.Context, listTitle string, names []string) ([]domain.FieldDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}

func (s *stubFieldRepo) List(ctx context.Context, listTitle string) ([]domain.FieldDescriptor, error) {
	return s.fields, nil
}

func (s *stubFieldRepo) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubFieldRepo) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

var _ repository.FieldRepository = (*stubFieldRepo)(nil)
