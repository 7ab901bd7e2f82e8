package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/ingestion"

	"github.com/google/uuid"
)

func TestNewLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %s", buf.String())
	}
}

type memoryItems struct {
	items map[string][]domain.ListItem
}

func (m *memoryItems) Exists(ctx context.Context, listTitle, fieldName, value string) (bool, error) {
	_, found, err := m.FindFirst(ctx, listTitle, fieldName, "Text", value)
	return found, err
}

func (m *memoryItems) FindFirst(ctx context.Context, listTitle, fieldName, fieldType, value string) (domain.ListItem, bool, error) {
	for _, item := range m.items[listTitle] {
		if domain.FormatRaw(item.Properties[fieldName]) == value {
			return item, true, nil
		}
	}
	return domain.ListItem{}, false, nil
}

func (m *memoryItems) Create(ctx context.Context, listTitle string, properties map[string]any) (int64, error) {
	id := int64(len(m.items[listTitle]) + 1)
	m.items[listTitle] = append(m.items[listTitle], domain.ListItem{ID: id, Properties: properties})
	return id, nil
}

type memoryDirectory struct{}

func (memoryDirectory) ResolvePrincipal(ctx context.Context, input string, principalType domain.PrincipalType, source domain.PrincipalSource) (domain.Principal, bool, error) {
	return domain.Principal{}, false, nil
}

func (memoryDirectory) EnsureUser(ctx context.Context, loginName string) (domain.SiteUser, error) {
	return domain.SiteUser{}, domain.ErrEntityNotFound
}

type memoryTaxonomy struct{}

func (memoryTaxonomy) DefaultTermStore(ctx context.Context) (domain.TermStore, error) {
	return domain.TermStore{}, nil
}

func (memoryTaxonomy) GetTermSet(ctx context.Context, storeID, setID uuid.UUID) (domain.TermSet, error) {
	return domain.TermSet{}, domain.ErrTermNotFound
}

func (memoryTaxonomy) GetTermsByLabel(ctx context.Context, setID uuid.UUID, match domain.LabelMatch) ([]domain.Term, error) {
	return nil, nil
}

type memoryFields struct{}

func (memoryFields) Load(ctx context.Context, name string) (domain.FieldDescriptor, error) {
	switch name {
	case "Title":
		return domain.NewFieldDescriptor(uuid.Nil, "Title", "Title", domain.TypeKindText, "Text", uuid.Nil), nil
	case "Lookup_x0020_Field":
		return domain.NewFieldDescriptor(uuid.Nil, "Lookup_x0020_Field", "Lookup Field", domain.TypeKindLookup, "Lookup", uuid.Nil), nil
	}
	return domain.FieldDescriptor{}, domain.ErrUnknownField
}

type memoryCache struct {
	values map[string]string
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.values[key] = value
	return nil
}

func TestNewServiceWiresCache(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Lookup = config.LookupConfig{ListName: "Customers", FieldName: "Title", FieldType: "Text"}
	items := &memoryItems{items: map[string][]domain.ListItem{
		"Customers": {{ID: 42, Properties: map[string]any{"Title": "Acme Corp"}}},
	}}
	store := &memoryCache{values: map[string]string{}}

	service := NewService(cfg, NewLogger(&bytes.Buffer{}, "error"), memoryFields{}, Repositories{
		Directory: memoryDirectory{},
		Items:     items,
		Taxonomy:  memoryTaxonomy{},
	}, store)

	data := "Title,Lookup Field\nOne,Acme Corp\nTwo,Acme Corp\n"
	summary, err := service.Import(context.Background(), ingestion.Request{FileName: "in.csv", Data: strings.NewReader(data)})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if summary.Created != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(store.values) != 1 {
		t.Fatalf("expected one cached lookup, got %v", store.values)
	}
	created := items.items[cfg.Target.ListName]
	if lookup, ok := created[1].Properties["Lookup_x0020_Field"].(map[string]any); !ok || lookup["LookupId"] != int64(42) {
		t.Fatalf("unexpected lookup value %#v", created[1].Properties["Lookup_x0020_Field"])
	}
}
