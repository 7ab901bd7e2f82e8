package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubObjects struct {
	bucket string
	key    string
}

func (s *stubObjects) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	s.bucket, s.key = bucket, key
	return io.NopCloser(strings.NewReader("Title\nItem 1\n")), nil
}

func TestOpenLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte("Title\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	name, reader, err := NewOpener(nil).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	defer reader.Close()
	if name != "items.csv" {
		t.Fatalf("expected base name, got %q", name)
	}
}

func TestOpenObject(t *testing.T) {
	objects := &stubObjects{}

	name, reader, err := NewOpener(objects).Open(context.Background(), "s3://imports/2024/items.xlsx")
	if err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	defer reader.Close()
	if name != "items.xlsx" || objects.bucket != "imports" || objects.key != "2024/items.xlsx" {
		t.Fatalf("unexpected object %q from %s/%s", name, objects.bucket, objects.key)
	}
}

func TestOpenObjectWithoutStore(t *testing.T) {
	_, _, err := NewOpener(nil).Open(context.Background(), "s3://imports/items.csv")
	if !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("expected storage disabled, got %v", err)
	}
}

func TestParseObjectLocation(t *testing.T) {
	bucket, key, err := ParseObjectLocation("s3:///items.csv")
	if err != nil || bucket != "" || key != "items.csv" {
		t.Fatalf("expected default bucket, got %q %q %v", bucket, key, err)
	}
	if _, _, err := ParseObjectLocation("s3://imports"); err == nil {
		t.Fatalf("expected missing key to fail")
	}
}
