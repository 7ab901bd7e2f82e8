package db

import (
	"strings"
	"testing"
)

func TestConfigURLEscapesCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = "p@ss/word"

	got := cfg.URL()
	if !strings.HasPrefix(got, "pgx5://postgres:") {
		t.Fatalf("unexpected scheme or user in %q", got)
	}
	if strings.Contains(got, "p@ss/word") {
		t.Fatalf("expected password to be escaped, got %q", got)
	}
	if !strings.HasSuffix(got, "/list_store?sslmode=disable") {
		t.Fatalf("unexpected database or query in %q", got)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := DefaultConfig()
	want := "host=localhost port=5432 user=postgres password=admin dbname=list_store sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
