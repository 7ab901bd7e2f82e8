package export

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/google/uuid"
)

type stubLogRepo struct {
	entries []domain.ImportLogEntry
	calls   int
}

func (s *stubLogRepo) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubLogRepo) List(ctx context.Context, listTitle, fileName string, limit, offset int) ([]domain.ImportLogEntry, error) {
	s.calls++
	var matched []domain.ImportLogEntry
	for _, entry := range s.entries {
		if entry.ListTitle == listTitle && (fileName == "" || entry.FileName == fileName) {
			matched = append(matched, entry)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func seededRepo() *stubLogRepo {
	runID := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	row := 3
	repo := &stubLogRepo{}
	for i := 0; i < 5; i++ {
		repo.entries = append(repo.entries, domain.ImportLogEntry{
			RunID:        runID,
			ListTitle:    "Projects",
			FileName:     "projects.csv",
			RowNumber:    &row,
			RecordKey:    "Beta",
			Field:        "Person_x0020_Field",
			FailureKind:  "EntityNotFound",
			ErrorMessage: "entity not found: \"Nobody\"",
			CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		})
	}
	repo.entries = append(repo.entries, domain.ImportLogEntry{RunID: runID, ListTitle: "Other", FileName: "projects.csv", FailureKind: "MissingKey"})
	return repo
}

func TestWriteFailuresPagesThroughLogs(t *testing.T) {
	repo := seededRepo()
	service := NewService(repo, WithPageSize(2))

	var buf strings.Builder
	result, err := service.WriteFailures(context.Background(), &buf, "Projects", "projects.csv")
	if err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if result.Rows != 5 || repo.calls != 3 {
		t.Fatalf("expected 5 rows over 3 pages, got %d rows in %d calls", result.Rows, repo.calls)
	}
	if result.Bytes != int64(buf.Len()) {
		t.Fatalf("expected byte count %d, got %d", buf.Len(), result.Bytes)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 6 || records[0][0] != "run_id" {
		t.Fatalf("unexpected csv %v", records)
	}
	if records[1][1] != "3" || records[1][2] != "Beta" || records[1][5] != "entity not found: \"Nobody\"" || records[1][6] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected row %v", records[1])
	}
}

func TestReportFileName(t *testing.T) {
	if got := ReportFileName("Import Target", "Q1 Projects.csv"); got != "failures-import-target-q1-projects.csv" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := ReportFileName("", ""); got != "failures.csv" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestHandlerServesCSV(t *testing.T) {
	handler := NewHTTPHandler(NewService(seededRepo()), "Projects", nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/import/logs/export?file=projects.csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if strings.Count(rec.Body.String(), "\n") != 6 {
		t.Fatalf("expected header and 5 rows, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import/logs/export", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed, got %d", rec.Code)
	}
}
