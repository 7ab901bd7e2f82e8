package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"
)

const defaultPageSize = 500

var failureHeaders = []string{"run_id", "row_number", "record_key", "field", "failure_kind", "error_message", "created_at"}

// Service streams recorded import failures as CSV correction reports.
type Service struct {
	logRepo  repository.ImportLogRepository
	pageSize int
}

// Option configures the export service.
type Option func(*Service)

// WithPageSize overrides how many log entries are fetched per query.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func NewService(logRepo repository.ImportLogRepository, opts ...Option) *Service {
	s := &Service{logRepo: logRepo, pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result reports what a report write produced.
type Result struct {
	Rows  int
	Bytes int64
}

// WriteFailures writes every failure recorded for listTitle, optionally
// restricted to fileName, newest first.
func (s *Service) WriteFailures(ctx context.Context, w io.Writer, listTitle, fileName string) (Result, error) {
	buffered := bufio.NewWriterSize(w, 64<<10)
	counter := &countingWriter{writer: buffered}
	csvWriter := csv.NewWriter(counter)

	if err := csvWriter.Write(failureHeaders); err != nil {
		return Result{}, fmt.Errorf("write header: %w", err)
	}

	rowsExported := 0
	offset := 0
	row := make([]string, len(failureHeaders))
	for {
		if ctx.Err() != nil {
			return Result{Rows: rowsExported, Bytes: counter.count}, ctx.Err()
		}
		entries, err := s.logRepo.List(ctx, listTitle, fileName, s.pageSize, offset)
		if err != nil {
			return Result{Rows: rowsExported, Bytes: counter.count}, fmt.Errorf("list import logs: %w", err)
		}
		for _, entry := range entries {
			fillFailureRow(row, entry)
			if err := csvWriter.Write(row); err != nil {
				return Result{Rows: rowsExported, Bytes: counter.count}, fmt.Errorf("write failure row: %w", err)
			}
			rowsExported++
		}
		if len(entries) < s.pageSize {
			break
		}
		offset += s.pageSize
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return Result{Rows: rowsExported, Bytes: counter.count}, fmt.Errorf("flush rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return Result{Rows: rowsExported, Bytes: counter.count}, fmt.Errorf("flush buffered rows: %w", err)
	}
	return Result{Rows: rowsExported, Bytes: counter.count}, nil
}

func fillFailureRow(row []string, entry domain.ImportLogEntry) {
	row[0] = entry.RunID.String()
	row[1] = ""
	if entry.RowNumber != nil {
		row[1] = strconv.Itoa(*entry.RowNumber)
	}
	row[2] = entry.RecordKey
	row[3] = entry.Field
	row[4] = entry.FailureKind
	row[5] = entry.ErrorMessage
	row[6] = ""
	if !entry.CreatedAt.IsZero() {
		row[6] = entry.CreatedAt.UTC().Format(time.RFC3339)
	}
}

// ReportFileName builds the download name of a report.
func ReportFileName(listTitle, fileName string) string {
	parts := []string{"failures"}
	if list := sanitizeFileComponent(listTitle); list != "" {
		parts = append(parts, list)
	}
	if file := sanitizeFileComponent(strings.TrimSuffix(fileName, ".csv")); file != "" {
		parts = append(parts, file)
	}
	return strings.Join(parts, "-") + ".csv"
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	return strings.Trim(builder.String(), "-")
}

type countingWriter struct {
	writer io.Writer
	count  int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.writer.Write(p)
	w.count += int64(n)
	return n, err
}
