package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/repository"
	"github.com/rpattn/listimport/internal/resolve"

	"github.com/google/uuid"
)

// Service imports tabular records into the target list.
type Service struct {
	items     repository.ListItemRepository
	logRepo   repository.ImportLogRepository
	assembler *Assembler
	remote    *resolve.Remote
	target    config.TargetConfig
	layout    domain.Layout
	policy    string
	logger    *slog.Logger
}

// NewService creates a new import service.
func NewService(
	cfg config.Config,
	items repository.ListItemRepository,
	logRepo repository.ImportLogRepository,
	assembler *Assembler,
	remote *resolve.Remote,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:     items,
		logRepo:   logRepo,
		assembler: assembler,
		remote:    remote,
		target:    cfg.Target,
		layout:    cfg.Layout(),
		policy:    cfg.Import.OnFieldError,
		logger:    logger,
	}
}

// Request describes the import input.
type Request struct {
	FileName string
	Data     io.Reader
}

// FieldFailure describes a field left out of a record.
type FieldFailure struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RecordFailure describes a record that was not written, or was written
// without some of its fields.
type RecordFailure struct {
	RowNumber int            `json:"rowNumber"`
	Key       string         `json:"key,omitempty"`
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Fields    []FieldFailure `json:"fields,omitempty"`
}

// Summary returns import level metrics.
type Summary struct {
	RunID     uuid.UUID `json:"runId"`
	ListTitle string    `json:"listTitle"`
	FileName  string    `json:"fileName"`
	TotalRows int       `json:"totalRows"`
	Created   int       `json:"created"`
	// Existing counts records whose key was already present.
	Existing int `json:"existing"`
	// Rejected counts records dropped before resolution or by the reject policy.
	Rejected int `json:"rejected"`
	// Failed counts records abandoned on remote I/O failures.
	Failed         int             `json:"failed"`
	RecordFailures []RecordFailure `json:"recordFailures"`
	// PartialRecords lists records created without some of their fields.
	PartialRecords []RecordFailure `json:"partialRecords"`
	SkippedFields  []string        `json:"skippedFields"`
}

// Import reads the file and writes every record whose key is not yet
// present in the target list. Record failures never stop the run.
func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{
		RunID:          uuid.New(),
		ListTitle:      s.target.ListName,
		FileName:       req.FileName,
		RecordFailures: []RecordFailure{},
		PartialRecords: []RecordFailure{},
		SkippedFields:  []string{},
	}

	if req.Data == nil {
		return summary, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, fmt.Errorf("failed to read input: %w", err)
	}

	records, rowErrors, err := ReadRecords(req.FileName, payload, s.layout)
	if err != nil {
		return summary, err
	}

	summary.TotalRows = len(records) + len(rowErrors)
	logger := s.logger.With(
		slog.String("run_id", summary.RunID.String()),
		slog.String("list", s.target.ListName),
		slog.String("file", req.FileName),
	)
	logger.Info("import started", slog.Int("rows", summary.TotalRows), slog.String("policy", s.policy))

	for _, rowErr := range rowErrors {
		summary.Rejected++
		summary.RecordFailures = append(summary.RecordFailures, RecordFailure{
			RowNumber: rowErr.RowNumber,
			Kind:      "InvalidRow",
			Message:   rowErr.Error(),
		})
		logger.Warn("row rejected", slog.Int("row", rowErr.RowNumber), slog.String("error", rowErr.Error()))
		s.recordFailure(ctx, summary, rowErr.RowNumber, "", rowErr.Column, "InvalidRow", rowErr.Message)
	}

	var keyField domain.FieldDescriptor
	if len(records) > 0 {
		keyField, err = s.keyField(ctx)
		if err != nil {
			logger.Error("key field not usable", slog.String("field", s.layout.KeyField), slog.String("error", err.Error()))
			return summary, err
		}
	}

	skipped := make(map[string]struct{})
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			logger.Warn("import cancelled", slog.String("error", err.Error()))
			return summary, err
		}
		s.importRecord(ctx, logger, keyField, record, &summary, skipped)
	}

	logger.Info("import finished",
		slog.Int("created", summary.Created),
		slog.Int("existing", summary.Existing),
		slog.Int("rejected", summary.Rejected),
		slog.Int("failed", summary.Failed),
		slog.Int("partial", len(summary.PartialRecords)),
	)
	return summary, nil
}

// keyField classifies the configured key field once per run. The gate and the
// writer both address it by its internal name.
func (s *Service) keyField(ctx context.Context) (domain.FieldDescriptor, error) {
	field, err := s.assembler.classifier.Classify(ctx, s.layout.KeyField)
	if err != nil {
		return domain.FieldDescriptor{}, fmt.Errorf("key field %s: %w", s.layout.KeyField, err)
	}
	if field.Kind != domain.KindScalar {
		return domain.FieldDescriptor{}, fmt.Errorf("%w: %s is %s", domain.ErrKeyFieldNotScalar, field.InternalName, field.Kind)
	}
	return field, nil
}

func (s *Service) importRecord(ctx context.Context, logger *slog.Logger, keyField domain.FieldDescriptor, record domain.Record, summary *Summary, skipped map[string]struct{}) {
	row := record.RowNumber()
	key := record.Key()
	logger = logger.With(slog.Int("row", row), slog.String("key", key))

	if key == "" {
		err := fmt.Errorf("%w: field %s", domain.ErrMissingKey, record.KeyField())
		s.rejectRecord(ctx, logger, summary, record, err, nil)
		return
	}

	var exists bool
	err := s.remote.Do(ctx, "check existing item", func(ctx context.Context) error {
		found, err := s.items.Exists(ctx, s.target.ListName, keyField.InternalName, key)
		exists = found
		return err
	})
	if err != nil {
		s.failRecord(ctx, logger, summary, record, err)
		return
	}
	if exists {
		summary.Existing++
		logger.Info("item already exists, skipping")
		return
	}

	assembly, err := s.assembler.Assemble(ctx, record)
	if err != nil {
		s.failRecord(ctx, logger, summary, record, err)
		return
	}

	for _, name := range assembly.Skipped {
		if _, seen := skipped[name]; !seen {
			skipped[name] = struct{}{}
			summary.SkippedFields = append(summary.SkippedFields, name)
			logger.Info("field has no resolver, value not imported", slog.String("field", name))
		}
	}

	fieldFailures := make([]FieldFailure, 0, len(assembly.Failures))
	for _, failure := range assembly.Failures {
		kind := domain.FailureKind(failure)
		fieldFailures = append(fieldFailures, FieldFailure{
			Field:   failure.Field,
			Value:   failure.Value,
			Kind:    kind,
			Message: failure.Err.Error(),
		})
		logger.Warn("field not resolved",
			slog.String("field", failure.Field),
			slog.String("kind", kind),
			slog.String("error", failure.Err.Error()),
		)
		s.recordFailure(ctx, *summary, row, key, failure.Field, kind, failure.Error())
	}

	if _, ok := assembly.Values[keyField.InternalName]; !ok {
		err := fmt.Errorf("%w: field %s not assembled", domain.ErrMissingKey, keyField.InternalName)
		s.rejectRecord(ctx, logger, summary, record, err, fieldFailures)
		return
	}

	if len(fieldFailures) > 0 && s.policy == config.OnFieldErrorReject {
		err := fmt.Errorf("%d field(s) not resolved", len(fieldFailures))
		s.rejectRecord(ctx, logger, summary, record, err, fieldFailures)
		return
	}

	id, err := s.items.Create(ctx, s.target.ListName, assembly.Values.Properties())
	if err != nil {
		s.failRecord(ctx, logger, summary, record, fmt.Errorf("%w: create item: %w", domain.ErrRemoteIO, err))
		return
	}

	summary.Created++
	if len(fieldFailures) > 0 {
		summary.PartialRecords = append(summary.PartialRecords, RecordFailure{
			RowNumber: row,
			Key:       key,
			Kind:      "PartialRecord",
			Message:   fmt.Sprintf("created without %d field(s)", len(fieldFailures)),
			Fields:    fieldFailures,
		})
	}
	logger.Info("item created", slog.Int64("item_id", id), slog.Int("fields", len(assembly.Values)))
}

func (s *Service) rejectRecord(ctx context.Context, logger *slog.Logger, summary *Summary, record domain.Record, err error, fields []FieldFailure) {
	summary.Rejected++
	kind := domain.FailureKind(err)
	if len(fields) > 0 && !errors.Is(err, domain.ErrMissingKey) {
		kind = "FieldErrors"
	}
	summary.RecordFailures = append(summary.RecordFailures, RecordFailure{
		RowNumber: record.RowNumber(),
		Key:       record.Key(),
		Kind:      kind,
		Message:   err.Error(),
		Fields:    fields,
	})
	logger.Warn("record rejected", slog.String("kind", kind), slog.String("error", err.Error()))
	if kind != "FieldErrors" {
		s.recordFailure(ctx, *summary, record.RowNumber(), record.Key(), "", kind, err.Error())
	}
}

func (s *Service) failRecord(ctx context.Context, logger *slog.Logger, summary *Summary, record domain.Record, err error) {
	summary.Failed++
	kind := domain.FailureKind(err)
	summary.RecordFailures = append(summary.RecordFailures, RecordFailure{
		RowNumber: record.RowNumber(),
		Key:       record.Key(),
		Kind:      kind,
		Message:   err.Error(),
	})
	logger.Error("record failed", slog.String("kind", kind), slog.String("error", err.Error()))
	s.recordFailure(ctx, *summary, record.RowNumber(), record.Key(), "", kind, err.Error())
}

// recordFailure stores a failure for later correction. Storage errors are
// logged and otherwise ignored.
func (s *Service) recordFailure(ctx context.Context, summary Summary, rowNumber int, key, field, kind, message string) {
	if s.logRepo == nil {
		return
	}
	entry := domain.ImportLogEntry{
		RunID:        summary.RunID,
		ListTitle:    summary.ListTitle,
		FileName:     summary.FileName,
		RecordKey:    key,
		Field:        field,
		FailureKind:  kind,
		ErrorMessage: message,
	}
	if rowNumber > 0 {
		entry.RowNumber = &rowNumber
	}
	if err := s.logRepo.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to record import failure", slog.String("error", err.Error()))
	}
}

// Logs lists the failures recorded for the target list, optionally
// restricted to one file.
func (s *Service) Logs(ctx context.Context, fileName string, limit, offset int) ([]domain.ImportLogEntry, error) {
	if s.logRepo == nil {
		return []domain.ImportLogEntry{}, nil
	}
	return s.logRepo.List(ctx, s.target.ListName, strings.TrimSpace(fileName), limit, offset)
}
