package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpattn/listimport/internal/domain"

	"golang.org/x/sync/errgroup"
)

// FieldClassifier returns the descriptor of a target field.
type FieldClassifier interface {
	Classify(ctx context.Context, name string) (domain.FieldDescriptor, error)
}

// ValueResolver converts a raw value for a classified field.
type ValueResolver interface {
	Resolve(ctx context.Context, field domain.FieldDescriptor, raw any) (domain.Value, error)
}

// Assembly is the outcome of mapping one record onto its target fields.
type Assembly struct {
	Values   domain.FieldValues
	Failures []*domain.FieldError
	// Skipped lists the fields whose kind has no resolver.
	Skipped []string
}

// Assembler builds the field value mapping of a record.
type Assembler struct {
	classifier  FieldClassifier
	resolver    ValueResolver
	concurrency int
	logger      *slog.Logger
}

func NewAssembler(classifier FieldClassifier, resolver ValueResolver, concurrency int, logger *slog.Logger) *Assembler {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		classifier:  classifier,
		resolver:    resolver,
		concurrency: concurrency,
		logger:      logger,
	}
}

type fieldOutcome struct {
	name    string
	value   domain.Value
	failure *domain.FieldError
	skipped bool
}

// Assemble maps every present field of record. Field-level failures are
// collected in the Assembly; the returned error is reserved for remote I/O
// failures and cancellation, which abandon the record.
func (a *Assembler) Assemble(ctx context.Context, record domain.Record) (Assembly, error) {
	var present []domain.RawField
	for _, field := range record.Fields() {
		if field.Present() {
			present = append(present, field)
		}
	}

	outcomes := make([]fieldOutcome, len(present))
	if a.concurrency == 1 || len(present) < 2 {
		for i, field := range present {
			outcome, err := a.assembleField(ctx, field)
			if err != nil {
				return Assembly{}, err
			}
			outcomes[i] = outcome
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.concurrency)
		for i, field := range present {
			i, field := i, field
			g.Go(func() error {
				outcome, err := a.assembleField(gctx, field)
				if err != nil {
					return err
				}
				outcomes[i] = outcome
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Assembly{}, err
		}
	}

	assembly := Assembly{Values: make(domain.FieldValues, len(outcomes))}
	for _, outcome := range outcomes {
		switch {
		case outcome.failure != nil:
			assembly.Failures = append(assembly.Failures, outcome.failure)
		case outcome.skipped:
			assembly.Skipped = append(assembly.Skipped, outcome.name)
		default:
			assembly.Values[outcome.name] = outcome.value
		}
	}
	return assembly, nil
}

func (a *Assembler) assembleField(ctx context.Context, raw domain.RawField) (fieldOutcome, error) {
	display := domain.FormatRaw(raw.Value)

	field, err := a.classifier.Classify(ctx, raw.Name)
	if err != nil {
		if domain.IsNotFound(err) {
			return fieldOutcome{name: raw.Name, failure: &domain.FieldError{Field: raw.Name, Value: display, Err: err}}, nil
		}
		return fieldOutcome{}, fmt.Errorf("field %s: %w", raw.Name, err)
	}

	if field.Kind == domain.KindUnsupported {
		a.logger.Debug("skipping field without resolver",
			slog.String("field", field.InternalName),
			slog.String("type", field.TypeAsString),
		)
		return fieldOutcome{name: field.InternalName, skipped: true}, nil
	}

	value, err := a.resolver.Resolve(ctx, field, raw.Value)
	if err != nil {
		if domain.IsNotFound(err) || errors.Is(err, domain.ErrUnsupportedFieldKind) {
			return fieldOutcome{name: field.InternalName, failure: &domain.FieldError{Field: field.InternalName, Value: display, Kind: field.Kind, Err: err}}, nil
		}
		return fieldOutcome{}, fmt.Errorf("field %s: %w", field.InternalName, err)
	}
	return fieldOutcome{name: field.InternalName, value: value}, nil
}
