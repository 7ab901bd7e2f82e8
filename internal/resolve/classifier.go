package resolve

import (
	"context"
	"fmt"

	"github.com/rpattn/listimport/internal/domain"
)

// FieldSource returns the descriptor of a target field by internal name or
// title. Unknown names yield domain.ErrUnknownField.
type FieldSource interface {
	Load(ctx context.Context, name string) (domain.FieldDescriptor, error)
}

// Classifier determines how a target field's values must be resolved.
type Classifier struct {
	fields FieldSource
	remote *Remote
}

func NewClassifier(fields FieldSource, remote *Remote) *Classifier {
	return &Classifier{fields: fields, remote: remote}
}

// Classify returns the field descriptor carrying its ResolutionKind.
func (c *Classifier) Classify(ctx context.Context, name string) (domain.FieldDescriptor, error) {
	field, err := call(ctx, c.remote, "classify field", func(ctx context.Context) (domain.FieldDescriptor, error) {
		return c.fields.Load(ctx, name)
	})
	if err != nil {
		return domain.FieldDescriptor{}, fmt.Errorf("classify %q: %w", name, err)
	}
	return field, nil
}
