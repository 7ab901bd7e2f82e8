package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrStorageDisabled is returned for object locations when no object store
// was configured.
var ErrStorageDisabled = errors.New("object storage not configured")

const objectScheme = "s3://"

// ObjectStore opens objects by bucket and key.
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Opener resolves input locations. Plain paths are read from disk and
// s3://bucket/key locations from the object store.
type Opener struct {
	objects ObjectStore
}

// NewOpener creates an opener. objects may be nil.
func NewOpener(objects ObjectStore) *Opener {
	return &Opener{objects: objects}
}

// Open returns the base file name of location, used to pick a parser, and
// a reader over its content.
func (o *Opener) Open(ctx context.Context, location string) (string, io.ReadCloser, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", nil, errors.New("input location is required")
	}

	if !strings.HasPrefix(strings.ToLower(location), objectScheme) {
		file, err := os.Open(location)
		if err != nil {
			return "", nil, fmt.Errorf("open input file: %w", err)
		}
		return filepath.Base(location), file, nil
	}

	if o.objects == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrStorageDisabled, location)
	}
	bucket, key, err := ParseObjectLocation(location)
	if err != nil {
		return "", nil, err
	}
	reader, err := o.objects.Open(ctx, bucket, key)
	if err != nil {
		return "", nil, err
	}
	return path.Base(key), reader, nil
}

// ParseObjectLocation splits s3://bucket/key. An empty bucket selects the
// store's default bucket.
func ParseObjectLocation(location string) (string, string, error) {
	if !strings.HasPrefix(strings.ToLower(location), objectScheme) {
		return "", "", fmt.Errorf("not an object location: %s", location)
	}
	rest := location[len(objectScheme):]
	bucket, key, ok := strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if !ok || key == "" {
		return "", "", fmt.Errorf("object location %s has no key", location)
	}
	return bucket, key, nil
}
