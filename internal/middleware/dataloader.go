package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rpattn/listimport/internal/domain"
	"github.com/rpattn/listimport/internal/fieldloader"
	"github.com/rpattn/listimport/internal/repository"
)

type ctxKey string

const fieldLoaderKey ctxKey = "fieldLoader"

// FieldLoaderMiddleware attaches a fresh field loader to every request so
// each import run sees current field metadata.
func FieldLoaderMiddleware(repo repository.FieldRepository, listTitle string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := fieldloader.NewFieldLoader(repo, listTitle)
			ctx := context.WithValue(r.Context(), fieldLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FieldLoaderFromContext retrieves the field loader from context
func FieldLoaderFromContext(ctx context.Context) *fieldloader.FieldLoader {
	if l, ok := ctx.Value(fieldLoaderKey).(*fieldloader.FieldLoader); ok {
		return l
	}
	return nil
}

// RequestFields loads field descriptors through the loader of the current
// request.
type RequestFields struct{}

func (RequestFields) Load(ctx context.Context, name string) (domain.FieldDescriptor, error) {
	loader := FieldLoaderFromContext(ctx)
	if loader == nil {
		return domain.FieldDescriptor{}, fmt.Errorf("no field loader in context")
	}
	return loader.Load(ctx, name)
}
