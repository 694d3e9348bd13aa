package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leca/multi-image-host/internal/provider"
)

type contextKey string

const providerKey contextKey = "provider"

// ProviderMiddleware resolves the {provider} URL parameter and stores the
// provider in the request context. Unknown providers get a 404.
func ProviderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "provider")
		id, ok := provider.ParseID(raw)
		if !ok {
			NotFound(w, "Unknown provider: "+raw)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProvider(r.Context(), id)))
	})
}

// FixedProvider returns middleware that pins every request to id.
func FixedProvider(id provider.ID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithProvider(r.Context(), id)))
		})
	}
}

// WithProvider returns a copy of ctx carrying id.
func WithProvider(ctx context.Context, id provider.ID) context.Context {
	return context.WithValue(ctx, providerKey, id)
}

// GetProvider retrieves the provider stored in the context by ProviderMiddleware.
func GetProvider(ctx context.Context) (provider.ID, bool) {
	v, ok := ctx.Value(providerKey).(provider.ID)
	return v, ok
}
