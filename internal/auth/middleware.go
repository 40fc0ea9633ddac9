package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, principal)
}

// PrincipalFrom returns the authenticated caller, or nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *domain.Principal {
	principal, _ := ctx.Value(contextKey{}).(*domain.Principal)
	return principal
}

// Authenticated reports whether the request carries a verified principal.
func Authenticated(ctx context.Context) bool {
	return PrincipalFrom(ctx) != nil
}

// Middleware resolves the bearer token of each request. Requests without an
// Authorization header continue anonymously; a malformed or invalid token
// is rejected through onError.
func Middleware(tokens *Tokens, onError func(w http.ResponseWriter, status int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				onError(w, http.StatusUnauthorized)
				return
			}
			principal, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
			if err != nil {
				onError(w, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireProfile rejects with 403 callers whose profile is below profile.
func RequireProfile(profile domain.Profile, onError func(w http.ResponseWriter, status int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFrom(r.Context())
			if principal == nil || !principal.Profile.AtLeast(profile) {
				onError(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
