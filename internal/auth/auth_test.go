package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

func reviewer() domain.Principal {
	return domain.Principal{ID: "7", Username: "rev", Email: "rev@example.org", Profile: domain.ProfileReviewer}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret")
	signed, err := tokens.Issue(reviewer(), time.Hour)
	require.NoError(t, err)

	principal, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "7", principal.ID)
	assert.Equal(t, "rev", principal.Username)
	assert.Equal(t, domain.ProfileReviewer, principal.Profile)
}

func TestTokensParse_Rejects(t *testing.T) {
	tokens := NewTokens("secret")

	other, err := NewTokens("other").Issue(reviewer(), time.Hour)
	require.NoError(t, err)

	past := NewTokens("secret")
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := past.Issue(reviewer(), time.Hour)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7", Issuer: "someone-else"})
	foreignIssuer, err := foreign.SignedString([]byte("secret"))
	require.NoError(t, err)

	noSubject, err := tokens.Issue(domain.Principal{Profile: domain.ProfileReviewer}, time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong secret":   other,
		"expired":        expired,
		"foreign issuer": foreignIssuer,
		"no subject":     noSubject,
		"garbage":        "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(token)
			assert.True(t, errors.Is(err, ErrInvalidToken), "err = %v", err)
		})
	}
}

func recordStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("secret")
	valid, err := tokens.Issue(reviewer(), time.Hour)
	require.NoError(t, err)

	var seen *domain.Principal
	handler := Middleware(tokens, recordStatus)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name          string
		header        string
		wantStatus    int
		wantPrincipal bool
	}{
		{name: "anonymous", header: "", wantStatus: http.StatusNoContent},
		{name: "valid bearer", header: "Bearer " + valid, wantStatus: http.StatusNoContent, wantPrincipal: true},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantPrincipal, seen != nil)
		})
	}
}

func TestRequireProfile(t *testing.T) {
	handler := RequireProfile(domain.ProfileReviewer, recordStatus)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		principal *domain.Principal
		want      int
	}{
		{name: "anonymous", principal: nil, want: http.StatusForbidden},
		{name: "editor", principal: &domain.Principal{ID: "1", Profile: domain.ProfileEditor}, want: http.StatusForbidden},
		{name: "reviewer", principal: &domain.Principal{ID: "2", Profile: domain.ProfileReviewer}, want: http.StatusNoContent},
		{name: "administrator", principal: &domain.Principal{ID: "3", Profile: domain.ProfileAdministrator}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
