package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL+"/", "apikey", 2*time.Second, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestHTTPClientCanView_Visible(t *testing.T) {
	var gotPath, gotKey, gotUser, gotProfile string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get(HeaderAPIKey)
		gotUser = r.Header.Get(HeaderUser)
		gotProfile = r.Header.Get(HeaderProfile)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uuid":"md-1","title":" Rivers of Europe "}`))
	})

	principal := &domain.Principal{ID: "42", Profile: domain.ProfileEditor}
	record, err := client.CanView(context.Background(), "md-1", principal)
	require.NoError(t, err)

	assert.Equal(t, "/records/md-1/visibility", gotPath)
	assert.Equal(t, "apikey", gotKey)
	assert.Equal(t, "42", gotUser)
	assert.Equal(t, "Editor", gotProfile)
	assert.Equal(t, domain.Record{UUID: "md-1", Title: "Rivers of Europe"}, record)
}

func TestHTTPClientCanView_Anonymous(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUser) != "" || r.Header.Get(HeaderProfile) != "" {
			t.Errorf("anonymous caller sent identity headers")
		}
		_, _ = w.Write([]byte(`{"uuid":"md-1"}`))
	})

	_, err := client.CanView(context.Background(), "md-1", nil)
	require.NoError(t, err)
}

func TestHTTPClientCanView_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrForbidden},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrForbidden},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.CanView(context.Background(), "md-1", nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClientCanView_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.CanView(context.Background(), "md-1", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestHTTPClientCanView_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"uuid":`))
	})
	_, err := client.CanView(context.Background(), "md-1", nil)
	assert.Error(t, err)
}

func TestHTTPClientCanView_OversizedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uuid":"md-1","title":"`))
		_, _ = w.Write([]byte(strings.Repeat("a", 2*maxResponseBody)))
		_, _ = w.Write([]byte(`"}`))
	})

	_, err := client.CanView(context.Background(), "md-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog response")
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
}
