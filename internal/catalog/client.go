package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

var (
	// ErrNotFound is returned when the catalog has no record with the requested uuid.
	ErrNotFound = errors.New("catalog: record not found")
	// ErrForbidden is returned when the caller may not view the record.
	ErrForbidden = errors.New("catalog: record not viewable")
)

const maxResponseBody = 1 << 20 // 1 MiB

// Headers carrying the caller identity to the catalog.
const (
	HeaderAPIKey  = "X-API-Key"
	HeaderUser    = "X-Catalog-User"
	HeaderProfile = "X-Catalog-Profile"
)

// Client answers record visibility questions. A nil principal is an anonymous caller.
type Client interface {
	CanView(ctx context.Context, metadataUUID string, principal *domain.Principal) (domain.Record, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient constructs a new HTTP-backed catalog client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// CanView asks the catalog whether principal may view the record.
func (c *HTTPClient) CanView(ctx context.Context, metadataUUID string, principal *domain.Principal) (domain.Record, error) {
	endpoint := c.baseURL.JoinPath("records", metadataUUID, "visibility")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return domain.Record{}, err
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if principal != nil {
		req.Header.Set(HeaderUser, principal.ID)
		req.Header.Set(HeaderProfile, string(principal.Profile))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Record{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&payload); err != nil {
			return domain.Record{}, fmt.Errorf("decode catalog response: %w", err)
		}
		return convertToRecord(metadataUUID, payload), nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Record{}, ErrForbidden
	case http.StatusNotFound:
		return domain.Record{}, ErrNotFound
	default:
		c.logger.Warn().Int("status", resp.StatusCode).Str("metadata", metadataUUID).Msg("unexpected catalog status")
		return domain.Record{}, fmt.Errorf("catalog: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	UUID  string  `json:"uuid"`
	Title *string `json:"title"`
}

func convertToRecord(requested string, payload apiResponse) domain.Record {
	record := domain.Record{UUID: strings.TrimSpace(payload.UUID)}
	if record.UUID == "" {
		record.UUID = requested
	}
	if payload.Title != nil {
		record.Title = strings.TrimSpace(*payload.Title)
	}
	return record
}
