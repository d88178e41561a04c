// Package geocoding forwards search and reverse lookups to a Nominatim instance.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "swachhsetu/internal/errors"
)

const (
	// DefaultBaseURL is the public Nominatim API endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the service, as Nominatim's usage policy requires.
	DefaultUserAgent = "SwachhSetu/1.0 (+https://swachhsetu.in)"

	requestTimeout = 15 * time.Second
	maxBodyBytes   = 2 << 20
)

// Geocoder is the lookup surface used by handlers.
type Geocoder interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
	Reverse(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// Client is a pass-through Nominatim client. It never retries and never caches.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Geocoder = (*Client)(nil)

// NewClient creates a client. Empty arguments fall back to the public defaults.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Search returns Nominatim's result array for a free-text query.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("addressdetails", "1")
	params.Set("limit", "5")
	return c.get(ctx, "/search", params)
}

// Reverse returns Nominatim's address object for a coordinate.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("addressdetails", "1")
	return c.get(ctx, "/reverse", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: nominatim %s: %v", apperrors.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read nominatim response: %v", apperrors.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nominatim %s returned %d", apperrors.ErrUpstream, path, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: nominatim %s returned invalid json", apperrors.ErrUpstream, path)
	}
	return json.RawMessage(body), nil
}
