// Package ai is an HTTP client for the external AI service (forensic image
// analysis, linguistic analysis and the chatbot). Responses are opaque JSON.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "swachhsetu/internal/errors"
)

const maxResponseBytes = 8 << 20

// Analyzer is the AI surface used by the service layer.
type Analyzer interface {
	Forensic(ctx context.Context, image Upload) (json.RawMessage, error)
	Linguistic(ctx context.Context, transcript, language string) (json.RawMessage, error)
	ChatGreeting(ctx context.Context) (json.RawMessage, error)
	Chat(ctx context.Context, message, sessionID string) (json.RawMessage, error)
}

// Upload is an image forwarded to forensic analysis.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Client talks to the AI service over HTTP.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	linguisticTimeout time.Duration
}

var _ Analyzer = (*Client)(nil)

// NewClient creates a client. timeout bounds every call except linguistic
// analysis, which uses linguisticTimeout.
func NewClient(baseURL string, timeout, linguisticTimeout time.Duration) *Client {
	return &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		httpClient:        &http.Client{Timeout: timeout},
		linguisticTimeout: linguisticTimeout,
	}
}

// Forensic uploads an image as multipart field "image".
func (c *Client) Forensic(ctx context.Context, image Upload) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", image.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image.Body); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return c.do(ctx, c.httpClient, http.MethodPost, "/api/forensic/analyze", mw.FormDataContentType(), &buf)
}

// Linguistic analyses a voice transcript under its own timeout.
func (c *Client) Linguistic(ctx context.Context, transcript, language string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"transcript": transcript, "language": language})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.linguisticTimeout)
	defer cancel()
	client := &http.Client{Transport: c.httpClient.Transport}
	return c.do(ctx, client, http.MethodPost, "/api/linguistic/analyze", "application/json", bytes.NewReader(body))
}

func (c *Client) ChatGreeting(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, c.httpClient, http.MethodGet, "/api/chatbot/greeting", "", nil)
}

func (c *Client) Chat(ctx context.Context, message, sessionID string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"message": message, "sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, c.httpClient, http.MethodPost, "/api/chatbot/chat", "application/json", bytes.NewReader(body))
}

func (c *Client) do(ctx context.Context, client *http.Client, method, path, contentType string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ai %s: %w", apperrors.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read ai response: %w", apperrors.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: ai %s returned %d", apperrors.ErrUpstream, path, resp.StatusCode)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: ai %s returned invalid json", apperrors.ErrUpstream, path)
	}
	return json.RawMessage(data), nil
}
