// Package remote implements ports.ModelLocator over plain HTTP.
//
// The protocol is deliberately small: GET <url> answers {"data": token} and
// POST <url> accepts the same body. Any 2xx status is success. There is no
// authentication and no retry.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/pkg/ports"
)

// DefaultTimeout bounds a single download or upload.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 32 << 20

// Payload is the JSON body exchanged with a model host.
type Payload struct {
	Data string `json:"data"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// Locator downloads and uploads encoded models.
type Locator struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.ModelLocator = (*Locator)(nil)

type Option func(*Locator)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Locator) {
		l.client.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client (its Timeout is kept as is).
func WithHTTPClient(c *http.Client) Option {
	return func(l *Locator) {
		l.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// New creates a Locator with DefaultTimeout.
func New(opts ...Option) *Locator {
	l := &Locator{
		client: &http.Client{Timeout: DefaultTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Download fetches the token published at url.
func (l *Locator) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Method: http.MethodGet, URL: url, Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("decode response from %s: %w", url, err)
	}
	l.logger.Debug("Downloaded model", "url", url, "bytes", len(p.Data))
	return p.Data, nil
}

// Upload publishes token at url.
func (l *Locator) Upload(ctx context.Context, token, url string) error {
	body, err := json.Marshal(Payload{Data: token})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: http.MethodPost, URL: url, Status: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	l.logger.Debug("Uploaded model", "url", url, "bytes", len(token))
	return nil
}
