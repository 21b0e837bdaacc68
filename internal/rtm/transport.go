package rtm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultUserAgent is sent when TransportConfig.UserAgent is empty.
	DefaultUserAgent = "mtask/0.1"

	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout = 30 * time.Second
)

// Transport performs a GET against endpoint with query appended and returns
// the raw response body. Failures are *NetworkError.
type Transport interface {
	Get(ctx context.Context, endpoint string, query *Query) ([]byte, error)
}

// TransportConfig configures an HTTPTransport.
type TransportConfig struct {
	// HTTPClient is copied before use. Nil means a fresh client.
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration
}

// HTTPTransport is the net/http Transport.
type HTTPTransport struct {
	http      *http.Client
	userAgent string
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds an HTTPTransport from cfg, filling defaults.
func NewHTTPTransport(cfg TransportConfig) *HTTPTransport {
	client := &http.Client{}
	if cfg.HTTPClient != nil {
		c := *cfg.HTTPClient
		client = &c
	}
	switch {
	case cfg.Timeout > 0:
		client.Timeout = cfg.Timeout
	case client.Timeout == 0:
		client.Timeout = DefaultTimeout
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &HTTPTransport{http: client, userAgent: ua}
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, endpoint string, query *Query) ([]byte, error) {
	reqURL := endpoint
	if query != nil && query.Len() > 0 {
		reqURL += "?" + EncodeQuery(query)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}

// EncodeQuery URL-encodes q in insertion order. url.Values.Encode would sort
// the keys.
func EncodeQuery(q *Query) string {
	var b strings.Builder
	for pair := q.Oldest(); pair != nil; pair = pair.Next() {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}
	return b.String()
}
