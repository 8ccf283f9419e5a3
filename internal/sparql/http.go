package sparql

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
)

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// maxErrorBody bounds how much of a rejected response is kept in QueryError.
const maxErrorBody = 512

// HTTPClient implements Client using the SPARQL 1.1 protocol: queries are
// POSTed form-encoded and results requested as SPARQL JSON.
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// NewHTTPClient creates a client for the query endpoint, e.g.
// http://localhost:3030/sc/sparql. The endpoint must be an absolute URL.
func NewHTTPClient(endpoint string, opts ...ClientOption) (*HTTPClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("sparql: invalid endpoint %q", endpoint)
	}
	c := &HTTPClient{
		endpoint: endpoint,
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the query endpoint URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Select runs a SELECT query and decodes the bindings.
func (c *HTTPClient) Select(ctx context.Context, queryText string, timeout time.Duration) ([]Row, error) {
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	form := url.Values{"query": {queryText}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &QueryError{Endpoint: c.endpoint, Reason: ReasonUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(parent, err, timeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &QueryError{
			Endpoint: c.endpoint,
			Reason:   ReasonRejected,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	var doc results
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		if ctx.Err() != nil {
			return nil, c.classify(parent, ctx.Err(), timeout)
		}
		return nil, &QueryError{Endpoint: c.endpoint, Reason: ReasonMalformedResponse, Err: err}
	}
	return doc.Results.Bindings, nil
}

// classify maps a transport error onto the error taxonomy. Cancellation of
// the caller's own context is passed through untouched.
func (c *HTTPClient) classify(parent context.Context, err error, timeout time.Duration) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Endpoint: c.endpoint, Timeout: timeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if timeout <= 0 {
			timeout = c.http.Timeout
		}
		return &TimeoutError{Endpoint: c.endpoint, Timeout: timeout, Err: err}
	}
	return &QueryError{Endpoint: c.endpoint, Reason: ReasonUnreachable, Err: err}
}
