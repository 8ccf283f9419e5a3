package sparql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRows = `{
  "head": {"vars": ["target", "targetLabel"]},
  "results": {"bindings": [
    {"target": {"type": "uri", "value": "https://example.org/supplychain/kg#Part/P1"},
     "targetLabel": {"type": "literal", "value": "Steel Bracket", "xml:lang": "en"}},
    {"target": {"type": "uri", "value": "https://example.org/supplychain/kg#Part/P2"}}
  ]}
}`

// newTestClient starts a fake endpoint serving handler and returns a client for it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL + "/sc/sparql")
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "not a url", "/relative/path", "localhost:3030"} {
		_, err := NewHTTPClient(endpoint)
		assert.Error(t, err, "endpoint %q should be rejected", endpoint)
	}
}

func TestSelect_HappyPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sc/sparql", r.URL.Path)
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "SELECT * WHERE { ?s ?p ?o }", r.PostForm.Get("query"))

		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(twoRows))
	})

	rows, err := c.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }", time.Second)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	target, ok := rows[0].Value("target")
	assert.True(t, ok)
	assert.Equal(t, "https://example.org/supplychain/kg#Part/P1", target)
	assert.True(t, rows[0]["target"].IsIRI())
	assert.Equal(t, "en", rows[0]["targetLabel"].Lang)

	_, ok = rows[1].Value("targetLabel")
	assert.False(t, ok, "unbound optional variable should be absent")
}

func TestSelect_EmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"head":{"vars":["s"]},"results":{"bindings":[]}}`))
	})

	rows, err := c.Select(context.Background(), "SELECT ?s WHERE {}", time.Second)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelect_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Parse error: Lexical error at line 1", http.StatusBadRequest)
	})

	_, err := c.Select(context.Background(), "SELEC oops", time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStore))
	assert.Equal(t, ReasonRejected, ReasonOf(err))

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, http.StatusBadRequest, qe.Status)
	assert.Contains(t, qe.Body, "Parse error")
	assert.Equal(t, OutcomeRejected, Outcome(err))
}

func TestSelect_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.Select(context.Background(), "SELECT ?s WHERE {}", time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStore))
	assert.Equal(t, ReasonMalformedResponse, ReasonOf(err))
	assert.Equal(t, OutcomeMalformed, Outcome(err))
}

func TestSelect_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := ts.URL
	ts.Close()

	c, err := NewHTTPClient(endpoint)
	require.NoError(t, err)

	_, err = c.Select(context.Background(), "SELECT ?s WHERE {}", time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStore))
	assert.Equal(t, ReasonUnreachable, ReasonOf(err))
	assert.False(t, IsTimeout(err))
}

func TestSelect_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	_, err := c.Select(context.Background(), "SELECT ?s WHERE {}", 50*time.Millisecond)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.True(t, IsTimeout(err))
	assert.True(t, errors.Is(err, ErrStore))
	assert.Equal(t, OutcomeTimeout, Outcome(err))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 50*time.Millisecond, te.Timeout)
}

func TestSelect_CallerCancelPassesThrough(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Select(ctx, "SELECT ?s WHERE {}", 10*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrStore), "caller cancellation is not a store failure")
	assert.Equal(t, OutcomeCanceled, Outcome(err))
}

func TestInstrumented_ReportsOutcome(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(twoRows))
	})

	var outcomes []string
	ic := Instrumented(c, func(outcome string, elapsed time.Duration) {
		outcomes = append(outcomes, outcome)
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	})

	rows, err := ic.Select(context.Background(), "SELECT * {}", time.Second)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{OutcomeOK}, outcomes)
}
