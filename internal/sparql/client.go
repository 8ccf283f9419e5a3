// Package sparql is the leaf client for the external graph store. It issues
// SPARQL 1.1 SELECT queries over HTTP and returns ordered binding rows. It
// holds no business logic and never retries.
package sparql

import (
	"context"
	"time"
)

// Client issues pattern-match queries against the graph store.
type Client interface {
	// Select runs queryText and returns the binding rows in store order.
	// A timeout <= 0 leaves only the client's own deadline in effect.
	// Failures are *TimeoutError or *QueryError; a cancelled ctx yields
	// ctx.Err() unchanged.
	Select(ctx context.Context, queryText string, timeout time.Duration) ([]Row, error)
}

// Term is one bound value in a result row.
type Term struct {
	// Type is "uri", "literal", "typed-literal" or "bnode".
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool {
	return t.Type == "uri"
}

// Row maps query variable names to bound terms. Variables left unbound by an
// OPTIONAL pattern are absent.
type Row map[string]Term

// Value returns the lexical value bound to name and whether it was bound.
func (r Row) Value(name string) (string, bool) {
	t, ok := r[name]
	if !ok {
		return "", false
	}
	return t.Value, true
}

// results is the application/sparql-results+json document.
type results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}
