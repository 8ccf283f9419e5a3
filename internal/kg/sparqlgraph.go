package kg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/scimpact/internal/sparql"
)

// Compile-time check that SPARQLGraph satisfies Graph.
var _ Graph = (*SPARQLGraph)(nil)

// labelMatchLimit caps how many candidate matches FindByLabel asks for.
// Only the first is ever used; the rest let callers notice duplicates.
const labelMatchLimit = 5

const prefixes = `PREFIX scr: <` + Namespace + `>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
`

// SPARQLGraph answers Graph queries by issuing SPARQL SELECTs through a
// sparql.Client. It is read-only.
type SPARQLGraph struct {
	client  sparql.Client
	timeout time.Duration
}

// NewSPARQLGraph creates a graph over client. timeout bounds every query.
func NewSPARQLGraph(client sparql.Client, timeout time.Duration) *SPARQLGraph {
	return &SPARQLGraph{client: client, timeout: timeout}
}

// Neighbors issues a one-hop pattern query for rel edges leaving source.
func (g *SPARQLGraph) Neighbors(ctx context.Context, source EntityID, rel Relation) ([]Entity, error) {
	rows, err := g.client.Select(ctx, NeighborsQuery(source, rel), g.timeout)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(rows))
	for _, r := range rows {
		id, ok := r.Value("target")
		if !ok {
			continue
		}
		label, _ := r.Value("targetLabel")
		out = append(out, Entity{ID: EntityID(id), Label: label})
	}
	return out, nil
}

// FindByLabel issues a case-insensitive label match restricted to class.
func (g *SPARQLGraph) FindByLabel(ctx context.Context, class Class, name string) ([]Entity, error) {
	rows, err := g.client.Select(ctx, LabelQuery(class, name), g.timeout)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(rows))
	for _, r := range rows {
		id, ok := r.Value("s")
		if !ok {
			continue
		}
		label, _ := r.Value("lbl")
		out = append(out, Entity{ID: EntityID(id), Label: label})
	}
	return out, nil
}

// Close is a no-op; the underlying client owns no connections that need
// explicit release.
func (g *SPARQLGraph) Close() error {
	return nil
}

// NeighborsQuery builds the SELECT used by Neighbors.
func NeighborsQuery(source EntityID, rel Relation) string {
	var b strings.Builder
	b.WriteString(prefixes)
	fmt.Fprintf(&b, "SELECT ?target ?targetLabel WHERE {\n  %s scr:%s ?target .\n", sparql.IRI(string(source)), rel)
	b.WriteString("  OPTIONAL { ?target rdfs:label ?targetLabel }\n}\n")
	return b.String()
}

// LabelQuery builds the SELECT used by FindByLabel.
func LabelQuery(class Class, name string) string {
	var b strings.Builder
	b.WriteString(prefixes)
	fmt.Fprintf(&b, "SELECT ?s ?lbl WHERE {\n  ?s a scr:%s ;\n     rdfs:label ?lbl .\n", class)
	fmt.Fprintf(&b, "  FILTER(LCASE(STR(?lbl)) = LCASE(%s))\n} LIMIT %d\n", sparql.QuoteLiteral(name), labelMatchLimit)
	return b.String()
}
