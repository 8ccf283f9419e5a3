package impact

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scimpact/internal/kg"
)

const fixturePath = "../../testdata/fixtures/supplychain.yaml"

func id(class kg.Class, key string) kg.EntityID { return kg.NewEntityID(class, key) }

// smallGraph is the canonical minimal scenario:
//
//	S1 supplies P1; P1 subcomponentOf P2; P2 usedIn Prod1;
//	S1 deliversTo F1; F1 locatedIn R1.
func smallGraph(t *testing.T) *kg.MemGraph {
	t.Helper()
	g := kg.NewMemGraph()
	ctx := context.Background()

	nodes := []kg.Node{
		{ID: id(kg.ClassSupplier, "S1"), Class: kg.ClassSupplier, Label: "Acme"},
		{ID: id(kg.ClassPart, "P1"), Class: kg.ClassPart, Label: "Bolt"},
		{ID: id(kg.ClassPart, "P2"), Class: kg.ClassPart, Label: "Frame"},
		{ID: id(kg.ClassProduct, "Prod1"), Class: kg.ClassProduct, Label: "Bike"},
		{ID: id(kg.ClassFacility, "F1"), Class: kg.ClassFacility, Label: "Plant A"},
		{ID: id(kg.ClassRegion, "R1"), Class: kg.ClassRegion, Label: "North"},
	}
	for _, n := range nodes {
		require.NoError(t, g.AddNode(ctx, n))
	}
	edges := []kg.Edge{
		{SourceID: id(kg.ClassSupplier, "S1"), TargetID: id(kg.ClassPart, "P1"), Relation: kg.RelSupplies},
		{SourceID: id(kg.ClassPart, "P1"), TargetID: id(kg.ClassPart, "P2"), Relation: kg.RelSubcomponentOf},
		{SourceID: id(kg.ClassPart, "P2"), TargetID: id(kg.ClassProduct, "Prod1"), Relation: kg.RelUsedIn},
		{SourceID: id(kg.ClassSupplier, "S1"), TargetID: id(kg.ClassFacility, "F1"), Relation: kg.RelDeliversTo},
		{SourceID: id(kg.ClassFacility, "F1"), TargetID: id(kg.ClassRegion, "R1"), Relation: kg.RelLocatedIn},
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(ctx, e))
	}
	return g
}

// fixtureGraph loads the shared YAML fixture.
func fixtureGraph(t *testing.T) *kg.MemGraph {
	t.Helper()
	fx, err := kg.ReadFixture(fixturePath)
	require.NoError(t, err)
	g := kg.NewMemGraph()
	require.NoError(t, fx.Load(context.Background(), g))
	return g
}

// recordingNarrator records its inputs and returns a fixed answer.
type recordingNarrator struct {
	mu       sync.Mutex
	calls    int
	supplier string
	evidence string
	answer   string
}

func (r *recordingNarrator) Summarize(_ context.Context, supplierName, evidenceText string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.supplier = supplierName
	r.evidence = evidenceText
	return r.answer
}

// errGraph wraps a graph and fails every Neighbors call for one relation.
type errGraph struct {
	kg.Graph
	rel kg.Relation
	err error
}

func (g errGraph) Neighbors(ctx context.Context, source kg.EntityID, rel kg.Relation) ([]kg.Entity, error) {
	if rel == g.rel {
		return nil, g.err
	}
	return g.Graph.Neighbors(ctx, source, rel)
}
