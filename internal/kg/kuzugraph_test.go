//go:build cgo

package kg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestKuzuGraph creates a fresh in-memory KuzuGraph with an initialized
// schema. It registers a cleanup function to close the graph.
func newTestKuzuGraph(t *testing.T) *KuzuGraph {
	t.Helper()
	g, err := NewKuzuGraph()
	require.NoError(t, err, "NewKuzuGraph should not fail")
	t.Cleanup(func() { _ = g.Close() })

	require.NoError(t, g.InitSchema(context.Background()), "InitSchema should not fail")
	return g
}

func TestKuzuGraph_InitSchemaIdempotent(t *testing.T) {
	g := newTestKuzuGraph(t)
	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, g.InitSchema(context.Background()))
}

func TestKuzuGraph_NodeRoundTrip(t *testing.T) {
	g := newTestKuzuGraph(t)
	ctx := context.Background()

	node := Node{
		ID:         NewEntityID(ClassSupplier, "S1"),
		Class:      ClassSupplier,
		Label:      "Acme Metals",
		Attributes: map[string]string{"tier": "2"},
	}
	require.NoError(t, g.AddNode(ctx, node))

	got, err := g.GetNode(ctx, node.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, node, *got)

	missing, err := g.GetNode(ctx, NewEntityID(ClassSupplier, "nope"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKuzuGraph_Fixture(t *testing.T) {
	g := newTestKuzuGraph(t)
	ctx := context.Background()

	fx, err := ReadFixture(fixturePath)
	require.NoError(t, err)
	require.NoError(t, fx.Load(ctx, g))

	sup, err := g.FindByLabel(ctx, ClassSupplier, "ACME metals")
	require.NoError(t, err)
	require.Len(t, sup, 1)
	assert.Equal(t, NewEntityID(ClassSupplier, "S1"), sup[0].ID)

	parts, err := g.Neighbors(ctx, sup[0].ID, RelSupplies)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Entity{
		{ID: NewEntityID(ClassPart, "P1"), Label: "Steel Bracket"},
		{ID: NewEntityID(ClassPart, "P6"), Label: "Aluminium Rivet"},
	}, parts)

	// Relation kinds do not leak into each other.
	facilities, err := g.Neighbors(ctx, sup[0].ID, RelDeliversTo)
	require.NoError(t, err)
	for _, f := range facilities {
		assert.Equal(t, ClassFacility, f.ID.Class())
	}

	stats, err := g.Stats(ctx)
	require.NoError(t, err)
	assert.Positive(t, stats.NodeCount)
	assert.Positive(t, stats.EdgeCount)
}

func TestKuzuGraph_FileGraph(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	g, err := NewKuzuFileGraph(dir + "/graph")
	require.NoError(t, err)
	require.NoError(t, g.InitSchema(ctx))
	require.NoError(t, g.AddNode(ctx, Node{ID: part("P1"), Class: ClassPart, Label: "Steel Bracket"}))
	require.NoError(t, g.Close())

	g, err = NewKuzuFileGraph(dir + "/graph")
	require.NoError(t, err)
	defer g.Close()

	got, err := g.FindByLabel(ctx, ClassPart, "steel bracket")
	require.NoError(t, err)
	assert.Equal(t, []Entity{{ID: part("P1"), Label: "Steel Bracket"}}, got)
}
