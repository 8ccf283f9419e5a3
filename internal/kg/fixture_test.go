package kg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../testdata/fixtures/supplychain.yaml"

// loadTestFixture reads the shared fixture into a fresh MemGraph.
func loadTestFixture(t *testing.T) *MemGraph {
	t.Helper()
	fx, err := ReadFixture(fixturePath)
	require.NoError(t, err)

	g := NewMemGraph()
	require.NoError(t, fx.Load(context.Background(), g))
	return g
}

func TestFixture_Load(t *testing.T) {
	g := loadTestFixture(t)
	ctx := context.Background()

	sup, err := g.FindByLabel(ctx, ClassSupplier, "Acme Metals")
	require.NoError(t, err)
	require.Len(t, sup, 1)
	assert.Equal(t, NewEntityID(ClassSupplier, "S1"), sup[0].ID)

	node, err := g.GetNode(ctx, sup[0].ID)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "2", node.Attributes["tier"])
	assert.Equal(t, "NL", node.Attributes["countryCode"])

	// Shipments imply supplies and deliversTo.
	parts, err := g.Neighbors(ctx, sup[0].ID, RelSupplies)
	require.NoError(t, err)
	assert.Equal(t, []Entity{
		{ID: NewEntityID(ClassPart, "P1"), Label: "Steel Bracket"},
		{ID: NewEntityID(ClassPart, "P6"), Label: "Aluminium Rivet"},
	}, parts)

	facilities, err := g.Neighbors(ctx, sup[0].ID, RelDeliversTo)
	require.NoError(t, err)
	assert.Len(t, facilities, 2)

	// Dependencies point child -> parent.
	parents, err := g.Neighbors(ctx, NewEntityID(ClassPart, "P1"), RelSubcomponentOf)
	require.NoError(t, err)
	assert.Equal(t, []Entity{{ID: NewEntityID(ClassPart, "P2"), Label: "Chassis Frame"}}, parents)

	regions, err := g.Neighbors(ctx, NewEntityID(ClassFacility, "F1"), RelLocatedIn)
	require.NoError(t, err)
	assert.Equal(t, []Entity{{ID: NewEntityID(ClassRegion, "R1"), Label: "Benelux"}}, regions)

	disruptions, err := g.Neighbors(ctx, NewEntityID(ClassSupplier, "S3"), RelHasDisruption)
	require.NoError(t, err)
	require.Len(t, disruptions, 1)
	assert.Equal(t, "port_closure (D1)", disruptions[0].Label)
}

func TestParseFixture_Invalid(t *testing.T) {
	_, err := ParseFixture([]byte("suppliers: [unterminated"))
	assert.Error(t, err)
}

func TestFixture_EmptyKeyAndMissingFile(t *testing.T) {
	fx, err := ParseFixture([]byte(`
suppliers:
  - {key: "", name: Nameless}
`))
	require.NoError(t, err)
	// An empty key still yields a non-empty identifier (namespace + class).
	require.NoError(t, fx.Load(context.Background(), NewMemGraph()))

	_, err = ReadFixture("does/not/exist.yaml")
	assert.Error(t, err)
}
