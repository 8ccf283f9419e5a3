package kg

import (
	"context"
	"io"
)

// Graph is the read interface the impact engine uses against the knowledge
// graph. Implementations: SPARQLGraph (production), KuzuGraph (embedded),
// MemGraph (testing and demo fixtures).
//
// Result slices follow the backend's natural result order. Callers that need
// a deterministic order sort or deduplicate themselves.
type Graph interface {
	io.Closer

	// Neighbors returns the targets of rel edges leaving source, with labels
	// when the store has them. Duplicates are possible.
	Neighbors(ctx context.Context, source EntityID, rel Relation) ([]Entity, error)

	// FindByLabel returns the entities of class whose label equals name,
	// compared case-insensitively.
	FindByLabel(ctx context.Context, class Class, name string) ([]Entity, error)
}

// Writer loads nodes and edges into a writable backend.
type Writer interface {
	// InitSchema is called once before any data is inserted.
	InitSchema(ctx context.Context) error

	AddNode(ctx context.Context, node Node) error
	AddEdge(ctx context.Context, edge Edge) error
}

// Store is a graph backend that can be both queried and loaded.
type Store interface {
	Graph
	Writer

	Stats(ctx context.Context) (*GraphStats, error)
}
