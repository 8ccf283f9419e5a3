package kg

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Compile-time assertion: *MemGraph satisfies Store.
var _ Store = (*MemGraph)(nil)

// MemGraph implements Store using Go maps. Thread-safe via sync.RWMutex.
// Query results follow insertion order, which stands in for the natural
// result order of a real store.
type MemGraph struct {
	mu    sync.RWMutex
	nodes map[EntityID]Node
	order []EntityID // node insertion order
	edges map[Relation][]Edge
	count int
}

// NewMemGraph returns an initialized MemGraph ready for use.
func NewMemGraph() *MemGraph {
	return &MemGraph{
		nodes: make(map[EntityID]Node),
		edges: make(map[Relation][]Edge),
	}
}

// InitSchema is a no-op for the in-memory graph.
func (m *MemGraph) InitSchema(_ context.Context) error {
	return nil
}

// AddNode stores a node keyed by its identifier. Re-adding a node replaces
// its class, label and attributes but keeps its original position.
func (m *MemGraph) AddNode(_ context.Context, node Node) error {
	if node.ID == "" {
		return fmt.Errorf("memgraph: node id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[node.ID]; !ok {
		m.order = append(m.order, node.ID)
	}
	m.nodes[node.ID] = node
	return nil
}

// AddEdge appends an edge. Endpoints do not need to exist as nodes; a
// dangling endpoint simply has no label.
func (m *MemGraph) AddEdge(_ context.Context, edge Edge) error {
	if !edge.Relation.Valid() {
		return fmt.Errorf("memgraph: unsupported relation: %s", edge.Relation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edge.Relation] = append(m.edges[edge.Relation], edge)
	m.count++
	return nil
}

// Neighbors returns the targets of rel edges leaving source in insertion order.
func (m *MemGraph) Neighbors(ctx context.Context, source EntityID, rel Relation) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entity
	for _, e := range m.edges[rel] {
		if e.SourceID == source {
			out = append(out, m.entity(e.TargetID))
		}
	}
	return out, nil
}

// FindByLabel returns nodes of class whose label equals name (case-insensitive).
func (m *MemGraph) FindByLabel(ctx context.Context, class Class, name string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entity
	for _, id := range m.order {
		n := m.nodes[id]
		if n.Class == class && n.Label != "" && strings.EqualFold(n.Label, name) {
			out = append(out, Entity{ID: n.ID, Label: n.Label})
		}
	}
	return out, nil
}

// GetNode returns the node with the given identifier, or nil if not found.
func (m *MemGraph) GetNode(_ context.Context, id EntityID) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// Nodes returns a copy of all nodes in insertion order.
func (m *MemGraph) Nodes(_ context.Context) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out, nil
}

// Edges returns a copy of all edges, grouped by relation in Relations order.
func (m *MemGraph) Edges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, 0, m.count)
	for _, rel := range Relations {
		out = append(out, m.edges[rel]...)
	}
	return out, nil
}

// Stats returns node and edge counts.
func (m *MemGraph) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{NodeCount: len(m.nodes), EdgeCount: m.count}, nil
}

// Close is a no-op for the in-memory graph.
func (m *MemGraph) Close() error {
	return nil
}

// entity resolves the label for id. Caller must hold m.mu.
func (m *MemGraph) entity(id EntityID) Entity {
	if n, ok := m.nodes[id]; ok {
		return Entity{ID: id, Label: n.Label}
	}
	return Entity{ID: id}
}
