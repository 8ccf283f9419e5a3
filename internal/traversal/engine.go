// Package traversal computes direct relations and reflexive-transitive
// closures over the knowledge graph. Every output is deduplicated by
// canonical identifier, truncated only after deduplication, and ordered
// deterministically for a fixed graph snapshot.
package traversal

import (
	"context"

	"github.com/dusk-indust/scimpact/internal/kg"
)

// DefaultMaxDepth bounds closure expansion. Real bills of materials rarely
// go past single-digit tiers.
const DefaultMaxDepth = 32

// Unbounded disables truncation when passed as a limit.
const Unbounded = 0

// Pair is one (source, target) result of Join. Source is the witness that
// put Target in the result.
type Pair struct {
	Source kg.Entity
	Target kg.Entity
}

// Engine runs traversals against a graph snapshot. It holds no per-request
// state and is safe for concurrent use when the graph is.
type Engine struct {
	graph kg.Graph
}

// NewEngine creates an Engine over g.
func NewEngine(g kg.Graph) *Engine {
	return &Engine{graph: g}
}

// DirectTargets returns the single-hop rel targets of source in ascending
// identifier order, truncated to limit. A limit <= 0 is unbounded.
func (e *Engine) DirectTargets(ctx context.Context, source kg.EntityID, rel kg.Relation, limit int) ([]kg.Entity, error) {
	targets, err := e.sortedNeighbors(ctx, source, rel)
	if err != nil {
		return nil, err
	}
	return truncate(targets, limit), nil
}

// Closure returns every node reachable from start by zero or more rel hops,
// in breadth-first discovery order with start first. Nodes are marked
// visited when discovered, so cycles terminate; expansion stops after
// maxDepth hops (maxDepth <= 0 means DefaultMaxDepth). Neighbors of a node
// are visited in ascending identifier order.
func (e *Engine) Closure(ctx context.Context, start kg.Entity, rel kg.Relation, maxDepth int) ([]kg.Entity, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	visited := map[kg.EntityID]bool{start.ID: true}
	order := []kg.Entity{start}
	frontier := []kg.Entity{start}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []kg.Entity
		for _, node := range frontier {
			neighbors, err := e.sortedNeighbors(ctx, node.ID, rel)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if visited[nb.ID] {
					continue
				}
				visited[nb.ID] = true
				order = append(order, nb)
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return order, nil
}

// Join enumerates the rel targets of each source in the given order, targets
// ascending per source. A target reached from several sources is kept once,
// with the first source as its witness. The result is truncated to limit
// pairs; a limit <= 0 is unbounded.
func (e *Engine) Join(ctx context.Context, sources []kg.Entity, rel kg.Relation, limit int) ([]Pair, error) {
	seen := make(map[kg.EntityID]bool)
	var out []Pair
	for _, src := range sources {
		targets, err := e.sortedNeighbors(ctx, src.ID, rel)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, Pair{Source: src, Target: t})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// sortedNeighbors fetches rel targets of id, drops duplicate identifiers
// (keeping the first non-empty label seen) and sorts them ascending.
func (e *Engine) sortedNeighbors(ctx context.Context, id kg.EntityID, rel kg.Relation) ([]kg.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := e.graph.Neighbors(ctx, id, rel)
	if err != nil {
		return nil, err
	}
	out := Dedup(raw)
	kg.SortByID(out)
	return out, nil
}

// Dedup removes entities whose identifier already appeared, preserving the
// order of first occurrence. A later duplicate's label fills in a missing one.
func Dedup(es []kg.Entity) []kg.Entity {
	index := make(map[kg.EntityID]int, len(es))
	out := make([]kg.Entity, 0, len(es))
	for _, ent := range es {
		if i, ok := index[ent.ID]; ok {
			if out[i].Label == "" {
				out[i].Label = ent.Label
			}
			continue
		}
		index[ent.ID] = len(out)
		out = append(out, ent)
	}
	return out
}

func truncate(es []kg.Entity, limit int) []kg.Entity {
	if limit > 0 && len(es) > limit {
		return es[:limit]
	}
	return es
}
