//go:build cgo

package kg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuGraph implements Store on an embedded KuzuDB database. It requires CGO
// because the go-kuzu driver wraps KuzuDB's C library.
type KuzuGraph struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuGraph satisfies Store.
var _ Store = (*KuzuGraph)(nil)

// NewKuzuGraph creates a KuzuGraph backed by an in-memory KuzuDB instance.
func NewKuzuGraph() (*KuzuGraph, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileGraph creates a KuzuGraph backed by a file-based KuzuDB at
// dbPath. KuzuDB creates the leaf directory itself for new databases.
func NewKuzuFileGraph(dbPath string) (*KuzuGraph, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuGraph, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuGraph{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (g *KuzuGraph) Close() error {
	if g.conn != nil {
		g.conn.Close()
	}
	if g.db != nil {
		g.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema. Every entity
// class shares one node table; every relation shares one rel table keyed by
// its kind property.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Entity(
		id STRING,
		class STRING,
		label STRING,
		attrs STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS Relates(FROM Entity TO Entity, kind STRING)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (g *KuzuGraph) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := g.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddNode upserts an Entity node.
func (g *KuzuGraph) AddNode(_ context.Context, node Node) error {
	attrs := "{}"
	if len(node.Attributes) > 0 {
		data, err := json.Marshal(node.Attributes)
		if err != nil {
			return fmt.Errorf("kuzu: encode attributes: %w", err)
		}
		attrs = string(data)
	}
	return g.exec(
		`MERGE (n:Entity {id: $id})
		 SET n.class = $class, n.label = $label, n.attrs = $attrs`,
		map[string]any{
			"id":    string(node.ID),
			"class": string(node.Class),
			"label": node.Label,
			"attrs": attrs,
		},
	)
}

// AddEdge inserts a Relates edge, creating bare endpoint nodes when needed.
func (g *KuzuGraph) AddEdge(_ context.Context, edge Edge) error {
	if !edge.Relation.Valid() {
		return fmt.Errorf("kuzu: unsupported relation: %s", edge.Relation)
	}
	return g.exec(
		`MERGE (a:Entity {id: $src})
		 MERGE (b:Entity {id: $dst})
		 CREATE (a)-[:Relates {kind: $kind}]->(b)`,
		map[string]any{
			"src":  string(edge.SourceID),
			"dst":  string(edge.TargetID),
			"kind": string(edge.Relation),
		},
	)
}

// ---------- Read operations ----------

// Neighbors returns the targets of rel edges leaving source.
func (g *KuzuGraph) Neighbors(ctx context.Context, source EntityID, rel Relation) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := g.query(
		`MATCH (a:Entity {id: $id})-[r:Relates]->(b:Entity)
		 WHERE r.kind = $kind
		 RETURN b.id, b.label`,
		map[string]any{"id": string(source), "kind": string(rel)},
	)
	if err != nil {
		return nil, err
	}
	return rowsToEntities(rows), nil
}

// FindByLabel returns entities of class whose label matches name case-insensitively.
func (g *KuzuGraph) FindByLabel(ctx context.Context, class Class, name string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := g.query(
		`MATCH (n:Entity)
		 WHERE n.class = $class AND lower(n.label) = lower($name)
		 RETURN n.id, n.label`,
		map[string]any{"class": string(class), "name": name},
	)
	if err != nil {
		return nil, err
	}
	return rowsToEntities(rows), nil
}

// GetNode retrieves a single node by identifier, or nil if not found.
func (g *KuzuGraph) GetNode(_ context.Context, id EntityID) (*Node, error) {
	rows, err := g.query(
		"MATCH (n:Entity {id: $id}) RETURN n.id, n.class, n.label, n.attrs",
		map[string]any{"id": string(id)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	node := &Node{
		ID:    EntityID(toString(r[0])),
		Class: Class(toString(r[1])),
		Label: toString(r[2]),
	}
	if raw := toString(r[3]); raw != "" && raw != "{}" {
		if err := json.Unmarshal([]byte(raw), &node.Attributes); err != nil {
			return nil, fmt.Errorf("kuzu: decode attributes: %w", err)
		}
	}
	return node, nil
}

// ---------- Stats ----------

// Stats returns node and edge counts.
func (g *KuzuGraph) Stats(_ context.Context) (*GraphStats, error) {
	nodes, err := g.count("MATCH (n:Entity) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	edges, err := g.count("MATCH ()-[r:Relates]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{NodeCount: nodes, EdgeCount: edges}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (g *KuzuGraph) exec(cypher string, params map[string]any) error {
	stmt, err := g.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := g.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (g *KuzuGraph) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = g.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = g.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = g.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func (g *KuzuGraph) count(cypher string) (int, error) {
	rows, err := g.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowsToEntities converts (id, label) rows into entities.
func rowsToEntities(rows [][]any) []Entity {
	out := make([]Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entity{ID: EntityID(toString(r[0])), Label: toString(r[1])})
	}
	return out
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, string) and nil for NULL.

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
