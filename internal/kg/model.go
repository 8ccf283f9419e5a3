package kg

import (
	"sort"
	"strings"
)

// Namespace is the IRI prefix of the supply-chain vocabulary. Every entity
// identifier is Namespace + "<Class>/<key>".
const Namespace = "https://example.org/supplychain/kg#"

// RDFSLabel is the predicate carrying human-readable entity labels.
const RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

// --- Enums ---

// Class identifies the kind of an entity in the knowledge graph.
type Class string

const (
	ClassSupplier   Class = "Supplier"
	ClassPart       Class = "Part"
	ClassProduct    Class = "Product"
	ClassFacility   Class = "Facility"
	ClassRegion     Class = "Region"
	ClassShipment   Class = "Shipment"
	ClassDisruption Class = "Disruption"
)

// Classes lists every entity class known to the vocabulary.
var Classes = []Class{
	ClassSupplier, ClassPart, ClassProduct, ClassFacility,
	ClassRegion, ClassShipment, ClassDisruption,
}

// IRI returns the rdf:type IRI for the class.
func (c Class) IRI() string {
	return Namespace + string(c)
}

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool {
	for _, k := range Classes {
		if k == c {
			return true
		}
	}
	return false
}

// Relation is a directed predicate between two entities.
type Relation string

const (
	RelSupplies       Relation = "supplies"       // Supplier -> Part
	RelSubcomponentOf Relation = "subcomponentOf" // Part (child) -> Part (parent)
	RelUsedIn         Relation = "usedIn"         // Part -> Product
	RelDeliversTo     Relation = "deliversTo"     // Supplier -> Facility
	RelLocatedIn      Relation = "locatedIn"      // Facility -> Region
	RelHasDisruption  Relation = "hasDisruption"  // Supplier -> Disruption
)

// Relations lists every relation the graph backends understand.
var Relations = []Relation{
	RelSupplies, RelSubcomponentOf, RelUsedIn,
	RelDeliversTo, RelLocatedIn, RelHasDisruption,
}

// IRI returns the predicate IRI for the relation.
func (r Relation) IRI() string {
	return Namespace + string(r)
}

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	for _, k := range Relations {
		if k == r {
			return true
		}
	}
	return false
}

// --- Identifiers ---

// EntityID is the canonical identifier of an entity: the class prefix plus
// the local key, rendered as an IRI in the vocabulary namespace.
type EntityID string

// NewEntityID builds the canonical identifier for key within class.
func NewEntityID(class Class, key string) EntityID {
	return EntityID(Namespace + string(class) + "/" + key)
}

// String returns the identifier as a plain string.
func (id EntityID) String() string {
	return string(id)
}

// LocalKey returns the trailing path segment of the identifier. For
// identifiers outside the vocabulary it is still the text after the last "/".
func (id EntityID) LocalKey() string {
	s := string(id)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Class returns the class segment of a vocabulary identifier, or "" when the
// identifier is not in the form Namespace + "<Class>/<key>".
func (id EntityID) Class() Class {
	rest, ok := strings.CutPrefix(string(id), Namespace)
	if !ok {
		return ""
	}
	cls, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return Class(cls)
}

// --- Models ---

// Entity is a node returned by a graph query: its identifier and the label
// the store holds for it, which may be empty.
type Entity struct {
	ID    EntityID `json:"id" yaml:"id"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel returns the stored label, falling back to the local key.
func (e Entity) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	return e.ID.LocalKey()
}

// Node is an entity as written by a loader: identifier, class, label and
// scalar attributes (tier, criticality, category, ...).
type Node struct {
	ID         EntityID          `json:"id"`
	Class      Class             `json:"class"`
	Label      string            `json:"label,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Edge is a directed relation between two entities.
type Edge struct {
	SourceID EntityID `json:"sourceId"`
	TargetID EntityID `json:"targetId"`
	Relation Relation `json:"relation"`
}

// GraphStats summarizes the contents of a graph backend.
type GraphStats struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// SortByID orders entities by ascending canonical identifier in place.
func SortByID(es []Entity) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].ID < es[j].ID })
}
