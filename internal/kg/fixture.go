package kg

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Fixture is a tabular description of a supply-chain graph, shaped like the
// warehouse dimension and fact tables the production export reads from. It
// seeds the memory and Kuzu backends for demos and tests.
type Fixture struct {
	Suppliers    []SupplierRow   `yaml:"suppliers"`
	Parts        []PartRow       `yaml:"parts"`
	Products     []ProductRow    `yaml:"products"`
	Regions      []RegionRow     `yaml:"regions"`
	Facilities   []FacilityRow   `yaml:"facilities"`
	BOM          []BOMRow        `yaml:"bom"`
	Dependencies []DependencyRow `yaml:"dependencies"`
	Shipments    []ShipmentRow   `yaml:"shipments"`
	Disruptions  []DisruptionRow `yaml:"disruptions"`
}

type SupplierRow struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Tier        int    `yaml:"tier"`
	CountryCode string `yaml:"countryCode"`
}

type PartRow struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Criticality string `yaml:"criticality"`
}

type ProductRow struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type RegionRow struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	CountryCode string `yaml:"countryCode"`
}

// FacilityRow places a facility in exactly one region.
type FacilityRow struct {
	Key          string `yaml:"key"`
	Name         string `yaml:"name"`
	FacilityType string `yaml:"facilityType"`
	Region       string `yaml:"region"`
}

// BOMRow states that a base part is used in a product.
type BOMRow struct {
	Part    string `yaml:"part"`
	Product string `yaml:"product"`
	Qty     int    `yaml:"qty"`
}

// DependencyRow states that Child is a subcomponent of Parent.
type DependencyRow struct {
	Parent string `yaml:"parent"`
	Child  string `yaml:"child"`
	Qty    int    `yaml:"qty"`
}

// ShipmentRow implies supplies(Supplier, Part) and deliversTo(Supplier, Facility).
type ShipmentRow struct {
	ID           string `yaml:"id"`
	Supplier     string `yaml:"supplier"`
	Part         string `yaml:"part"`
	Facility     string `yaml:"facility"`
	ShipDate     string `yaml:"shipDate"`
	Qty          int    `yaml:"qty"`
	LeadTimeDays int    `yaml:"leadTimeDays"`
	Status       string `yaml:"status"`
}

type DisruptionRow struct {
	ID        string  `yaml:"id"`
	Supplier  string  `yaml:"supplier"`
	Type      string  `yaml:"type"`
	StartDate string  `yaml:"startDate"`
	EndDate   string  `yaml:"endDate"`
	Severity  float64 `yaml:"severity"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("kg: parse fixture: %w", err)
	}
	return &f, nil
}

// ReadFixture reads and decodes a YAML fixture file.
func ReadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kg: read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Load writes every row of f into w as nodes and edges. The schema is
// initialized first.
func (f *Fixture) Load(ctx context.Context, w Writer) error {
	if err := w.InitSchema(ctx); err != nil {
		return fmt.Errorf("kg: init schema: %w", err)
	}
	for _, n := range f.nodes() {
		if err := w.AddNode(ctx, n); err != nil {
			return fmt.Errorf("kg: add node %s: %w", n.ID, err)
		}
	}
	for _, e := range f.edges() {
		if err := w.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("kg: add edge %s %s %s: %w", e.SourceID, e.Relation, e.TargetID, err)
		}
	}
	return nil
}

func (f *Fixture) nodes() []Node {
	var out []Node
	for _, r := range f.Suppliers {
		out = append(out, Node{
			ID: NewEntityID(ClassSupplier, r.Key), Class: ClassSupplier, Label: r.Name,
			Attributes: map[string]string{"tier": strconv.Itoa(r.Tier), "countryCode": r.CountryCode},
		})
	}
	for _, r := range f.Parts {
		out = append(out, Node{
			ID: NewEntityID(ClassPart, r.Key), Class: ClassPart, Label: r.Name,
			Attributes: map[string]string{"criticality": r.Criticality},
		})
	}
	for _, r := range f.Products {
		out = append(out, Node{
			ID: NewEntityID(ClassProduct, r.Key), Class: ClassProduct, Label: r.Name,
			Attributes: map[string]string{"category": r.Category},
		})
	}
	for _, r := range f.Regions {
		out = append(out, Node{
			ID: NewEntityID(ClassRegion, r.Key), Class: ClassRegion, Label: r.Name,
			Attributes: map[string]string{"countryCode": r.CountryCode},
		})
	}
	for _, r := range f.Facilities {
		out = append(out, Node{
			ID: NewEntityID(ClassFacility, r.Key), Class: ClassFacility, Label: r.Name,
			Attributes: map[string]string{"facilityType": r.FacilityType},
		})
	}
	for _, r := range f.Shipments {
		out = append(out, Node{
			ID: NewEntityID(ClassShipment, r.ID), Class: ClassShipment, Label: "Shipment " + r.ID,
			Attributes: map[string]string{
				"shipDate":     r.ShipDate,
				"qty":          strconv.Itoa(r.Qty),
				"leadTimeDays": strconv.Itoa(r.LeadTimeDays),
				"status":       r.Status,
			},
		})
	}
	for _, r := range f.Disruptions {
		out = append(out, Node{
			ID: NewEntityID(ClassDisruption, r.ID), Class: ClassDisruption,
			Label: fmt.Sprintf("%s (%s)", r.Type, r.ID),
			Attributes: map[string]string{
				"startDate": r.StartDate,
				"endDate":   r.EndDate,
				"severity":  strconv.FormatFloat(r.Severity, 'f', -1, 64),
			},
		})
	}
	return out
}

func (f *Fixture) edges() []Edge {
	var out []Edge
	for _, r := range f.Facilities {
		if r.Region == "" {
			continue
		}
		out = append(out, Edge{
			SourceID: NewEntityID(ClassFacility, r.Key),
			TargetID: NewEntityID(ClassRegion, r.Region),
			Relation: RelLocatedIn,
		})
	}
	for _, r := range f.BOM {
		out = append(out, Edge{
			SourceID: NewEntityID(ClassPart, r.Part),
			TargetID: NewEntityID(ClassProduct, r.Product),
			Relation: RelUsedIn,
		})
	}
	for _, r := range f.Dependencies {
		out = append(out, Edge{
			SourceID: NewEntityID(ClassPart, r.Child),
			TargetID: NewEntityID(ClassPart, r.Parent),
			Relation: RelSubcomponentOf,
		})
	}
	for _, r := range f.Shipments {
		sup := NewEntityID(ClassSupplier, r.Supplier)
		if r.Part != "" {
			out = append(out, Edge{SourceID: sup, TargetID: NewEntityID(ClassPart, r.Part), Relation: RelSupplies})
		}
		if r.Facility != "" {
			out = append(out, Edge{SourceID: sup, TargetID: NewEntityID(ClassFacility, r.Facility), Relation: RelDeliversTo})
		}
	}
	for _, r := range f.Disruptions {
		out = append(out, Edge{
			SourceID: NewEntityID(ClassSupplier, r.Supplier),
			TargetID: NewEntityID(ClassDisruption, r.ID),
			Relation: RelHasDisruption,
		})
	}
	return out
}
