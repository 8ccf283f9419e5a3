package mcptools

import "github.com/dusk-indust/scimpact/internal/impact"

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// ImpactAnalysisInput is the input for the impact_analysis tool.
type ImpactAnalysisInput struct {
	SupplierName string `json:"supplierName" jsonschema:"supplier display name as labelled in the knowledge graph (case-insensitive)"`
	TopKParts    int    `json:"topKParts,omitempty" jsonschema:"maximum impacted parts to return (default: 10)"`
	TopKProducts int    `json:"topKProducts,omitempty" jsonschema:"maximum impacted products to return (default: 10)"`
	TopKRegions  int    `json:"topKRegions,omitempty" jsonschema:"maximum impacted regions to return (default: 10)"`
}

// ImpactAnalysisOutput is the result of the impact_analysis tool. When Found
// is false only Error and Hint are set.
type ImpactAnalysisOutput struct {
	Found            bool                `json:"found"`
	Error            string              `json:"error,omitempty"`
	Hint             string              `json:"hint,omitempty"`
	Supplier         *impact.SupplierRef `json:"supplier,omitempty"`
	ImpactedParts    []impact.EntityRef  `json:"impactedParts,omitempty"`
	ImpactedProducts []impact.ProductRef `json:"impactedProducts,omitempty"`
	ImpactedRegions  []impact.RegionRef  `json:"impactedRegions,omitempty"`
	EvidenceText     string              `json:"evidenceText,omitempty"`
	Narrative        string              `json:"narrative,omitempty"`
}

// ResolveEntityInput is the input for the resolve_entity tool.
type ResolveEntityInput struct {
	Name  string `json:"name" jsonschema:"display name to resolve (case-insensitive exact match)"`
	Class string `json:"class,omitempty" jsonschema:"entity class: Supplier, Part, Product, Facility or Region (default: Supplier)"`
}

// ResolveEntityOutput is the result of the resolve_entity tool.
type ResolveEntityOutput struct {
	Found bool   `json:"found"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Class string `json:"class"`
}
