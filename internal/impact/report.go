package impact

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dusk-indust/scimpact/internal/kg"
)

// DefaultTopK is the default bound for each impacted list.
const DefaultTopK = 10

// ErrInvalidLimits is returned when a limit is not a positive integer.
var ErrInvalidLimits = errors.New("impact: limits must be positive")

// Limits bounds the three impacted lists independently.
type Limits struct {
	Parts    int `json:"parts"`
	Products int `json:"products"`
	Regions  int `json:"regions"`
}

// DefaultLimits returns DefaultTopK for every list.
func DefaultLimits() Limits {
	return Limits{Parts: DefaultTopK, Products: DefaultTopK, Regions: DefaultTopK}
}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	if l.Parts <= 0 || l.Products <= 0 || l.Regions <= 0 {
		return fmt.Errorf("%w: parts=%d products=%d regions=%d", ErrInvalidLimits, l.Parts, l.Products, l.Regions)
	}
	return nil
}

// EntityRef is the wire form of an entity: identifier plus display label.
type EntityRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Ref converts an entity, applying the label fallback.
func Ref(e kg.Entity) EntityRef {
	return EntityRef{ID: e.ID.String(), Label: e.DisplayLabel()}
}

// ProductImpact is a product reached through the bill of materials, with the
// base part that witnesses the dependency.
type ProductImpact struct {
	Product      kg.Entity
	ViaComponent kg.Entity
}

// RegionImpact is a region in the supplier's delivery footprint, with the
// facility that witnesses it.
type RegionImpact struct {
	Region      kg.Entity
	ViaFacility kg.Entity
}

// Evidence is the deterministic, bounded structural result of traversal.
type Evidence struct {
	Parts    []kg.Entity
	Products []ProductImpact
	Regions  []RegionImpact
	// Text is the canonical rendering of the three lists. It is the only
	// input narration may see.
	Text string
}

// SupplierRef identifies the resolved supplier in a Report.
type SupplierRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Report is the result of an impact analysis. When NotFound is set only
// Error and Hint are meaningful.
type Report struct {
	NotFound bool
	Error    string
	Hint     string

	Supplier         SupplierRef
	ImpactedParts    []EntityRef
	ImpactedProducts []ProductRef
	ImpactedRegions  []RegionRef
	EvidenceText     string
	Narrative        string
}

// ProductRef is the wire form of a ProductImpact.
type ProductRef struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	ViaComponent EntityRef `json:"viaComponent"`
}

// RegionRef is the wire form of a RegionImpact.
type RegionRef struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	ViaFacility EntityRef `json:"viaFacility"`
}

type notFoundJSON struct {
	Error string `json:"error"`
	Hint  string `json:"hint"`
}

type reportJSON struct {
	Supplier         SupplierRef  `json:"supplier"`
	ImpactedParts    []EntityRef  `json:"impactedParts"`
	ImpactedProducts []ProductRef `json:"impactedProducts"`
	ImpactedRegions  []RegionRef  `json:"impactedRegions"`
	EvidenceText     string       `json:"evidenceText"`
	Narrative        string       `json:"narrative"`
}

// MarshalJSON renders either the not-found shape {error, hint} or the full
// report. Empty lists are rendered as [] rather than null.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.NotFound {
		return json.Marshal(notFoundJSON{Error: r.Error, Hint: r.Hint})
	}
	out := reportJSON{
		Supplier:         r.Supplier,
		ImpactedParts:    r.ImpactedParts,
		ImpactedProducts: r.ImpactedProducts,
		ImpactedRegions:  r.ImpactedRegions,
		EvidenceText:     r.EvidenceText,
		Narrative:        r.Narrative,
	}
	if out.ImpactedParts == nil {
		out.ImpactedParts = []EntityRef{}
	}
	if out.ImpactedProducts == nil {
		out.ImpactedProducts = []ProductRef{}
	}
	if out.ImpactedRegions == nil {
		out.ImpactedRegions = []RegionRef{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either shape produced by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		var nf notFoundJSON
		if err := json.Unmarshal(data, &nf); err != nil {
			return err
		}
		*r = Report{NotFound: true, Error: nf.Error, Hint: nf.Hint}
		return nil
	}
	var full reportJSON
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*r = Report{
		Supplier:         full.Supplier,
		ImpactedParts:    full.ImpactedParts,
		ImpactedProducts: full.ImpactedProducts,
		ImpactedRegions:  full.ImpactedRegions,
		EvidenceText:     full.EvidenceText,
		Narrative:        full.Narrative,
	}
	return nil
}

func newReport(supplierName string, supplier kg.Entity, ev *Evidence, narrative string) *Report {
	r := &Report{
		Supplier:     SupplierRef{Name: supplierName, ID: supplier.ID.String()},
		EvidenceText: ev.Text,
		Narrative:    narrative,
	}
	r.ImpactedParts = make([]EntityRef, 0, len(ev.Parts))
	for _, p := range ev.Parts {
		r.ImpactedParts = append(r.ImpactedParts, Ref(p))
	}
	r.ImpactedProducts = make([]ProductRef, 0, len(ev.Products))
	for _, p := range ev.Products {
		r.ImpactedProducts = append(r.ImpactedProducts, ProductRef{
			ID:           p.Product.ID.String(),
			Label:        p.Product.DisplayLabel(),
			ViaComponent: Ref(p.ViaComponent),
		})
	}
	r.ImpactedRegions = make([]RegionRef, 0, len(ev.Regions))
	for _, rg := range ev.Regions {
		r.ImpactedRegions = append(r.ImpactedRegions, RegionRef{
			ID:          rg.Region.ID.String(),
			Label:       rg.Region.DisplayLabel(),
			ViaFacility: Ref(rg.ViaFacility),
		})
	}
	return r
}
