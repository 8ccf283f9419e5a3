package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/scimpact/internal/impact"
	"github.com/dusk-indust/scimpact/internal/kg"
)

// Analyzer runs impact analyses.
type Analyzer interface {
	Analyze(ctx context.Context, supplierName string, limits impact.Limits) (*impact.Report, error)
}

// Resolver maps display names to entities.
type Resolver interface {
	Resolve(ctx context.Context, displayName string, class kg.Class) (kg.Entity, error)
}

// ImpactService holds the dependencies used by the MCP tool handlers.
type ImpactService struct {
	analyzer Analyzer
	resolver Resolver
}

// NewImpactService creates an ImpactService.
func NewImpactService(analyzer Analyzer, resolver Resolver) *ImpactService {
	return &ImpactService{analyzer: analyzer, resolver: resolver}
}

// ImpactAnalysis runs an impact analysis for a supplier.
func (s *ImpactService) ImpactAnalysis(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImpactAnalysisInput,
) (*mcp.CallToolResult, ImpactAnalysisOutput, error) {
	if strings.TrimSpace(input.SupplierName) == "" {
		return nil, ImpactAnalysisOutput{}, fmt.Errorf("supplierName is required")
	}

	limits := impact.Limits{
		Parts:    positiveOr(input.TopKParts, impact.DefaultTopK),
		Products: positiveOr(input.TopKProducts, impact.DefaultTopK),
		Regions:  positiveOr(input.TopKRegions, impact.DefaultTopK),
	}

	report, err := s.analyzer.Analyze(ctx, input.SupplierName, limits)
	if err != nil {
		return nil, ImpactAnalysisOutput{}, fmt.Errorf("impact analysis: %w", err)
	}
	if report.NotFound {
		return nil, ImpactAnalysisOutput{Found: false, Error: report.Error, Hint: report.Hint}, nil
	}

	supplier := report.Supplier
	return nil, ImpactAnalysisOutput{
		Found:            true,
		Supplier:         &supplier,
		ImpactedParts:    report.ImpactedParts,
		ImpactedProducts: report.ImpactedProducts,
		ImpactedRegions:  report.ImpactedRegions,
		EvidenceText:     report.EvidenceText,
		Narrative:        report.Narrative,
	}, nil
}

// ResolveEntity looks up an entity by display name.
func (s *ImpactService) ResolveEntity(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveEntityInput,
) (*mcp.CallToolResult, ResolveEntityOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ResolveEntityOutput{}, fmt.Errorf("name is required")
	}

	class := kg.ClassSupplier
	if input.Class != "" {
		class = parseClass(input.Class)
		if !class.Valid() {
			return nil, ResolveEntityOutput{}, fmt.Errorf("unknown class: %s", input.Class)
		}
	}

	ent, err := s.resolver.Resolve(ctx, input.Name, class)
	if err != nil {
		if errors.Is(err, kg.ErrNotFound) {
			return nil, ResolveEntityOutput{Found: false, Class: string(class)}, nil
		}
		return nil, ResolveEntityOutput{}, fmt.Errorf("resolve entity: %w", err)
	}

	return nil, ResolveEntityOutput{
		Found: true,
		ID:    ent.ID.String(),
		Label: ent.DisplayLabel(),
		Class: string(class),
	}, nil
}

// parseClass matches a class name case-insensitively.
func parseClass(s string) kg.Class {
	for _, c := range kg.Classes {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return kg.Class(s)
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
