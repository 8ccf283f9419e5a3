package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/scimpact/internal/impact"
)

// GenerateMermaid produces a Mermaid graph LR diagram of an impact report.
// The supplier points at each directly supplied part, each product hangs off
// its witnessing component, and each region hangs off its witnessing facility.
func GenerateMermaid(r *impact.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nil report")
	}
	if r.NotFound {
		return "", fmt.Errorf("cannot render diagram: %s", r.Error)
	}

	// Build entity ID → Mermaid node ID mapping (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	var sb strings.Builder
	getID := func(id, label, shape string) string {
		if nid, ok := nodeIDs[id]; ok {
			return nid
		}
		nid := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[id] = nid
		sb.WriteString(fmt.Sprintf("  %s%s\n", nid, fmt.Sprintf(shape, escapeLabel(label))))
		return nid
	}

	sb.WriteString("graph LR\n")
	root := getID(r.Supplier.ID, r.Supplier.Name, "[[\"%s\"]]")

	for _, p := range r.ImpactedParts {
		pid := getID(p.ID, p.Label, "[\"%s\"]")
		sb.WriteString(fmt.Sprintf("  %s -->|supplies| %s\n", root, pid))
	}

	for _, p := range r.ImpactedProducts {
		via := getID(p.ViaComponent.ID, p.ViaComponent.Label, "[\"%s\"]")
		prod := getID(p.ID, p.Label, "([\"%s\"])")
		sb.WriteString(fmt.Sprintf("  %s -->|usedIn| %s\n", via, prod))
	}

	delivered := make(map[string]bool)
	for _, rg := range r.ImpactedRegions {
		fac := getID(rg.ViaFacility.ID, rg.ViaFacility.Label, "[/\"%s\"/]")
		if !delivered[rg.ViaFacility.ID] {
			delivered[rg.ViaFacility.ID] = true
			sb.WriteString(fmt.Sprintf("  %s -.->|deliversTo| %s\n", root, fac))
		}
		reg := getID(rg.ID, rg.Label, "{{\"%s\"}}")
		sb.WriteString(fmt.Sprintf("  %s -->|locatedIn| %s\n", fac, reg))
	}

	return sb.String(), nil
}

// escapeLabel makes a label safe inside a quoted Mermaid node.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
