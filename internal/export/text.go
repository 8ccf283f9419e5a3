package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/scimpact/internal/impact"
)

// GenerateText renders a report for a terminal.
func GenerateText(r *impact.Report) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	if r.NotFound {
		sb.WriteString(r.Error + "\n")
		sb.WriteString("Hint: " + r.Hint + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Supplier: %s (%s)\n\n", r.Supplier.Name, r.Supplier.ID))
	sb.WriteString(r.EvidenceText)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Totals: %d parts, %d products, %d regions\n\n",
		len(r.ImpactedParts), len(r.ImpactedProducts), len(r.ImpactedRegions)))
	sb.WriteString("NARRATIVE:\n")
	sb.WriteString(strings.TrimSpace(r.Narrative))
	sb.WriteString("\n")
	return sb.String()
}
