// Package export renders impact reports as JSON, plain text or Mermaid.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/scimpact/internal/impact"
)

// GenerateJSON renders a report as indented JSON using the report's wire
// shape, including the not-found {error, hint} form.
func GenerateJSON(r *impact.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("nil report")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}
