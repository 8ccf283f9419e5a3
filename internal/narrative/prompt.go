package narrative

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a supply-chain risk analyst.
Task: explain the impact if supplier '%s' fails.
Use only the evidence below. Be concrete and list impacted products and regions with the dependency logic.

%s

Output format:
1) Impacted products (bullets)
2) Impacted regions (bullets)
3) Reasoning path (short)
4) Mitigations (3-5 bullets)`

// BuildPrompt fills the fixed analyst prompt with the supplier name and the
// rendered evidence.
func BuildPrompt(supplierName, evidenceText string) string {
	return fmt.Sprintf(promptTemplate, supplierName, strings.TrimSpace(evidenceText))
}
