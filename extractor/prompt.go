package extractor

import (
	"fmt"
	"strings"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// buildPrompt assembles the per-chunk completion prompt. The instruction
// block is the primary defense against hallucinated records: only a bare
// JSON array, only values literally present in the chunk, empty array when
// nothing qualifies. Changes here directly affect fabrication rates.
func buildPrompt(userPrompt string, spec models.FieldSpec, chunk string) string {
	target := spec.Target
	if target == "" {
		target = "items"
	}
	fields := strings.Join(spec.Fields, ", ")

	return fmt.Sprintf(`You are extracting structured data from a web page on behalf of a user.

User request: %s
Target entities: %s
Fields per entity: %s

Page content:
"""
%s
"""

Instructions:
- Respond with ONLY a single JSON array. No markdown fences, no explanation, no text before or after it.
- Each array element is one JSON object with exactly the fields listed above.
- Extract only values that appear literally in the page content above. Never invent, infer or reformat a value.
- Use null for a field whose value is not present in the content.
- If the content contains no qualifying %s, respond with [].`,
		userPrompt, target, fields, chunk, target)
}
