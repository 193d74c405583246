package prompt

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

// System pins the exact JSON schema the model must return. The adapter
// validates the response shape anyway; the prompt just makes conformance
// likely on the first try.
func System() string {
	return `You are a website quality auditor. Analyze the provided page and return ONLY a JSON object with exactly these five top-level keys: "performance", "seo", "accessibility", "design", "ux".

Each section carries an integer "score" between 0 and 100 and a "recommendations" array of strings (may be empty). Section-specific fields:

- "performance": "metrics" object with numeric "loadTime", "firstContentfulPaint", "largestContentfulPaint" (seconds) and "cumulativeLayoutShift" (unitless).
- "seo": "issues" array of objects {"type": "error"|"warning"|"info", "message": string, "impact": "high"|"medium"|"low"}.
- "accessibility": "violations" array of objects {"severity": "critical"|"serious"|"moderate"|"minor", "description": string, "element": string}.
- "design": "analysis" object with integer 0-100 fields "colorContrast", "typography", "layout", "responsiveness".
- "ux": "metrics" object with integer 0-100 fields "navigationClarity", "contentReadability", "mobileUsability", "interactionDesign".

All scores must be integers. Do not wrap the JSON in markdown fences. Do not add keys outside this schema.`
}

// User builds the analysis request from the canonical URL, extracted
// metadata, and the (already truncated) content excerpt.
func User(in domain.AnalysisInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this website:\n\nURL: %s\n", in.URL)
	if in.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", in.Title)
	}
	if in.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", in.Description)
	}
	if in.Excerpt != "" {
		fmt.Fprintf(&b, "\nPage content (may be truncated):\n%s\n", in.Excerpt)
	}
	return b.String()
}
