package reports

import (
	"encoding/json"
	"fmt"
)

// ParseBody decodes a generated payload and validates it against the report
// schema: all five categories present, scores decodable as integers, lists
// materialized. Conforming shape is all this guarantees; score magnitudes are
// clamped, not judged.
func ParseBody(raw []byte) (*ReportBody, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode report body: %w", err)
	}
	for _, name := range Categories {
		if _, ok := probe[name]; !ok {
			return nil, fmt.Errorf("report body missing category %q", name)
		}
	}

	var body ReportBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode report body: %w", err)
	}
	body.Normalize()
	return &body, nil
}

// Normalize clamps every score into [0,100] and replaces nil lists with empty
// ones so an assembled report always carries the full shape on the wire.
func (b *ReportBody) Normalize() {
	b.Performance.Score = clampScore(b.Performance.Score)
	b.SEO.Score = clampScore(b.SEO.Score)
	b.Accessibility.Score = clampScore(b.Accessibility.Score)
	b.Design.Score = clampScore(b.Design.Score)
	b.UX.Score = clampScore(b.UX.Score)

	b.Design.Analysis.ColorContrast = clampScore(b.Design.Analysis.ColorContrast)
	b.Design.Analysis.Typography = clampScore(b.Design.Analysis.Typography)
	b.Design.Analysis.Layout = clampScore(b.Design.Analysis.Layout)
	b.Design.Analysis.Responsiveness = clampScore(b.Design.Analysis.Responsiveness)

	b.UX.Metrics.NavigationClarity = clampScore(b.UX.Metrics.NavigationClarity)
	b.UX.Metrics.ContentReadability = clampScore(b.UX.Metrics.ContentReadability)
	b.UX.Metrics.MobileUsability = clampScore(b.UX.Metrics.MobileUsability)
	b.UX.Metrics.InteractionDesign = clampScore(b.UX.Metrics.InteractionDesign)

	if b.Performance.Recommendations == nil {
		b.Performance.Recommendations = []string{}
	}
	if b.SEO.Recommendations == nil {
		b.SEO.Recommendations = []string{}
	}
	if b.SEO.Issues == nil {
		b.SEO.Issues = []SEOIssue{}
	}
	if b.Accessibility.Recommendations == nil {
		b.Accessibility.Recommendations = []string{}
	}
	if b.Accessibility.Violations == nil {
		b.Accessibility.Violations = []AccessibilityViolation{}
	}
	if b.Design.Recommendations == nil {
		b.Design.Recommendations = []string{}
	}
	if b.UX.Recommendations == nil {
		b.UX.Recommendations = []string{}
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
