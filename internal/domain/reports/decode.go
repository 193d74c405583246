package reports

import "encoding/json"

// EncodeBody serializes a report body for storage.
func EncodeBody(b *ReportBody) ([]byte, error) {
	return json.Marshal(b)
}

// FallbackBody rebuilds a minimal report body from denormalized scores only:
// empty detail bundles and empty recommendation lists for every category.
// Used when a stored blob cannot be decoded; listing must never fail on a
// malformed legacy encoding.
func FallbackBody(s CategoryScores) ReportBody {
	b := ReportBody{
		Performance:   PerformanceResult{Score: s.Performance},
		SEO:           SEOResult{Score: s.SEO},
		Accessibility: AccessibilityResult{Score: s.Accessibility},
		Design:        DesignResult{Score: s.Design},
		UX:            UXResult{Score: s.UX},
	}
	b.Normalize()
	return b
}
