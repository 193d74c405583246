package reports

import (
	"fmt"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

// ExportDocument is the self-contained downloadable rendering of one report,
// including the computed overall score. The only file format we emit.
type ExportDocument struct {
	ID            string                       `json:"id"`
	URL           string                       `json:"url"`
	AnalyzedAt    int64                        `json:"analyzedAt"` // epoch millis
	OverallScore  int                          `json:"overallScore"`
	SnapshotURL   string                       `json:"snapshotUrl,omitempty"`
	Performance   domain.PerformanceResult     `json:"performance"`
	SEO           domain.SEOResult             `json:"seo"`
	Accessibility domain.AccessibilityResult   `json:"accessibility"`
	Design        domain.DesignResult          `json:"design"`
	UX            domain.UXResult              `json:"ux"`
}

// BuildExport assembles the export document for a persisted report.
func BuildExport(r *domain.AnalysisReport) ExportDocument {
	return ExportDocument{
		ID:            string(r.ID),
		URL:           r.URL,
		AnalyzedAt:    r.AnalyzedAt.UnixMilli(),
		OverallScore:  r.Body.OverallScore(),
		SnapshotURL:   r.SnapshotURL,
		Performance:   r.Body.Performance,
		SEO:           r.Body.SEO,
		Accessibility: r.Body.Accessibility,
		Design:        r.Body.Design,
		UX:            r.Body.UX,
	}
}

// ExportFilename names the download after the report's analysis date.
func ExportFilename(r *domain.AnalysisReport) string {
	return fmt.Sprintf("website-analysis-%s.json", r.AnalyzedAt.Format("2006-01-02"))
}
