package reports

import (
	"time"
)

// ID tipe untuk AnalysisReport
type ReportID string

// Category names, canonical order. Aggregations iterate in this order so
// ties resolve deterministically.
const (
	CategoryPerformance   = "performance"
	CategorySEO           = "seo"
	CategoryAccessibility = "accessibility"
	CategoryDesign        = "design"
	CategoryUX            = "ux"
)

// Categories lists the five report categories in canonical order.
var Categories = []string{
	CategoryPerformance,
	CategorySEO,
	CategoryAccessibility,
	CategoryDesign,
	CategoryUX,
}

// PerformanceMetrics are measured in seconds except CLS, which is unitless.
type PerformanceMetrics struct {
	LoadTime               float64 `json:"loadTime"`
	FirstContentfulPaint   float64 `json:"firstContentfulPaint"`
	LargestContentfulPaint float64 `json:"largestContentfulPaint"`
	CumulativeLayoutShift  float64 `json:"cumulativeLayoutShift"`
}

type PerformanceResult struct {
	Score           int                `json:"score"`
	Metrics         PerformanceMetrics `json:"metrics"`
	Recommendations []string           `json:"recommendations"`
}

// SEOIssue type is one of error|warning|info, impact one of high|medium|low.
type SEOIssue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Impact  string `json:"impact"`
}

type SEOResult struct {
	Score           int        `json:"score"`
	Issues          []SEOIssue `json:"issues"`
	Recommendations []string   `json:"recommendations"`
}

// AccessibilityViolation severity is one of critical|serious|moderate|minor.
type AccessibilityViolation struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Element     string `json:"element"`
}

type AccessibilityResult struct {
	Score           int                      `json:"score"`
	Violations      []AccessibilityViolation `json:"violations"`
	Recommendations []string                 `json:"recommendations"`
}

// DesignAnalysis sub-scores are integers 0-100.
type DesignAnalysis struct {
	ColorContrast  int `json:"colorContrast"`
	Typography     int `json:"typography"`
	Layout         int `json:"layout"`
	Responsiveness int `json:"responsiveness"`
}

type DesignResult struct {
	Score           int            `json:"score"`
	Analysis        DesignAnalysis `json:"analysis"`
	Recommendations []string       `json:"recommendations"`
}

// UXMetrics sub-scores are integers 0-100.
type UXMetrics struct {
	NavigationClarity  int `json:"navigationClarity"`
	ContentReadability int `json:"contentReadability"`
	MobileUsability    int `json:"mobileUsability"`
	InteractionDesign  int `json:"interactionDesign"`
}

type UXResult struct {
	Score           int       `json:"score"`
	Metrics         UXMetrics `json:"metrics"`
	Recommendations []string  `json:"recommendations"`
}

// ReportBody groups the five category results of one analysis.
type ReportBody struct {
	Performance   PerformanceResult   `json:"performance"`
	SEO           SEOResult           `json:"seo"`
	Accessibility AccessibilityResult `json:"accessibility"`
	Design        DesignResult        `json:"design"`
	UX            UXResult            `json:"ux"`
}

// CategoryScores value object: the denormalized top-level scores stored next
// to the encoded report body for listing without a full decode.
type CategoryScores struct {
	Performance   int `json:"performance"`
	SEO           int `json:"seo"`
	Accessibility int `json:"accessibility"`
	Design        int `json:"design"`
	UX            int `json:"ux"`
}

// Scores projects the denormalized top-level scores out of a body.
func (b *ReportBody) Scores() CategoryScores {
	return CategoryScores{
		Performance:   b.Performance.Score,
		SEO:           b.SEO.Score,
		Accessibility: b.Accessibility.Score,
		Design:        b.Design.Score,
		UX:            b.UX.Score,
	}
}

// Aggregate Root: AnalysisReport. One URL analyzed at one point in time.
// Immutable once created; never updated or deleted.
type AnalysisReport struct {
	ID          ReportID   `json:"id"`
	UserID      string     `json:"user_id"`
	URL         string     `json:"url"`
	AnalyzedAt  time.Time  `json:"analyzed_at"`
	SnapshotURL string     `json:"snapshot_url,omitempty"`
	Body        ReportBody `json:"body"`
}
