package reports

import "context"

// Repository port (interface untuk persistence). Create persists the full
// report as an encoded body alongside denormalized scores; Latest returns
// reports ordered by analysis time, descending, capped at limit.
type Repository interface {
	Create(ctx context.Context, r *AnalysisReport) error
	Get(ctx context.Context, userID string, id ReportID) (*AnalysisReport, error)
	Latest(ctx context.Context, userID string, limit int) ([]*AnalysisReport, error)
}

// FetchResult is a best-effort plain-text rendering of a page plus whatever
// metadata the scraper recovered. Truncation is the caller's concern.
type FetchResult struct {
	Content     string
	Title       string
	Description string
}

// Fetcher port wrapping the content extraction engine. May block for
// arbitrarily long; callers impose timeout policy.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// CaptureOptions control the rendered snapshot.
type CaptureOptions struct {
	FullPage bool
	Width    int
	Height   int
}

// Capturer port wrapping the screenshot renderer. Returns an opaque
// reference to the stored snapshot; pixel data is never decoded here.
type Capturer interface {
	Capture(ctx context.Context, url string, opts CaptureOptions) (string, error)
}

// AnalysisInput bundles what the generation engine sees: the canonical URL,
// extracted metadata, and a bounded excerpt of the fetched content.
type AnalysisInput struct {
	URL         string
	Title       string
	Description string
	Excerpt     string
}

// Analyzer port wrapping the structured generation engine. Implementations
// must validate the engine output against the report schema before returning
// it; a non-conforming payload is a generation failure, not a caller crash.
type Analyzer interface {
	Analyze(ctx context.Context, in AnalysisInput) (*ReportBody, error)
}

// SnapshotStore port (interface untuk penyimpanan screenshot)
type SnapshotStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
