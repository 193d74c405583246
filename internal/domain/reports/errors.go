package reports

import "errors"

// Pipeline error taxonomy. Stage failures wrap one of these sentinels so the
// transport layer can map them to responses without inspecting adapter detail.
var (
	// ErrInvalidURL indicates the user input could not be coerced into an
	// absolute URL. Reported before the pipeline starts.
	ErrInvalidURL = errors.New("invalid url")

	// ErrFetchFailed indicates the content extraction stage failed.
	ErrFetchFailed = errors.New("content fetch failed")

	// ErrCaptureFailed indicates the screenshot stage failed.
	ErrCaptureFailed = errors.New("visual capture failed")

	// ErrGenerationFailed indicates the generation engine failed or returned
	// a payload that does not conform to the report schema.
	ErrGenerationFailed = errors.New("report generation failed")

	// ErrStoreFailed indicates report persistence failed.
	ErrStoreFailed = errors.New("report store failed")

	// ErrAnalysisInProgress is returned when a pipeline run is triggered
	// while another run is still active for the same user.
	ErrAnalysisInProgress = errors.New("analysis already in progress")
)
