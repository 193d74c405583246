package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/siteinsight/internal/application"
	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

// State of a pipeline run.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateCapturing  State = "capturing"
	StateAnalyzing  State = "analyzing"
	StatePersisting State = "persisting"
	StateComplete   State = "complete"
	StateFailed     State = "failed"
)

// Fixed progress checkpoints per state. Reporting only, no business logic.
var checkpoints = map[State]int{
	StateIdle:       0,
	StateFetching:   20,
	StateCapturing:  40,
	StateAnalyzing:  60,
	StatePersisting: 80,
	StateComplete:   100,
	StateFailed:     0,
}

var stepLabels = map[State]string{
	StateIdle:       "",
	StateFetching:   "Fetching page content...",
	StateCapturing:  "Capturing screenshot...",
	StateAnalyzing:  "Analyzing website quality...",
	StatePersisting: "Saving report...",
	StateComplete:   "Analysis complete",
	StateFailed:     "",
}

// Progress is the externally observable pipeline position. Percent is
// monotonically non-decreasing within one run.
type Progress struct {
	State   State  `json:"state"`
	Step    string `json:"step"`
	Percent int    `json:"percent"`
}

// StageTimeouts bound each suspending stage. Adapters may hang indefinitely;
// expiry counts as that stage's failure. Zero means unbounded.
type StageTimeouts struct {
	Fetch   time.Duration
	Capture time.Duration
	Analyze time.Duration
	Persist time.Duration
}

const defaultMaxExcerpt = 8000

// Service runs the analysis pipeline: fetch -> capture -> analyze -> persist.
// Safe for concurrent use; runs for different users proceed independently,
// runs for the same user are single-flight.
type Service struct {
	Repo     domain.Repository
	Fetcher  domain.Fetcher
	Capturer domain.Capturer
	Analyzer domain.Analyzer
	Clock    application.Clock

	Capture    domain.CaptureOptions
	Timeouts   StageTimeouts
	MaxExcerpt int // content excerpt budget in bytes; 0 means default

	// OnProgress, when set, observes every state transition.
	OnProgress func(userID string, p Progress)

	mu   sync.Mutex
	runs map[string]*runState
}

type runState struct {
	active   bool
	progress Progress
}

// AnalyzeCommand triggers one pipeline run. URL must already be canonical
// (see domain NormalizeURL).
type AnalyzeCommand struct {
	UserID string
	URL    string
}

// Start acquires the user's single-flight slot before returning, then runs
// the pipeline in the background on the held slot with context.Background()
// so the run is not cut short by client cancel. A concurrent trigger fails
// here with ErrAnalysisInProgress; it is never accepted and silently dropped.
// done, when set, observes the terminal result.
func (s *Service) Start(cmd AnalyzeCommand, done func(*domain.AnalysisReport, error)) error {
	if err := s.acquire(cmd.UserID); err != nil {
		return err
	}
	go func() {
		report, err := s.runHeld(context.Background(), cmd)
		if done != nil {
			done(report, err)
		}
	}()
	return nil
}

// Run executes the pipeline stages strictly in sequence and persists the
// assembled report before exposing it. Any stage failure aborts the run,
// resets progress, and leaves nothing persisted. A second invocation while a
// run is active for the same user returns ErrAnalysisInProgress.
func (s *Service) Run(ctx context.Context, cmd AnalyzeCommand) (*domain.AnalysisReport, error) {
	if err := s.acquire(cmd.UserID); err != nil {
		return nil, err
	}
	return s.runHeld(ctx, cmd)
}

// runHeld drives the stages on an already-acquired slot and releases it in
// the terminal transition.
func (s *Service) runHeld(ctx context.Context, cmd AnalyzeCommand) (*domain.AnalysisReport, error) {
	report, err := s.execute(ctx, cmd)
	if err != nil {
		s.finish(cmd.UserID, StateFailed)
		return nil, err
	}
	s.finish(cmd.UserID, StateComplete)
	return report, nil
}

func (s *Service) execute(ctx context.Context, cmd AnalyzeCommand) (*domain.AnalysisReport, error) {
	s.transition(cmd.UserID, StateFetching)
	fetched, err := s.fetchStage(ctx, cmd.URL)
	if err != nil {
		return nil, stageErr(domain.ErrFetchFailed, err)
	}

	s.transition(cmd.UserID, StateCapturing)
	snapshotURL, err := s.captureStage(ctx, cmd.URL)
	if err != nil {
		return nil, stageErr(domain.ErrCaptureFailed, err)
	}

	s.transition(cmd.UserID, StateAnalyzing)
	body, err := s.analyzeStage(ctx, cmd.URL, fetched)
	if err != nil {
		return nil, stageErr(domain.ErrGenerationFailed, err)
	}

	s.transition(cmd.UserID, StatePersisting)
	body.Normalize()
	report := &domain.AnalysisReport{
		ID:          domain.ReportID(uuid.New().String()),
		UserID:      cmd.UserID,
		URL:         cmd.URL,
		AnalyzedAt:  s.Clock.Now(),
		SnapshotURL: snapshotURL,
		Body:        *body,
	}
	if err := s.persistStage(ctx, report); err != nil {
		return nil, stageErr(domain.ErrStoreFailed, err)
	}

	return report, nil
}

func (s *Service) fetchStage(ctx context.Context, url string) (*domain.FetchResult, error) {
	ctx, cancel := withTimeout(ctx, s.Timeouts.Fetch)
	defer cancel()
	return s.Fetcher.Fetch(ctx, url)
}

func (s *Service) captureStage(ctx context.Context, url string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.Timeouts.Capture)
	defer cancel()
	return s.Capturer.Capture(ctx, url, s.Capture)
}

func (s *Service) analyzeStage(ctx context.Context, url string, fetched *domain.FetchResult) (*domain.ReportBody, error) {
	ctx, cancel := withTimeout(ctx, s.Timeouts.Analyze)
	defer cancel()
	return s.Analyzer.Analyze(ctx, domain.AnalysisInput{
		URL:         url,
		Title:       fetched.Title,
		Description: fetched.Description,
		Excerpt:     s.excerpt(fetched.Content),
	})
}

func (s *Service) persistStage(ctx context.Context, r *domain.AnalysisReport) error {
	ctx, cancel := withTimeout(ctx, s.Timeouts.Persist)
	defer cancel()
	return s.Repo.Create(ctx, r)
}

// excerpt truncates fetched content to the configured budget. Truncate,
// never fail: oversized pages still get analyzed on their head.
func (s *Service) excerpt(content string) string {
	budget := s.MaxExcerpt
	if budget <= 0 {
		budget = defaultMaxExcerpt
	}
	if len(content) <= budget {
		return content
	}
	return content[:budget]
}

// Progress returns the current pipeline position for a user. Users without a
// run on record are idle.
func (s *Service) Progress(userID string) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rs, ok := s.runs[userID]; ok {
		return rs.progress
	}
	return Progress{State: StateIdle}
}

// Busy reports whether a pipeline run is currently active for a user.
func (s *Service) Busy(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.runs[userID]
	return ok && rs.active
}

// Get reads back one persisted report.
func (s *Service) Get(ctx context.Context, userID string, id domain.ReportID) (*domain.AnalysisReport, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) acquire(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runs == nil {
		s.runs = make(map[string]*runState)
	}
	rs, ok := s.runs[userID]
	if ok && rs.active {
		return domain.ErrAnalysisInProgress
	}
	if !ok {
		rs = &runState{}
		s.runs[userID] = rs
	}
	rs.active = true
	rs.progress = Progress{State: StateIdle}
	return nil
}

// transition moves the run to the given state and notifies the observer.
func (s *Service) transition(userID string, state State) {
	p := Progress{State: state, Step: stepLabels[state], Percent: checkpoints[state]}
	s.mu.Lock()
	if rs, ok := s.runs[userID]; ok {
		rs.progress = p
	}
	cb := s.OnProgress
	s.mu.Unlock()
	if cb != nil {
		cb(userID, p)
	}
}

// finish records the terminal state and releases the single-flight slot so a
// failed run is immediately re-triggerable.
func (s *Service) finish(userID string, state State) {
	s.transition(userID, state)
	s.mu.Lock()
	if rs, ok := s.runs[userID]; ok {
		rs.active = false
	}
	s.mu.Unlock()
	if state == StateFailed {
		log.Printf("analysis failed for user=%s, pipeline reset", userID)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// stageErr tags an adapter error with its stage sentinel, keeping the cause
// for diagnostics. Errors already carrying the sentinel pass through.
func stageErr(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
