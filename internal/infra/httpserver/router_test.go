package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/siteinsight/internal/application"
	apphistory "github.com/bryanwahyu/siteinsight/internal/application/history"
	appreports "github.com/bryanwahyu/siteinsight/internal/application/reports"
	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

// ---- fakes wired through real services ----

type memRepo struct {
	mu      sync.Mutex
	reports []*domain.AnalysisReport
}

func (r *memRepo) Create(ctx context.Context, rep *domain.AnalysisReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *memRepo) Get(ctx context.Context, userID string, id domain.ReportID) (*domain.AnalysisReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.UserID == userID && rep.ID == id {
			return rep, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memRepo) Latest(ctx context.Context, userID string, limit int) ([]*domain.AnalysisReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AnalysisReport
	for _, rep := range r.reports {
		if rep.UserID == userID {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnalyzedAt.After(out[j].AnalyzedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, url string) (*domain.FetchResult, error) {
	return &domain.FetchResult{Content: "content", Title: "stub page"}, nil
}

type stubCapturer struct{}

func (stubCapturer) Capture(ctx context.Context, url string, opts domain.CaptureOptions) (string, error) {
	return "http://minio.local/snapshots/stub.png", nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, in domain.AnalysisInput) (*domain.ReportBody, error) {
	b := domain.ReportBody{
		Performance:   domain.PerformanceResult{Score: 80},
		SEO:           domain.SEOResult{Score: 60},
		Accessibility: domain.AccessibilityResult{Score: 90},
		Design:        domain.DesignResult{Score: 70},
		UX:            domain.UXResult{Score: 50},
	}
	b.Normalize()
	return &b, nil
}

// blockingFetcher parks until released so a run stays in flight during a test.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) (*domain.FetchResult, error) {
	close(f.started)
	<-f.release
	return &domain.FetchResult{Content: "content"}, nil
}

func newTestRouterWith(repo *memRepo, fetcher domain.Fetcher, historySvc *apphistory.Service) http.Handler {
	reportsSvc := &appreports.Service{
		Repo:     repo,
		Fetcher:  fetcher,
		Capturer: stubCapturer{},
		Analyzer: stubAnalyzer{},
		Clock:    application.SystemClock{},
	}
	historySvc.Repo = repo
	return NewRouter(reportsSvc, historySvc, nil)
}

func newTestRouter(repo *memRepo) http.Handler {
	return newTestRouterWith(repo, stubFetcher{}, &apphistory.Service{DefaultLimit: 10, MaxLimit: 100})
}

func seedReport(repo *memRepo, userID string, at time.Time, perf int) *domain.AnalysisReport {
	rep := &domain.AnalysisReport{
		ID:          domain.ReportID(uuid.New().String()),
		UserID:      userID,
		URL:         "https://example.com",
		AnalyzedAt:  at,
		SnapshotURL: "http://minio.local/snapshots/seed.png",
		Body: domain.ReportBody{
			Performance:   domain.PerformanceResult{Score: perf},
			SEO:           domain.SEOResult{Score: 60},
			Accessibility: domain.AccessibilityResult{Score: 90},
			Design:        domain.DesignResult{Score: 70},
			UX:            domain.UXResult{Score: 50},
		},
	}
	repo.reports = append(repo.reports, rep)
	return rep
}

// ---- tests ----

func TestAnalyzeQueuesAndPersists(t *testing.T) {
	repo := &memRepo{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/v1/alice/analyses", strings.NewReader(`{"url":"example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp["status"])
	assert.Equal(t, "alice", resp["user"])
	assert.Equal(t, "https://example.com", resp["url"], "URL must be normalized before queueing")

	// background run with stub adapters finishes quickly; poll for the report
	deadline := time.Now().Add(2 * time.Second)
	for repo.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 1, repo.count())
}

func TestAnalyzeConcurrentTriggerRejected(t *testing.T) {
	repo := &memRepo{}
	fetcher := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	router := newTestRouterWith(repo, fetcher, &apphistory.Service{DefaultLimit: 10, MaxLimit: 100})

	first := httptest.NewRequest(http.MethodPost, "/v1/alice/analyses", strings.NewReader(`{"url":"example.com"}`))
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, first)
	require.Equal(t, http.StatusAccepted, rec1.Code)

	// immediately after the 202 the slot is held; a back-to-back second
	// trigger must conflict even if the first run has not reached a stage yet
	second := httptest.NewRequest(http.MethodPost, "/v1/alice/analyses", strings.NewReader(`{"url":"example.com"}`))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, second)
	assert.Equal(t, http.StatusConflict, rec2.Code)

	close(fetcher.release)
	deadline := time.Now().Add(2 * time.Second)
	for repo.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, repo.count(), "only the accepted trigger may persist a report")
}

func TestAnalyzeRejectsInvalidURL(t *testing.T) {
	router := newTestRouter(&memRepo{})

	for _, body := range []string{`{"url":""}`, `{"url":"   "}`, `{"url":"ftp://example.com"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/alice/analyses", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestAnalyzeRejectsBadUserID(t *testing.T) {
	router := newTestRouter(&memRepo{})

	req := httptest.NewRequest(http.MethodPost, "/v1/bad%20user/analyses", strings.NewReader(`{"url":"example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressIdleByDefault(t *testing.T) {
	router := newTestRouter(&memRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/progress", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var p appreports.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, appreports.StateIdle, p.State)
	assert.Equal(t, 0, p.Percent)
}

func TestLatestReturnsNewestFirst(t *testing.T) {
	repo := &memRepo{}
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seedReport(repo, "alice", base, 80)
	seedReport(repo, "alice", base.Add(time.Hour), 90)
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/latest?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []apphistory.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 90, entries[0].Report.Body.Performance.Score)
	assert.Equal(t, 72, entries[0].OverallScore) // (90+60+90+70+50)/5
}

func TestLatestUsesConfiguredLimits(t *testing.T) {
	repo := &memRepo{}
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seedReport(repo, "alice", base, 80)
	seedReport(repo, "alice", base.Add(time.Hour), 85)
	seedReport(repo, "alice", base.Add(2*time.Hour), 90)
	router := newTestRouterWith(repo, stubFetcher{}, &apphistory.Service{DefaultLimit: 2, MaxLimit: 2})

	// no limit param: the configured default applies
	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []apphistory.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)

	// oversized limit param: the configured max applies
	req = httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/latest?limit=500", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	entries = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestStatsEndpoint(t *testing.T) {
	repo := &memRepo{}
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seedReport(repo, "alice", base, 80)
	seedReport(repo, "alice", base.Add(time.Hour), 90)
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats apphistory.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, domain.CategoryAccessibility, stats.BestCategory)
}

func TestExportDownload(t *testing.T) {
	repo := &memRepo{}
	rep := seedReport(repo, "alice", time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC), 80)
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/"+string(rep.ID)+"/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="website-analysis-2024-05-04.json"`, rec.Header().Get("Content-Disposition"))

	var doc appreports.ExportDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, string(rep.ID), doc.ID)
	assert.Equal(t, 70, doc.OverallScore)
	assert.Equal(t, rep.AnalyzedAt.UnixMilli(), doc.AnalyzedAt)
}

func TestExportUnknownReport(t *testing.T) {
	router := newTestRouter(&memRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/"+uuid.New().String()+"/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportRejectsMalformedID(t *testing.T) {
	router := newTestRouter(&memRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/alice/analyses/not-a-uuid/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
