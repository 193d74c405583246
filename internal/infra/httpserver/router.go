package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	apphistory "github.com/bryanwahyu/siteinsight/internal/application/history"
	appreports "github.com/bryanwahyu/siteinsight/internal/application/reports"
	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
	"github.com/bryanwahyu/siteinsight/internal/middleware"
)

type Router struct {
	reportsSvc *appreports.Service
	historySvc *apphistory.Service
}

func NewRouter(reportsSvc *appreports.Service, historySvc *apphistory.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{reportsSvc: reportsSvc, historySvc: historySvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if len(checkers) > 0 {
		mux.Get("/health", middleware.HealthHandler(checkers))
	} else {
		mux.Get("/health", middleware.LivenessHandler)
	}
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{user}", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleAnalyze))
		rt.Get("/analyses/progress", r.wrap(r.handleProgress))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/stats", r.wrap(r.handleStats))
		rt.Get("/analyses/{id}/export", r.wrap(r.handleExport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors to HTTP statuses. Pipeline failure details stay in
// the logs; clients get one generic notice.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidURL):
				http.Error(w, "invalid url", http.StatusBadRequest)
			case errors.Is(err, domain.ErrAnalysisInProgress):
				http.Error(w, "analysis already in progress", http.StatusConflict)
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			default:
				log.Printf("request failed: %v", err)
				http.Error(w, "analysis failed", http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/{user}/analyses
// Body: {"url": "<target>"}
// Validates and normalizes the URL up front, then runs the pipeline in the
// background so the client is not held for the whole run.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	if err := middleware.ValidateUserID(user); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	target, err := domain.NormalizeURL(body.URL)
	if err != nil {
		return err
	}
	if err := middleware.ValidateTargetURL(target); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	cmd := appreports.AnalyzeCommand{UserID: user, URL: target}

	// Start holds the user's single-flight slot before we answer, so the 202
	// below means the run is the one that will execute; a concurrent trigger
	// fails here with ErrAnalysisInProgress (409).
	middleware.IncrementAnalysesRunning()
	err = r.reportsSvc.Start(cmd, func(report *domain.AnalysisReport, runErr error) {
		middleware.DecrementAnalysesRunning()
		if runErr != nil {
			middleware.IncrementAnalysesFailed()
			log.Printf("background analysis error for user=%s url=%s: %v", user, target, runErr)
			return
		}
		log.Printf("analysis finished: user=%s url=%s report=%s", user, target, report.ID)
	})
	if err != nil {
		middleware.DecrementAnalysesRunning()
		return err
	}
	middleware.IncrementAnalyses()

	resp := map[string]any{
		"status":   "queued",
		"user":     user,
		"url":      target,
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{user}/analyses/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.reportsSvc.Progress(user))
}

// GET /v1/{user}/analyses/latest?limit=10
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	// limit clamping is the history service's call; defaults come from config
	list, err := r.historySvc.Latest(req.Context(), user, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{user}/analyses/stats?limit=10
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	stats, err := r.historySvc.Stats(req.Context(), user, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(stats)
}

// GET /v1/{user}/analyses/{id}/export
// Serves the full report plus overall score as a downloadable JSON document
// named after the analysis date.
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	report, err := r.reportsSvc.Get(req.Context(), user, domain.ReportID(id))
	if err != nil {
		return err
	}

	doc := appreports.BuildExport(report)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", appreports.ExportFilename(report)))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
