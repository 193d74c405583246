package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/siteinsight/internal/application"
	apphistory "github.com/bryanwahyu/siteinsight/internal/application/history"
	appreports "github.com/bryanwahyu/siteinsight/internal/application/reports"
	"github.com/bryanwahyu/siteinsight/internal/config"
	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
	"github.com/bryanwahyu/siteinsight/internal/infra/ai/openai"
	"github.com/bryanwahyu/siteinsight/internal/infra/capture"
	mysqlp "github.com/bryanwahyu/siteinsight/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/siteinsight/internal/infra/db/postgres"
	"github.com/bryanwahyu/siteinsight/internal/infra/httpserver"
	"github.com/bryanwahyu/siteinsight/internal/infra/scrape"
	minioStore "github.com/bryanwahyu/siteinsight/internal/infra/storage"
	"github.com/bryanwahyu/siteinsight/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql or postgres) and init the report repository
	var db *sql.DB
	var repo domain.Repository
	switch cfg.Database.Engine {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewReportRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewReportRepository(db)
	}
	defer db.Close()

	// init minio snapshot store
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// pipeline adapters
	fetcher := scrape.NewClient(cfg.FetchTimeout(), cfg.Scrape.UserAgent)
	capturer := capture.New(store)
	analyzer := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	// orchestrator service
	reportsSvc := &appreports.Service{
		Repo:     repo,
		Fetcher:  fetcher,
		Capturer: capturer,
		Analyzer: analyzer,
		Clock:    application.SystemClock{},
		Capture: domain.CaptureOptions{
			FullPage: cfg.Capture.FullPage,
			Width:    cfg.Capture.Width,
			Height:   cfg.Capture.Height,
		},
		Timeouts: appreports.StageTimeouts{
			Fetch:   cfg.FetchTimeout(),
			Capture: cfg.CaptureTimeout(),
			Analyze: cfg.AnalyzeTimeout(),
			Persist: cfg.PersistTimeout(),
		},
		MaxExcerpt: cfg.Scrape.MaxContentChars,
	}

	historySvc := &apphistory.Service{
		Repo:         repo,
		DefaultLimit: cfg.History.DefaultLimit,
		MaxLimit:     cfg.History.MaxLimit,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 1))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Mount("/", httpserver.NewRouter(reportsSvc, historySvc, map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
