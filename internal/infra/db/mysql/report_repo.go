package mysql

import (
	"context"
	"database/sql"
	"log"
	"time"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a report row: encoded body blob plus denormalized category
// scores for listing without a decode. Reports are immutable, so this is a
// plain insert; a duplicate ID is an error.
func (r *ReportRepository) Create(ctx context.Context, rep *domain.AnalysisReport) error {
	blob, err := domain.EncodeBody(&rep.Body)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO analysis_reports
(id, user_id, url, analyzed_at, snapshot_url,
 performance_score, seo_score, accessibility_score, design_score, ux_score,
 report_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?);
`
	scores := rep.Body.Scores()
	analyzedAt := rep.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		rep.ID, stringOrDash(rep.UserID), rep.URL, analyzedAt, rep.SnapshotURL,
		scores.Performance, scores.SEO, scores.Accessibility, scores.Design, scores.UX,
		blob,
	)
	return err
}

// Get by ID + user
func (r *ReportRepository) Get(ctx context.Context, userID string, id domain.ReportID) (*domain.AnalysisReport, error) {
	const q = `
SELECT id, user_id, url, analyzed_at, snapshot_url,
       performance_score, seo_score, accessibility_score, design_score, ux_score,
       report_json
FROM analysis_reports
WHERE user_id=? AND id=? LIMIT 1;
`
	return scanReport(r.db.QueryRowContext(ctx, q, userID, id))
}

// Latest reports per user, newest first.
func (r *ReportRepository) Latest(ctx context.Context, userID string, limit int) ([]*domain.AnalysisReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, url, analyzed_at, snapshot_url,
       performance_score, seo_score, accessibility_score, design_score, ux_score,
       report_json
FROM analysis_reports
WHERE user_id=? ORDER BY analyzed_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.AnalysisReport, error) {
	var rep domain.AnalysisReport
	var scores domain.CategoryScores
	var blob []byte
	if err := row.Scan(
		&rep.ID, &rep.UserID, &rep.URL, &rep.AnalyzedAt, &rep.SnapshotURL,
		&scores.Performance, &scores.SEO, &scores.Accessibility, &scores.Design, &scores.UX,
		&blob,
	); err != nil {
		return nil, err
	}
	rep.Body = decodeBody(string(rep.ID), scores, blob)
	return &rep, nil
}

// decodeBody recovers a stored blob. A malformed or legacy encoding is a
// data-quality signal, not a caller error: fall back to the denormalized
// scores with empty detail bundles.
func decodeBody(id string, scores domain.CategoryScores, blob []byte) domain.ReportBody {
	body, err := domain.ParseBody(blob)
	if err != nil {
		log.Printf("report %s: stored body undecodable, serving denormalized fallback: %v", id, err)
		return domain.FallbackBody(scores)
	}
	return *body
}
