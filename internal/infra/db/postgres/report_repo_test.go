package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

var reportColumns = []string{
	"id", "user_id", "url", "analyzed_at", "snapshot_url",
	"performance_score", "seo_score", "accessibility_score", "design_score", "ux_score",
	"report_json",
}

func TestLatestFallsBackOnCorruptBlob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(reportColumns).
		AddRow("r1", "alice", "https://example.com", at, "", 81, 62, 93, 74, 55, []byte("not even json"))
	mock.ExpectQuery("FROM analysis_reports").WithArgs("alice", 10).WillReturnRows(rows)

	repo := NewReportRepository(db)
	list, err := repo.Latest(context.Background(), "alice", 10)
	require.NoError(t, err, "a corrupt blob must not fail the listing")
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, domain.CategoryScores{Performance: 81, SEO: 62, Accessibility: 93, Design: 74, UX: 55}, got.Body.Scores())
	assert.NotNil(t, got.Body.Accessibility.Violations)
	assert.Empty(t, got.Body.Accessibility.Violations)
	require.NoError(t, mock.ExpectationsWereMet())
}
