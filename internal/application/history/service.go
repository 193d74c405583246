package history

import (
	"context"
	"math"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

// Entry is one history item: the decoded report plus its overall score.
type Entry struct {
	Report       *domain.AnalysisReport `json:"report"`
	OverallScore int                    `json:"overall_score"`
}

// Stats summarizes the retrieved history window, not the unbounded history.
type Stats struct {
	Count        int    `json:"count"`
	AverageScore int    `json:"average_score"`
	BestCategory string `json:"best_category"`
}

// Service implements history use-cases over the report repository. History is
// a read-only projection recomputed on every fetch; no caching, no locking
// beyond what the store guarantees.
type Service struct {
	Repo         domain.Repository
	DefaultLimit int
	MaxLimit     int
}

// Latest returns up to limit reports for a user, newest first, each paired
// with its computed overall score.
func (s *Service) Latest(ctx context.Context, userID string, limit int) ([]Entry, error) {
	list, err := s.Repo.Latest(ctx, userID, s.clampLimit(limit))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(list))
	for _, r := range list {
		entries = append(entries, Entry{Report: r, OverallScore: r.Body.OverallScore()})
	}
	return entries, nil
}

// Stats recomputes aggregate statistics over the latest window.
func (s *Service) Stats(ctx context.Context, userID string, limit int) (Stats, error) {
	entries, err := s.Latest(ctx, userID, limit)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(entries), nil
}

// ComputeStats derives count, average overall score (0 when empty) and the
// best category: the category with the highest mean score across the window.
// Ties resolve to the earlier category in canonical order.
func ComputeStats(entries []Entry) Stats {
	if len(entries) == 0 {
		return Stats{}
	}

	var overallSum int
	sums := make(map[string]int, len(domain.Categories))
	for _, e := range entries {
		overallSum += e.OverallScore
		scores := e.Report.Body.Scores()
		sums[domain.CategoryPerformance] += scores.Performance
		sums[domain.CategorySEO] += scores.SEO
		sums[domain.CategoryAccessibility] += scores.Accessibility
		sums[domain.CategoryDesign] += scores.Design
		sums[domain.CategoryUX] += scores.UX
	}

	best := ""
	bestSum := -1
	for _, name := range domain.Categories {
		if sums[name] > bestSum {
			best = name
			bestSum = sums[name]
		}
	}

	return Stats{
		Count:        len(entries),
		AverageScore: int(math.Round(float64(overallSum) / float64(len(entries)))),
		BestCategory: best,
	}
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		if s.DefaultLimit > 0 {
			return s.DefaultLimit
		}
		return 20
	}
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		return s.MaxLimit
	}
	return limit
}
