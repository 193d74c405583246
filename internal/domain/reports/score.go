package reports

import "math"

// OverallScore is the arithmetic mean of the five category scores, rounded
// half-up to the nearest integer.
func (b *ReportBody) OverallScore() int {
	return b.Scores().Overall()
}

// Overall computes the rounded mean over the five denormalized scores.
func (s CategoryScores) Overall() int {
	sum := s.Performance + s.SEO + s.Accessibility + s.Design + s.UX
	return int(math.Round(float64(sum) / float64(len(Categories))))
}
