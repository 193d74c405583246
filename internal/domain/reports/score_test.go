package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func bodyWithScores(s CategoryScores) ReportBody {
	return ReportBody{
		Performance:   PerformanceResult{Score: s.Performance},
		SEO:           SEOResult{Score: s.SEO},
		Accessibility: AccessibilityResult{Score: s.Accessibility},
		Design:        DesignResult{Score: s.Design},
		UX:            UXResult{Score: s.UX},
	}
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name   string
		scores CategoryScores
		want   int
	}{
		{"exact mean", CategoryScores{80, 60, 90, 70, 50}, 70},
		{"all zero", CategoryScores{0, 0, 0, 0, 0}, 0},
		{"all max", CategoryScores{100, 100, 100, 100, 100}, 100},
		{"rounds down below half", CategoryScores{81, 60, 90, 70, 51}, 70},  // 70.4
		{"rounds up above half", CategoryScores{82, 61, 90, 70, 50}, 71},    // 70.6
		{"rounds up from point eight", CategoryScores{84, 60, 90, 70, 50}, 71}, // 70.8
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bodyWithScores(tt.scores)
			assert.Equal(t, tt.want, b.OverallScore())
		})
	}
}
