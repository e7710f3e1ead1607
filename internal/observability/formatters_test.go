package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/matching"
	"github.com/jonathan/job-recommender/internal/resume"
	"github.com/stretchr/testify/assert"
)

func TestPrintResume(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResume(resume.Result{Skills: []string{"Docker", "Go", "Python"}, ExperienceYears: 4})
	output := buf.String()

	assert.Contains(t, output, "RESUME")
	assert.Contains(t, output, "Experience: 4 years")
	assert.Contains(t, output, "Skills:     3 found")
	assert.Contains(t, output, "Docker, Go, Python")
}

func TestPrintRecommendations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	recs := []matching.Recommendation{
		{
			Job:             corpus.Job{Title: "Backend Engineer", Company: "Acme", Link: "https://jobs.example.com/1"},
			MatchConfidence: 0.42,
			ExperienceScore: 1,
			CombinedScore:   1,
			Strengths:       "Python SQL",
			Weakness:        "Docker",
		},
		{
			Job:           corpus.Job{Title: "Data Engineer"},
			CombinedScore: 0.3,
		},
	}

	p.PrintRecommendations(recs)
	output := buf.String()

	assert.Contains(t, output, "TOP RECOMMENDATIONS")
	assert.Contains(t, output, "Total jobs ranked: 2")
	assert.Contains(t, output, "#1  Backend Engineer")
	assert.Contains(t, output, "Score: 1.00 (match 0.42, experience 1)")
	assert.Contains(t, output, "Strengths: Python SQL")
	assert.Contains(t, output, "Gaps: Docker")
	assert.Contains(t, output, "#2  Data Engineer")
	assert.NotContains(t, output, "more jobs")
}

func TestPrintRecommendations_Limit(t *testing.T) {
	recs := make([]matching.Recommendation, 8)
	for i := range recs {
		recs[i] = matching.Recommendation{Job: corpus.Job{Title: fmt.Sprintf("Job %d", i+1)}}
	}

	tests := []struct {
		name      string
		limit     int
		wantLast  string
		wantExtra string
	}{
		{"default", maxItemsToShow, "#5  Job 5", "... and 3 more jobs"},
		{"two", 2, "#2  Job 2", "... and 6 more jobs"},
		{"all", 0, "#8  Job 8", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).WithLimit(tt.limit).PrintRecommendations(recs)
			output := buf.String()

			assert.Contains(t, output, tt.wantLast)
			if tt.wantExtra != "" {
				assert.Contains(t, output, tt.wantExtra)
			} else {
				assert.NotContains(t, output, "more jobs")
			}
		})
	}
}

func TestPrintRecommendations_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecommendations(nil)

	assert.Contains(t, buf.String(), "NO MATCHING JOBS")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	lines := wrap([]string{"alpha", "beta", "gamma", "delta"}, 12)
	assert.Equal(t, []string{"alpha, beta,", "gamma, delta"}, lines)
	assert.Nil(t, wrap(nil, 10))
}
