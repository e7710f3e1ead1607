package matching

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *skills.CatalogHandle {
	return skills.NewStaticHandle(
		"Python", "SQL", "AWS", "Docker", "Kubernetes", "Rust", "Haskell", "Java",
		"Go", "Spark", "Tableau", "Statistics", "Machine Learning", "Git", "Linux",
	)
}

func testWeights() *skills.WeightTable {
	return skills.NewWeightTable(
		[]string{"Data Scientist", "Engineer"},
		map[string]map[string]float64{
			"Data Scientist": {"Python": 0.9, "Machine Learning": 0.8, "Statistics": 0.8, "Spark": 0.5, "Tableau": 0.3},
			"Engineer":       {"Git": 0.5, "Linux": 0.4, "Docker": 0.4, "Python": 0.6},
		},
	)
}

func job(title, description string, required float64) corpus.Job {
	link := "https://jobs.example.com/" + strings.ReplaceAll(strings.ToLower(title), " ", "-")
	return corpus.Job{
		Title:              title,
		Description:        description,
		RequiredExperience: required,
		Link:               link,
		Fields: map[string]string{
			corpus.ColumnTitle:       title,
			corpus.ColumnDescription: description,
			corpus.ColumnLink:        link,
		},
	}
}

func findByTitle(t *testing.T, recs []Recommendation, title string) Recommendation {
	t.Helper()
	for _, r := range recs {
		if r.Job.Title == title {
			return r
		}
	}
	t.Fatalf("recommendation %q not found", title)
	return Recommendation{}
}

func assertSortedDescending(t *testing.T, recs []Recommendation) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].CombinedScore, recs[i].CombinedScore, "position %d", i)
	}
}

func twelveJobCorpus() []corpus.Job {
	return []corpus.Job{
		job("Full Match", "Python, SQL, AWS, Docker", 3),
		job("Python Role", "We use Python daily", 2),
		job("SQL Role", "Strong SQL required", 5),
		job("AWS Role", "AWS infrastructure", 4),
		job("Python SQL", "Python and SQL", 1),
		job("SQL AWS", "SQL on AWS", 5),
		job("Python AWS", "Python services on AWS", 0),
		job("Python Docker", "Python with Docker", 2),
		job("Container Role", "Docker, Kubernetes", 2),
		job("Rust Role", "Rust systems", 1),
		job("Haskell Role", "Haskell compilers", 3),
		job("Java Role", "Java backend", 2),
	}
}

func TestMatch_EndToEnd(t *testing.T) {
	m := NewMatcher(testCatalog())
	profile := UserProfile{Skills: []string{"Python", "SQL", "AWS"}, ExperienceYears: 5}

	recs, err := m.Match(profile, twelveJobCorpus(), testWeights())
	require.NoError(t, err)

	// Only 8 jobs have a positive confidence, so the whole corpus is ranked.
	require.Len(t, recs, 12)
	assertSortedDescending(t, recs)

	full := findByTitle(t, recs, "Full Match")
	containers := findByTitle(t, recs, "Container Role")
	assert.Greater(t, full.MatchConfidence, containers.MatchConfidence)
	assert.Equal(t, 0.0, containers.MatchConfidence)

	for i, r := range recs {
		if i < 8 {
			assert.Greater(t, r.MatchConfidence, 0.0, "%s should rank among the matches", r.Job.Title)
		} else {
			assert.Equal(t, 0.0, r.MatchConfidence, "%s should rank after the matches", r.Job.Title)
		}
		assert.GreaterOrEqual(t, r.CombinedScore, 0.0)
		assert.LessOrEqual(t, r.CombinedScore, 1.0)
		assert.Equal(t, 1, r.ExperienceScore)
	}

	assert.Equal(t, "Aws Docker Python Sql", full.Skills)
	assert.Equal(t, "Aws Python Sql", full.Strengths)
}

func TestMatch_UnknownExperienceTreatedAsTen(t *testing.T) {
	m := NewMatcher(testCatalog())
	jobs := []corpus.Job{
		job("Senior Python", "Python", 8),
		job("Principal Python", "Python", 12),
	}

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}, ExperienceYears: 0}, jobs, testWeights())
	require.NoError(t, err)

	assert.Equal(t, 1, findByTitle(t, recs, "Senior Python").ExperienceScore)
	assert.Equal(t, 0, findByTitle(t, recs, "Principal Python").ExperienceScore)
}

func TestMatch_ExperienceIsNotAFilter(t *testing.T) {
	m := NewMatcher(testCatalog())
	jobs := []corpus.Job{
		job("Easy", "Python", 1),
		job("Hard", "Python", 20),
	}

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}, ExperienceYears: 2}, jobs, testWeights())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Easy", recs[0].Job.Title)
	assert.Equal(t, 1.0, recs[0].CombinedScore)
	assert.Equal(t, 0.0, recs[1].CombinedScore)
}

func TestMatch_ZeroOverlapFallsBackToFullCorpus(t *testing.T) {
	m := NewMatcher(testCatalog())
	jobs := []corpus.Job{
		job("Rust Role", "Rust", 1),
		job("Haskell Role", "Haskell", 1),
		job("Java Role", "Java", 1),
	}

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}, ExperienceYears: 5}, jobs, testWeights())
	require.NoError(t, err)

	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, 0.0, r.MatchConfidence)
		assert.Equal(t, 0.5, r.CombinedScore)
	}
	// equal scores keep corpus order
	assert.Equal(t, "Rust Role", recs[0].Job.Title)
	assert.Equal(t, "Java Role", recs[2].Job.Title)
}

func TestMatch_FiltersZeroConfidenceWhenEnoughMatches(t *testing.T) {
	m := NewMatcher(testCatalog())
	var jobs []corpus.Job
	for i := 0; i < 12; i++ {
		jobs = append(jobs, job(fmt.Sprintf("Python %d", i), "Python", 1))
	}
	jobs = append(jobs, job("Rust Role", "Rust", 1), job("Java Role", "Java", 1))

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}, ExperienceYears: 5}, jobs, testWeights())
	require.NoError(t, err)

	assert.Len(t, recs, 12)
	for _, r := range recs {
		assert.Greater(t, r.MatchConfidence, 0.0)
	}
}

func TestMatch_TruncatesToMaxResults(t *testing.T) {
	m := NewMatcher(testCatalog())
	var jobs []corpus.Job
	for i := 0; i < 40; i++ {
		jobs = append(jobs, job(fmt.Sprintf("Python %d", i), "Python and SQL", float64(i%8)))
	}

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}, ExperienceYears: 4}, jobs, testWeights())
	require.NoError(t, err)

	assert.Len(t, recs, MaxResults)
	assertSortedDescending(t, recs)
}

func TestMatch_ResultSizeBounds(t *testing.T) {
	m := NewMatcher(testCatalog())
	descriptions := []string{"Python", "Rust", "SQL", "Docker", "Java"}

	for _, n := range []int{1, 3, 9, 10, 11, 24, 25, 26, 50} {
		t.Run(fmt.Sprintf("corpus of %d", n), func(t *testing.T) {
			var jobs []corpus.Job
			for i := 0; i < n; i++ {
				jobs = append(jobs, job(fmt.Sprintf("Job %d", i), descriptions[i%len(descriptions)], 1))
			}

			recs, err := m.Match(UserProfile{Skills: []string{"Python", "SQL"}, ExperienceYears: 3}, jobs, testWeights())
			require.NoError(t, err)

			assert.GreaterOrEqual(t, len(recs), min(MinCandidates, n))
			assert.LessOrEqual(t, len(recs), min(MaxResults, n))
			assertSortedDescending(t, recs)
		})
	}
}

func TestMatch_Annotations(t *testing.T) {
	m := NewMatcher(testCatalog())
	jobs := []corpus.Job{
		job("Senior Data Scientist", "Python, SQL, AWS, Docker, Kubernetes, Git, Linux, Spark", 2),
		job("Platform Engineer", "Go, Docker", 2),
		job("Product Manager", "Tableau", 2),
	}
	profile := UserProfile{
		Skills:          []string{"python", "SQL", "aws", "Docker", "Kubernetes", "Git", "Linux"},
		ExperienceYears: 6,
	}

	recs, err := m.Match(profile, jobs, testWeights())
	require.NoError(t, err)

	scientist := findByTitle(t, recs, "Senior Data Scientist")
	assert.Equal(t, "Aws Docker Git Kubernetes Linux", scientist.Strengths)
	assert.Equal(t, "Machine Learning Statistics Spark", scientist.Weakness)

	engineer := findByTitle(t, recs, "Platform Engineer")
	assert.Equal(t, "Docker", engineer.Strengths)
	assert.Equal(t, "", engineer.Weakness)

	// no role matches "Product Manager", so the default Engineer role is used
	manager := findByTitle(t, recs, "Product Manager")
	assert.Equal(t, "", manager.Strengths)
	assert.Equal(t, "", manager.Weakness)

	userSet := skills.NewCanonicalSet(profile.Skills...)
	for _, r := range recs {
		strengthList := strings.Fields(r.Strengths)
		assert.LessOrEqual(t, len(strengthList), 5)
		for _, s := range strengthList {
			assert.True(t, userSet.Has(s))
			assert.Contains(t, strings.Fields(r.Skills), s)
		}
	}
}

func TestMatch_WeaknessForDefaultRole(t *testing.T) {
	m := NewMatcher(testCatalog())
	recs, err := m.Match(
		UserProfile{Skills: []string{"Go"}, ExperienceYears: 3},
		[]corpus.Job{job("Backend Developer", "Go", 1)},
		testWeights(),
	)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// Engineer: Python 0.6, Git 0.5, then Docker and Linux tie at 0.4.
	assert.Equal(t, "Python Git Docker", recs[0].Weakness)
}

func TestMatch_ResolvesLinksWithoutMutatingInput(t *testing.T) {
	m := NewMatcher(testCatalog())
	jobs := []corpus.Job{{
		Title:       "Python Dev",
		Description: "Python",
		Fields:      map[string]string{corpus.ColumnDetailURL: "https://detail/1"},
	}}

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}}, jobs, testWeights())
	require.NoError(t, err)

	assert.Equal(t, "https://detail/1", recs[0].Job.Link)
	assert.Equal(t, "", jobs[0].Link)
}

func TestMatch_Errors(t *testing.T) {
	m := NewMatcher(testCatalog())

	_, err := m.Match(UserProfile{Skills: []string{"Python"}}, twelveJobCorpus(), nil)
	assert.ErrorIs(t, err, ErrWeightsUnavailable)

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}}, nil, testWeights())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMatch_EmptyCatalogDegrades(t *testing.T) {
	m := NewMatcher(skills.NewCatalogHandle(skills.FromFile("/missing/skills.csv")))

	recs, err := m.Match(UserProfile{Skills: []string{"Python"}}, twelveJobCorpus(), testWeights())
	require.NoError(t, err)

	require.Len(t, recs, 12)
	for _, r := range recs {
		assert.Equal(t, "", r.Skills)
		assert.Equal(t, 0.0, r.MatchConfidence)
		assert.Equal(t, 0.5, r.CombinedScore)
	}
}

func TestRecommendation_MarshalJSON(t *testing.T) {
	j := job("Data Scientist", "Python", 2.5)
	j.Fields["Location"] = "Remote"
	rec := Recommendation{
		Job:             j,
		Skills:          "Python",
		MatchConfidence: 0.75,
		ExperienceScore: 1,
		CombinedScore:   1,
		Strengths:       "Python",
		Weakness:        "Statistics",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var row map[string]any
	require.NoError(t, json.Unmarshal(data, &row))

	assert.Equal(t, "Data Scientist", row["Title"])
	assert.Equal(t, "Remote", row["Location"])
	assert.Equal(t, 2.5, row["Required Experience"])
	assert.Equal(t, "Python", row["skills"])
	assert.Equal(t, 0.75, row["Match Confidence"])
	assert.Equal(t, 1.0, row["Experience Score"])
	assert.Equal(t, 1.0, row["Combined Score"])
	assert.Equal(t, "Python", row["Strengths"])
	assert.Equal(t, "Statistics", row["Weakness"])
}
