package matching

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/skills"
	"github.com/jonathan/job-recommender/internal/vectorize"
)

// UnknownExperienceYears replaces an experience of 0 before scoring.
const UnknownExperienceYears = 10

// Result size bounds. Fewer than MinCandidates jobs with a positive
// confidence disables the confidence filter.
const (
	MinCandidates = 10
	MaxResults    = 25
)

// ErrWeightsUnavailable is returned when no skill weight table is supplied.
var ErrWeightsUnavailable = errors.New("skill weight table unavailable")

// Matcher scores and ranks job postings for a user profile.
type Matcher struct {
	catalog *skills.CatalogHandle
}

// NewMatcher returns a matcher that recognizes job skills with catalog.
func NewMatcher(catalog *skills.CatalogHandle) *Matcher {
	return &Matcher{catalog: catalog}
}

// Match ranks jobs for profile. The input slice is not modified. An empty
// corpus yields an empty result.
func (m *Matcher) Match(profile UserProfile, jobs []corpus.Job, weights *skills.WeightTable) ([]Recommendation, error) {
	if weights == nil {
		return nil, ErrWeightsUnavailable
	}
	if len(jobs) == 0 {
		return []Recommendation{}, nil
	}

	jobs = corpus.ResolveLinks(jobs)

	userYears := profile.ExperienceYears
	if userYears == 0 {
		userYears = UnknownExperienceYears
	}

	recs := make([]Recommendation, len(jobs))
	docs := make([]string, 0, len(jobs)+1)
	docs = append(docs, strings.Join(profile.Skills, " "))
	for i, job := range jobs {
		recs[i].Job = job
		recs[i].Skills = strings.Join(m.jobSkills(job.Description).Sorted(), " ")
		docs = append(docs, recs[i].Skills)
	}

	vectors := vectorize.FitTransform(docs)
	scores := make([]float64, len(recs))
	for i := range recs {
		recs[i].MatchConfidence = vectorize.Cosine(vectors[0], vectors[i+1])
		recs[i].ExperienceScore = experienceScore(recs[i].Job.RequiredExperience, userYears)
		scores[i] = rawScore(recs[i].MatchConfidence, recs[i].ExperienceScore)
	}
	minMaxNormalize(scores)
	for i := range recs {
		recs[i].CombinedScore = scores[i]
	}

	candidates := make([]Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.MatchConfidence > 0 {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) < MinCandidates {
		slog.Debug("few confident matches, ranking the full corpus",
			slog.Int("matched", len(candidates)),
			slog.Int("corpus", len(recs)))
		candidates = recs
	}

	userSkills := skills.NewCanonicalSet(profile.Skills...)
	for i := range candidates {
		candidates[i].Strengths = strengths(candidates[i].Skills, userSkills)
		candidates[i].Weakness = weaknesses(candidates[i].Job.Title, userSkills, weights)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})
	if len(candidates) > MaxResults {
		candidates = candidates[:MaxResults]
	}
	return candidates, nil
}

func (m *Matcher) jobSkills(description string) skills.Set {
	if m.catalog == nil || description == "" {
		return skills.NewSet()
	}
	return m.catalog.Match(description)
}
