// Package matching ranks a job corpus against a user's skills and experience.
package matching

import (
	"encoding/json"

	"github.com/jonathan/job-recommender/internal/corpus"
)

// Output column names added to every recommended row.
const (
	FieldSkills          = "skills"
	FieldMatchConfidence = "Match Confidence"
	FieldExperienceScore = "Experience Score"
	FieldCombinedScore   = "Combined Score"
	FieldStrengths       = "Strengths"
	FieldWeakness        = "Weakness"
)

// UserProfile is the input side of a match. ExperienceYears of 0 means unknown.
type UserProfile struct {
	Skills          []string `json:"user_skills"`
	ExperienceYears int      `json:"user_experience"`
}

// Recommendation is a corpus row annotated with its scores.
type Recommendation struct {
	Job             corpus.Job
	Skills          string
	MatchConfidence float64
	ExperienceScore int
	CombinedScore   float64
	Strengths       string
	Weakness        string
}

// Fields returns the row as a flat map: the original columns plus the derived ones.
func (r Recommendation) Fields() map[string]any {
	record := r.Job.Record()
	out := make(map[string]any, len(record)+6)
	for k, v := range record {
		out[k] = v
	}
	out[corpus.ColumnRequiredExperience] = r.Job.RequiredExperience
	out[FieldSkills] = r.Skills
	out[FieldMatchConfidence] = r.MatchConfidence
	out[FieldExperienceScore] = r.ExperienceScore
	out[FieldCombinedScore] = r.CombinedScore
	out[FieldStrengths] = r.Strengths
	out[FieldWeakness] = r.Weakness
	return out
}

// MarshalJSON emits the row returned by Fields.
func (r Recommendation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}
