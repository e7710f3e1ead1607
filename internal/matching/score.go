package matching

// Composite score weights. Confidence dominates; meeting the experience
// requirement only nudges the score.
const (
	ConfidenceWeight = 0.7
	ExperienceWeight = 0.03
)

// flatScore is assigned to every job when all raw scores are equal.
const flatScore = 0.5

// experienceScore is 1 when the user meets the requirement, else 0.
func experienceScore(required float64, userYears int) int {
	if float64(userYears) >= required {
		return 1
	}
	return 0
}

func rawScore(confidence float64, expScore int) float64 {
	return confidence*ConfidenceWeight + float64(expScore)*ExperienceWeight
}

// minMaxNormalize rescales scores into [0,1] in place.
func minMaxNormalize(scores []float64) {
	if len(scores) == 0 {
		return
	}
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	if hi <= lo {
		for i := range scores {
			scores[i] = flatScore
		}
		return
	}
	span := hi - lo
	for i, s := range scores {
		scores[i] = (s - lo) / span
	}
}
