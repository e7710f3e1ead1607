package matching

import (
	"sort"
	"strings"

	"github.com/jonathan/job-recommender/internal/skills"
)

const (
	maxStrengths  = 5
	maxWeaknesses = 3
)

// strengths returns the job skill tokens the user also has, in lexicographic
// order, at most maxStrengths of them.
func strengths(jobSkills string, user skills.Set) string {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(jobSkills) {
		tokens[tok] = struct{}{}
	}

	shared := make([]string, 0, len(tokens))
	for tok := range tokens {
		if user.Has(tok) {
			shared = append(shared, tok)
		}
	}
	sort.Strings(shared)
	if len(shared) > maxStrengths {
		shared = shared[:maxStrengths]
	}
	return strings.Join(shared, " ")
}

// weaknesses returns up to maxWeaknesses skills required by the role matching
// title that the user lacks, heaviest first. Equal weights fall back to name order.
func weaknesses(title string, user skills.Set, weights *skills.WeightTable) string {
	role := weights.ResolveRole(title)

	var lacking []string
	for _, skill := range weights.RequiredSkills(role) {
		if !user.Has(skills.Canonical(skill)) {
			lacking = append(lacking, skill)
		}
	}

	sort.SliceStable(lacking, func(i, j int) bool {
		return weights.Weight(role, lacking[i]) > weights.Weight(role, lacking[j])
	})
	if len(lacking) > maxWeaknesses {
		lacking = lacking[:maxWeaknesses]
	}
	return strings.Join(lacking, " ")
}
