package resume

import (
	"strings"
	"testing"
	"time"

	"github.com/jonathan/job-recommender/internal/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

func TestExtractExperience(t *testing.T) {
	a := NewAnalyzer(nil, WithClock(fixedClock(2020, time.July, 1)))

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"no ranges", "Software engineer with a passion for testing.", DefaultExperienceYears},
		{"empty", "", DefaultExperienceYears},
		{"full month names", "Acme Corp, January 2018 - January 2020", 2},
		{"abbreviated months", "Jan 2018 - Jan 2020", 2},
		{"to separator", "Jan 2018 to Jan 2020", 2},
		{"en dash", "Jan 2018 – Jan 2020", 2},
		{"present", "Jan 2019 - Present", 2},
		{"present upper case", "JANUARY 2019 TO PRESENT", 2},
		{"sums ranges then rounds up", "Jan 2020 - Jul 2020\nJan 2021 - Jul 2021", 1},
		{"malformed endpoint skipped", "Foo 2019 - Bar 2020", DefaultExperienceYears},
		{"unsupported abbreviation skipped", "Sept 2019 - Present", DefaultExperienceYears},
		{"malformed mixed with valid", "Foo 2010 - Bar 2012, Jan 2018 - Jan 2020", 2},
		{"reversed range is not positive", "January 2020 - January 2019", DefaultExperienceYears},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.ExtractExperience(tt.text))
		})
	}
}

func TestExtractExperience_UsesClockForPresent(t *testing.T) {
	text := "Staff Engineer, March 2015 - Present"

	early := NewAnalyzer(nil, WithClock(fixedClock(2016, time.February, 1)))
	late := NewAnalyzer(nil, WithClock(fixedClock(2025, time.February, 1)))

	assert.Equal(t, 1, early.ExtractExperience(text))
	assert.Equal(t, 10, late.ExtractExperience(text))
}

func TestExtractExperience_NeverReturnsZero(t *testing.T) {
	a := NewAnalyzer(nil)
	inputs := []string{"", "nothing here", "May 2020 - May 2020", "2019 - 2020"}
	for _, in := range inputs {
		assert.Equal(t, DefaultExperienceYears, a.ExtractExperience(in), "input %q", in)
	}
}

func TestExtractSkills(t *testing.T) {
	a := NewAnalyzer(skills.NewStaticHandle("Python", "SQL", "C++", "Node.js", "computer", "2019"))

	found := a.ExtractSkills("Built C++ and Node.js services; python and SQL daily on a computer since 2019.")

	assert.ElementsMatch(t, []string{
		skills.Canonical("C++"),
		skills.Canonical("Node.js"),
		"Python",
		"Sql",
	}, found.Sorted())
}

func TestExtractSkills_EmptyText(t *testing.T) {
	a := NewAnalyzer(skills.NewStaticHandle("Python"))
	assert.Equal(t, 0, a.ExtractSkills("").Len())
	assert.Equal(t, 0, a.ExtractSkills("   \n").Len())
}

func TestExtractSkills_UnavailableCatalog(t *testing.T) {
	a := NewAnalyzer(skills.NewCatalogHandle(skills.FromFile("/does/not/exist.csv")))
	assert.Equal(t, 0, a.ExtractSkills("Python everywhere").Len())
}

func TestAnalyze(t *testing.T) {
	a := NewAnalyzer(
		skills.NewStaticHandle("Python", "AWS", "Docker"),
		WithClock(fixedClock(2024, time.January, 15)),
	)
	text := strings.Join([]string{
		"Jane Doe",
		"Backend Engineer at Example, Jan 2021 - Present",
		"Skills: Docker, Python, AWS",
	}, "\n")

	result := a.Analyze(text)

	require.Len(t, result.Skills, 3)
	assert.Equal(t, []string{"Aws", "Docker", "Python"}, result.Skills)
	assert.Equal(t, 4, result.ExperienceYears)
}
