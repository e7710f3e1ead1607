// Package resume extracts a skill set and an experience estimate from plain resume text.
package resume

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/job-recommender/internal/skills"
)

// DefaultExperienceYears is reported when no positive experience total can be
// derived from the text.
const DefaultExperienceYears = 10

const daysPerYear = 365.25

// dateRangePattern matches "<Month Year> <sep> <Month Year|Present>" where the
// separator is a run of dashes or the word "to".
var dateRangePattern = regexp.MustCompile(`(?i)(\w+\s\d{4})\s*(?:[-–—]+|to)\s*(\w+\s\d{4}|present)`)

var monthLayouts = []string{"January 2006", "Jan 2006"}

// Result is the outcome of analyzing one resume.
type Result struct {
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience"`
}

// Analyzer turns resume text into skills and years of experience.
type Analyzer struct {
	catalog *skills.CatalogHandle
	now     func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used to resolve "Present".
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an analyzer backed by the given catalog handle.
func NewAnalyzer(catalog *skills.CatalogHandle, opts ...Option) *Analyzer {
	a := &Analyzer{catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ExtractSkills returns the catalog skills mentioned in text.
func (a *Analyzer) ExtractSkills(text string) skills.Set {
	if strings.TrimSpace(text) == "" || a.catalog == nil {
		return skills.NewSet()
	}
	return a.catalog.Match(text)
}

// ExtractExperience sums every date range found in text and rounds the total
// up to whole years. Ranges with unparseable endpoints are ignored. When the
// total is not positive, DefaultExperienceYears is returned.
func (a *Analyzer) ExtractExperience(text string) int {
	var total float64
	for _, m := range dateRangePattern.FindAllStringSubmatch(text, -1) {
		start, ok := parseMonthYear(m[1])
		if !ok {
			continue
		}

		var end time.Time
		if strings.EqualFold(m[2], "present") {
			end = a.now()
		} else if end, ok = parseMonthYear(m[2]); !ok {
			continue
		}

		total += wholeDays(end.Sub(start)) / daysPerYear
	}

	if total <= 0 {
		return DefaultExperienceYears
	}
	return int(math.Ceil(total))
}

// Analyze extracts both skills (sorted) and experience from text.
func (a *Analyzer) Analyze(text string) Result {
	return Result{
		Skills:          a.ExtractSkills(text).Sorted(),
		ExperienceYears: a.ExtractExperience(text),
	}
}

func parseMonthYear(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// wholeDays truncates a duration to whole days, rounding toward negative infinity.
func wholeDays(d time.Duration) float64 {
	return math.Floor(d.Hours() / 24)
}
