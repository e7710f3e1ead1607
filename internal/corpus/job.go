// Package corpus loads and stores the job postings that recommendations are drawn from.
package corpus

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Well-known corpus columns.
const (
	ColumnTitle              = "Title"
	ColumnCompany            = "Company"
	ColumnCompanyName        = "Company Name"
	ColumnDescription        = "Description"
	ColumnRequiredExperience = "Required Experience"
	ColumnLink               = "Link"
	ColumnDetailURL          = "Detail URL"
	ColumnCompanyApplyURL    = "Company Apply Url"
)

// LinkFallbackColumns are consulted in order when a row has no Link.
var LinkFallbackColumns = []string{ColumnCompanyApplyURL, ColumnDetailURL, ColumnCompany}

// DefaultColumns is the column layout written for a new CSV corpus.
var DefaultColumns = []string{
	ColumnTitle, ColumnCompany, "Location", "Job Type", "Posted Date", ColumnLink,
	ColumnDescription, ColumnDetailURL, ColumnCompanyName, "Company Logo",
	ColumnCompanyApplyURL, "Processed Job Description", ColumnRequiredExperience, "skills",
}

// Job is one posting. Fields holds every original column so that a
// recommendation can be emitted as the source row plus derived values.
type Job struct {
	ID                 string
	Title              string
	Company            string
	Description        string
	RequiredExperience float64
	Link               string
	Fields             map[string]string
}

// RowError describes a value in a corpus row that could not be interpreted.
// The row is still usable; the offending value is zeroed.
type RowError struct {
	Row     int
	Column  string
	Value   string
	Message string
	Cause   error
}

func (e *RowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("row %d column %q (%q): %s: %v", e.Row, e.Column, e.Value, e.Message, e.Cause)
	}
	return fmt.Sprintf("row %d column %q (%q): %s", e.Row, e.Column, e.Value, e.Message)
}

func (e *RowError) Unwrap() error {
	return e.Cause
}

// FromFields builds a Job from a column map. A malformed Required Experience
// is reported as a *RowError and treated as 0; the returned Job is always usable.
func FromFields(row int, fields map[string]string) (Job, error) {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	job := Job{
		Title:       copied[ColumnTitle],
		Company:     firstNonEmpty(copied[ColumnCompany], copied[ColumnCompanyName]),
		Description: copied[ColumnDescription],
		Link:        strings.TrimSpace(copied[ColumnLink]),
		Fields:      copied,
	}

	exp, err := ParseExperience(copied[ColumnRequiredExperience])
	job.RequiredExperience = exp
	job.ID = JobID(job.Link).String()
	if err != nil {
		return job, &RowError{
			Row:     row,
			Column:  ColumnRequiredExperience,
			Value:   copied[ColumnRequiredExperience],
			Message: "not a number, using 0",
			Cause:   err,
		}
	}
	return job, nil
}

// ParseExperience parses a Required Experience cell. Blank cells are 0.
func ParseExperience(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// JobID returns a stable identifier for a posting link. Postings without a
// link get a random one.
func JobID(link string) uuid.UUID {
	if link == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link))
}

// Record returns the posting as a flat column map, with the typed fields
// written over the original columns.
func (j Job) Record() map[string]string {
	out := make(map[string]string, len(j.Fields)+5)
	for k, v := range j.Fields {
		out[k] = v
	}
	out[ColumnTitle] = j.Title
	out[ColumnDescription] = j.Description
	out[ColumnLink] = j.Link
	out[ColumnRequiredExperience] = FormatExperience(j.RequiredExperience)
	if j.Company != "" && out[ColumnCompany] == "" && out[ColumnCompanyName] == "" {
		out[ColumnCompany] = j.Company
	}
	return out
}

// FormatExperience renders a Required Experience value the way it is stored.
func FormatExperience(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ResolveLinks returns copies of jobs in which an empty Link is filled from the
// first non-empty fallback column. Existing links are never overwritten.
func ResolveLinks(jobs []Job) []Job {
	out := make([]Job, len(jobs))
	for i, job := range jobs {
		if job.Link == "" {
			for _, col := range LinkFallbackColumns {
				if v := strings.TrimSpace(job.Fields[col]); v != "" {
					job.Link = v
					break
				}
			}
		}
		out[i] = job
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
