// Package observability provides formatted text output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-recommender/internal/matching"
	"github.com/jonathan/job-recommender/internal/resume"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for text mode
type Printer struct {
	out   io.Writer
	limit int
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, limit: maxItemsToShow}
}

// WithLimit sets how many recommendations PrintRecommendations shows.
// Values below one show all of them.
func (p *Printer) WithLimit(n int) *Printer {
	p.limit = n
	return p
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResume outputs the skills and experience found in a resume.
func (p *Printer) PrintResume(result resume.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Experience: %d years\n", result.ExperienceYears))
	sb.WriteString(fmt.Sprintf("Skills:     %d found\n", len(result.Skills)))

	if len(result.Skills) > 0 {
		sb.WriteString("\n")
		for _, line := range wrap(result.Skills, boxWidth-6) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	p.printBox("RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs ranked jobs with their scores, strengths and gaps.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecommendations(recs []matching.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO MATCHING JOBS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	count := len(recs)
	if p.limit > 0 {
		count = min(count, p.limit)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total jobs ranked: %d\n\n", len(recs)))

	for i := 0; i < count; i++ {
		rec := recs[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, rec.Job.Title))
		if rec.Job.Company != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", rec.Job.Company))
		}
		sb.WriteString(fmt.Sprintf("    Score: %.2f (match %.2f, experience %d)\n",
			rec.CombinedScore, rec.MatchConfidence, rec.ExperienceScore))
		if rec.Strengths != "" {
			sb.WriteString(fmt.Sprintf("    Strengths: %s\n", rec.Strengths))
		}
		if rec.Weakness != "" {
			sb.WriteString(fmt.Sprintf("    Gaps: %s\n", rec.Weakness))
		}
		if rec.Job.Link != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", rec.Job.Link))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(recs) > count {
		sb.WriteString(fmt.Sprintf("\n... and %d more jobs", len(recs)-count))
	}

	p.printBox("TOP RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// wrap joins items with ", " into lines no wider than width.
func wrap(items []string, width int) []string {
	var (
		lines []string
		line  string
	)
	for _, item := range items {
		switch {
		case line == "":
			line = item
		case len(line)+2+len(item) <= width:
			line += ", " + item
		default:
			lines = append(lines, line+",")
			line = item
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
