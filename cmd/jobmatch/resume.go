package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/job-recommender/internal/matching"
	"github.com/jonathan/job-recommender/internal/observability"
	"github.com/jonathan/job-recommender/internal/resume"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func newParseResumeCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse-resume <file|->",
		Short: "Extract skills and years of experience from a plain-text resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			text, err := loadResume(cmd, args[0])
			if err != nil {
				return err
			}

			result := root.engine().ProcessResume(text)
			if format == formatText {
				observability.NewPrinter(cmd.OutOrStdout()).PrintResume(result)
				return nil
			}
			return writeJSON(cmd, "", result)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or text")
	return cmd
}

type recommendOptions struct {
	resumePath string
	skills     []string
	experience int
	outPath    string
	format     string
	top        int
}

func newRecommendCmd(root *rootOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the job corpus against a resume or an explicit skill list",
		Long: "Rank the job corpus against the skills and experience found in --resume, " +
			"or against --skill and --experience given directly. Prints JSON rows, or a summary with --format text.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			profile, err := opts.profile(cmd, root)
			if err != nil {
				return err
			}

			recs, err := root.engine().Recommend(cmd.Context(), profile)
			if err != nil {
				return err
			}
			if opts.format == formatText && opts.outPath == "" {
				observability.NewPrinter(cmd.OutOrStdout()).WithLimit(opts.top).PrintRecommendations(recs)
				return nil
			}
			if recs == nil {
				recs = []matching.Recommendation{}
			}
			return writeJSON(cmd, opts.outPath, recs)
		},
	}

	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Plain-text resume file (- for stdin)")
	cmd.Flags().StringSliceVar(&opts.skills, "skill", nil, "Skill to match (repeatable or comma-separated)")
	cmd.Flags().IntVar(&opts.experience, "experience", 0, "Years of experience (0 means unknown)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write JSON to this file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json or text (text is ignored with --out)")
	cmd.Flags().IntVar(&opts.top, "top", 5, "Jobs to show in text format (0 for all)")
	cmd.MarkFlagsMutuallyExclusive("resume", "skill")
	return cmd
}

func (o *recommendOptions) profile(cmd *cobra.Command, root *rootOptions) (matching.UserProfile, error) {
	if o.experience < 0 {
		return matching.UserProfile{}, fmt.Errorf("--experience must not be negative")
	}

	if o.resumePath == "" {
		if len(o.skills) == 0 {
			return matching.UserProfile{}, fmt.Errorf("either --resume or --skill is required")
		}
		skills := make([]string, 0, len(o.skills))
		for _, s := range o.skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		return matching.UserProfile{Skills: skills, ExperienceYears: o.experience}, nil
	}

	text, err := loadResume(cmd, o.resumePath)
	if err != nil {
		return matching.UserProfile{}, err
	}
	result := root.engine().ProcessResume(text)
	profile := matching.UserProfile{Skills: result.Skills, ExperienceYears: result.ExperienceYears}
	if cmd.Flags().Changed("experience") {
		profile.ExperienceYears = o.experience
	}
	return profile, nil
}

func checkFormat(format string) error {
	if format != formatJSON && format != formatText {
		return fmt.Errorf("unknown output format %q (want json or text)", format)
	}
	return nil
}

func loadResume(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		return resume.ReadText(cmd.InOrStdin())
	}
	return resume.LoadText(path)
}

// writeJSON prints v as indented JSON to path, or to the command output when
// path is empty.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Output: %s\n", path)
	return nil
}
