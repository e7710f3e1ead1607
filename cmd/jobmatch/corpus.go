package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/scraper"
	"github.com/jonathan/job-recommender/internal/server"
	"github.com/jonathan/job-recommender/internal/skills"
	"github.com/spf13/cobra"
)

func newFetchJobsCmd(root *rootOptions) *cobra.Command {
	var (
		url         string
		detailPages bool
		useBrowser  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch-jobs",
		Short: "Scrape new postings and append them to the job corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *root.cfg
			if cmd.Flags().Changed("url") {
				cfg.ScraperURL = url
			}
			if cmd.Flags().Changed("details") {
				cfg.ScraperDetailPages = detailPages
			}
			if cmd.Flags().Changed("browser") {
				cfg.UseBrowser = useBrowser
			}

			s, err := scraper.New(&cfg)
			if err != nil {
				return err
			}
			store, err := corpus.Open(cmd.Context(), cfg.CorpusSource)
			if err != nil {
				return fmt.Errorf("failed to open job corpus: %w", err)
			}
			defer func() { _ = store.Close() }()

			added, err := scraper.Update(cmd.Context(), s, store)
			if err != nil {
				return fmt.Errorf("error fetching new jobs: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully fetched and updated %d new job listings.\n", added)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", config.DefaultScraperURL, "Listing page to scrape")
	cmd.Flags().BoolVar(&detailPages, "details", false, "Fetch each posting's page to fill in its description")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "Render thin pages in a headless browser")
	return cmd
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		hours   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for POST /fetch_new_jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("hours") {
				hours = root.getenv("ADMIN_JWT_EXPIRATION_HOURS")
			}
			jwtConfig, err := config.NewJWTConfigFrom(root.cfg.AdminJWTSecret, hours)
			if err != nil {
				return err
			}

			token, err := server.NewJWTService(jwtConfig).GenerateToken(subject)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().StringVar(&hours, "hours", "", "Lifetime in hours (default ADMIN_JWT_EXPIRATION_HOURS or 24)")
	return cmd
}

func newCleanSkillsCmd(_ *rootOptions) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "clean-skills",
		Short: "Lowercase and strip non-alphanumerics from the first row of a skills CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("failed to open input file: %w", err)
			}
			defer func() { _ = src.Close() }()

			dst, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}

			n, err := skills.CleanCSV(src, dst)
			if closeErr := dst.Close(); err == nil && closeErr != nil {
				err = closeErr
			}
			if errors.Is(err, skills.ErrEmptyCSV) {
				_ = os.Remove(out)
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: input file '%s' is empty\n", in)
				return nil
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleaned %d skills and saved them to '%s'\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "data/tech_skills.csv", "Skills CSV to clean")
	cmd.Flags().StringVarP(&out, "out", "o", "data/tech_skills_clean.csv", "Where to write the cleaned row")
	return cmd
}
