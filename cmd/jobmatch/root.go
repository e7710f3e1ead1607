package main

import (
	"fmt"
	"os"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/engine"
	"github.com/jonathan/job-recommender/internal/logging"
	"github.com/jonathan/job-recommender/internal/skills"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every command and the configuration
// resolved from them.
type rootOptions struct {
	configPath string
	flags      config.Config
	getenv     func(string) string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:   "jobmatch",
		Short: "Resume-driven job recommendations",
		Long: "jobmatch extracts skills and experience from a resume, ranks a job corpus against them, " +
			"keeps the corpus fresh from jobs.python.org and serves all of it over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML config file")
	pf.StringVar(&opts.flags.CorpusSource, "corpus", "", "Job corpus: CSV path, sqlite://path or postgres:// URL")
	pf.StringVar(&opts.flags.SkillWeights, "weights", "", "Path to the role/skill weight table (JSON or YAML)")
	pf.StringVar(&opts.flags.SkillCatalog, "skills", "", "Path to the skills CSV (embedded list if empty)")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.flags.LogFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(
		newServeCmd(opts),
		newParseResumeCmd(opts),
		newRecommendCmd(opts),
		newFetchJobsCmd(opts),
		newTokenCmd(opts),
		newCleanSkillsCmd(opts),
	)
	return cmd
}

// resolve builds the effective configuration. Precedence, lowest first:
// defaults, config file, environment, flags.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(o.getenv)

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("corpus", &cfg.CorpusSource, o.flags.CorpusSource)
	override("weights", &cfg.SkillWeights, o.flags.SkillWeights)
	override("skills", &cfg.SkillCatalog, o.flags.SkillCatalog)
	override("log-level", &cfg.LogLevel, o.flags.LogLevel)
	override("log-format", &cfg.LogFormat, o.flags.LogFormat)

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return err
	}
	if err := logging.Setup(cmd.ErrOrStderr(), merged.LogLevel, merged.LogFormat); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	o.cfg = &merged
	return nil
}

// engine wires the recommendation engine from the resolved configuration.
func (o *rootOptions) engine() *engine.Engine {
	opts := engine.Options{
		Catalog: skills.NewCatalogHandle(skills.FromFile(o.cfg.SkillCatalog)),
		Corpus:  engine.CorpusAt(o.cfg.CorpusSource),
	}
	if o.cfg.SkillWeights != "" {
		opts.Weights = engine.WeightsAt(o.cfg.SkillWeights)
	}
	return engine.New(opts)
}
