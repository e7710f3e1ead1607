// Package engine wires the skill catalog, resume analyzer and job matcher
// together with their corpus and weight-table sources.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/matching"
	"github.com/jonathan/job-recommender/internal/resume"
	"github.com/jonathan/job-recommender/internal/skills"
)

// ConfigurationError is returned when the corpus or the skill weight table
// cannot be loaded. No partial result accompanies it.
type ConfigurationError struct {
	Resource string
	Message  string
	Cause    error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unavailable: %s: %v", e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s unavailable: %s", e.Resource, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// SourceOpener opens the job corpus for one matching call.
type SourceOpener func(ctx context.Context) (corpus.Source, func(), error)

// WeightsLoader loads the skill weight table for one matching call.
type WeightsLoader func() (*skills.WeightTable, error)

// Options configures an Engine.
type Options struct {
	Catalog  *skills.CatalogHandle
	Corpus   SourceOpener
	Weights  WeightsLoader
	Analyzer []resume.Option
}

// Engine answers resume analysis and recommendation requests. It is safe for
// concurrent use.
type Engine struct {
	catalog  *skills.CatalogHandle
	analyzer *resume.Analyzer
	matcher  *matching.Matcher
	corpus   SourceOpener
	weights  WeightsLoader
}

// New creates an engine. A nil catalog uses the embedded skill list.
func New(opts Options) *Engine {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = skills.NewCatalogHandle(skills.Embedded())
	}
	return &Engine{
		catalog:  catalog,
		analyzer: resume.NewAnalyzer(catalog, opts.Analyzer...),
		matcher:  matching.NewMatcher(catalog),
		corpus:   opts.Corpus,
		weights:  opts.Weights,
	}
}

// CorpusAt opens the store at location for every call.
func CorpusAt(location string) SourceOpener {
	return func(ctx context.Context) (corpus.Source, func(), error) {
		store, err := corpus.Open(ctx, location)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

// StaticCorpus always returns src.
func StaticCorpus(src corpus.Source) SourceOpener {
	return func(context.Context) (corpus.Source, func(), error) {
		return src, func() {}, nil
	}
}

// WeightsAt reads the weight table file at path for every call.
func WeightsAt(path string) WeightsLoader {
	return func() (*skills.WeightTable, error) {
		return skills.LoadWeights(path)
	}
}

// Catalog returns the catalog handle shared by the analyzer and matcher.
func (e *Engine) Catalog() *skills.CatalogHandle {
	return e.catalog
}

// ProcessResume extracts skills and years of experience from resume text.
func (e *Engine) ProcessResume(text string) resume.Result {
	return e.analyzer.Analyze(text)
}

// Recommend loads the corpus and weight table and ranks the corpus for profile.
func (e *Engine) Recommend(ctx context.Context, profile matching.UserProfile) ([]matching.Recommendation, error) {
	jobs, err := e.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	weights, err := e.loadWeights()
	if err != nil {
		return nil, err
	}

	recs, err := e.matcher.Match(profile, jobs, weights)
	if err != nil {
		if errors.Is(err, matching.ErrWeightsUnavailable) {
			return nil, &ConfigurationError{Resource: "skill weights", Message: "no table loaded", Cause: err}
		}
		return nil, err
	}

	slog.Debug("recommendations ranked",
		slog.Int("corpus", len(jobs)),
		slog.Int("returned", len(recs)))
	return recs, nil
}

func (e *Engine) loadCorpus(ctx context.Context) ([]corpus.Job, error) {
	if e.corpus == nil {
		return nil, &ConfigurationError{Resource: "job corpus", Message: "no source configured"}
	}
	src, closeFn, err := e.corpus(ctx)
	if err != nil {
		return nil, &ConfigurationError{Resource: "job corpus", Message: "failed to open", Cause: err}
	}
	defer closeFn()

	jobs, err := src.Load(ctx)
	if err != nil {
		return nil, &ConfigurationError{Resource: "job corpus", Message: "failed to load", Cause: err}
	}
	return jobs, nil
}

func (e *Engine) loadWeights() (*skills.WeightTable, error) {
	if e.weights == nil {
		return nil, &ConfigurationError{Resource: "skill weights", Message: "no table configured"}
	}
	table, err := e.weights()
	if err != nil {
		return nil, &ConfigurationError{Resource: "skill weights", Message: "failed to load", Cause: err}
	}
	return table, nil
}
