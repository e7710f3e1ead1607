// Package scraper collects new job postings from a job board and merges them
// into the corpus.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/fetch"
	"golang.org/x/time/rate"
)

// Scraper returns the postings currently listed by a job board.
type Scraper interface {
	Scrape(ctx context.Context) ([]corpus.Job, error)
}

// Enricher fills in details for postings that are about to be stored.
type Enricher interface {
	Enrich(ctx context.Context, jobs []corpus.Job) []corpus.Job
}

// Noop never finds anything. It is used when scraping is disabled.
type Noop struct{}

// Scrape implements Scraper.
func (Noop) Scrape(context.Context) ([]corpus.Job, error) {
	slog.Info("scraper disabled, no jobs fetched")
	return nil, nil
}

// New returns the scraper selected by cfg.Scraper.
func New(cfg *config.Config) (Scraper, error) {
	switch cfg.Scraper {
	case config.ScraperNoop:
		return Noop{}, nil
	case config.ScraperHTTP, "":
		s := NewHTTPScraper(cfg.ScraperURL)
		s.DetailPages = cfg.ScraperDetailPages
		s.Fetcher = fetch.NewHTTPFetcher(cfg.UseBrowser)
		if cfg.ScraperRate > 0 {
			s.Limiter = rate.NewLimiter(rate.Limit(cfg.ScraperRate), 1)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown scraper %q", cfg.Scraper)
	}
}

// Update scrapes s and appends postings whose Link is not yet in store.
// It returns the number of postings added. A corpus file that does not exist
// yet is created.
func Update(ctx context.Context, s Scraper, store corpus.Store) (int, error) {
	scraped, err := s.Scrape(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scrape jobs: %w", err)
	}
	if len(scraped) == 0 {
		slog.Info("no jobs scraped")
		return 0, nil
	}

	existing, err := store.Load(ctx)
	if errors.Is(err, os.ErrNotExist) {
		existing, err = nil, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load corpus: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, job := range existing {
		if job.Link != "" {
			known[job.Link] = struct{}{}
		}
	}

	var fresh []corpus.Job
	for _, job := range scraped {
		if _, dup := known[job.Link]; dup && job.Link != "" {
			continue
		}
		fresh = append(fresh, job)
	}

	if e, ok := s.(Enricher); ok && len(fresh) > 0 {
		fresh = e.Enrich(ctx, fresh)
	}

	added, err := store.Append(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("failed to store jobs: %w", err)
	}

	slog.Info("job corpus updated",
		slog.Int("scraped", len(scraped)),
		slog.Int("added", added))
	return added, nil
}
