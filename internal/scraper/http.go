package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/fetch"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultConcurrency bounds parallel detail page fetches.
const DefaultConcurrency = 4

// HTTPScraper reads the recent jobs list of a jobs.python.org style board.
type HTTPScraper struct {
	URL     string
	Options *fetch.Options

	// DetailPages enables fetching each new posting's page for its description.
	DetailPages bool
	Fetcher     fetch.Fetcher
	Limiter     *rate.Limiter
	Concurrency int
}

// NewHTTPScraper creates a scraper for the listing page at listingURL.
func NewHTTPScraper(listingURL string) *HTTPScraper {
	return &HTTPScraper{
		URL:         listingURL,
		Options:     fetch.DefaultOptions(),
		Fetcher:     fetch.NewHTTPFetcher(false),
		Concurrency: DefaultConcurrency,
	}
}

// Scrape implements Scraper.
func (s *HTTPScraper) Scrape(ctx context.Context) ([]corpus.Job, error) {
	result, err := fetch.URL(ctx, s.URL, s.Options)
	if err != nil {
		return nil, err
	}

	jobs, err := ParseListing(result.HTML, s.URL)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed job listing", slog.String("url", s.URL), slog.Int("jobs", len(jobs)))
	return jobs, nil
}

// ParseListing extracts postings from the ol.list-recent-jobs element of html.
// Relative links are resolved against base. A page without the list yields
// no postings.
func ParseListing(html, base string) ([]corpus.Job, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL %q: %w", base, err)
	}

	container := doc.Find("ol.list-recent-jobs").First()
	if container.Length() == 0 {
		slog.Warn("job list container not found", slog.String("url", base))
		return nil, nil
	}

	var jobs []corpus.Job
	container.Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		if ref, err := url.Parse(href); err == nil {
			href = baseURL.ResolveReference(ref).String()
		}

		company := strings.Join(strings.Fields(li.Find("span.listing-company-name").First().Text()), " ")
		fields := map[string]string{
			corpus.ColumnTitle:              strings.TrimSpace(a.Text()),
			corpus.ColumnCompany:            company,
			"Location":                      strings.TrimSpace(li.Find("span.listing-location").First().Text()),
			"Job Type":                      strings.TrimSpace(li.Find("span.listing-job-type").First().Text()),
			"Posted Date":                   strings.TrimSpace(li.Find("span.listing-posted time").First().Text()),
			corpus.ColumnLink:               href,
			corpus.ColumnDescription:        "",
			corpus.ColumnDetailURL:          href,
			corpus.ColumnCompanyName:        company,
			"Company Logo":                  "",
			corpus.ColumnCompanyApplyURL:    "",
			"Processed Job Description":     "",
			corpus.ColumnRequiredExperience: "0",
			"skills":                        "",
		}
		job, _ := corpus.FromFields(len(jobs), fields)
		jobs = append(jobs, job)
	})
	return jobs, nil
}

// Enrich fetches each posting's detail page and stores its text as the
// description. Failed fetches leave the posting unchanged.
func (s *HTTPScraper) Enrich(ctx context.Context, jobs []corpus.Job) []corpus.Job {
	if !s.DetailPages || s.Fetcher == nil {
		return jobs
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	out := make([]corpus.Job, len(jobs))
	copy(out, jobs)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range out {
		link := out[i].Fields[corpus.ColumnDetailURL]
		if link == "" {
			link = out[i].Link
		}
		if link == "" {
			continue
		}
		g.Go(func() error {
			if s.Limiter != nil {
				if err := s.Limiter.Wait(gCtx); err != nil {
					return err
				}
			}
			result, err := s.Fetcher.Fetch(gCtx, link)
			if err != nil {
				slog.Warn("detail page fetch failed",
					slog.String("url", link),
					slog.String("error", err.Error()))
				return nil
			}
			out[i] = withDescription(out[i], result.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("detail page fetching stopped", slog.String("error", err.Error()))
	}
	return out
}

func withDescription(job corpus.Job, text string) corpus.Job {
	fields := make(map[string]string, len(job.Fields))
	for k, v := range job.Fields {
		fields[k] = v
	}
	fields[corpus.ColumnDescription] = text
	job.Fields = fields
	job.Description = text
	return job
}
