package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const listingHTML = `<html><body>
<ol class="list-recent-jobs">
  <li>
    <h2 class="listing-company">
      <span class="listing-company-name"><a href="/jobs/101/">Senior Python Engineer</a><br/>
        Acme
        Corp</span>
      <span class="listing-location"><a href="/jobs/location/remote/">Remote</a></span>
    </h2>
    <span class="listing-job-type">Back end, Cloud</span>
    <span class="listing-posted">Posted: <time datetime="2025-05-01">01 May 2025</time></span>
  </li>
  <li>
    <h2><span class="listing-company-name"><a href="https://jobs.example.org/202">Data Engineer</a> Beta Ltd</span></h2>
  </li>
  <li><span>No link here</span></li>
</ol>
</body></html>`

type memStore struct {
	jobs    []corpus.Job
	loadErr error
}

func (m *memStore) Load(context.Context) ([]corpus.Job, error) {
	return m.jobs, m.loadErr
}

func (m *memStore) Append(_ context.Context, jobs []corpus.Job) (int, error) {
	m.jobs = append(m.jobs, jobs...)
	return len(jobs), nil
}

func (m *memStore) Close() error { return nil }

type staticScraper struct {
	jobs []corpus.Job
	err  error
}

func (s staticScraper) Scrape(context.Context) ([]corpus.Job, error) {
	return s.jobs, s.err
}

type fakeFetcher struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, urlStr string) (*fetch.Result, error) {
	f.calls.Add(1)
	if f.fail[urlStr] {
		return nil, &fetch.Error{URL: urlStr, Message: "HTTP status 500"}
	}
	return &fetch.Result{URL: urlStr, Text: "Details for " + urlStr}, nil
}

func TestParseListing(t *testing.T) {
	jobs, err := ParseListing(listingHTML, "https://jobs.python.org/")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "Senior Python Engineer", first.Title)
	assert.Equal(t, "https://jobs.python.org/jobs/101/", first.Link)
	assert.Equal(t, first.Link, first.Fields[corpus.ColumnDetailURL])
	assert.Equal(t, "Remote", first.Fields["Location"])
	assert.Equal(t, "Back end, Cloud", first.Fields["Job Type"])
	assert.Equal(t, "01 May 2025", first.Fields["Posted Date"])
	assert.Equal(t, 0.0, first.RequiredExperience)
	assert.Equal(t, corpus.JobID(first.Link).String(), first.ID)
	for _, col := range corpus.DefaultColumns {
		assert.Contains(t, first.Fields, col)
	}

	second := jobs[1]
	assert.Equal(t, "Data Engineer", second.Title)
	assert.Equal(t, "https://jobs.example.org/202", second.Link)
	assert.Equal(t, "Data Engineer Beta Ltd", second.Company)
}

func TestParseListing_CompanyNameJoinsWhitespace(t *testing.T) {
	jobs, err := ParseListing(listingHTML, "https://jobs.python.org/")
	require.NoError(t, err)
	assert.Equal(t, "Senior Python Engineer Acme Corp", jobs[0].Company)
	assert.Equal(t, jobs[0].Company, jobs[0].Fields[corpus.ColumnCompanyName])
}

func TestParseListing_NoContainer(t *testing.T) {
	jobs, err := ParseListing("<html><body><ul><li><a href='/x'>x</a></li></ul></body></html>", "https://jobs.python.org/")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestHTTPScraper_Scrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	jobs, err := NewHTTPScraper(server.URL + "/").Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, server.URL+"/jobs/101/", jobs[0].Link)
}

func TestHTTPScraper_ScrapeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHTTPScraper(server.URL).Scrape(context.Background())
	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPScraper_Enrich(t *testing.T) {
	jobs, err := ParseListing(listingHTML, "https://jobs.python.org/")
	require.NoError(t, err)

	fetcher := &fakeFetcher{fail: map[string]bool{"https://jobs.example.org/202": true}}
	s := &HTTPScraper{
		DetailPages: true,
		Fetcher:     fetcher,
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		Concurrency: 2,
	}

	enriched := s.Enrich(context.Background(), jobs)
	require.Len(t, enriched, 2)
	assert.EqualValues(t, 2, fetcher.calls.Load())
	assert.Equal(t, "Details for https://jobs.python.org/jobs/101/", enriched[0].Description)
	assert.Equal(t, enriched[0].Description, enriched[0].Fields[corpus.ColumnDescription])
	assert.Empty(t, enriched[1].Description, "failed fetch leaves the posting as listed")
	assert.Empty(t, jobs[0].Fields[corpus.ColumnDescription], "input is not modified")
}

func TestHTTPScraper_EnrichDisabled(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := &HTTPScraper{Fetcher: fetcher}
	jobs := []corpus.Job{{Link: "https://jobs.python.org/jobs/1/"}}

	assert.Equal(t, jobs, s.Enrich(context.Background(), jobs))
	assert.Zero(t, fetcher.calls.Load())
}

func TestUpdate(t *testing.T) {
	listed := []corpus.Job{
		{Title: "Old", Link: "https://jobs.python.org/jobs/1/"},
		{Title: "New", Link: "https://jobs.python.org/jobs/2/"},
		{Title: "Newer", Link: "https://jobs.python.org/jobs/3/"},
	}
	store := &memStore{jobs: []corpus.Job{{Title: "Old", Link: "https://jobs.python.org/jobs/1/"}}}

	added, err := Update(context.Background(), staticScraper{jobs: listed}, store)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	require.Len(t, store.jobs, 3)
	assert.Equal(t, "Newer", store.jobs[2].Title)
}

func TestUpdate_Errors(t *testing.T) {
	scrapeErr := errors.New("offline")

	_, err := Update(context.Background(), staticScraper{err: scrapeErr}, &memStore{})
	assert.ErrorIs(t, err, scrapeErr)

	_, err = Update(context.Background(), staticScraper{jobs: []corpus.Job{{Link: "x"}}}, &memStore{loadErr: scrapeErr})
	assert.ErrorIs(t, err, scrapeErr)
}

func TestUpdate_NothingScraped(t *testing.T) {
	added, err := Update(context.Background(), Noop{}, &memStore{})
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestUpdate_CSVStoreEndToEnd(t *testing.T) {
	listing := `<ol class="list-recent-jobs">
<li><span class="listing-company-name"><a href="/jobs/101/">Python Developer</a> Acme</span></li>
<li><span class="listing-company-name"><a href="/jobs/102/">Django Developer</a> Beta</span></li>
</ol>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(listing))
			return
		}
		_, _ = fmt.Fprintf(w, `<html><body><div class="job-description">Python and Django at %s</div></body></html>`, r.URL.Path)
	}))
	defer server.Close()

	store := corpus.NewCSVFile(filepath.Join(t.TempDir(), "job_data.csv"))
	s := NewHTTPScraper(server.URL + "/")
	s.DetailPages = true

	added, err := Update(context.Background(), s, store)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	jobs, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Python Developer", jobs[0].Title)
	assert.Equal(t, "Python and Django at /jobs/101/", jobs[0].Description)
	assert.Equal(t, "Python and Django at /jobs/102/", jobs[1].Description)

	again, err := Update(context.Background(), s, store)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestNew(t *testing.T) {
	cfg := config.Defaults()
	cfg.Scraper = config.ScraperNoop
	s, err := New(&cfg)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, s)

	cfg.Scraper = config.ScraperHTTP
	cfg.ScraperDetailPages = true
	s, err = New(&cfg)
	require.NoError(t, err)
	httpScraper, ok := s.(*HTTPScraper)
	require.True(t, ok)
	assert.Equal(t, cfg.ScraperURL, httpScraper.URL)
	assert.True(t, httpScraper.DetailPages)
	assert.NotNil(t, httpScraper.Limiter)

	cfg.Scraper = "ftp"
	_, err = New(&cfg)
	assert.Error(t, err)
}
