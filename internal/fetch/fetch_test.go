package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htmlServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestURL_Success(t *testing.T) {
	server := htmlServer(t, http.StatusOK, "<html><body><h1>Test</h1></body></html>")

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.ContentType)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := htmlServer(t, http.StatusNotFound, "")

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.Header.Get("Accept-Language"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Headers = map[string]string{"Accept-Language": "en"}
	_, err := URL(context.Background(), server.URL, opts)
	require.NoError(t, err)
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		selectors []string
		noise     []string
		contains  []string
		excludes  []string
	}{
		{
			name:      "main element wins over chrome",
			html:      `<html><body><nav>Navigation</nav><main><h1>Senior Python Developer</h1><p>Django and AWS.</p></main><footer>Footer</footer></body></html>`,
			selectors: JobPostingSelectors(),
			contains:  []string{"Senior Python Developer", "Django and AWS."},
			excludes:  []string{"Navigation", "Footer"},
		},
		{
			name:      "job description container",
			html:      `<html><body><div class="sidebar">Sidebar junk</div><div class="job-description"><h2>Requirements</h2><p>5 years experience in Go</p></div></body></html>`,
			selectors: JobPostingSelectors(),
			contains:  []string{"Requirements", "5 years experience in Go"},
			excludes:  []string{"Sidebar junk"},
		},
		{
			name:      "falls back to body",
			html:      `<html><body><div>Some content here.</div></body></html>`,
			selectors: JobPostingSelectors(),
			contains:  []string{"Some content here."},
		},
		{
			name:      "noise selectors removed",
			html:      `<html><body><div class="job-description"><p>Build APIs</p><form>Apply now</form></div></body></html>`,
			selectors: JobPostingSelectors(),
			noise:     PlatformNoiseSelectors(PlatformUnknown),
			contains:  []string{"Build APIs"},
			excludes:  []string{"Apply now"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, tt.selectors, tt.noise...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a\nb", cleanWhitespace("  a  \n\n\t\n b "))
	assert.Equal(t, "", cleanWhitespace(" \n "))
}

func TestHTTPFetcher_ExtractsText(t *testing.T) {
	server := htmlServer(t, http.StatusOK, `<html><body><div class="job-description"><p>Python, SQL</p></div></body></html>`)

	f := NewHTTPFetcher(false)
	f.Render = func(context.Context, string) (string, error) {
		t.Fatal("browser must not run when disabled")
		return "", nil
	}

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Python, SQL", result.Text)
}

func TestHTTPFetcher_BrowserFallback(t *testing.T) {
	server := htmlServer(t, http.StatusOK, `<html><body><div id="app"></div></body></html>`)
	rendered := `<html><body><div class="job-description"><p>` + strings.Repeat("Kubernetes ", 30) + `</p></div></body></html>`

	calls := 0
	f := NewHTTPFetcher(true)
	f.Render = func(_ context.Context, urlStr string) (string, error) {
		calls++
		assert.Equal(t, server.URL, urlStr)
		return rendered, nil
	}

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, result.Text, "Kubernetes")
	assert.Equal(t, rendered, result.HTML)
}

func TestHTTPFetcher_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := htmlServer(t, http.StatusOK, `<html><body><main>Short</main></body></html>`)

	f := NewHTTPFetcher(true)
	f.Render = func(context.Context, string) (string, error) {
		return "", errors.New("chrome not installed")
	}

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Short", result.Text)
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	server := htmlServer(t, http.StatusInternalServerError, "boom")

	_, err := NewHTTPFetcher(false).Fetch(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   "))
	assert.True(t, ShouldUseBrowser("short text"))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}
