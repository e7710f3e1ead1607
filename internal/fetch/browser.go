package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP
// fetch before falling back to browser rendering.
const MinContentLength = 200

// BrowserTimeout bounds a single headless render.
const BrowserTimeout = 30 * time.Second

// ShouldUseBrowser reports whether text is too short to be a rendered posting.
func ShouldUseBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

// RenderHTML renders urlStr in headless Chrome and returns the page HTML.
// Chrome or Chromium must be installed.
func RenderHTML(ctx context.Context, urlStr string) (string, error) {
	return WithBrowser(ctx, urlStr, BrowserTimeout)
}

// WithBrowser renders urlStr with the given timeout.
func WithBrowser(ctx context.Context, urlStr string, timeout time.Duration) (string, error) {
	slog.Debug("starting headless browser", slog.String("url", urlStr))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	slog.Debug("rendered page", slog.String("url", urlStr), slog.Int("bytes", len(html)))
	return html, nil
}
