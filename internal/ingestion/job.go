// Package ingestion turns a job-posting URL into plain job-description text.
package ingestion

import (
	"context"
	"log"

	"github.com/jonathan/cv-tailor/internal/fetch"
)

// Options configures ExtractJobDescription.
type Options struct {
	Fetch *fetch.Options
	// UseBrowser re-renders the page in headless Chrome when the plain fetch yields too little text.
	UseBrowser bool
	Browser    fetch.BrowserOptions
	// ContentSelectors narrow extraction to a part of the page; the whole body is used when none match.
	ContentSelectors []string
	Verbose          bool
}

// browserRender is swapped in tests.
var browserRender = fetch.WithBrowser

// ExtractJobDescription fetches urlStr and returns the visible text of the page with one trimmed,
// non-empty line per text line.
func ExtractJobDescription(ctx context.Context, urlStr string, opts Options) (string, error) {
	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", &FetchError{URL: urlStr, Cause: err}
	}
	if opts.Verbose {
		log.Printf("[EXTRACT] Fetched %s: %d bytes", urlStr, len(result.HTML))
	}

	text, err := fetch.ExtractMainText(result.HTML, opts.ContentSelectors...)
	if err != nil {
		return "", &ParseError{URL: urlStr, Message: "invalid HTML", Cause: err}
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		log.Printf("[EXTRACT] Content too short (%d chars < %d), rendering %s in browser", len(text), fetch.MinContentLength, urlStr)
		html, browserErr := browserRender(ctx, urlStr, opts.Browser)
		if browserErr != nil {
			log.Printf("[EXTRACT] Browser rendering failed: %v, using HTTP content", browserErr)
		} else if rendered, extractErr := fetch.ExtractMainText(html, opts.ContentSelectors...); extractErr == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if text == "" {
		return "", &ParseError{URL: urlStr, Message: "page has no text content"}
	}

	log.Printf("[EXTRACT] Extracted job description: %d chars", len(text))
	return text, nil
}
