package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jobjeeves/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the posting page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text can be extracted from the page
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures FromURL.
type URLOptions struct {
	Fetch *fetch.Options
	// UseBrowser enables a headless render when the plain fetch yields too little text.
	UseBrowser bool
	// Renderer overrides the default chromedp browser.
	Renderer fetch.Renderer
	Verbose  bool
}

// FromURL fetches a job posting and extracts its description, applying
// job-board specific selectors. The extracted text is cleaned with CleanText.
func FromURL(ctx context.Context, rawURL string, opts *URLOptions) (*JobPosting, error) {
	if opts == nil {
		opts = &URLOptions{}
	}
	fetchOpts := fetch.DefaultOptions()
	if opts.Fetch != nil {
		copied := *opts.Fetch
		fetchOpts = &copied
	}
	fetchOpts.Verbose = fetchOpts.Verbose || opts.Verbose

	platform := fetch.DetectPlatform(rawURL)
	if opts.Verbose {
		log.Printf("[VERBOSE] Detected platform for %s: %s", rawURL, platform)
	}

	page, err := fetch.New(fetchOpts).Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	content := fetch.PlatformContentSelectors(platform)
	noise := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(page.HTML, content, noise...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	title := fetch.Title(page.HTML)
	if opts.Verbose {
		log.Printf("[VERBOSE] Extracted %d chars over HTTP", utf8.RuneCountInString(text))
	}

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		renderer := opts.Renderer
		if renderer == nil {
			renderer = fetch.NewBrowser(opts.Verbose)
		}
		if html, rerr := renderer.Render(ctx, rawURL); rerr != nil {
			if opts.Verbose {
				log.Printf("[VERBOSE] Browser rendering failed, keeping HTTP content: %v", rerr)
			}
		} else if browserText, xerr := fetch.ExtractMainText(html, content, noise...); xerr == nil {
			text = browserText
			rendered = true
			if t := fetch.Title(html); t != "" {
				title = t
			}
		}
	}

	cleaned := CleanText(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, rawURL)
	}

	meta := NewMetadata(SourceURL, cleaned)
	meta.URL = rawURL
	meta.Platform = string(platform)
	meta.Title = title
	meta.Rendered = rendered

	return &JobPosting{Text: cleaned, Metadata: meta}, nil
}
