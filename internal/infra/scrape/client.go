package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

const maxBodyBytes = 5 << 20 // cap raw HTML we keep in memory

// Client fetches a page and renders it to plain text with basic metadata.
// It implements the Fetcher port; truncation for the analyzer is the
// orchestrator's job, not ours.
type Client struct {
	http      *http.Client
	userAgent string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = "siteinsight/1.0 (+https://github.com/bryanwahyu/siteinsight)"
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves the page and extracts main content via readability, with a
// raw-document fallback so pages without an article body still yield text.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*domain.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	result := &domain.FetchResult{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Description: metaDescription(doc),
	}

	// Let readability distill the main content; fall back to the whole
	// document text when it finds nothing usable.
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), pageURL)
	if err == nil {
		if article.Title != "" {
			result.Title = article.Title
		}
		if result.Description == "" {
			result.Description = article.Excerpt
		}
		result.Content = article.TextContent
	}
	if strings.TrimSpace(result.Content) == "" {
		result.Content = collapseWhitespace(doc.Find("body").Text())
	}

	return result, nil
}

func metaDescription(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
