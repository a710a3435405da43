// Package collyfetcher implements the page fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

// Fetcher implements analysis.PageFetcher using a Colly collector. It
// fetches the page once and extracts the title and meta description so the
// engine works from an already-derived triple.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)
	return &Fetcher{cfg: cfg, baseCollector: c}
}

// Fetch executes a single HTTP GET and derives PageData from the response.
func (f *Fetcher) Fetch(ctx context.Context, url string) (analysis.PageData, error) {
	if err := ctx.Err(); err != nil {
		return analysis.PageData{}, fmt.Errorf("fetch canceled: %w", err)
	}

	var body []byte
	var fetchErr error

	collector := f.baseCollector.Clone()
	collector.OnResponse(func(resp *colly.Response) {
		body = append([]byte(nil), resp.Body...)
	})
	collector.OnError(func(resp *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return analysis.PageData{}, fmt.Errorf("visit %s: %w", url, err)
	}
	collector.Wait()
	if fetchErr != nil {
		return analysis.PageData{}, fmt.Errorf("fetch %s: %w", url, fetchErr)
	}

	page := analysis.PageData{URL: url, RawMarkup: string(body)}
	page.Title, page.MetaDescription = extractHead(body)
	return page, nil
}

// extractHead pulls the title and meta description out of the response
// body. Extraction failures degrade to empty strings; the engine tolerates
// empty inputs at every analyzer.
func extractHead(body []byte) (title, meta string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", ""
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	meta, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	return title, strings.TrimSpace(meta)
}
