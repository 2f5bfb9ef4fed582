package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/scanner"
)

// ArxivScanner reads the newest entries of an arXiv listing page.
type ArxivScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*ArxivScanner)(nil)

// NewArxivScanner wires an HTTP client.
func NewArxivScanner(client *http.Client) *ArxivScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ArxivScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (a *ArxivScanner) Name() string {
	return "arxiv"
}

// Scan returns at most req.Limit entries in listing order.
func (a *ArxivScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Headline, error) {
	limit := limitOf(req.Limit)
	pageURL, err := buildPageURL(req.URL, limit)
	if err != nil {
		return nil, err
	}

	doc, err := fetchDocument(ctx, a.client, pageURL)
	if err != nil {
		return nil, err
	}

	headlines := make([]domain.Headline, 0, limit)
	doc.Find("dl > dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		h, ok := parseEntry(dt, dt.Next(), req.URL, req.SiteName)
		if ok {
			headlines = append(headlines, h)
		}
		return len(headlines) < limit
	})

	return headlines, nil
}

func parseEntry(dt, dd *goquery.Selection, pageURL, siteName string) (domain.Headline, bool) {
	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))
	if title == "" {
		return domain.Headline{}, false
	}

	href, _ := dt.Find("a[href*=\"/abs/\"]").First().Attr("href")

	return domain.Headline{
		Title:  title,
		URL:    resolveLink(pageURL, href),
		Source: siteName,
	}, true
}

func buildPageURL(base string, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", "0")
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
