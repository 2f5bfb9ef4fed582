package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/scanner"
)

// HTMLScanner extracts headlines from any page using a CSS selector.
// Matched elements are anchors or contain one.
type HTMLScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires an HTTP client.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client}
}

func (h *HTMLScanner) Name() string {
	return "html"
}

func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Headline, error) {
	if req.Selector == "" {
		return nil, fmt.Errorf("site %s: selector is required", req.SiteName)
	}

	doc, err := fetchDocument(ctx, h.client, req.URL)
	if err != nil {
		return nil, err
	}

	limit := limitOf(req.Limit)
	headlines := make([]domain.Headline, 0, limit)
	doc.Find(req.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel
		if !sel.Is("a") {
			link = sel.Find("a").First()
		}
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")
		headlines = append(headlines, domain.Headline{
			Title:  title,
			URL:    resolveLink(req.URL, href),
			Source: req.SiteName,
		})
		return len(headlines) < limit
	})

	return headlines, nil
}
