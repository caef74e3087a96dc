package crawler

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
	"github.com/sneakerdata/stockx-crawler/internal/model"
	"github.com/sneakerdata/stockx-crawler/internal/parser"
)

// PageExtractor aggregates the records of one listing page.
type PageExtractor struct {
	items   *ItemExtractor
	parser  *parser.StockXParser
	baseURL string
	logger  *slog.Logger
}

func NewPageExtractor(items *ItemExtractor, p *parser.StockXParser, baseURL string) *PageExtractor {
	return &PageExtractor{
		items:   items,
		parser:  p,
		baseURL: baseURL,
		logger:  slog.Default().With("component", "page_extractor"),
	}
}

// Extract visits every item linked from the landed listing tab, in
// document order, and returns the batch of records produced. Items
// discarded by the item extractor are skipped; the batch may come back
// empty and is still meaningful (the page was visited).
func (pe *PageExtractor) Extract(ctx context.Context, tab browser.Tab, categoryPath string) (model.PageBatch, error) {
	html, err := tab.Content()
	if err != nil {
		return nil, err
	}

	links, err := pe.parser.ItemLinks(html)
	if err != nil {
		return nil, err
	}

	pe.logger.Info("found items on page", "category", categoryPath, "count", len(links))

	batch := model.PageBatch{}
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := pe.items.Extract(ctx, resolveURL(pe.baseURL, link), categoryPath)
		if err != nil {
			return nil, err
		}
		if record != nil {
			batch = append(batch, *record)
		}
	}

	return batch, nil
}

// resolveURL resolves href against base; an unparsable href comes back
// unchanged.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
