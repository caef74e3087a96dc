package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
	"github.com/sneakerdata/stockx-crawler/internal/model"
	"github.com/sneakerdata/stockx-crawler/internal/parser"
)

// Sink commits one listing page's records to durable storage, keyed by
// category path and page number.
type Sink interface {
	WritePage(categoryPath string, page int, batch model.PageBatch) error
	PageExists(categoryPath string, page int) bool
}

// Walker paginates a category from its first listing URL until the
// site's pagination control is exhausted, committing each page's batch
// exactly once.
type Walker struct {
	session      *browser.Session
	nav          *Navigator
	pages        *PageExtractor
	parser       *parser.StockXParser
	sink         Sink
	baseURL      string
	skipExisting bool
	logger       *slog.Logger
}

func NewWalker(session *browser.Session, nav *Navigator, pages *PageExtractor, p *parser.StockXParser, sink Sink, baseURL string, skipExisting bool) *Walker {
	return &Walker{
		session:      session,
		nav:          nav,
		pages:        pages,
		parser:       p,
		sink:         sink,
		baseURL:      baseURL,
		skipExisting: skipExisting,
		logger:       slog.Default().With("component", "category_walker"),
	}
}

// Walk visits the category's listing pages in increasing page-number
// order. The site's forward nav button points at the site root on the
// last page; that sentinel, or a missing pagination control, ends the
// walk. With skipExisting on, pages whose CSV already exists are still
// navigated (the next-page URL only exists in the rendered page) but
// not re-extracted or re-committed.
func (w *Walker) Walk(ctx context.Context, firstURL, categoryPath string) error {
	pageURL := firstURL

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
		}

		w.logger.Info("opening listing page", "category", categoryPath, "page", pageNum, "url", pageURL)

		tab, err := w.nav.Open(ctx, pageURL)
		if err != nil {
			return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
		}

		if w.skipExisting && w.sink.PageExists(categoryPath, pageNum) {
			w.logger.Info("page file exists, skipping extraction", "category", categoryPath, "page", pageNum)
		} else {
			batch, err := w.pages.Extract(ctx, tab, categoryPath)
			if err != nil {
				return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
			}

			if err := w.sink.WritePage(categoryPath, pageNum, batch); err != nil {
				return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
			}
			w.logger.Info("committed page", "category", categoryPath, "page", pageNum, "items", len(batch))
		}

		html, err := tab.Content()
		if err != nil {
			return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
		}
		next, err := w.parser.NextPageURL(html)
		if err != nil {
			return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
		}

		if err := w.session.CloseActive(); err != nil {
			return fmt.Errorf("category %s page %d: %w", categoryPath, pageNum, err)
		}

		if next == "" || w.exhausted(next) {
			w.logger.Info("category exhausted", "category", categoryPath, "pages", pageNum)
			return nil
		}
		pageURL = resolveURL(w.baseURL, next)
	}
}

// exhausted reports whether the forward button's target is the site
// root, the site's own "no next page" sentinel.
func (w *Walker) exhausted(next string) bool {
	return strings.TrimRight(resolveURL(w.baseURL, next), "/") == strings.TrimRight(w.baseURL, "/")
}
