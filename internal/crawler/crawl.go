package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
	"github.com/sneakerdata/stockx-crawler/internal/parser"
)

// Browse menu selectors. The menu materializes lazily: the category
// columns do not exist in the DOM until their parent entry has been
// interacted with, so the sequence is always trigger first, then read.
const (
	selectorBrowseMenu   = "li.dropdown:nth-child(1)"
	selectorSneakersMenu = "a.category:nth-child(1)"
	brandAnchorFormat    = "div.categoryColumn:nth-child(2) a[href='%s']"
)

// Crawler drives the whole run: root page, brand menu, one Walker call
// per model category.
type Crawler struct {
	session *browser.Session
	nav     *Navigator
	walker  *Walker
	parser  *parser.StockXParser
	baseURL string
	logger  *slog.Logger
}

func NewCrawler(session *browser.Session, nav *Navigator, walker *Walker, p *parser.StockXParser, baseURL string) *Crawler {
	return &Crawler{
		session: session,
		nav:     nav,
		walker:  walker,
		parser:  p,
		baseURL: baseURL,
		logger:  slog.Default().With("component", "crawler"),
	}
}

// Run opens the root page and walks every model category of every
// brand, in menu order. The root tab stays open for the whole run;
// after each category the session is unwound back to it so stale tabs
// from a failed walk never accumulate.
func (c *Crawler) Run(ctx context.Context) error {
	root, err := c.session.Open()
	if err != nil {
		return err
	}
	if err := c.nav.Goto(ctx, root, c.baseURL); err != nil {
		return fmt.Errorf("open root page: %w", err)
	}

	brands, err := c.readBrandMenu(root)
	if err != nil {
		return err
	}
	c.logger.Info("found brands", "count", len(brands))

	for _, brand := range brands {
		if err := ctx.Err(); err != nil {
			return err
		}

		models, err := c.readModelMenu(root, brand)
		if err != nil {
			return err
		}
		if models == nil {
			continue
		}
		c.logger.Info("found categories", "brand", brand.Text, "count", len(models))

		for _, m := range models {
			if err := ctx.Err(); err != nil {
				return err
			}

			categoryPath := CategoryPath(m.Href)
			walkErr := c.walker.Walk(ctx, resolveURL(c.baseURL, m.Href), categoryPath)
			if err := c.session.Unwind(); err != nil {
				return err
			}
			if walkErr != nil {
				return walkErr
			}
		}
	}

	c.logger.Info("crawl completed")
	return nil
}

func (c *Crawler) readBrandMenu(root browser.Tab) ([]parser.Link, error) {
	found, err := root.Click(selectorBrowseMenu)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("browse menu not found on root page")
	}

	found, err = root.Click(selectorSneakersMenu)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("sneakers menu entry not found")
	}

	html, err := root.Content()
	if err != nil {
		return nil, err
	}
	return c.parser.BrandLinks(html)
}

// readModelMenu clicks the brand's menu entry to materialize its model
// column and reads the links out of it. A brand whose entry vanished
// between reading the menu and clicking it is skipped (nil, nil).
func (c *Crawler) readModelMenu(root browser.Tab, brand parser.Link) ([]parser.Link, error) {
	found, err := root.Click(fmt.Sprintf(brandAnchorFormat, brand.Href))
	if err != nil {
		return nil, err
	}
	if !found {
		c.logger.Warn("brand menu entry not found, skipping", "brand", brand.Text)
		return nil, nil
	}

	html, err := root.Content()
	if err != nil {
		return nil, err
	}
	return c.parser.ModelLinks(html)
}

// CategoryPath derives the filesystem-safe storage key for a category
// from its link: the URL path after the site origin, slashes intact so
// nested categories map to nested directories. Stable for a run, and
// distinct links with distinct paths never collide.
func CategoryPath(link string) string {
	u, err := url.Parse(link)
	p := link
	if err == nil {
		p = u.Path
	}

	p = strings.Trim(p, "/")
	if p == "" {
		return "category"
	}
	return p
}
