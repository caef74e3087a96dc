package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
	"github.com/sneakerdata/stockx-crawler/internal/model"
	"github.com/sneakerdata/stockx-crawler/internal/parser"
)

// Gauges sit at the bottom of the detail page and only render once
// scrolled into view.
const scrollToBottom = "window.scrollTo(0, document.body.scrollHeight)"

// ImageFetcher downloads the raw bytes of a product image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ItemExtractor turns one item detail URL into a record, downloading
// the product image as a side effect.
type ItemExtractor struct {
	session    *browser.Session
	nav        *Navigator
	parser     *parser.StockXParser
	images     ImageFetcher
	imagesRoot string
	logger     *slog.Logger
}

func NewItemExtractor(session *browser.Session, nav *Navigator, p *parser.StockXParser, images ImageFetcher, imagesRoot string) *ItemExtractor {
	return &ItemExtractor{
		session:    session,
		nav:        nav,
		parser:     p,
		images:     images,
		imagesRoot: imagesRoot,
		logger:     slog.Default().With("component", "item_extractor"),
	}
}

// Extract lands on the item's detail page and reads its fields. It
// returns (nil, nil) when the page lacks the identifying fields (name,
// ticker, image): such an item is unusable and is dropped rather than
// emitted as an all-placeholder row. Every optional field is read
// independently, so one missing node degrades that field only. The
// detail tab is closed before returning, leaving the listing tab
// active again.
func (e *ItemExtractor) Extract(ctx context.Context, url, categoryPath string) (*model.ItemRecord, error) {
	e.logger.Info("opening item", "url", url)

	tab, err := e.nav.Open(ctx, url)
	if err != nil {
		return nil, err
	}

	record, err := e.extract(ctx, tab, url, categoryPath)
	if cerr := e.session.CloseActive(); cerr != nil && err == nil {
		err = cerr
	}
	return record, err
}

func (e *ItemExtractor) extract(ctx context.Context, tab browser.Tab, url, categoryPath string) (*model.ItemRecord, error) {
	if err := tab.RunScript(scrollToBottom); err != nil {
		return nil, err
	}

	html, err := tab.Content()
	if err != nil {
		return nil, err
	}

	detail, err := e.parser.Detail(html)
	if err != nil {
		return nil, err
	}

	if detail.Name == "" || detail.Ticker == "" || detail.ImageURL == "" {
		e.logger.Warn("item missing identifying fields, discarding",
			"url", url,
			"hasName", detail.Name != "",
			"hasTicker", detail.Ticker != "",
			"hasImage", detail.ImageURL != "",
		)
		return nil, nil
	}

	imagePath, err := e.saveImage(ctx, detail, categoryPath)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", url, err)
	}

	record := &model.ItemRecord{
		URL:              url,
		Name:             detail.Name,
		Ticker:           detail.Ticker,
		ImagePath:        imagePath,
		ReleaseDate:      valueOr(detail.ReleaseDate),
		RetailPrice:      valueOr(detail.RetailPrice),
		StyleCode:        valueOr(detail.StyleCode),
		Colorway:         valueOr(detail.Colorway),
		NumberOfSales:    parser.GaugeValue(detail.NumberOfSales, model.NA),
		PricePremium:     parser.GaugeValue(detail.PricePremium, model.NA),
		AverageSalePrice: parser.GaugeValue(detail.AverageSalePrice, model.NA),
	}

	e.logger.Info("extracted item", "url", url, "name", record.Name, "ticker", record.Ticker)
	return record, nil
}

// saveImage writes the image under the category's subtree of the
// images root and returns the path relative to that root, so stored
// data trees stay relocatable.
func (e *ItemExtractor) saveImage(ctx context.Context, detail *parser.Detail, categoryPath string) (string, error) {
	dir := filepath.Join(e.imagesRoot, filepath.FromSlash(categoryPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	data, err := e.images.Fetch(ctx, detail.ImageURL)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}

	filename := detail.Ticker + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return path.Join(categoryPath, filename), nil
}

func valueOr(raw string) string {
	if raw == "" {
		return model.NA
	}
	return raw
}
