package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the StockX page structure. Pagination and grid
// selectors match on class substrings because the site appends styling
// hashes to those class names.
const (
	selectorHeading       = "h1"
	selectorProductName   = "h1[data-testid='product-name']"
	selectorProductTicker = "span[data-testid='product-ticker']"
	selectorReleaseDate   = "span[data-testid='product-detail-release date']"
	selectorRetailPrice   = "span[data-testid='product-detail-retail price']"
	selectorStyleCode     = "span[data-testid='product-detail-style']"
	selectorColorway      = "span[data-testid='product-detail-colorway']"
	selectorProductImage  = "img[data-testid='product-detail-image']"
	selectorGauges        = "div.gauges div.gauge-container"
	selectorItemLinks     = "div.browse-grid div.browse-tile a"
	selectorNavButtons    = "ul[class*='ButtonList'] a[class*='NavButton']"
	selectorBrandColumn   = "div.categoryColumn:nth-child(2) a"
	selectorModelColumn   = "div.categoryColumn:nth-child(3) a"
)

// Gauge labels on the detail page. Price premium is matched as a
// substring because the site suffixes it with the premium percentage.
const (
	gaugeSales        = "# of Sales"
	gaugePricePremium = "Price Premium"
	gaugeAvgSalePrice = "Average Sale Price"
)

// gaugeUnavailable is what the site displays in a gauge with no data.
const gaugeUnavailable = "--"

// Detail carries the raw field values read from one item detail page.
// A field the page does not carry is the empty string; mapping empties
// to the "N/A" placeholder is the extractor's concern, not the parser's.
type Detail struct {
	Name             string
	Ticker           string
	ImageURL         string
	ReleaseDate      string
	RetailPrice      string
	StyleCode        string
	Colorway         string
	NumberOfSales    string
	PricePremium     string
	AverageSalePrice string
}

// Link is an anchor read from a navigation menu column.
type Link struct {
	Text string
	Href string
}

type StockXParser struct{}

func New() *StockXParser {
	return &StockXParser{}
}

// Heading returns the text of the page's first-level heading, or ""
// when the page has none.
func (p *StockXParser) Heading(html string) string {
	doc, err := document(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find(selectorHeading).First().Text())
}

// Detail reads every item field from a detail page. Each field is
// looked up independently so one missing node never hides the others.
func (p *StockXParser) Detail(html string) (*Detail, error) {
	doc, err := document(html)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Name:        text(doc, selectorProductName),
		Ticker:      text(doc, selectorProductTicker),
		ReleaseDate: text(doc, selectorReleaseDate),
		RetailPrice: text(doc, selectorRetailPrice),
		StyleCode:   text(doc, selectorStyleCode),
		Colorway:    text(doc, selectorColorway),
	}

	if src, ok := doc.Find(selectorProductImage).First().Attr("src"); ok {
		d.ImageURL = strings.TrimSpace(src)
	}

	doc.Find(selectorGauges).Each(func(_ int, gauge *goquery.Selection) {
		label := strings.TrimSpace(gauge.Find("div:nth-child(2)").First().Text())
		value := strings.TrimSpace(gauge.Find("div:nth-child(3)").First().Text())

		switch {
		case label == gaugeSales:
			d.NumberOfSales = value
		case strings.Contains(label, gaugePricePremium):
			d.PricePremium = value
		case label == gaugeAvgSalePrice:
			d.AverageSalePrice = value
		}
	})

	return d, nil
}

// ItemLinks returns the hrefs of every item tile on a listing page, in
// document order. The listing's own ranking defines the output order of
// the page batch, so no sorting happens here.
func (p *StockXParser) ItemLinks(html string) ([]string, error) {
	doc, err := document(html)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(selectorItemLinks).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return links, nil
}

// NextPageURL returns the target of the pagination control's forward
// button (the second of the two nav buttons), or "" when the control is
// missing. The site points the forward button at its own root on the
// last page; classifying that sentinel is the walker's job.
func (p *StockXParser) NextPageURL(html string) (string, error) {
	doc, err := document(html)
	if err != nil {
		return "", err
	}

	arrows := doc.Find(selectorNavButtons)
	if arrows.Length() < 2 {
		return "", nil
	}

	href, _ := arrows.Eq(1).Attr("href")
	return href, nil
}

// BrandLinks returns the brand anchors from the browse menu's brand
// column. The column's trailing anchor is a glitchy duplicate on the
// live site and is dropped.
func (p *StockXParser) BrandLinks(html string) ([]Link, error) {
	links, err := p.columnLinks(html, selectorBrandColumn)
	if err != nil {
		return nil, err
	}
	if len(links) > 0 {
		links = links[:len(links)-1]
	}
	return links, nil
}

// ModelLinks returns the model-category anchors for the currently
// expanded brand. The column only exists in the DOM after the brand
// entry has been clicked.
func (p *StockXParser) ModelLinks(html string) ([]Link, error) {
	return p.columnLinks(html, selectorModelColumn)
}

// GaugeValue maps the site's "no data" sentinel and missing values to
// the given fallback; anything else passes through verbatim.
func GaugeValue(raw, fallback string) string {
	if raw == "" || raw == gaugeUnavailable {
		return fallback
	}
	return raw
}

func (p *StockXParser) columnLinks(html, selector string) ([]Link, error) {
	doc, err := document(html)
	if err != nil {
		return nil, err
	}

	var links []Link
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, Link{
			Text: strings.TrimSpace(a.Text()),
			Href: href,
		})
	})
	return links, nil
}

func document(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
