package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
)

const fakeBaseURL = "https://stockx.test/"

const blockedHTML = `<html><body><h1>  Please  Verify You Are A Human </h1></body></html>`

// fakeSite serves canned HTML per URL and can answer a URL with the
// challenge page a fixed number of times before letting it through.
type fakeSite struct {
	pages          map[string]string
	blockRemaining map[string]int
	clicks         map[string]string

	visits []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:          make(map[string]string),
		blockRemaining: make(map[string]int),
		clicks:         make(map[string]string),
	}
}

type fakeTab struct {
	site            *fakeSite
	url             string
	contentOverride string
	closed          bool
	activations     int
	scripts         []string
}

func (t *fakeTab) Navigate(url string) error {
	t.url = url
	t.contentOverride = ""
	t.site.visits = append(t.site.visits, url)
	return nil
}

func (t *fakeTab) URL() (string, error) {
	return t.url, nil
}

func (t *fakeTab) Content() (string, error) {
	if n := t.site.blockRemaining[t.url]; n > 0 {
		t.site.blockRemaining[t.url] = n - 1
		return blockedHTML, nil
	}
	if t.contentOverride != "" {
		return t.contentOverride, nil
	}
	return t.site.pages[t.url], nil
}

func (t *fakeTab) Click(selector string) (bool, error) {
	html, ok := t.site.clicks[selector]
	if !ok {
		return false, nil
	}
	t.contentOverride = html
	return true, nil
}

func (t *fakeTab) RunScript(src string) error {
	t.scripts = append(t.scripts, src)
	return nil
}

func (t *fakeTab) Activate() error {
	t.activations++
	return nil
}

func (t *fakeTab) Close() error {
	t.closed = true
	return nil
}

type fakeEngine struct {
	site   *fakeSite
	tabs   []*fakeTab
	closed bool
}

func newFakeEngine(site *fakeSite) *fakeEngine {
	return &fakeEngine{site: site}
}

func (e *fakeEngine) NewTab() (browser.Tab, error) {
	tab := &fakeTab{site: e.site}
	e.tabs = append(e.tabs, tab)
	return tab, nil
}

func (e *fakeEngine) Close() error {
	e.closed = true
	return nil
}

// recordingSleep waits for nothing and remembers every requested
// duration, so backoff cycles run instantly in tests.
type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

type fakeFetcher struct {
	data []byte
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

// detailField renders one labeled span on a detail page; empty value
// omits the node entirely.
func detailField(testID, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(`<span data-testid=%q>%s</span>`, testID, value)
}

func gaugeDiv(label, value string) string {
	return fmt.Sprintf(`<div class="gauge-container"><div>icon</div><div>%s</div><div>%s</div></div>`, label, value)
}

type detailSpec struct {
	name        string
	ticker      string
	imageURL    string
	releaseDate string
	retailPrice string
	styleCode   string
	colorway    string
	gauges      map[string]string
}

func detailHTML(spec detailSpec) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if spec.name != "" {
		fmt.Fprintf(&b, `<h1 data-testid="product-name">%s</h1>`, spec.name)
	}
	b.WriteString(detailField("product-ticker", spec.ticker))
	b.WriteString(detailField("product-detail-release date", spec.releaseDate))
	b.WriteString(detailField("product-detail-retail price", spec.retailPrice))
	b.WriteString(detailField("product-detail-style", spec.styleCode))
	b.WriteString(detailField("product-detail-colorway", spec.colorway))
	if spec.imageURL != "" {
		fmt.Fprintf(&b, `<img data-testid="product-detail-image" src=%q>`, spec.imageURL)
	}
	b.WriteString(`<div class="gauges">`)
	for label, value := range spec.gauges {
		b.WriteString(gaugeDiv(label, value))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func listingHTML(itemHrefs []string, prevHref, nextHref string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="browse-grid">`)
	for _, href := range itemHrefs {
		fmt.Fprintf(&b, `<div class="tile browse-tile"><div><a href=%q>tile</a></div></div>`, href)
	}
	b.WriteString(`</div>`)
	if nextHref != "" {
		fmt.Fprintf(&b,
			`<ul class="ButtonList-x1"><a class="NavButton-x1" href=%q>prev</a><a class="NavButton-x1" href=%q>next</a></ul>`,
			prevHref, nextHref)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func menuHTML(brandHrefs, modelHrefs []string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="menu"><div class="categoryColumn">filler</div><div class="categoryColumn">`)
	for _, href := range brandHrefs {
		fmt.Fprintf(&b, `<a href=%q>%s</a>`, href, strings.Trim(href, "/"))
	}
	b.WriteString(`</div><div class="categoryColumn">`)
	for _, href := range modelHrefs {
		fmt.Fprintf(&b, `<a href=%q>%s</a>`, href, strings.Trim(href, "/"))
	}
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}
