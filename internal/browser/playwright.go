package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

// PlaywrightEngine implements Engine over a single Chromium instance
// with one browser context; every Tab is a page in that context.
type PlaywrightEngine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
}

func NewPlaywrightEngine(opts *Options) (*PlaywrightEngine, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--user-agent=" + opts.UserAgent,
		},
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: &opts.UserAgent,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &PlaywrightEngine{
		pw:      pw,
		browser: browser,
		context: context,
		timeout: opts.Timeout,
	}, nil
}

func (e *PlaywrightEngine) NewTab() (Tab, error) {
	page, err := e.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(e.timeout.Milliseconds()))

	return &playwrightTab{page: page, timeout: e.timeout}, nil
}

func (e *PlaywrightEngine) Close() error {
	var errs []error

	if e.context != nil {
		if err := e.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if e.pw != nil {
		if err := e.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

type playwrightTab struct {
	page    playwright.Page
	timeout time.Duration
}

func (t *playwrightTab) Navigate(url string) error {
	_, err := t.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(t.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (t *playwrightTab) URL() (string, error) {
	return t.page.URL(), nil
}

func (t *playwrightTab) Content() (string, error) {
	content, err := t.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return content, nil
}

func (t *playwrightTab) Click(selector string) (bool, error) {
	locator := t.page.Locator(selector).First()

	count, err := locator.Count()
	if err != nil || count == 0 {
		// Absent element is a normal outcome for callers.
		return false, nil
	}

	if err := locator.Click(); err != nil {
		return true, fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return true, nil
}

func (t *playwrightTab) RunScript(src string) error {
	if _, err := t.page.Evaluate(src); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}
	return nil
}

func (t *playwrightTab) Activate() error {
	if err := t.page.BringToFront(); err != nil {
		return fmt.Errorf("failed to bring page to front: %w", err)
	}
	return nil
}

func (t *playwrightTab) Close() error {
	return t.page.Close()
}
