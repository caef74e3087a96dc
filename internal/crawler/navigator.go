package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
)

// SleepFunc waits for the given duration or until the context ends.
// Tests inject a recording variant so backoff cycles run instantly.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Navigator turns "go to URL" into "land on usable content". Every
// navigation is followed by a fixed settle delay, and a challenge page
// triggers a much longer backoff before the same URL is retried. There
// is no attempt cap: an unattended crawl should outlast a temporary
// ban rather than abort, so a blocked target is retried until it
// clears or the context is cancelled.
type Navigator struct {
	session  *browser.Session
	detector *ChallengeDetector
	settle   time.Duration
	backoff  time.Duration
	sleep    SleepFunc
	logger   *slog.Logger
}

func NewNavigator(session *browser.Session, detector *ChallengeDetector, settle, backoff time.Duration) *Navigator {
	return &Navigator{
		session:  session,
		detector: detector,
		settle:   settle,
		backoff:  backoff,
		sleep:    sleepContext,
		logger:   slog.Default().With("component", "navigator"),
	}
}

// SetSleep replaces the wait implementation.
func (n *Navigator) SetSleep(sleep SleepFunc) {
	n.sleep = sleep
}

// Open opens a new tab, lands it on url and leaves it active. On a
// challenge page the just-opened tab is closed, the previous tab
// becomes active again for the backoff wait, and a fresh tab retries
// the same URL. The caller owns the returned tab and must close it via
// the session once the content is consumed.
func (n *Navigator) Open(ctx context.Context, url string) (browser.Tab, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n.logger.Info("opening", "url", url, "attempt", attempt)

		tab, err := n.session.Open()
		if err != nil {
			return nil, err
		}

		blocked, err := n.request(ctx, tab, url)
		if err != nil {
			return nil, err
		}
		if !blocked {
			return tab, nil
		}

		if err := n.session.CloseActive(); err != nil {
			return nil, err
		}
		if err := n.waitBlocked(ctx, url, attempt); err != nil {
			return nil, err
		}
	}
}

// Goto lands an already-open tab on url. Used for the root tab, which
// has no previous tab to fall back to; a block there is retried by
// re-navigating in place.
func (n *Navigator) Goto(ctx context.Context, tab browser.Tab, url string) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		n.logger.Info("opening", "url", url, "attempt", attempt)

		blocked, err := n.request(ctx, tab, url)
		if err != nil {
			return err
		}
		if !blocked {
			return nil
		}

		if err := n.waitBlocked(ctx, url, attempt); err != nil {
			return err
		}
	}
}

func (n *Navigator) request(ctx context.Context, tab browser.Tab, url string) (blocked bool, err error) {
	if err := tab.Navigate(url); err != nil {
		// A failed HTTP load still renders some page; an error here
		// means the engine itself is gone.
		return false, err
	}

	// Settle delay: give the page time to render, and bound the request
	// rate. Distinct from the blocked backoff, which answers a
	// rate-limit, not rendering.
	if err := n.sleep(ctx, n.settle); err != nil {
		return false, err
	}

	html, err := tab.Content()
	if err != nil {
		return false, err
	}

	return n.detector.Blocked(html), nil
}

func (n *Navigator) waitBlocked(ctx context.Context, url string, attempt int) error {
	n.logger.Warn("challenge page detected, backing off",
		"url", url,
		"attempt", attempt,
		"backoff", n.backoff,
	)
	return n.sleep(ctx, n.backoff)
}
