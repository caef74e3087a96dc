package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
	"github.com/sneakerdata/stockx-crawler/internal/parser"
)

const (
	testSettle  = 2 * time.Second
	testBackoff = 30 * time.Minute
)

func newTestNavigator(site *fakeSite) (*Navigator, *browser.Session, *fakeEngine, *recordingSleep) {
	engine := newFakeEngine(site)
	session := browser.NewSession(engine)
	nav := NewNavigator(session, NewChallengeDetector(parser.New()), testSettle, testBackoff)
	sleeper := &recordingSleep{}
	nav.SetSleep(sleeper.sleep)
	return nav, session, engine, sleeper
}

func TestNavigatorOpenLandsOnNormalPage(t *testing.T) {
	site := newFakeSite()
	site.pages["https://stockx.test/air-jordan"] = `<html><body><h1>Air Jordan</h1></body></html>`

	nav, session, _, sleeper := newTestNavigator(site)
	_, err := session.Open() // root tab
	require.NoError(t, err)

	tab, err := nav.Open(context.Background(), "https://stockx.test/air-jordan")
	require.NoError(t, err)
	require.NotNil(t, tab)

	assert.Equal(t, 2, session.Depth())
	assert.Same(t, tab, session.Active())
	// One settle wait, no backoff.
	assert.Equal(t, []time.Duration{testSettle}, sleeper.waits)
}

func TestNavigatorRetriesSameURLUntilUnblocked(t *testing.T) {
	const url = "https://stockx.test/air-jordan"

	site := newFakeSite()
	site.pages[url] = `<html><body><h1>Air Jordan</h1></body></html>`
	site.blockRemaining[url] = 3

	nav, session, engine, sleeper := newTestNavigator(site)
	_, err := session.Open()
	require.NoError(t, err)

	tab, err := nav.Open(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, tab)

	// The blocked target is never dropped: the same URL is requested
	// on every attempt.
	assert.Equal(t, []string{url, url, url, url}, site.visits)

	// Every blocked tab was closed; only root and the landed tab stay.
	assert.Equal(t, 2, session.Depth())
	closed := 0
	for _, tb := range engine.tabs {
		if tb.closed {
			closed++
		}
	}
	assert.Equal(t, 3, closed)

	// Settle after each navigation, backoff after each block.
	assert.Equal(t, []time.Duration{
		testSettle, testBackoff,
		testSettle, testBackoff,
		testSettle, testBackoff,
		testSettle,
	}, sleeper.waits)
}

func TestNavigatorOpenStopsOnCancelledContext(t *testing.T) {
	const url = "https://stockx.test/air-jordan"

	site := newFakeSite()
	// Permanently blocked.
	site.blockRemaining[url] = 1 << 30

	nav, session, _, _ := newTestNavigator(site)
	_, err := session.Open()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = nav.Open(ctx, url)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigatorGotoRetriesInPlace(t *testing.T) {
	const url = "https://stockx.test/"

	site := newFakeSite()
	site.pages[url] = `<html><body><p>home</p></body></html>`
	site.blockRemaining[url] = 2

	nav, session, engine, sleeper := newTestNavigator(site)
	root, err := session.Open()
	require.NoError(t, err)

	require.NoError(t, nav.Goto(context.Background(), root, url))

	// The root tab is re-navigated rather than closed and reopened.
	assert.Equal(t, 1, session.Depth())
	assert.Len(t, engine.tabs, 1)
	assert.False(t, engine.tabs[0].closed)
	assert.Equal(t, []string{url, url, url}, site.visits)
	assert.Equal(t, []time.Duration{
		testSettle, testBackoff,
		testSettle, testBackoff,
		testSettle,
	}, sleeper.waits)
}
