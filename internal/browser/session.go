package browser

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNoActiveTab is returned when a session operation needs an open
	// tab and none exists.
	ErrNoActiveTab = errors.New("no active tab")

	// ErrRootTab is returned when the caller tries to close the last
	// remaining tab; the root tab lives for the whole run.
	ErrRootTab = errors.New("cannot close the root tab")
)

// Tab is one logical browsing context layered over the engine instance.
// Locating content that does not exist is a normal outcome, not an
// error: Content returns whatever the engine rendered, and Click
// reports found=false for an absent selector.
type Tab interface {
	Navigate(url string) error
	URL() (string, error)
	Content() (string, error)
	Click(selector string) (found bool, err error)
	RunScript(src string) error
	Activate() error
	Close() error
}

// Engine is the underlying automation engine. One engine instance backs
// every tab a Session opens.
type Engine interface {
	NewTab() (Tab, error)
	Close() error
}

// Session owns the engine handle and the set of open tabs. Exactly one
// tab is active at a time: the most recently opened one. Engine calls
// are never issued concurrently on one session.
type Session struct {
	engine Engine
	tabs   []Tab
	logger *slog.Logger
}

func NewSession(engine Engine) *Session {
	return &Session{
		engine: engine,
		logger: slog.Default().With("component", "session"),
	}
}

// Open creates a new tab and makes it the active one.
func (s *Session) Open() (Tab, error) {
	tab, err := s.engine.NewTab()
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	s.tabs = append(s.tabs, tab)
	s.logger.Debug("opened tab", "depth", len(s.tabs))
	return tab, nil
}

// Active returns the tab that receives the next engine call, or nil if
// no tab is open.
func (s *Session) Active() Tab {
	if len(s.tabs) == 0 {
		return nil
	}
	return s.tabs[len(s.tabs)-1]
}

// Depth reports how many tabs are open.
func (s *Session) Depth() int {
	return len(s.tabs)
}

// CloseActive closes the active tab and switches back to the previous
// one. The root tab (the first one opened) is never closed this way.
func (s *Session) CloseActive() error {
	if len(s.tabs) == 0 {
		return ErrNoActiveTab
	}
	if len(s.tabs) == 1 {
		return ErrRootTab
	}

	top := s.tabs[len(s.tabs)-1]
	if err := top.Close(); err != nil {
		return fmt.Errorf("close tab: %w", err)
	}
	s.tabs = s.tabs[:len(s.tabs)-1]

	if err := s.Active().Activate(); err != nil {
		return fmt.Errorf("activate previous tab: %w", err)
	}

	s.logger.Debug("closed tab", "depth", len(s.tabs))
	return nil
}

// Unwind closes tabs until only the root tab remains and reactivates
// it. Used between categories so stale tabs from a failed walk do not
// accumulate.
func (s *Session) Unwind() error {
	for len(s.tabs) > 1 {
		if err := s.CloseActive(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every tab and the engine itself.
func (s *Session) Close() error {
	var errs []error

	for i := len(s.tabs) - 1; i >= 0; i-- {
		if err := s.tabs[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tab %d: %w", i, err))
		}
	}
	s.tabs = nil

	if err := s.engine.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close engine: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}
