// Package pageview implements the virtualized document viewport: it decides
// which pages of a large paginated document are materialized, estimates the
// current page from scroll signals, and arbitrates between organic scrolling
// and explicit navigation.
//
// Everything in this package runs on a single event loop. Collaborators that
// do real work (rendering, persistence) report back through Controller
// methods, and timers fire through a timer.Scheduler.
package pageview

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPageOutOfRange is returned when a navigation target lies outside
	// [1, TotalPages]. The controller state is left untouched.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrNoDocument is returned when navigation is requested before a
	// document is open.
	ErrNoDocument = errors.New("no document open")

	// ErrRenderAborted is the cancellation-class error a renderer reports
	// when a page render was abandoned because the page left the window.
	ErrRenderAborted = errors.New("render aborted")
)

// IsAbort reports whether err is an expected render cancellation.
func IsAbort(err error) bool {
	return errors.Is(err, ErrRenderAborted) || errors.Is(err, context.Canceled)
}

// Document identifies the document shown in the viewport.
type Document struct {
	ID         string
	TotalPages int
}

// PositionState is the controller's view of where the reader is.
type PositionState struct {
	DisplayPage int
	ScrollRatio float64
	Navigating  bool
	// TargetPage is the page being navigated to, or 0 when idle.
	TargetPage int
}

// Position is what gets persisted between sessions.
type Position struct {
	Page         int
	ScrollOffset int
}

// Navigator is the only sanctioned way to move the viewport to a page.
type Navigator interface {
	NavigateToPage(page int) error
}

// Surface is the scrollable element that shows the document.
type Surface interface {
	ScrollToOffset(offset int)
	ScrollToTop()
	ScrollToBottom()
}

// Renderer materializes pages. Request and Cancel must not block; results
// come back through Controller.PageRendered.
type Renderer interface {
	Request(page int)
	Cancel(page int)
}

// Listener receives upward notifications. Any field may be nil.
type Listener struct {
	OnPageChange         func(page int)
	OnNavigationComplete func(page int)
	OnScroll             func(scrollTop, scrollHeight int)
	OnWindowChange       func(window Range)
	OnPersist            func(pos Position)
}

// Config holds the viewport's policy constants.
type Config struct {
	// Buffer is the number of pages kept on each side of the current page.
	Buffer int
	// Hysteresis is the minimum symmetric difference before an organic
	// window change is applied.
	Hysteresis int
	// Placeholder is the assumed height of a page that has not rendered.
	Placeholder int

	Reload   time.Duration
	Settle   time.Duration
	Navigate time.Duration
	Persist  time.Duration
}

// DefaultConfig returns the stock policy.
func DefaultConfig() Config {
	return Config{
		Buffer:      5,
		Hysteresis:  2,
		Placeholder: 800,
		Reload:      200 * time.Millisecond,
		Settle:      800 * time.Millisecond,
		Navigate:    1000 * time.Millisecond,
		Persist:     500 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Buffer < 0 {
		c.Buffer = d.Buffer
	}
	if c.Hysteresis <= 0 {
		c.Hysteresis = d.Hysteresis
	}
	if c.Placeholder <= 0 {
		c.Placeholder = d.Placeholder
	}
	if c.Reload <= 0 {
		c.Reload = d.Reload
	}
	if c.Settle <= 0 {
		c.Settle = d.Settle
	}
	if c.Navigate <= 0 {
		c.Navigate = d.Navigate
	}
	if c.Persist <= 0 {
		c.Persist = d.Persist
	}
	return c
}
