// Package scrollsync keeps two scrollable panes at the same relative
// position.
package scrollsync

import (
	"math"
	"time"

	"github.com/wethinkt/go-folio/internal/timer"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// Side names one of the two panes.
type Side int

const (
	Left Side = iota
	Right

	// both marks a sync that positioned both panes at once.
	both Side = -1
)

// Other returns the counterpart side.
func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "both"
	}
}

// Pane is a scrollable surface. Extent is the largest valid scroll offset.
type Pane interface {
	ScrollTop() int
	Extent() int
	SetScrollTop(offset int)
}

// Options tune the bridge.
type Options struct {
	// Threshold is the smallest offset change worth applying.
	Threshold int
	// Debounce is how long after a sync reports from the synced pane are
	// treated as echoes.
	Debounce time.Duration
	Enabled  bool
}

// DefaultOptions returns an enabled bridge with a 10 unit threshold and a
// 50ms echo window.
func DefaultOptions() Options {
	return Options{Threshold: 10, Debounce: 50 * time.Millisecond, Enabled: true}
}

// Bridge propagates scroll ratios between two panes without ping-pong.
type Bridge struct {
	panes   [2]Pane
	opts    Options
	enabled bool

	syncing bool
	source  Side
	release *timer.Timer
}

// NewBridge connects left and right. The echo window runs on sched.
func NewBridge(left, right Pane, sched timer.Scheduler, opts Options) *Bridge {
	if opts.Threshold < 0 {
		opts.Threshold = 0
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	b := &Bridge{
		panes:   [2]Pane{left, right},
		opts:    opts,
		enabled: opts.Enabled,
	}
	b.release = timer.New("scrollsync", sched, func() { b.syncing = false })
	return b
}

// Report tells the bridge that side scrolled to ratio. It reports whether the
// counterpart was moved.
func (b *Bridge) Report(side Side, ratio float64) bool {
	if !b.enabled {
		return false
	}
	if b.syncing && side != b.source {
		return false
	}
	other := b.panes[side.Other()]
	target := offsetFor(ratio, other.Extent())
	if abs(target-other.ScrollTop()) < b.opts.Threshold {
		return false
	}
	b.hold(side)
	other.SetScrollTop(target)
	return true
}

// ScrollToRatio positions both panes at ratio.
func (b *Bridge) ScrollToRatio(ratio float64) {
	b.hold(both)
	for _, p := range b.panes {
		p.SetScrollTop(offsetFor(ratio, p.Extent()))
	}
	tuilog.Log.Debug("Bridge.ScrollToRatio", "ratio", ratio)
}

// ScrollToPercent positions both panes at pct percent.
func (b *Bridge) ScrollToPercent(pct float64) {
	b.ScrollToRatio(pct / 100)
}

// Enabled reports whether organic reports are propagated.
func (b *Bridge) Enabled() bool { return b.enabled }

// SetEnabled turns propagation on or off.
func (b *Bridge) SetEnabled(on bool) {
	b.enabled = on
	if !on {
		b.release.Stop()
		b.syncing = false
	}
}

// Toggle flips propagation and returns the new setting.
func (b *Bridge) Toggle() bool {
	b.SetEnabled(!b.enabled)
	return b.enabled
}

// Close drops any pending echo window.
func (b *Bridge) Close() {
	b.release.Stop()
	b.syncing = false
}

func (b *Bridge) hold(source Side) {
	b.syncing = true
	b.source = source
	b.release.Reset(b.opts.Debounce)
}

func offsetFor(ratio float64, extent int) int {
	ratio = math.Max(0, math.Min(1, ratio))
	return int(math.Round(ratio * float64(extent)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
