package tui

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/scrollsync"
	"github.com/wethinkt/go-folio/internal/summary"
)

// pageHeaderRows is the number of rows above each page's text.
const pageHeaderRows = 1

const frameRate = 60

// docPane shows the document as one tall column of pages. The column is
// never built in full: offsets come from the controller's layout, and View
// draws only the rows inside the pane. Pages without text are blank
// placeholders of their last known height, so offsets stay stable while only
// the window holds text.
type docPane struct {
	ctrl   *pageview.Controller
	queue  *cmdQueue
	styles *Styles

	w, h int
	top  int

	// pages holds the last rendered text of materialized pages. A page that
	// is being re-rendered keeps showing its old text until the new one
	// arrives.
	pages map[int][]string

	// highlight marks a region of a summary's page while the jump to it
	// is under way.
	highlight *summary.Highlight

	want    int
	hasWant bool
	animate bool

	// smooth scrolling
	smooth    bool
	spring    harmonica.Spring
	pos, vel  float64
	target    int
	animating bool
	animSeq   int
}

var (
	_ pageview.Surface = (*docPane)(nil)
	_ scrollsync.Pane  = (*docPane)(nil)
)

func newDocPane(queue *cmdQueue, styles *Styles, smooth bool) *docPane {
	return &docPane{
		queue:  queue,
		styles: styles,
		w:      1,
		h:      1,
		pages:  make(map[int][]string),
		smooth: smooth,
		spring: harmonica.NewSpring(harmonica.FPS(frameRate), 7.0, 1.0),
	}
}

func (d *docPane) setSize(w, h int) {
	d.w = max(w, 1)
	d.h = max(h, 1)
}

func (d *docPane) width() int  { return d.w }
func (d *docPane) height() int { return d.h }

// ScrollToOffset implements pageview.Surface.
func (d *docPane) ScrollToOffset(offset int) { d.moveTo(offset, true) }

// ScrollToTop implements pageview.Surface.
func (d *docPane) ScrollToTop() { d.moveTo(0, true) }

// ScrollToBottom implements pageview.Surface.
func (d *docPane) ScrollToBottom() { d.moveTo(math.MaxInt32, true) }

// ScrollTop implements scrollsync.Pane.
func (d *docPane) ScrollTop() int { return d.top }

// Extent implements scrollsync.Pane.
func (d *docPane) Extent() int { return max(0, d.TotalLines()-d.h) }

// SetScrollTop implements scrollsync.Pane.
func (d *docPane) SetScrollTop(offset int) {
	d.stopAnimation()
	d.top = clampInt(offset, 0, d.Extent())
}

// TotalLines is the full scrollable height.
func (d *docPane) TotalLines() int {
	if d.ctrl == nil {
		return 0
	}
	return d.ctrl.Extent()
}

// scrollBy moves the view by n rows at once.
func (d *docPane) scrollBy(n int) {
	d.SetScrollTop(d.top + n)
}

// moveTo records a programmatic scroll. It is applied by flush, after the
// layout reflects the latest renders.
func (d *docPane) moveTo(offset int, animate bool) {
	d.want = offset
	d.hasWant = true
	d.animate = animate
}

// flush drops text of evicted pages and applies a pending scroll.
func (d *docPane) flush() {
	if d.ctrl == nil {
		return
	}
	for p := range d.pages {
		if !d.ctrl.IsMaterialized(p) {
			delete(d.pages, p)
		}
	}
	d.top = clampInt(d.top, 0, d.Extent())
	if !d.hasWant {
		return
	}
	d.hasWant = false
	target := clampInt(d.want, 0, d.Extent())
	if d.smooth && d.animate && target != d.top && abs(target-d.top) <= 3*d.h {
		d.startAnimation(target)
		return
	}
	d.stopAnimation()
	d.top = target
}

// settle ends a running animation, or a scroll still waiting for flush, at
// its destination. It reports whether the scroll top moved.
func (d *docPane) settle() bool {
	before := d.top
	if d.hasWant {
		d.hasWant = false
		d.stopAnimation()
		d.top = clampInt(d.want, 0, d.Extent())
	}
	if d.animating {
		d.stopAnimation()
		d.top = clampInt(d.target, 0, d.Extent())
	}
	return d.top != before
}

func (d *docPane) startAnimation(target int) {
	d.target = target
	if d.animating {
		return
	}
	d.animating = true
	d.animSeq++
	d.pos = float64(d.top)
	d.vel = 0
	d.queue.push(d.frame())
}

func (d *docPane) stopAnimation() {
	if d.animating {
		d.animating = false
		d.animSeq++
	}
}

func (d *docPane) frame() tea.Cmd {
	seq := d.animSeq
	return tea.Tick(time.Second/frameRate, func(time.Time) tea.Msg {
		return scrollFrameMsg{seq: seq}
	})
}

// step advances the animation by one frame.
func (d *docPane) step(msg scrollFrameMsg) tea.Cmd {
	if !d.animating || msg.seq != d.animSeq {
		return nil
	}
	d.pos, d.vel = d.spring.Update(d.pos, d.vel, float64(d.target))
	if math.Abs(d.pos-float64(d.target)) < 0.5 && math.Abs(d.vel) < 0.5 {
		d.animating = false
		d.top = clampInt(d.target, 0, d.Extent())
		return nil
	}
	d.top = clampInt(int(math.Round(d.pos)), 0, d.Extent())
	return d.frame()
}

func (d *docPane) view() string {
	if d.ctrl == nil {
		return ""
	}
	total := d.ctrl.Document().TotalPages
	layout := d.ctrl.Layout()

	lines := make([]string, 0, d.h)
	off := 0
	for p := 1; p <= total && len(lines) < d.h; p++ {
		rows := max(layout.Height(p), 1)
		if off+rows <= d.top {
			off += rows
			continue
		}
		block := d.pageBlock(p, rows)
		if skip := d.top - off; skip > 0 {
			block = block[skip:]
		}
		lines = append(lines, block[:min(len(block), d.h-len(lines))]...)
		off += rows
	}
	for len(lines) < d.h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// pageBlock returns exactly rows lines for page.
func (d *docPane) pageBlock(page, rows int) []string {
	block := make([]string, 0, rows)

	if body, ok := d.pages[page]; ok {
		label := "── " + strconv.Itoa(page) + " ──"
		block = append(block, d.styles.PageHeader.Render(lipgloss.PlaceHorizontal(d.w, lipgloss.Center, label)))

		var marks map[int]span
		if d.highlight != nil && d.highlight.Page == page {
			marks = highlightSpans(body, *d.highlight)
		}
		for i, line := range body {
			if len(block) == rows {
				break
			}
			if m, ok := marks[i]; ok {
				line = line[:m.start] + d.styles.Highlight.Render(line[m.start:m.end]) + line[m.end:]
			}
			block = append(block, ansi.Truncate(line, d.w, ""))
		}
	} else {
		label := i18n.Tf("tui.reader.pagePlaceholder", "· page %d ·", page)
		if d.ctrl.Window().Contains(page) {
			label = i18n.Tf("tui.reader.pageRendering", "· rendering page %d ·", page)
		}
		block = append(block, d.styles.Placeholder.Render(lipgloss.PlaceHorizontal(d.w, lipgloss.Center, label)))
	}

	if len(block) > rows {
		return block[:rows]
	}
	for len(block) < rows {
		block = append(block, "")
	}
	return block
}

// span is a byte range [start, end) within one line.
type span struct{ start, end int }

// highlightSpans locates hl in a page's wrapped lines. A snippet is matched
// on the first line containing it; otherwise the character range is mapped
// onto the lines, counting each line break as one character.
func highlightSpans(lines []string, hl summary.Highlight) map[int]span {
	if hl.Snippet != "" {
		for i, line := range lines {
			if j := strings.Index(line, hl.Snippet); j >= 0 {
				return map[int]span{i: {j, j + len(hl.Snippet)}}
			}
		}
	}
	if hl.CharEnd <= hl.CharStart {
		return nil
	}

	out := make(map[int]span)
	pos := 0
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		lo, hi := max(hl.CharStart-pos, 0), min(hl.CharEnd-pos, n)
		if lo < hi {
			out[i] = span{runeOffset(line, lo), runeOffset(line, hi)}
		}
		pos += n + 1
		if pos >= hl.CharEnd {
			break
		}
	}
	return out
}

// runeOffset converts a rune index in s to a byte index.
func runeOffset(s string, runes int) int {
	for i := range s {
		if runes == 0 {
			return i
		}
		runes--
	}
	return len(s)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
