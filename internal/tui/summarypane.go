package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/scrollsync"
	"github.com/wethinkt/go-folio/internal/summary"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// summaryPane lists the document's summaries next to the document. One
// summary at a time may be selected; it is drawn highlighted.
type summaryPane struct {
	vp     viewport.Model
	set    *summary.Set
	styles *Styles

	selected int
	starts   []int // first line of each summary
	ends     []int // one past the last line of each summary
	dirty    bool
	reveal   bool

	renderer      *glamour.TermRenderer
	rendererWidth int
	cache         map[int]string
}

var _ scrollsync.Pane = (*summaryPane)(nil)

func newSummaryPane(set *summary.Set, styles *Styles) *summaryPane {
	if set == nil {
		set = summary.Empty()
	}
	return &summaryPane{
		vp:       viewport.New(),
		set:      set,
		styles:   styles,
		selected: -1,
		dirty:    true,
		cache:    make(map[int]string),
	}
}

func (s *summaryPane) setSize(w, h int) {
	if w != s.vp.Width() {
		clear(s.cache)
	}
	s.vp.SetWidth(max(w, 1))
	s.vp.SetHeight(max(h, 1))
	s.dirty = true
}

// ScrollTop implements scrollsync.Pane.
func (s *summaryPane) ScrollTop() int { return s.vp.YOffset() }

// Extent implements scrollsync.Pane.
func (s *summaryPane) Extent() int { return max(0, s.vp.TotalLineCount()-s.vp.Height()) }

// SetScrollTop implements scrollsync.Pane.
func (s *summaryPane) SetScrollTop(offset int) {
	s.vp.SetYOffset(clampInt(offset, 0, s.Extent()))
}

func (s *summaryPane) scrollBy(n int) {
	s.SetScrollTop(s.vp.YOffset() + n)
}

// selectedSummary returns the highlighted summary.
func (s *summaryPane) selectedSummary() (summary.Summary, bool) {
	if s.selected < 0 || s.selected >= s.set.Len() {
		return summary.Summary{}, false
	}
	return s.set.At(s.selected), true
}

// selectIndex highlights summary i. With reveal, the pane scrolls so the
// summary is visible.
func (s *summaryPane) selectIndex(i int, reveal bool) {
	if i < 0 || i >= s.set.Len() {
		return
	}
	if i != s.selected {
		s.selected = i
		s.dirty = true
	}
	s.reveal = s.reveal || reveal
}

// move shifts the selection by delta, starting at the top when nothing is
// selected.
func (s *summaryPane) move(delta int) {
	if s.set.Len() == 0 {
		return
	}
	if s.selected < 0 {
		s.selectIndex(0, true)
		return
	}
	s.selectIndex(clampInt(s.selected+delta, 0, s.set.Len()-1), true)
}

// clearSelection drops the highlight.
func (s *summaryPane) clearSelection() {
	if s.selected >= 0 {
		s.selected = -1
		s.dirty = true
	}
}

// follow highlights the summary for page unless the current selection
// already covers it.
func (s *summaryPane) follow(page int) {
	if cur, ok := s.selectedSummary(); ok && cur.Covers(page) {
		return
	}
	if i := s.set.IndexForPage(page); i >= 0 {
		s.selectIndex(i, false)
	}
}

// indexAtLine returns the summary drawn on content line n, or -1.
func (s *summaryPane) indexAtLine(n int) int {
	for i := range s.starts {
		if n >= s.starts[i] && n < s.ends[i] {
			return i
		}
	}
	return -1
}

func (s *summaryPane) flush() {
	if s.dirty {
		s.rebuild()
	}
	if s.reveal && s.selected >= 0 && s.selected < len(s.starts) {
		top, h := s.vp.YOffset(), s.vp.Height()
		start, end := s.starts[s.selected], s.ends[s.selected]
		switch {
		case start < top:
			s.SetScrollTop(start)
		case end > top+h:
			s.SetScrollTop(min(start, end-h))
		}
	}
	s.reveal = false
}

func (s *summaryPane) rebuild() {
	s.dirty = false
	w := s.vp.Width()
	s.starts = s.starts[:0]
	s.ends = s.ends[:0]

	if s.set.Len() == 0 {
		s.vp.SetContent(s.styles.Help.Render(ansi.Wrap(i18n.T("tui.summary.none", "No summaries for this document."), w, "")))
		return
	}

	var lines []string
	for i, sum := range s.set.All() {
		s.starts = append(s.starts, len(lines))

		label := sum.Label()
		if i == s.selected {
			lines = append(lines, s.styles.SummarySelected.Render(ansi.Truncate("▸ "+label, w, "…")))
		} else {
			lines = append(lines, s.styles.SummaryLabel.Render(ansi.Truncate("  "+label, w, "…")))
		}
		lines = append(lines, strings.Split(s.body(i, sum, w), "\n")...)
		for _, h := range sum.Highlights {
			quote := fmt.Sprintf("❝ %s ❞ p%d", h.Snippet, h.Page)
			lines = append(lines, s.styles.Help.Render(ansi.Truncate(quote, w, "…")))
		}

		s.ends = append(s.ends, len(lines))
		lines = append(lines, "")
	}
	s.vp.SetContent(strings.Join(lines, "\n"))
}

// body renders a summary's markdown, caching the result for the current
// width.
func (s *summaryPane) body(i int, sum summary.Summary, w int) string {
	if out, ok := s.cache[i]; ok {
		return out
	}
	out := strings.Trim(s.markdown(sum.Text, w), "\n")
	s.cache[i] = out
	return out
}

func (s *summaryPane) markdown(text string, w int) string {
	if s.renderer == nil || s.rendererWidth != w {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(s.styles.Glamour),
			glamour.WithWordWrap(max(w-2, 10)),
		)
		if err != nil {
			tuilog.Log.Warn("summaryPane.markdown: glamour unavailable", "error", err)
			return ansi.Wrap(text, w, "")
		}
		s.renderer = r
		s.rendererWidth = w
	}
	out, err := s.renderer.Render(text)
	if err != nil {
		return ansi.Wrap(text, w, "")
	}
	return out
}

func (s *summaryPane) view() string {
	return s.vp.View()
}
