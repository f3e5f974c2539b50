package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/events"
	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/positionstore"
	"github.com/wethinkt/go-folio/internal/summary"
	"github.com/wethinkt/go-folio/internal/timer"
)

// runAllCmdMessages executes cmd and any nested batches, returning every
// message produced.
func runAllCmdMessages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, runAllCmdMessages(sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

type fakeRenderer struct {
	requested []int
	cancelled []int
	width     int
	src       document.Source
}

func (r *fakeRenderer) Request(page int)                 { r.requested = append(r.requested, page) }
func (r *fakeRenderer) Cancel(page int)                  { r.cancelled = append(r.cancelled, page) }
func (r *fakeRenderer) Results() <-chan document.Result { return nil }
func (r *fakeRenderer) SetWidth(width int)               { r.width = width }
func (r *fakeRenderer) Close()                           {}
func (r *fakeRenderer) SetSource(src document.Source) document.Source {
	old := r.src
	r.src = src
	return old
}

func textBook(pages int) *document.TextSource {
	parts := make([]string, pages)
	for i := range parts {
		parts[i] = fmt.Sprintf("text of page %d", i+1)
	}
	return document.NewTextSource(strings.Join(parts, "\f"), 60)
}

type readerHarness struct {
	reader   *Reader
	clock    *timer.Manual
	renderer *fakeRenderer
	store    positionstore.Store
	hub      *events.Hub
}

func newReaderHarness(t *testing.T, pages int, set *summary.Set, store positionstore.Store) *readerHarness {
	t.Helper()
	return newReaderHarnessConfig(t, pages, set, store, nil)
}

// newReaderHarnessConfig lets a test adjust the config before the reader
// is built.
func newReaderHarnessConfig(t *testing.T, pages int, set *summary.Set, store positionstore.Store, tweak func(*config.Config)) *readerHarness {
	t.Helper()
	t.Setenv("FOLIO_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Viewer.PlaceholderRows = 10
	if tweak != nil {
		tweak(&cfg)
	}

	h := &readerHarness{
		clock:    timer.NewManual(),
		renderer: &fakeRenderer{},
		store:    store,
		hub:      events.NewHub(),
	}
	h.reader = NewReader(Options{
		Path:           "book.txt",
		DocID:          "doc-1",
		Source:         textBook(pages),
		EstimatedPages: pages,
		Summaries:      set,
		Store:          store,
		Hub:            h.hub,
		Config:         cfg,
		Renderer:       h.renderer,
		Scheduler:      h.clock,
	})
	return h
}

func (h *readerHarness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.reader.Update(msg)
	return cmd
}

func (h *readerHarness) open() {
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
}

func (h *readerHarness) advance(d time.Duration) tea.Cmd {
	h.clock.Advance(d)
	return h.send(nil)
}

func (h *readerHarness) render(page, lines int) {
	body := make([]string, lines)
	for i := range body {
		body[i] = fmt.Sprintf("p%d line %d", page, i+1)
	}
	h.send(pageRenderedMsg{result: document.Result{Page: page, Lines: body}})
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "pgdown":
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func testSummaries(t *testing.T) *summary.Set {
	t.Helper()
	set, err := summary.NewSet([]summary.Summary{
		{PageStart: 3, PageEnd: 5, Text: "The setup."},
		{PageStart: 8, PageEnd: 10, Text: "The turn."},
	})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestReaderOpensOnFirstResize(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	if got := h.reader.View().Content; !strings.Contains(got, "Loading") {
		t.Fatalf("view before sizing = %q", got)
	}

	h.open()
	doc := h.reader.ctrl.Document()
	if doc.ID != "doc-1" || doc.TotalPages != 12 {
		t.Fatalf("opened document = %+v", doc)
	}
	if got := h.renderer.requested; len(got) != 6 || got[0] != 1 || got[5] != 6 {
		t.Fatalf("initial requests = %v", got)
	}
	if h.renderer.width != h.reader.doc.width() {
		t.Fatalf("renderer width %d, pane width %d", h.renderer.width, h.reader.doc.width())
	}
	if last, ok := h.hub.Last(); !ok || last.DocID != "doc-1" {
		t.Fatalf("no open event published: %+v", last)
	}
	if got := h.reader.View().Content; !strings.Contains(got, "1/12") {
		t.Fatalf("progress label missing from view")
	}
}

func TestRenderedPageReplacesPlaceholder(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()

	if !strings.Contains(h.reader.doc.view(), "rendering page 1") {
		t.Fatalf("page 1 should show a rendering placeholder:\n%s", h.reader.doc.view())
	}
	h.render(1, 3)
	if !h.reader.ctrl.Rendered(1) {
		t.Fatal("page 1 not marked rendered")
	}
	if got := h.reader.ctrl.Layout().Height(1); got != 3+pageHeaderRows {
		t.Fatalf("page 1 height = %d", got)
	}
	if !strings.Contains(h.reader.doc.view(), "p1 line 2") {
		t.Fatalf("page text missing:\n%s", h.reader.doc.view())
	}
	if got := h.reader.doc.TotalLines(); got != 4+11*10 {
		t.Fatalf("total lines = %d", got)
	}
}

func TestNextPageKeyNavigates(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()

	h.send(keyPress("n"))
	st := h.reader.State()
	if !st.Navigating || st.TargetPage != 2 || st.DisplayPage != 2 {
		t.Fatalf("state after n = %+v", st)
	}
	if top := h.reader.doc.ScrollTop(); top != 10 {
		t.Fatalf("scroll top = %d, want the offset of page 2", top)
	}

	h.advance(time.Second)
	if st := h.reader.State(); st.Navigating || st.DisplayPage != 2 {
		t.Fatalf("state after commit = %+v", st)
	}
	if last, _ := h.hub.Last(); last.Type != events.TypeNavigationComplete || last.Page != 2 {
		t.Fatalf("last event = %+v", last)
	}

	h.send(keyPress("G"))
	if st := h.reader.State(); st.TargetPage != 12 {
		t.Fatalf("G should target the last page: %+v", st)
	}
	if h.reader.doc.ScrollTop() != h.reader.doc.Extent() {
		t.Fatal("last page should scroll to the bottom")
	}
}

func TestPagePrompt(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()

	h.send(keyPress(":"))
	if !h.reader.prompt.active() {
		t.Fatal("prompt did not open")
	}
	h.reader.prompt.input.SetValue("7")
	h.send(keyPress("enter"))
	if st := h.reader.State(); st.TargetPage != 7 {
		t.Fatalf("state = %+v", st)
	}

	before := h.reader.State()
	h.send(keyPress(":"))
	h.reader.prompt.input.SetValue("99")
	h.send(keyPress("enter"))
	if h.reader.State() != before {
		t.Fatalf("out of range page changed state: %+v", h.reader.State())
	}
	if !h.reader.statusErr || !strings.Contains(h.reader.status, "99") {
		t.Fatalf("status = %q", h.reader.status)
	}

	h.send(keyPress(":"))
	h.reader.prompt.input.SetValue("4")
	h.send(keyPress("esc"))
	if h.reader.prompt.active() || h.reader.State().TargetPage == 4 {
		t.Fatal("esc should close the prompt without navigating")
	}
}

func TestPercentPromptScrollsBothPanes(t *testing.T) {
	h := newReaderHarness(t, 20, testSummaries(t), nil)
	h.open()

	h.send(keyPress("%"))
	h.reader.prompt.input.SetValue("50")
	h.send(keyPress("enter"))

	want := int(math.Round(0.5 * float64(h.reader.doc.Extent())))
	if top := h.reader.doc.ScrollTop(); top != want {
		t.Fatalf("doc scroll top = %d, want %d", top, want)
	}
	if st := h.reader.State(); st.Navigating || st.DisplayPage < 9 || st.DisplayPage > 12 {
		t.Fatalf("a percent jump is an organic scroll, state = %+v", st)
	}
}

func TestSummarySelectionNavigates(t *testing.T) {
	h := newReaderHarness(t, 12, testSummaries(t), nil)
	h.open()

	h.send(keyPress("tab"))
	h.send(keyPress("down"))
	if h.reader.sum.selected != 0 {
		t.Fatalf("selected = %d", h.reader.sum.selected)
	}
	h.send(keyPress("enter"))
	if st := h.reader.State(); st.TargetPage != 3 {
		t.Fatalf("enter should open page 3, state = %+v", st)
	}

	h.advance(time.Second)
	if h.reader.sum.selected != 0 {
		t.Fatalf("selection moved after completing its own navigation: %d", h.reader.sum.selected)
	}

	h.send(keyPress("esc"))
	if _, ok := h.reader.sum.selectedSummary(); ok {
		t.Fatal("esc should clear the selection")
	}
}

func TestNavigationCompleteFollowsSummary(t *testing.T) {
	h := newReaderHarness(t, 12, testSummaries(t), nil)
	h.open()

	h.send(NavigateMsg{Page: 9})
	if h.reader.sum.selected != -1 {
		t.Fatal("selection should wait for the navigation to complete")
	}
	h.advance(time.Second)
	if h.reader.sum.selected != 1 {
		t.Fatalf("selected = %d, want the summary covering page 9", h.reader.sum.selected)
	}
}

func TestPositionIsPersistedAndRestored(t *testing.T) {
	store := positionstore.NewMemoryStore()
	h := newReaderHarness(t, 12, nil, store)
	h.open()

	h.send(NavigateMsg{Page: 5})
	h.advance(time.Second)
	cmd := h.advance(500 * time.Millisecond)
	for _, msg := range runAllCmdMessages(cmd) {
		h.send(msg)
	}

	pos, err := store.Load(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("position not saved: %v", err)
	}
	if pos.Page != 5 || pos.Path != "book.txt" {
		t.Fatalf("saved position = %+v", pos)
	}

	again := newReaderHarness(t, 12, nil, store)
	again.open()
	for _, msg := range runAllCmdMessages(again.reader.Init()) {
		again.send(msg)
	}
	if st := again.reader.State(); st.TargetPage != 5 {
		t.Fatalf("restored state = %+v", st)
	}
}

func TestStartPageOverridesSavedPosition(t *testing.T) {
	store := positionstore.NewMemoryStore()
	if err := store.Save(context.Background(), positionstore.Position{DocID: "doc-1", Page: 9, UpdatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	h := newReaderHarness(t, 12, nil, store)
	h.reader.pending = &pageview.Position{Page: 4}
	h.open()
	for _, msg := range runAllCmdMessages(h.reader.Init()) {
		h.send(msg)
	}
	if st := h.reader.State(); st.TargetPage != 4 {
		t.Fatalf("state = %+v", st)
	}
}

func TestScrollSyncFollowsDocument(t *testing.T) {
	items := make([]summary.Summary, 30)
	for i := range items {
		items[i] = summary.Summary{PageStart: i + 1, PageEnd: i + 1, Text: fmt.Sprintf("Summary %d.", i+1)}
	}
	set, err := summary.NewSet(items)
	if err != nil {
		t.Fatal(err)
	}
	h := newReaderHarness(t, 30, set, nil)
	h.open()
	if h.reader.sum.Extent() == 0 {
		t.Fatal("summary pane should be scrollable for this test")
	}

	h.send(keyPress("pgdown"))
	ratio := pageview.ScrollRatio(h.reader.doc.ScrollTop(), h.reader.doc.TotalLines(), h.reader.doc.height())
	want := int(math.Round(ratio * float64(h.reader.sum.Extent())))
	if got := h.reader.sum.ScrollTop(); got != want {
		t.Fatalf("summary top = %d, want %d", got, want)
	}

	h.advance(100 * time.Millisecond)
	h.send(keyPress("s"))
	if h.reader.bridge.Enabled() {
		t.Fatal("s should turn sync off")
	}
	before := h.reader.sum.ScrollTop()
	h.send(keyPress("pgdown"))
	if h.reader.sum.ScrollTop() != before {
		t.Fatal("summary pane moved with sync off")
	}
}

func TestSwapLayout(t *testing.T) {
	h := newReaderHarness(t, 12, testSummaries(t), nil)
	h.open()

	cmd := h.send(keyPress("x"))
	if h.reader.cfg.Layout != config.LayoutSummaryRight {
		t.Fatalf("layout = %q", h.reader.cfg.Layout)
	}
	if !h.reader.inSummary(90) || h.reader.inSummary(10) {
		t.Fatal("summary pane should now be on the right")
	}
	for _, msg := range runAllCmdMessages(cmd) {
		if saved, ok := msg.(configSavedMsg); ok && saved.err != nil {
			t.Fatalf("saving config: %v", saved.err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout != config.LayoutSummaryRight {
		t.Fatalf("layout not persisted: %q", cfg.Layout)
	}
}

func TestReloadAdoptsNewSource(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()
	h.render(1, 3)

	src := textBook(20)
	h.renderer.requested = nil
	h.send(sourceReloadedMsg{src: src, total: 20})

	if h.renderer.src != src {
		t.Fatal("renderer still uses the old source")
	}
	if got := h.reader.ctrl.Document().TotalPages; got != 20 {
		t.Fatalf("total pages = %d", got)
	}
	if len(h.renderer.requested) == 0 {
		t.Fatal("materialized pages should be rendered again")
	}
	if last, _ := h.hub.Last(); last.Type != events.TypeReloaded {
		t.Fatalf("last event = %+v", last)
	}
}

func TestProgressRatio(t *testing.T) {
	tests := []struct {
		page, total int
		want        float64
	}{
		{1, 10, 0},
		{10, 10, 1},
		{4, 7, 0.5},
		{1, 1, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := progressRatio(tt.page, tt.total); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("progressRatio(%d, %d) = %v, want %v", tt.page, tt.total, got, tt.want)
		}
	}
}

func TestCmdQueueSchedulesTicks(t *testing.T) {
	q := &cmdQueue{}
	if q.drain() != nil {
		t.Fatal("empty queue should drain to nil")
	}
	q.After(time.Millisecond, timer.Fire{})
	q.push(nil)
	if len(q.cmds) != 1 {
		t.Fatalf("queued %d commands", len(q.cmds))
	}
	msgs := runAllCmdMessages(q.drain())
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", msgs)
	}
	if _, ok := msgs[0].(timerFiredMsg); !ok {
		t.Fatalf("got %T", msgs[0])
	}
	if q.drain() != nil {
		t.Fatal("drain should empty the queue")
	}
}

// countEvents drains ch and counts events of typ.
func countEvents(ch <-chan events.Event, typ string) int {
	n := 0
	for {
		select {
		case ev := <-ch:
			if ev.Type == typ {
				n++
			}
		default:
			return n
		}
	}
}

func TestSmoothJumpCompletesOnce(t *testing.T) {
	h := newReaderHarnessConfig(t, 12, nil, nil, func(cfg *config.Config) {
		cfg.Viewer.Navigate = "300ms"
	})
	h.reader.doc.smooth = true
	h.open()
	ch, unsub := h.hub.Subscribe()
	defer unsub()

	h.send(NavigateMsg{Page: 8})
	if !h.reader.doc.animating {
		t.Fatal("a jump within three screens should animate")
	}

	// Drive frames well past the navigation timer.
	const frame = time.Second / frameRate
	for range 3 * frameRate {
		h.send(scrollFrameMsg{seq: h.reader.doc.animSeq})
		h.advance(frame)
	}
	h.advance(2 * time.Second)

	if h.reader.doc.animating {
		t.Fatal("animation still running after the jump completed")
	}
	if top := h.reader.doc.ScrollTop(); top != 70 {
		t.Fatalf("scroll top = %d, want the offset of page 8", top)
	}
	if st := h.reader.State(); st.Navigating || st.DisplayPage != 8 {
		t.Fatalf("state = %+v", st)
	}
	if n := countEvents(ch, events.TypeNavigationComplete); n != 1 {
		t.Fatalf("navigation completed %d times, want 1", n)
	}
}

func TestRefreshKeepsRenderedText(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()
	h.render(1, 3)

	h.reader.ctrl.Refresh()
	h.send(nil)
	if h.reader.ctrl.Rendered(1) {
		t.Fatal("refresh should mark page 1 for rendering again")
	}
	if !strings.Contains(h.reader.doc.view(), "p1 line 2") {
		t.Fatalf("text blanked while re-rendering:\n%s", h.reader.doc.view())
	}

	h.send(tea.WindowSizeMsg{Width: 80, Height: 30})
	if !strings.Contains(h.reader.doc.view(), "p1 line 2") {
		t.Fatalf("text blanked after a width change:\n%s", h.reader.doc.view())
	}

	h.send(sourceReloadedMsg{src: textBook(12), total: 12})
	if !strings.Contains(h.reader.doc.view(), "p1 line 2") {
		t.Fatalf("text blanked after a reload:\n%s", h.reader.doc.view())
	}

	h.render(1, 2)
	view := h.reader.doc.view()
	if !strings.Contains(view, "p1 line 2") || strings.Contains(view, "p1 line 3") {
		t.Fatalf("new render did not replace the old text:\n%s", view)
	}
}

func TestEvictedPagesDropText(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()
	h.render(1, 3)

	h.send(NavigateMsg{Page: 12})
	h.advance(time.Second)
	if h.reader.ctrl.IsMaterialized(1) {
		t.Fatal("page 1 should have left the window")
	}
	if _, ok := h.reader.doc.pages[1]; ok {
		t.Fatal("text of an evicted page is still held")
	}
}

func TestDocViewShowsVisibleRows(t *testing.T) {
	h := newReaderHarness(t, 12, nil, nil)
	h.open()
	h.render(1, 3)

	h.reader.doc.SetScrollTop(2)
	view := h.reader.doc.view()
	lines := strings.Split(view, "\n")
	if len(lines) != h.reader.doc.height() {
		t.Fatalf("view has %d rows, pane has %d", len(lines), h.reader.doc.height())
	}
	if !strings.Contains(lines[0], "p1 line 2") || !strings.Contains(lines[1], "p1 line 3") {
		t.Fatalf("view should start inside page 1:\n%s", view)
	}
	if !strings.Contains(lines[2], "page 2") {
		t.Fatalf("page 2 should follow page 1:\n%s", view)
	}
}

func TestSummaryHighlight(t *testing.T) {
	set, err := summary.NewSet([]summary.Summary{{
		PageStart:  3,
		PageEnd:    5,
		Text:       "The setup.",
		Highlights: []summary.Highlight{{Page: 3, Snippet: "line 2"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	h := newReaderHarness(t, 12, set, nil)
	h.open()
	h.send(keyPress("tab"))
	h.send(keyPress("down"))

	h.send(keyPress("enter"))
	if hl := h.reader.doc.highlight; hl == nil || hl.Page != 3 {
		t.Fatalf("highlight = %+v", hl)
	}
	h.render(3, 3)
	if want := h.reader.styles.Highlight.Render("line 2"); !strings.Contains(h.reader.doc.view(), want) {
		t.Fatalf("snippet not highlighted:\n%q", h.reader.doc.view())
	}

	h.advance(time.Second)
	if h.reader.doc.highlight != nil {
		t.Fatal("highlight should clear when the jump lands")
	}

	h.send(NavigateMsg{Page: 9})
	h.advance(time.Second)
	h.send(keyPress("enter"))
	if h.reader.doc.highlight == nil {
		t.Fatal("jumping back should highlight again")
	}
	h.send(keyPress("esc"))
	if h.reader.doc.highlight != nil {
		t.Fatal("esc should clear the highlight")
	}
}
