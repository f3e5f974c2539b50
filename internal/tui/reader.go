package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/events"
	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/positionstore"
	"github.com/wethinkt/go-folio/internal/scrollsync"
	"github.com/wethinkt/go-folio/internal/summary"
	"github.com/wethinkt/go-folio/internal/timer"
	"github.com/wethinkt/go-folio/internal/tui/theme"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

const (
	headerRows = 1
	footerRows = 2 // progress bar + status line

	storeTimeout = 5 * time.Second
	wheelStep    = 3
)

// PageRenderer renders pages in the background. *document.Renderer
// satisfies it.
type PageRenderer interface {
	pageview.Renderer
	Results() <-chan document.Result
	SetWidth(width int)
	SetSource(src document.Source) document.Source
	Close()
}

// Options configure a Reader.
type Options struct {
	Path  string
	DocID string

	// Source is the opened document. EstimatedPages sizes the viewport
	// until the source reports its real page count.
	Source         document.Source
	EstimatedPages int

	Summaries *summary.Set
	Store     positionstore.Store
	Hub       *events.Hub
	Config    config.Config

	// StartPage overrides the saved position when positive.
	StartPage int

	// Changes delivers file change notifications, usually from a
	// document.Watcher.
	Changes <-chan string

	// Animate enables smooth scrolling for short jumps.
	Animate bool

	// Renderer and Scheduler replace the defaults in tests.
	Renderer  PageRenderer
	Scheduler timer.Scheduler
}

type focusArea int

const (
	focusDocument focusArea = iota
	focusSummary
)

// Reader is the split-pane document reader. It owns the navigation
// controller for its whole lifetime; everything that moves the document
// goes through the controller.
type Reader struct {
	opts   Options
	cfg    config.Config
	keys   readerKeyMap
	styles Styles

	queue    *cmdQueue
	sched    timer.Scheduler
	renderer PageRenderer
	src      document.Source
	ctrl     *pageview.Controller
	bridge   *scrollsync.Bridge

	doc    *docPane
	sum    *summaryPane
	prompt prompt
	focus  focusArea

	width, height int
	ready         bool
	total         int
	pending       *pageview.Position

	lastDocTop int
	lastSumTop int

	status    string
	statusErr bool
}

// NewReader builds a reader for opts. The controller opens the document on
// the first window size message.
func NewReader(opts Options) *Reader {
	m := &Reader{
		opts:   opts,
		cfg:    opts.Config,
		keys:   defaultReaderKeyMap(),
		styles: buildStyles(theme.Current()),
		queue:  &cmdQueue{},
		src:    opts.Source,
		total:  opts.EstimatedPages,
	}
	if m.cfg.Layout == "" {
		m.cfg.Layout = config.LayoutSummaryLeft
	}

	m.sched = opts.Scheduler
	if m.sched == nil {
		m.sched = m.queue
	}
	m.renderer = opts.Renderer
	if m.renderer == nil {
		m.renderer = document.NewRenderer(opts.Source, 80)
	}

	m.doc = newDocPane(m.queue, &m.styles, opts.Animate)
	m.sum = newSummaryPane(opts.Summaries, &m.styles)
	m.ctrl = pageview.NewController(m.cfg.Viewer.Policy(), m.sched, m.doc, m.renderer, pageview.Listener{
		OnPageChange: func(int) {
			if !m.ctrl.State().Navigating {
				m.doc.highlight = nil
			}
			m.publish(events.TypePageChange)
		},
		OnNavigationComplete: func(page int) {
			m.landDocScroll()
			m.doc.highlight = nil
			m.sum.follow(page)
			m.publish(events.TypeNavigationComplete)
		},
		OnWindowChange: func(pageview.Range) {
			m.publish(events.TypeWindowChange)
		},
		OnPersist: func(pos pageview.Position) {
			m.queue.push(m.savePosition(pos))
		},
	})
	m.doc.ctrl = m.ctrl
	m.bridge = m.newBridge(m.cfg.Sync.Options())

	if opts.StartPage > 0 {
		m.pending = &pageview.Position{Page: opts.StartPage}
	}
	return m
}

// newBridge connects the panes in their current left/right order.
func (m *Reader) newBridge(opts scrollsync.Options) *scrollsync.Bridge {
	var left, right scrollsync.Pane = m.sum, m.doc
	if m.cfg.Layout == config.LayoutSummaryRight {
		left, right = m.doc, m.sum
	}
	return scrollsync.NewBridge(left, right, m.sched, opts)
}

func (m *Reader) docSide() scrollsync.Side {
	if m.cfg.Layout == config.LayoutSummaryRight {
		return scrollsync.Left
	}
	return scrollsync.Right
}

// State returns the controller's position state.
func (m *Reader) State() pageview.PositionState { return m.ctrl.State() }

// NavigateToPage implements pageview.Navigator for callers inside the
// update loop. Other goroutines send a NavigateMsg instead.
func (m *Reader) NavigateToPage(page int) error { return m.ctrl.NavigateToPage(page) }

// Close releases the controller, renderer and source.
func (m *Reader) Close() {
	m.publish(events.TypeClosed)
	m.ctrl.Close()
	m.bridge.Close()
	m.renderer.Close()
	if m.src != nil {
		if err := m.src.Close(); err != nil {
			tuilog.Log.Warn("Reader.Close: closing source", "error", err)
		}
	}
}

func (m *Reader) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForResult(), m.countPages(), m.waitForChange()}
	if m.opts.Store != nil && m.pending == nil {
		cmds = append(cmds, m.loadPosition())
	}
	return tea.Batch(cmds...)
}

func (m *Reader) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case timerFiredMsg:
		msg.fire.Run()

	case pageRenderedMsg:
		m.handleRendered(msg.result)
		cmds = append(cmds, m.waitForResult())

	case pageCountMsg:
		if msg.err != nil {
			tuilog.Log.Warn("Reader.Update: page count failed", "error", msg.err)
			m.setError(msg.err)
			break
		}
		m.total = msg.total
		if m.ready {
			m.ctrl.SetTotalPages(msg.total)
		}
		m.applyPending()

	case positionLoadedMsg:
		switch {
		case errors.Is(msg.err, positionstore.ErrNotFound):
			tuilog.Log.Debug("Reader.Update: no saved position", "doc", m.opts.DocID)
		case msg.err != nil:
			tuilog.Log.Warn("Reader.Update: loading position", "error", msg.err)
		case m.pending == nil:
			m.pending = &pageview.Position{Page: msg.pos.Page, ScrollOffset: msg.pos.ScrollOffset}
			m.applyPending()
		}

	case positionSavedMsg:
		if msg.err != nil {
			tuilog.Log.Warn("Reader.Update: saving position", "error", msg.err)
			m.setError(msg.err)
		} else {
			m.publish(events.TypePositionSaved)
		}

	case docChangedMsg:
		tuilog.Log.Info("Reader.Update: document changed", "path", msg.path)
		cmds = append(cmds, m.reloadSource(), m.waitForChange())

	case sourceReloadedMsg:
		m.handleReload(msg)

	case configSavedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		}

	case scrollFrameMsg:
		cmds = append(cmds, m.doc.step(msg))

	case NavigateMsg:
		m.navigate(msg.Page)

	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseWheelMsg:
		mouse := msg.Mouse()
		delta := wheelStep
		if mouse.Button == tea.MouseWheelUp {
			delta = -wheelStep
		}
		if m.inSummary(mouse.X) {
			m.sum.scrollBy(delta)
		} else {
			m.doc.scrollBy(delta)
		}

	case tea.MouseClickMsg:
		m.handleClick(msg.Mouse())
	}

	m.flush()
	cmds = append(cmds, m.queue.drain())
	return m, tea.Batch(cmds...)
}

// flush brings both panes up to date and reports any scroll movement to the
// controller and the sync bridge.
func (m *Reader) flush() {
	if !m.ready {
		return
	}
	m.sum.flush()
	m.doc.flush()

	if top := m.sum.ScrollTop(); top != m.lastSumTop {
		m.lastSumTop = top
		m.bridge.Report(m.docSide().Other(), pageview.ScrollRatio(top, m.sum.vp.TotalLineCount(), m.sum.vp.Height()))
	}
	if top := m.doc.ScrollTop(); top != m.lastDocTop {
		m.lastDocTop = top
		m.ctrl.HandleScroll(top, m.doc.TotalLines(), m.doc.height())
		m.bridge.Report(m.docSide(), pageview.ScrollRatio(top, m.doc.TotalLines(), m.doc.height()))
	}
	m.lastSumTop = m.sum.ScrollTop()
}

// landDocScroll finishes a smooth scroll still running when a navigation
// completes. The jump to the target belongs to the navigation, so it is not
// fed back to the controller as a scroll of its own.
func (m *Reader) landDocScroll() {
	if !m.doc.settle() {
		return
	}
	top := m.doc.ScrollTop()
	m.lastDocTop = top
	m.bridge.Report(m.docSide(), pageview.ScrollRatio(top, m.doc.TotalLines(), m.doc.height()))
}

func (m *Reader) geometry() (sumW, docW, innerH int) {
	sumW = m.width * 2 / 5
	if sumW < 20 {
		sumW = min(20, m.width/2)
	}
	docW = m.width - sumW
	innerH = max(m.height-headerRows-footerRows-2, 1)
	return sumW, docW, innerH
}

func (m *Reader) resize(w, h int) {
	prevWidth := m.doc.width()
	m.width, m.height = w, h
	sumW, docW, innerH := m.geometry()
	m.doc.setSize(docW-2, innerH)
	m.sum.setSize(sumW-2, innerH)
	m.renderer.SetWidth(m.doc.width())

	if !m.ready {
		m.ready = true
		m.ctrl.Open(pageview.Document{ID: m.opts.DocID, TotalPages: m.total})
		m.publish(events.TypeOpened)
		m.applyPending()
		return
	}
	if m.doc.width() != prevWidth {
		m.ctrl.Refresh()
	}
}

// applyPending restores a saved or requested position once the document is
// open and its size is known.
func (m *Reader) applyPending() {
	if m.pending == nil || !m.ready || m.ctrl.Document().TotalPages < 1 {
		return
	}
	pos := *m.pending
	m.pending = nil
	if err := m.ctrl.Restore(pos); err != nil {
		m.setError(err)
		return
	}
	tuilog.Log.Info("Reader.applyPending: restored", "page", pos.Page)
}

func (m *Reader) handleRendered(res document.Result) {
	if !m.ready {
		return
	}
	if pageview.IsAbort(res.Err) {
		m.ctrl.PageRendered(res.Page, 0, res.Err)
		return
	}

	layout := m.ctrl.Layout()
	before := layout.Height(res.Page)
	top := m.doc.ScrollTop()

	height := 0
	if res.Err == nil {
		m.doc.pages[res.Page] = res.Lines
		height = len(res.Lines) + pageHeaderRows
	} else {
		delete(m.doc.pages, res.Page)
	}
	m.ctrl.PageRendered(res.Page, height, res.Err)

	// Keep the text under the viewport still when a page above it changes
	// height.
	if delta := layout.Height(res.Page) - before; delta != 0 && !m.ctrl.State().Navigating {
		if layout.Offset(res.Page)+before <= top {
			m.doc.moveTo(top+delta, false)
		}
	}
}

func (m *Reader) handleReload(msg sourceReloadedMsg) {
	if msg.err != nil {
		tuilog.Log.Warn("Reader.handleReload: reopening document", "error", msg.err)
		m.setError(msg.err)
		return
	}
	if old := m.renderer.SetSource(msg.src); old != nil && old != msg.src {
		if err := old.Close(); err != nil {
			tuilog.Log.Warn("Reader.handleReload: closing previous source", "error", err)
		}
	}
	m.src = msg.src
	m.total = msg.total
	if m.ready {
		m.ctrl.SetTotalPages(msg.total)
		m.ctrl.Refresh()
	}
	m.setStatus(i18n.Tf("tui.reader.reloaded", "Document changed: %d pages", msg.total))
	m.publish(events.TypeReloaded)
}

func (m *Reader) navigate(page int) {
	err := m.ctrl.NavigateToPage(page)
	switch {
	case errors.Is(err, pageview.ErrPageOutOfRange):
		m.setError(errors.New(i18n.Tf("tui.reader.noSuchPage", "No page %d", page)))
	case err != nil:
		m.setError(err)
	default:
		m.status = ""
	}
}

func (m *Reader) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.prompt.active() {
		return m.handlePromptKey(msg)
	}

	st := m.ctrl.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusDocument {
			m.focus = focusSummary
		} else {
			m.focus = focusDocument
		}
		return nil
	case key.Matches(msg, m.keys.ToggleSync):
		on := m.bridge.Toggle()
		m.cfg.Sync.Enabled = on
		if on {
			m.setStatus(i18n.T("tui.reader.syncOn", "Scroll sync on"))
		} else {
			m.setStatus(i18n.T("tui.reader.syncOff", "Scroll sync off"))
		}
		return m.saveConfig()
	case key.Matches(msg, m.keys.SwapLayout):
		m.swapLayout()
		return m.saveConfig()
	case key.Matches(msg, m.keys.GoToPage):
		return m.prompt.open(promptPage)
	case key.Matches(msg, m.keys.GoToPct):
		return m.prompt.open(promptPercent)
	case key.Matches(msg, m.keys.NextPage):
		m.navigate(st.DisplayPage + 1)
		return nil
	case key.Matches(msg, m.keys.PrevPage):
		m.navigate(st.DisplayPage - 1)
		return nil
	case key.Matches(msg, m.keys.FirstPage):
		m.navigate(1)
		return nil
	case key.Matches(msg, m.keys.LastPage):
		m.navigate(m.ctrl.Document().TotalPages)
		return nil
	case key.Matches(msg, m.keys.Clear):
		m.sum.clearSelection()
		m.doc.highlight = nil
		m.status = ""
		return nil
	}

	if m.focus == focusSummary {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.sum.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.sum.move(1)
		case key.Matches(msg, m.keys.PgUp):
			m.sum.scrollBy(-m.sum.vp.Height())
		case key.Matches(msg, m.keys.PgDown):
			m.sum.scrollBy(m.sum.vp.Height())
		case key.Matches(msg, m.keys.Select):
			m.openSelected()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.doc.scrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.doc.scrollBy(1)
	case key.Matches(msg, m.keys.PgUp):
		m.doc.scrollBy(-m.doc.height())
	case key.Matches(msg, m.keys.PgDown):
		m.doc.scrollBy(m.doc.height())
	}
	return nil
}

func (m *Reader) handlePromptKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.prompt.close()
		return nil
	case "enter":
		kind, value := m.prompt.kind, strings.TrimSpace(m.prompt.value())
		m.prompt.close()
		m.submitPrompt(kind, value)
		return nil
	}
	return m.prompt.update(msg)
}

func (m *Reader) submitPrompt(kind promptKind, value string) {
	if value == "" {
		return
	}
	switch kind {
	case promptPage:
		page, err := strconv.Atoi(value)
		if err != nil {
			m.setError(errors.New(i18n.Tf("tui.reader.badNumber", "Not a number: %s", value)))
			return
		}
		m.navigate(page)
	case promptPercent:
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil || math.IsNaN(pct) {
			m.setError(errors.New(i18n.Tf("tui.reader.badNumber", "Not a number: %s", value)))
			return
		}
		m.bridge.ScrollToPercent(math.Max(0, math.Min(100, pct)))
	}
}

// openSelected navigates to the first page of the selected summary and
// marks its first highlight until the jump lands.
func (m *Reader) openSelected() {
	s, ok := m.sum.selectedSummary()
	if !ok {
		return
	}
	m.navigate(s.PageStart)
	if len(s.Highlights) > 0 && m.ctrl.State().Navigating {
		hl := s.Highlights[0]
		m.doc.highlight = &hl
	}
}

func (m *Reader) handleClick(mouse tea.Mouse) {
	if !m.ready {
		return
	}
	_, _, innerH := m.geometry()
	progressRow := headerRows + innerH + 2
	switch {
	case mouse.Y == progressRow:
		m.bridge.ScrollToRatio(float64(mouse.X) / float64(max(m.width-1, 1)))
	case m.inSummary(mouse.X) && mouse.Y > headerRows && mouse.Y < progressRow-1:
		line := mouse.Y - headerRows - 1 + m.sum.ScrollTop()
		if i := m.sum.indexAtLine(line); i >= 0 {
			m.focus = focusSummary
			m.sum.selectIndex(i, false)
			m.openSelected()
		}
	}
}

func (m *Reader) inSummary(x int) bool {
	sumW, docW, _ := m.geometry()
	if m.cfg.Layout == config.LayoutSummaryRight {
		return x >= docW
	}
	return x < sumW
}

// swapLayout moves the summary pane to the other side.
func (m *Reader) swapLayout() {
	if m.cfg.Layout == config.LayoutSummaryRight {
		m.cfg.Layout = config.LayoutSummaryLeft
	} else {
		m.cfg.Layout = config.LayoutSummaryRight
	}
	opts := m.cfg.Sync.Options()
	opts.Enabled = m.bridge.Enabled()
	m.bridge.Close()
	m.bridge = m.newBridge(opts)
	tuilog.Log.Info("Reader.swapLayout", "layout", m.cfg.Layout)
}

func (m *Reader) quit() tea.Cmd {
	st := m.ctrl.State()
	if m.opts.Store == nil || st.DisplayPage < 1 {
		return tea.Quit
	}
	return tea.Sequence(m.savePosition(pageview.Position{Page: st.DisplayPage, ScrollOffset: m.doc.ScrollTop()}), tea.Quit)
}

func (m *Reader) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Reader) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Reader) publish(typ string) {
	if m.opts.Hub == nil {
		return
	}
	st := m.ctrl.State()
	w := m.ctrl.Window()
	m.opts.Hub.Publish(events.Event{
		Type:        typ,
		DocID:       m.opts.DocID,
		Path:        m.opts.Path,
		Page:        st.DisplayPage,
		TotalPages:  m.ctrl.Document().TotalPages,
		ScrollRatio: st.ScrollRatio,
		Navigating:  st.Navigating,
		TargetPage:  st.TargetPage,
		Window:      &w,
	})
}

// Commands

func (m *Reader) waitForResult() tea.Cmd {
	ch := m.renderer.Results()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return pageRenderedMsg{result: res}
	}
}

func (m *Reader) waitForChange() tea.Cmd {
	ch := m.opts.Changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return docChangedMsg{path: path}
	}
}

func (m *Reader) countPages() tea.Cmd {
	src := m.src
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		n, err := src.NumPages()
		return pageCountMsg{total: n, err: err}
	}
}

func (m *Reader) reloadSource() tea.Cmd {
	path := m.opts.Path
	return func() tea.Msg {
		src, err := document.Open(path)
		if err != nil {
			return sourceReloadedMsg{err: err}
		}
		n, err := src.NumPages()
		if err != nil {
			src.Close()
			return sourceReloadedMsg{err: err}
		}
		return sourceReloadedMsg{src: src, total: n}
	}
}

func (m *Reader) loadPosition() tea.Cmd {
	store, id := m.opts.Store, m.opts.DocID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		pos, err := store.Load(ctx, id)
		return positionLoadedMsg{pos: pos, err: err}
	}
}

func (m *Reader) savePosition(p pageview.Position) tea.Cmd {
	store := m.opts.Store
	if store == nil {
		return nil
	}
	pos := positionstore.Position{
		DocID:        m.opts.DocID,
		Path:         m.opts.Path,
		Page:         p.Page,
		ScrollOffset: p.ScrollOffset,
		UpdatedAt:    time.Now().UTC(),
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return positionSavedMsg{pos: pos, err: store.Save(ctx, pos)}
	}
}

func (m *Reader) saveConfig() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		return configSavedMsg{err: config.Save(cfg)}
	}
}

// View

func (m *Reader) View() tea.View {
	if !m.ready {
		v := tea.NewView(i18n.T("common.loading", "Loading..."))
		v.AltScreen = true
		return v
	}

	sumW, docW, innerH := m.geometry()
	docBorder, sumBorder := m.styles.ActiveBorder, m.styles.InactiveBorder
	if m.focus == focusSummary {
		docBorder, sumBorder = sumBorder, docBorder
	}
	docView := docBorder.Width(docW - 2).Height(innerH).Render(m.doc.view())
	sumView := sumBorder.Width(sumW - 2).Height(innerH).Render(m.sum.view())

	var body string
	if m.cfg.Layout == config.LayoutSummaryRight {
		body = lipgloss.JoinHorizontal(lipgloss.Top, docView, sumView)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sumView, docView)
	}

	out := strings.Join([]string{m.renderHeader(), body, m.renderProgress(), m.renderFooter()}, "\n")
	v := tea.NewView(out)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func (m *Reader) renderHeader() string {
	title := m.styles.Title.Render(filepath.Base(m.opts.Path))
	info := ""
	if n := m.sum.set.Len(); n > 0 {
		st := m.sum.set.Status(m.ctrl.Document().TotalPages)
		info = m.styles.Info.Render("  " + i18n.Tf("tui.reader.coverage", "%d summaries, %.0f%% of pages covered", n, st.CoveragePercent))
	}
	return ansi.Truncate(title+info, m.width, "…")
}

// renderProgress draws the bar under the panes: filled by
// (page-1)/(total-1), followed by page/total.
func (m *Reader) renderProgress() string {
	st := m.ctrl.State()
	total := m.ctrl.Document().TotalPages
	label := fmt.Sprintf(" %d/%d", st.DisplayPage, total)
	barW := max(m.width-ansi.StringWidth(label), 0)

	ratio := progressRatio(st.DisplayPage, total)
	filled := int(math.Round(ratio * float64(barW)))
	return m.styles.ProgressFill.Render(strings.Repeat("━", filled)) +
		m.styles.ProgressEmpty.Render(strings.Repeat("─", barW-filled)) +
		m.styles.Info.Render(label)
}

func progressRatio(page, total int) float64 {
	if total <= 1 {
		if page >= 1 {
			return 1
		}
		return 0
	}
	return math.Max(0, math.Min(1, float64(page-1)/float64(total-1)))
}

func (m *Reader) renderFooter() string {
	if m.prompt.active() {
		return m.styles.Prompt.Render(m.prompt.view())
	}

	st := m.ctrl.State()
	parts := []string{i18n.Tf("tui.reader.pageOf", "Page %d of %d", st.DisplayPage, m.ctrl.Document().TotalPages)}
	if st.Navigating {
		parts = append(parts, i18n.Tf("tui.reader.navigating", "jumping to %d", st.TargetPage))
	}
	if m.bridge.Enabled() {
		parts = append(parts, i18n.T("tui.reader.sync", "sync"))
	}
	left := m.styles.StatusBar.Render(strings.Join(parts, " · "))

	var right string
	if m.status != "" {
		if m.statusErr {
			right = m.styles.Error.Render(m.status)
		} else {
			right = m.styles.Info.Render(m.status)
		}
	} else {
		var help []string
		for _, b := range m.keys.shortHelp() {
			h := b.Help()
			help = append(help, h.Key+" "+h.Desc)
		}
		right = m.styles.Help.Render(strings.Join(help, " • "))
	}
	return ansi.Truncate(left+" "+right, m.width, "…")
}
