package pageview

import (
	"github.com/wethinkt/go-folio/internal/timer"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// Controller is the navigation state machine. It owns PositionState and the
// page window, and is the only writer of either.
//
// The controller is either idle or navigating toward a target page. While
// idle, scroll signals move DisplayPage immediately and arm the reload and
// settle timers. An explicit navigation jumps DisplayPage to the target,
// replaces the window, and ignores scroll signals (other than the ratio)
// until the navigation timer commits the move.
type Controller struct {
	cfg      Config
	surface  Surface
	renderer Renderer
	listener Listener

	doc      Document
	open     bool
	state    PositionState
	window   *WindowManager
	layout   *Layout
	rendered map[int]bool

	lastNotified  int
	lastScrollTop int

	reload   *timer.Timer
	settle   *timer.Timer
	navigate *timer.Timer
	persist  *timer.Timer
}

var _ Navigator = (*Controller)(nil)

// NewController wires a controller to its collaborators. Timers are
// delivered through sched.
func NewController(cfg Config, sched timer.Scheduler, surface Surface, renderer Renderer, listener Listener) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		cfg:      cfg,
		surface:  surface,
		renderer: renderer,
		listener: listener,
		window:   NewWindowManager(cfg.Buffer, cfg.Hysteresis),
		layout:   NewLayout(cfg.Placeholder),
		rendered: make(map[int]bool),
	}
	c.reload = timer.New("reload", sched, c.onReload)
	c.settle = timer.New("settle", sched, c.onSettle)
	c.navigate = timer.New("navigate", sched, c.onNavigateDone)
	c.persist = timer.New("persist", sched, c.onPersist)
	return c
}

// Open resets all state for doc and materializes the window around page 1.
func (c *Controller) Open(doc Document) {
	c.Close()
	c.doc = doc
	c.open = true
	if doc.TotalPages > 0 {
		c.state.DisplayPage = 1
	}
	c.applyWindow(ComputeWindow(1, doc.TotalPages, c.cfg.Buffer), "open")
	tuilog.Log.Info("Controller.Open", "doc", doc.ID, "pages", doc.TotalPages)
}

// Close stops every timer and cancels outstanding renders.
func (c *Controller) Close() {
	c.reload.Stop()
	c.settle.Stop()
	c.navigate.Stop()
	c.persist.Stop()
	if c.open {
		for _, p := range c.window.Pages() {
			if !c.rendered[p] {
				c.renderer.Cancel(p)
			}
		}
	}
	c.open = false
	c.doc = Document{}
	c.state = PositionState{}
	c.window.Reset()
	c.layout.Reset()
	clear(c.rendered)
	c.lastNotified = 0
	c.lastScrollTop = 0
	materializedPages.Set(0)
}

// Document returns the open document.
func (c *Controller) Document() Document { return c.doc }

// State returns a copy of the current position state.
func (c *Controller) State() PositionState { return c.state }

// Window returns the range the window is converging to.
func (c *Controller) Window() Range { return c.window.Current() }

// Materialized lists every page that should currently be in the render tree.
func (c *Controller) Materialized() []int { return c.window.Pages() }

// IsMaterialized reports whether page is in the render tree.
func (c *Controller) IsMaterialized(page int) bool { return c.window.Materialized(page) }

// Rendered reports whether page has finished rendering since it was last
// materialized.
func (c *Controller) Rendered(page int) bool { return c.rendered[page] }

// Layout exposes the height bookkeeping used to size spacers.
func (c *Controller) Layout() *Layout { return c.layout }

// Extent is the total scrollable height of the document.
func (c *Controller) Extent() int { return c.layout.Extent(c.doc.TotalPages) }

// HandleScroll feeds a raw scroll signal into the state machine.
func (c *Controller) HandleScroll(scrollTop, scrollHeight, viewportHeight int) {
	if !c.open {
		return
	}
	c.lastScrollTop = scrollTop
	c.state.ScrollRatio = ScrollRatio(scrollTop, scrollHeight, viewportHeight)
	if c.listener.OnScroll != nil {
		c.listener.OnScroll(scrollTop, scrollHeight)
	}
	if c.state.Navigating || c.doc.TotalPages < 1 {
		return
	}

	c.state.DisplayPage = c.estimate(scrollTop, scrollHeight, viewportHeight)

	c.reload.Reset(c.cfg.Reload)
	c.settle.Reset(c.cfg.Settle)
}

// NavigateToPage jumps to page. Repeating the call for the page already
// being navigated to is a no-op; any other target restarts navigation.
func (c *Controller) NavigateToPage(page int) error {
	if !c.open {
		return ErrNoDocument
	}
	if page < 1 || page > c.doc.TotalPages {
		navigationsTotal.WithLabelValues("out_of_range").Inc()
		tuilog.Log.Debug("Controller.NavigateToPage: out of range", "page", page, "total", c.doc.TotalPages)
		return ErrPageOutOfRange
	}
	if c.state.Navigating && c.state.TargetPage == page {
		navigationsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}
	navigationsTotal.WithLabelValues("started").Inc()

	c.reload.Stop()
	c.settle.Stop()
	c.persist.Stop()

	c.state.Navigating = true
	c.state.TargetPage = page
	c.state.DisplayPage = page
	c.state.ScrollRatio = RatioForPage(page, c.doc.TotalPages)

	c.applyWindow(ComputeWindow(page, c.doc.TotalPages, c.cfg.Buffer), "navigate")
	c.notifyPageChange(page)
	c.scrollToPage(page)
	c.navigate.Reset(c.cfg.Navigate)

	tuilog.Log.Debug("Controller.NavigateToPage", "page", page, "window", c.window.Current().String())
	return nil
}

// Restore moves to a persisted position. A page beyond the current count is
// clamped, since the count may have changed since it was saved.
func (c *Controller) Restore(pos Position) error {
	if !c.open || c.doc.TotalPages < 1 || pos.Page < 1 {
		return nil
	}
	return c.NavigateToPage(clamp(pos.Page, 1, c.doc.TotalPages))
}

// SetTotalPages replaces the page count with the renderer's authoritative
// figure.
func (c *Controller) SetTotalPages(total int) {
	if !c.open || total < 1 || total == c.doc.TotalPages {
		return
	}
	tuilog.Log.Info("Controller.SetTotalPages", "from", c.doc.TotalPages, "to", total)
	c.doc.TotalPages = total
	for _, p := range c.window.Truncate(total) {
		c.evict(p)
	}

	if c.state.Navigating && c.state.TargetPage > total {
		c.state.Navigating = false
		c.navigate.Stop()
		_ = c.NavigateToPage(total)
		return
	}
	c.state.DisplayPage = clamp(max(c.state.DisplayPage, 1), 1, total)
	c.applyWindow(ComputeWindow(c.state.DisplayPage, total, c.cfg.Buffer), "page_count")
	c.converge()
}

// Refresh re-requests every materialized page, for instance after the
// document changed on disk or the render width changed. Measurements are
// kept until the new renders replace them.
func (c *Controller) Refresh() {
	if !c.open {
		return
	}
	for _, p := range c.window.Pages() {
		c.rendered[p] = false
		c.renderer.Request(p)
	}
	windowReloadsTotal.WithLabelValues("refresh").Inc()
}

// PageRendered records the outcome of a render request. Aborted renders are
// expected and ignored; other failures leave the page at its placeholder
// height.
func (c *Controller) PageRendered(page, height int, err error) {
	if !c.open {
		return
	}
	switch {
	case IsAbort(err):
		pageRendersTotal.WithLabelValues("aborted").Inc()
		return
	case err != nil:
		pageRendersTotal.WithLabelValues("failed").Inc()
		tuilog.Log.Warn("Controller.PageRendered: render failed", "page", page, "error", err)
	default:
		pageRendersTotal.WithLabelValues("ok").Inc()
		c.layout.Measure(page, height)
	}
	if !c.window.Materialized(page) {
		return
	}
	c.rendered[page] = true

	// Heights above the target move it; keep the jump on target.
	if c.state.Navigating && page < c.state.TargetPage {
		c.scrollToPage(c.state.TargetPage)
	}
	if c.allRendered() {
		c.converge()
	}
}

func (c *Controller) onReload() {
	if c.state.Navigating {
		return
	}
	page := c.state.DisplayPage
	next, ok := c.window.Propose(page, c.doc.TotalPages)
	if ok {
		c.applyWindow(next, "scroll")
	} else {
		windowSuppressedTotal.Inc()
	}
	c.notifyPageChange(page)
	c.persist.Reset(c.cfg.Persist)
}

func (c *Controller) onSettle() {
	if c.state.Navigating {
		return
	}
	c.converge()
	if c.listener.OnNavigationComplete != nil {
		c.listener.OnNavigationComplete(c.state.DisplayPage)
	}
}

func (c *Controller) onNavigateDone() {
	target := c.state.TargetPage
	c.state.Navigating = false
	c.state.TargetPage = 0
	c.converge()
	navigationsTotal.WithLabelValues("completed").Inc()
	tuilog.Log.Debug("Controller.onNavigateDone", "page", target)
	if c.listener.OnNavigationComplete != nil {
		c.listener.OnNavigationComplete(target)
	}
	c.persist.Reset(c.cfg.Persist)
}

func (c *Controller) onPersist() {
	if c.listener.OnPersist != nil && c.state.DisplayPage > 0 {
		c.listener.OnPersist(Position{Page: c.state.DisplayPage, ScrollOffset: c.lastScrollTop})
	}
}

func (c *Controller) applyWindow(r Range, cause string) {
	if r.Empty() {
		return
	}
	added := c.window.Apply(r)
	windowReloadsTotal.WithLabelValues(cause).Inc()
	materializedPages.Set(float64(len(c.window.Pages())))
	for _, p := range added {
		c.renderer.Request(p)
	}
	if c.listener.OnWindowChange != nil {
		c.listener.OnWindowChange(r)
	}
}

func (c *Controller) converge() {
	for _, p := range c.window.Converge() {
		c.evict(p)
	}
	materializedPages.Set(float64(len(c.window.Pages())))
}

func (c *Controller) evict(page int) {
	if !c.rendered[page] {
		c.renderer.Cancel(page)
	}
	delete(c.rendered, page)
}

func (c *Controller) notifyPageChange(page int) {
	if page == c.lastNotified {
		return
	}
	c.lastNotified = page
	if c.listener.OnPageChange != nil {
		c.listener.OnPageChange(page)
	}
}

func (c *Controller) scrollToPage(page int) {
	switch page {
	case 1:
		c.surface.ScrollToTop()
	case c.doc.TotalPages:
		c.surface.ScrollToBottom()
	default:
		c.surface.ScrollToOffset(c.layout.Offset(page))
	}
}

// estimate prefers the measured center estimate, but only while the
// viewport center lies inside the rendered pages. A long drag away from them
// falls back to the linear prior.
func (c *Controller) estimate(scrollTop, scrollHeight, viewportHeight int) int {
	pages := c.renderedPages()
	if len(pages) > 0 {
		center := scrollTop + viewportHeight/2
		first, last := pages[0], pages[len(pages)-1]
		top := c.layout.Offset(first)
		bottom := c.layout.Offset(last) + c.layout.Height(last)
		if center >= top && center < bottom {
			if page, ok := FindPageAtViewportCenter(pages, c.layout, scrollTop, viewportHeight); ok {
				return page
			}
		}
	}
	return EstimatePage(scrollTop, scrollHeight, viewportHeight, c.doc.TotalPages)
}

func (c *Controller) renderedPages() []int {
	var out []int
	for _, p := range c.window.Pages() {
		if c.rendered[p] {
			out = append(out, p)
		}
	}
	return out
}

func (c *Controller) allRendered() bool {
	for _, p := range c.window.Current().Pages() {
		if !c.rendered[p] {
			return false
		}
	}
	return true
}
