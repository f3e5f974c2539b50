package document

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// Result is a finished (or abandoned) page render.
type Result struct {
	Page  int
	Lines []string
	Err   error
}

type job struct {
	cancel context.CancelFunc
}

// Renderer renders pages in the background and publishes results on a
// channel. It satisfies pageview.Renderer.
type Renderer struct {
	src     Source
	results chan Result
	ctx     context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	width    int
	inflight map[int]*job
}

var _ pageview.Renderer = (*Renderer)(nil)

// NewRenderer renders pages of src wrapped to width columns.
func NewRenderer(src Source, width int) *Renderer {
	ctx, stop := context.WithCancel(context.Background())
	return &Renderer{
		src:      src,
		results:  make(chan Result, 64),
		ctx:      ctx,
		stop:     stop,
		width:    max(width, 1),
		inflight: make(map[int]*job),
	}
}

// Results delivers render outcomes.
func (r *Renderer) Results() <-chan Result { return r.results }

// SetWidth changes the wrap width for subsequent requests.
func (r *Renderer) SetWidth(width int) {
	r.mu.Lock()
	r.width = max(width, 1)
	r.mu.Unlock()
}

// SetSource swaps the document being rendered and returns the previous
// one. Renders in flight are abandoned.
func (r *Renderer) SetSource(src Source) Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	for page, j := range r.inflight {
		j.cancel()
		delete(r.inflight, page)
	}
	old := r.src
	r.src = src
	return old
}

// Request starts rendering page, replacing any render of it in flight.
func (r *Renderer) Request(page int) {
	r.mu.Lock()
	if j, ok := r.inflight[page]; ok {
		j.cancel()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	j := &job{cancel: cancel}
	r.inflight[page] = j
	width, src := r.width, r.src
	r.mu.Unlock()

	go r.render(ctx, src, j, page, width)
}

// Cancel abandons an in-flight render of page.
func (r *Renderer) Cancel(page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.inflight[page]; ok {
		j.cancel()
		delete(r.inflight, page)
	}
}

// Close cancels everything in flight. Results are no longer delivered.
func (r *Renderer) Close() {
	r.stop()
}

func (r *Renderer) render(ctx context.Context, src Source, j *job, page, width int) {
	defer j.cancel()

	res := Result{Page: page}
	p, err := src.Page(ctx, page)
	switch {
	case ctx.Err() != nil:
		res.Err = fmt.Errorf("page %d: %w", page, pageview.ErrRenderAborted)
	case err != nil:
		res.Err = err
		tuilog.Log.Warn("Renderer.render: page failed", "page", page, "error", err)
	default:
		res.Lines = Layout(p, width)
	}

	r.mu.Lock()
	if r.inflight[page] == j {
		delete(r.inflight, page)
	}
	r.mu.Unlock()

	select {
	case r.results <- res:
	case <-r.ctx.Done():
	}
}

// Layout wraps a page's text to width columns. Pages with a physical size
// are padded so their height follows the page's aspect ratio, taking a
// terminal cell as twice as tall as it is wide.
func Layout(p Page, width int) []string {
	width = max(width, 1)
	text := strings.TrimRight(strings.ReplaceAll(p.Text, "\t", "    "), "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(ansi.Wrap(text, width, ""), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight(l, " ")
		}
	}
	rows := len(lines)
	if p.Width > 0 && p.Height > 0 {
		rows = max(rows, int(math.Round(float64(width)*p.Height/p.Width/2)))
	}
	rows = max(rows, 1)
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines
}
