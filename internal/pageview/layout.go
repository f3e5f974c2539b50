package pageview

// Layout tracks measured page heights and derives cumulative offsets from
// them. Pages without a measurement count as the placeholder height.
type Layout struct {
	placeholder int
	heights     map[int]int
}

// NewLayout creates a layout with the given placeholder height.
func NewLayout(placeholder int) *Layout {
	return &Layout{placeholder: placeholder, heights: make(map[int]int)}
}

// Placeholder returns the height assumed for unmeasured pages.
func (l *Layout) Placeholder() int { return l.placeholder }

// Measure records the rendered height of page. Non-positive heights are
// ignored so a failed measurement never shrinks a known page.
func (l *Layout) Measure(page, height int) bool {
	if page < 1 || height <= 0 {
		return false
	}
	if l.heights[page] == height {
		return false
	}
	l.heights[page] = height
	return true
}

// Measured reports whether page has a real measurement.
func (l *Layout) Measured(page int) bool {
	_, ok := l.heights[page]
	return ok
}

// Height returns the measured height of page, or the placeholder.
func (l *Layout) Height(page int) int {
	if h, ok := l.heights[page]; ok {
		return h
	}
	return l.placeholder
}

// Offset returns the sum of the heights of pages 1..page-1.
func (l *Layout) Offset(page int) int {
	off := 0
	for p := 1; p < page; p++ {
		off += l.Height(p)
	}
	return off
}

// Extent returns the full scrollable height of a document of total pages.
func (l *Layout) Extent(total int) int {
	return l.Offset(total + 1)
}

// Span returns the combined height of the pages in r.
func (l *Layout) Span(r Range) int {
	h := 0
	for _, p := range r.Pages() {
		h += l.Height(p)
	}
	return h
}

// Reset drops every measurement.
func (l *Layout) Reset() {
	clear(l.heights)
}
