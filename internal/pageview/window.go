package pageview

import (
	"fmt"
	"sort"
)

// Range is an inclusive page range. The zero value is empty.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the range holds no pages.
func (r Range) Empty() bool { return r.Start < 1 || r.End < r.Start }

// Len returns the number of pages in r.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether page lies inside r.
func (r Range) Contains(page int) bool {
	return !r.Empty() && page >= r.Start && page <= r.End
}

// Pages lists the pages of r in order.
func (r Range) Pages() []int {
	if r.Empty() {
		return nil
	}
	out := make([]int, 0, r.Len())
	for p := r.Start; p <= r.End; p++ {
		out = append(out, p)
	}
	return out
}

func (r Range) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// ComputeWindow returns [target-buffer, target+buffer] clamped to
// [1, total]. Targets outside the document are clamped first.
func ComputeWindow(target, total, buffer int) Range {
	if total < 1 {
		return Range{}
	}
	target = clamp(target, 1, total)
	return Range{
		Start: max(1, target-buffer),
		End:   min(total, target+buffer),
	}
}

// SymmetricDiff counts pages that are in exactly one of a and b.
func SymmetricDiff(a, b Range) int {
	if a.Empty() {
		return b.Len()
	}
	if b.Empty() {
		return a.Len()
	}
	lo := max(a.Start, b.Start)
	hi := min(a.End, b.End)
	overlap := 0
	if hi >= lo {
		overlap = hi - lo + 1
	}
	return a.Len() + b.Len() - 2*overlap
}

// ShouldReload reports whether next differs enough from prev to replace it.
func ShouldReload(prev, next Range, threshold int) bool {
	return SymmetricDiff(prev, next) >= threshold
}

// WindowManager owns the page window. Besides the current range it keeps
// the pages of earlier windows alive until Converge is called, so switching
// to a new window never blanks content that is still on screen.
type WindowManager struct {
	buffer    int
	threshold int
	current   Range
	live      map[int]struct{}
}

// NewWindowManager creates an empty manager.
func NewWindowManager(buffer, threshold int) *WindowManager {
	return &WindowManager{
		buffer:    buffer,
		threshold: threshold,
		live:      make(map[int]struct{}),
	}
}

// Current returns the range the window is converging to.
func (w *WindowManager) Current() Range { return w.current }

// Propose computes the window around target and reports whether it clears
// the hysteresis threshold against the current window. An empty current
// window always accepts.
func (w *WindowManager) Propose(target, total int) (Range, bool) {
	next := ComputeWindow(target, total, w.buffer)
	if w.current.Empty() {
		return next, !next.Empty()
	}
	return next, ShouldReload(w.current, next, w.threshold)
}

// Apply makes r the current window and returns the pages that were not
// materialized before.
func (w *WindowManager) Apply(r Range) []int {
	w.current = r
	var added []int
	for _, p := range r.Pages() {
		if _, ok := w.live[p]; !ok {
			w.live[p] = struct{}{}
			added = append(added, p)
		}
	}
	return added
}

// Converge drops retained pages outside the current window and returns them.
func (w *WindowManager) Converge() []int {
	var evicted []int
	for p := range w.live {
		if !w.current.Contains(p) {
			evicted = append(evicted, p)
			delete(w.live, p)
		}
	}
	sort.Ints(evicted)
	return evicted
}

// Truncate drops every page beyond total, including from the current range,
// and returns the dropped pages.
func (w *WindowManager) Truncate(total int) []int {
	var dropped []int
	for p := range w.live {
		if p > total {
			dropped = append(dropped, p)
			delete(w.live, p)
		}
	}
	if w.current.End > total {
		w.current.End = total
		if w.current.Empty() {
			w.current = Range{}
		}
	}
	sort.Ints(dropped)
	return dropped
}

// Converged reports whether the materialized set equals the current range.
func (w *WindowManager) Converged() bool {
	return len(w.live) == w.current.Len()
}

// Materialized reports whether page is materialized.
func (w *WindowManager) Materialized(page int) bool {
	_, ok := w.live[page]
	return ok
}

// Pages lists every materialized page in order.
func (w *WindowManager) Pages() []int {
	out := make([]int, 0, len(w.live))
	for p := range w.live {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Reset forgets all pages.
func (w *WindowManager) Reset() {
	w.current = Range{}
	clear(w.live)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
