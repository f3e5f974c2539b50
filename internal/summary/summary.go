// Package summary holds the page-range summaries shown next to a document.
package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Highlight points at a passage a summary draws on.
type Highlight struct {
	Page      int    `toml:"page" json:"page"`
	Snippet   string `toml:"snippet" json:"snippet,omitempty"`
	CharStart int    `toml:"char_start" json:"char_start,omitempty"`
	CharEnd   int    `toml:"char_end" json:"char_end,omitempty"`
}

// Summary covers the inclusive page range [PageStart, PageEnd].
type Summary struct {
	ID         int         `toml:"id" json:"id"`
	PageStart  int         `toml:"page_start" json:"page_start"`
	PageEnd    int         `toml:"page_end" json:"page_end"`
	Text       string      `toml:"text" json:"text"`
	Highlights []Highlight `toml:"highlight" json:"highlights,omitempty"`
}

// Covers reports whether page falls inside the summary's range.
func (s Summary) Covers(page int) bool {
	return page >= s.PageStart && page <= s.PageEnd
}

// Label is the compact page badge, "p3" or "p3..p7".
func (s Summary) Label() string {
	if s.PageStart == s.PageEnd {
		return fmt.Sprintf("p%d", s.PageStart)
	}
	return fmt.Sprintf("p%d..p%d", s.PageStart, s.PageEnd)
}

// Span is an inclusive page range.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Status describes how much of a document the summaries cover.
type Status struct {
	TotalSummaries  int     `json:"total_summaries"`
	Covered         []Span  `json:"covered"`
	Uncovered       []Span  `json:"uncovered"`
	TotalPages      int     `json:"total_pages"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// Set is an immutable collection of summaries ordered by first page.
type Set struct {
	items []Summary
}

// NewSet validates and orders items. Missing ids are assigned from the
// position in the input.
func NewSet(items []Summary) (*Set, error) {
	out := make([]Summary, len(items))
	for i, s := range items {
		if s.PageStart < 1 || s.PageEnd < s.PageStart {
			return nil, fmt.Errorf("summary %d: invalid page range %d..%d", i+1, s.PageStart, s.PageEnd)
		}
		if s.ID == 0 {
			s.ID = i + 1
		}
		s.Text = strings.TrimSpace(s.Text)
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PageStart != out[j].PageStart {
			return out[i].PageStart < out[j].PageStart
		}
		return out[i].PageEnd < out[j].PageEnd
	})
	return &Set{items: out}, nil
}

// Len returns the number of summaries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// All returns the summaries in order.
func (s *Set) All() []Summary {
	if s == nil {
		return nil
	}
	return s.items
}

// At returns the i-th summary.
func (s *Set) At(i int) Summary { return s.items[i] }

// ForPage returns every summary covering page.
func (s *Set) ForPage(page int) []Summary {
	var out []Summary
	for _, it := range s.All() {
		if it.Covers(page) {
			out = append(out, it)
		}
	}
	return out
}

// IndexForPage returns the index of the narrowest summary covering page, or
// -1 when none does.
func (s *Set) IndexForPage(page int) int {
	best := -1
	for i, it := range s.All() {
		if !it.Covers(page) {
			continue
		}
		if best < 0 || it.PageEnd-it.PageStart < s.items[best].PageEnd-s.items[best].PageStart {
			best = i
		}
	}
	return best
}

// ForRange returns the summary for exactly [start, end].
func (s *Set) ForRange(start, end int) (Summary, bool) {
	for _, it := range s.All() {
		if it.PageStart == start && it.PageEnd == end {
			return it, true
		}
	}
	return Summary{}, false
}

// Status reports coverage over a document of total pages.
func (s *Set) Status(total int) Status {
	st := Status{TotalSummaries: s.Len(), TotalPages: total}
	if total < 1 {
		return st
	}
	covered := make([]bool, total+1)
	for _, it := range s.All() {
		for p := it.PageStart; p <= min(it.PageEnd, total); p++ {
			covered[p] = true
		}
	}
	n := 0
	for p := 1; p <= total; {
		q := p
		for q+1 <= total && covered[q+1] == covered[p] {
			q++
		}
		if covered[p] {
			st.Covered = append(st.Covered, Span{p, q})
			n += q - p + 1
		} else {
			st.Uncovered = append(st.Uncovered, Span{p, q})
		}
		p = q + 1
	}
	st.CoveragePercent = float64(n) * 100 / float64(total)
	return st
}

type sidecar struct {
	Summary []Summary `toml:"summary"`
}

// Load reads a TOML summaries file. A missing file returns an error
// wrapping os.ErrNotExist.
func Load(path string) (*Set, error) {
	var doc sidecar
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("load summaries %s: %w", path, err)
	}
	return NewSet(doc.Summary)
}

// Empty returns a set with no summaries.
func Empty() *Set { return &Set{} }

// SidecarPath is where summaries for docPath live by default:
// book.pdf -> book.summaries.toml.
func SidecarPath(docPath string) string {
	ext := filepath.Ext(docPath)
	return strings.TrimSuffix(docPath, ext) + ".summaries.toml"
}

// Exists reports whether path names a readable file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
