package document

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultLinesPerPage is the page length for plain text without form feeds.
const DefaultLinesPerPage = 60

// TextSource paginates a plain text file. Form feeds split pages when
// present; otherwise every linesPerPage lines make a page.
type TextSource struct {
	pages []string
}

// OpenText reads the file at path.
func OpenText(path string, linesPerPage int) (*TextSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open text %s: %w", path, err)
	}
	return NewTextSource(string(raw), linesPerPage), nil
}

// NewTextSource paginates body.
func NewTextSource(body string, linesPerPage int) *TextSource {
	if linesPerPage <= 0 {
		linesPerPage = DefaultLinesPerPage
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var pages []string
	if strings.Contains(body, "\f") {
		for _, p := range strings.Split(body, "\f") {
			pages = append(pages, strings.Trim(p, "\n"))
		}
	} else {
		lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
		for start := 0; start < len(lines); start += linesPerPage {
			end := min(start+linesPerPage, len(lines))
			pages = append(pages, strings.Join(lines[start:end], "\n"))
		}
	}
	if len(pages) == 0 {
		pages = []string{""}
	}
	return &TextSource{pages: pages}
}

func (s *TextSource) NumPages() (int, error) { return len(s.pages), nil }

func (s *TextSource) Page(ctx context.Context, number int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if number < 1 || number > len(s.pages) {
		return Page{}, fmt.Errorf("page %d of %d: out of range", number, len(s.pages))
	}
	return Page{Number: number, Text: s.pages[number-1]}, nil
}

func (s *TextSource) Close() error { return nil }
