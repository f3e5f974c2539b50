package document

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/font/loader"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/reader"

	"github.com/wethinkt/go-folio/internal/tuilog"
)

// PDFSource extracts page text and geometry from a PDF file.
type PDFSource struct {
	mu    sync.Mutex
	r     *pdf.Reader
	fonts *loader.FontLoader
	pages int
}

// OpenPDF opens the PDF at path.
func OpenPDF(path string) (*PDFSource, error) {
	defer tuilog.Log.Timed("OpenPDF")()

	r, err := pdf.Open(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	n, err := pagetree.NumPages(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("read page tree of %s: %w", path, err)
	}
	return &PDFSource{r: r, fonts: loader.NewFontLoader(), pages: n}, nil
}

// NumPages returns the page count from the page tree.
func (s *PDFSource) NumPages() (int, error) { return s.pages, nil }

// Page extracts page number (1-based). The reader is not safe for
// concurrent use, so extraction is serialized.
func (s *PDFSource) Page(ctx context.Context, number int) (Page, error) {
	if number < 1 || number > s.pages {
		return Page{}, fmt.Errorf("page %d of %d: out of range", number, s.pages)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	_, dict, err := pagetree.GetPage(s.r, number-1)
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w", number, err)
	}
	p := Page{Number: number}
	if box, err := pdf.GetRectangle(s.r, dict["MediaBox"]); err == nil && box != nil {
		p.Width = box.URx - box.LLx
		p.Height = box.URy - box.LLy
	}

	var text strings.Builder
	rd := reader.New(s.r, s.fonts)
	rd.Text = func(t string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		text.WriteString(t)
		return nil
	}
	if err := rd.ParsePage(dict, matrix.Identity); err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, fmt.Errorf("page %d: %w", number, err)
	}
	p.Text = text.String()
	return p, nil
}

// Close releases the underlying file.
func (s *PDFSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Close()
}
