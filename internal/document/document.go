// Package document opens paginated documents and renders their pages for
// the terminal.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnsupportedFormat is returned by Open for files it cannot paginate.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is the extracted content of one page.
type Page struct {
	Number int
	Text   string
	// Width and Height are the page's MediaBox in points. Both are zero for
	// sources without a physical page size.
	Width  float64
	Height float64
}

// Source produces pages on demand. Implementations are safe for concurrent
// use.
type Source interface {
	NumPages() (int, error)
	Page(ctx context.Context, number int) (Page, error)
	Close() error
}

// Open picks a Source for path by extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return OpenPDF(path)
	case ".txt", ".text", ".md", ".markdown", "":
		return OpenText(path, DefaultLinesPerPage)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// ID derives a stable document id from the absolute path.
func ID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}

// EstimatePageCount returns a quick page count for path without building a
// full Source. Non-PDF files report 0.
func EstimatePageCount(path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("count pages of %s: %w", path, err)
	}
	return n, nil
}
