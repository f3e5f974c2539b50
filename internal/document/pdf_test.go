package document

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"seehuhn.de/go/pdf"
	pdfdoc "seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font/gofont"
)

// writePDF creates a PDF with one page per word.
func writePDF(t *testing.T, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.pdf")

	doc, err := pdfdoc.CreateMultiPage(path, pdfdoc.A4, pdf.V1_7, nil)
	if err != nil {
		t.Fatal(err)
	}
	font, err := gofont.Regular.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range words {
		page := doc.AddPage()
		page.TextSetFont(font, 24)
		page.TextBegin()
		page.TextFirstLine(72, 700)
		page.TextShow(w)
		page.TextEnd()
		if err := page.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if err := doc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPDFSource(t *testing.T) {
	path := writePDF(t, "alpha", "bravo", "charlie")

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	n, err := src.NumPages()
	if err != nil || n != 3 {
		t.Fatalf("NumPages = %d, %v", n, err)
	}

	p, err := src.Page(context.Background(), 2)
	if err != nil {
		t.Fatalf("Page(2): %v", err)
	}
	if !strings.Contains(p.Text, "bravo") {
		t.Errorf("page 2 text = %q", p.Text)
	}
	if p.Width < 595 || p.Width > 596 || p.Height < 841 || p.Height > 842 {
		t.Errorf("page size = %vx%v, want A4", p.Width, p.Height)
	}

	if _, err := src.Page(context.Background(), 4); err == nil {
		t.Error("expected an error past the last page")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Page(ctx, 1); err == nil {
		t.Error("expected a cancelled extraction to fail")
	}
}

func TestEstimatePageCountPDF(t *testing.T) {
	path := writePDF(t, "one", "two")
	n, err := EstimatePageCount(path)
	if err != nil {
		t.Fatalf("EstimatePageCount: %v", err)
	}
	if n != 2 {
		t.Errorf("EstimatePageCount = %d, want 2", n)
	}
}
