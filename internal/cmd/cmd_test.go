package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/positionstore"
)

// setupTestHome points FOLIO_HOME at a temp dir and writes a config that
// uses the JSON position store.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("FOLIO_HOME", home)
	t.Setenv("FOLIO_LANG", "en")

	cfg := config.Default()
	cfg.Store.Driver = positionstore.DriverJSON
	if err := config.Save(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return home
}

func seedPositions(t *testing.T, positions ...positionstore.Position) {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()
	for _, p := range positions {
		if err := store.Save(context.Background(), p); err != nil {
			t.Fatalf("Save(%s): %v", p.DocID, err)
		}
	}
}

// withJSON sets the global outputJSON flag for the duration of the test.
func withJSON(t *testing.T) {
	t.Helper()
	old := outputJSON
	outputJSON = true
	t.Cleanup(func() { outputJSON = old })
}

// run invokes a command's RunE with its output captured.
func run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	c.SetOut(&buf)
	c.SetContext(context.Background())
	t.Cleanup(func() { c.SetOut(nil) })
	err := c.RunE(c, args)
	return buf.String(), err
}

func writeBook(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte(strings.Join(pages, "\f")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPositionsListEmpty(t *testing.T) {
	setupTestHome(t)

	out, err := run(t, positionsListCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No saved positions") {
		t.Errorf("expected empty message, got:\n%s", out)
	}
}

func TestPositionsListTable(t *testing.T) {
	setupTestHome(t)
	seedPositions(t,
		positionstore.Position{DocID: "a", Path: "/books/a.pdf", Page: 12, UpdatedAt: time.Now().Add(-time.Hour)},
		positionstore.Position{DocID: "b", Page: 3, UpdatedAt: time.Now()},
	)

	out, err := run(t, positionsListCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"PAGE", "DOCUMENT", "/books/a.pdf", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	// Documents without a path are listed by id.
	if !strings.Contains(out, "b\n") {
		t.Errorf("expected doc id b in output:\n%s", out)
	}
	// Most recent first.
	if strings.Index(out, "b\n") > strings.Index(out, "/books/a.pdf") {
		t.Errorf("expected b before a:\n%s", out)
	}
}

func TestPositionsListJSON(t *testing.T) {
	setupTestHome(t)
	withJSON(t)

	out, err := run(t, positionsListCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list []positionstore.Position
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty array, got %v", list)
	}
}

func TestPositionsShowByFile(t *testing.T) {
	setupTestHome(t)
	book := writeBook(t, "one", "two")
	seedPositions(t, positionstore.Position{DocID: document.ID(book), Page: 2, ScrollOffset: 7, UpdatedAt: time.Now()})

	out, err := run(t, positionsShowCmd, book)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "page 2") || !strings.Contains(out, "offset 7") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestPositionsShowMissing(t *testing.T) {
	setupTestHome(t)

	if _, err := run(t, positionsShowCmd, "nope"); err == nil {
		t.Fatal("expected error for unknown document")
	}
}

func TestPositionsReset(t *testing.T) {
	setupTestHome(t)
	seedPositions(t, positionstore.Position{DocID: "doc", Page: 5, UpdatedAt: time.Now()})

	out, err := run(t, positionsResetCmd, "doc")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "Reset position for doc") {
		t.Errorf("unexpected output: %s", out)
	}

	// A second reset is not an error.
	out, err = run(t, positionsResetCmd, "doc")
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if !strings.Contains(out, "no saved position") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestInfo(t *testing.T) {
	setupTestHome(t)
	book := writeBook(t, "one", "two", "three")
	sidecar := `
[[summary]]
page_start = 1
page_end = 1
text = "First page."
`
	if err := os.WriteFile(filepath.Join(filepath.Dir(book), "book.summaries.toml"), []byte(sidecar), 0644); err != nil {
		t.Fatal(err)
	}
	seedPositions(t, positionstore.Position{DocID: document.ID(book), Page: 2, UpdatedAt: time.Now()})
	withJSON(t)

	out, err := run(t, infoCmd, book)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var info DocumentInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info.Pages != 3 {
		t.Errorf("Pages = %d, want 3", info.Pages)
	}
	if info.ID != document.ID(book) {
		t.Errorf("ID = %s, want %s", info.ID, document.ID(book))
	}
	if info.Summaries.TotalSummaries != 1 {
		t.Errorf("TotalSummaries = %d, want 1", info.Summaries.TotalSummaries)
	}
	if len(info.Summaries.Uncovered) != 1 || info.Summaries.Uncovered[0].Start != 2 || info.Summaries.Uncovered[0].End != 3 {
		t.Errorf("Uncovered = %v, want [2-3]", info.Summaries.Uncovered)
	}
	if info.Position == nil || info.Position.Page != 2 {
		t.Errorf("Position = %+v, want page 2", info.Position)
	}
}

func TestInfoWithoutSummaries(t *testing.T) {
	setupTestHome(t)
	book := writeBook(t, "one")

	out, err := run(t, infoCmd, book)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "none") {
		t.Errorf("expected no summaries in output:\n%s", out)
	}
}

func TestLoadSummariesExplicitMissing(t *testing.T) {
	if _, err := loadSummaries("book.txt", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing explicit summaries file")
	}
	set, err := loadSummaries(filepath.Join(t.TempDir(), "book.txt"), "")
	if err != nil {
		t.Fatalf("loadSummaries: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len = %d, want 0", set.Len())
	}
}

func TestThemeSet(t *testing.T) {
	setupTestHome(t)

	if _, err := run(t, themeSetCmd, "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}

	if _, err := run(t, themeSetCmd, "no-such-theme"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestThemeList(t *testing.T) {
	setupTestHome(t)

	out, err := run(t, themeListCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "* dark") || !strings.Contains(out, "  light") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"127.0.0.1:8790", "127.0.0.1", 8790, false},
		{"[::1]:9000", "::1", 9000, false},
		{":0", "", 0, false},
		{"localhost", "", 0, true},
		{"host:http", "", 0, true},
		{"host:70000", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port, err := splitHostPort(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got %s:%d, want %s:%d", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestIsLoopback(t *testing.T) {
	tests := map[string]bool{
		"localhost": true,
		"127.0.0.1": true,
		"::1":       true,
		"0.0.0.0":   false,
		"10.0.0.5":  false,
		"":          false,
	}
	for host, want := range tests {
		if got := isLoopback(host); got != want {
			t.Errorf("isLoopback(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestInstancesList(t *testing.T) {
	setupTestHome(t)

	out, err := run(t, instancesCmd)
	if err != nil {
		t.Fatalf("instances: %v", err)
	}
	if !strings.Contains(out, "No readers") {
		t.Errorf("expected empty message, got:\n%s", out)
	}

	if err := config.RegisterInstance(config.Instance{
		PID:       os.Getpid(),
		DocID:     "doc",
		Path:      "/books/doc.pdf",
		Host:      "127.0.0.1",
		Port:      8790,
		Auth:      true,
		StartedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, instancesCmd)
	if err != nil {
		t.Fatalf("instances: %v", err)
	}
	if !strings.Contains(out, "http://127.0.0.1:8790 (token)") || !strings.Contains(out, "/books/doc.pdf") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
