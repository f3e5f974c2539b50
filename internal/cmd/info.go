package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/positionstore"
	"github.com/wethinkt/go-folio/internal/summary"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show page count, summary coverage and saved position",
	Long: `Show what folio knows about a document: its id, page count, which
pages the summaries cover, and where reading last stopped.

Examples:
  folio info report.pdf
  folio info report.pdf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

// DocumentInfo is the output of folio info.
type DocumentInfo struct {
	Path           string                  `json:"path"`
	ID             string                  `json:"id"`
	Pages          int                     `json:"pages"`
	EstimatedPages int                     `json:"estimated_pages,omitempty"`
	SummariesFile  string                  `json:"summaries_file,omitempty"`
	Summaries      summary.Status          `json:"summaries"`
	Position       *positionstore.Position `json:"position,omitempty"`
	ServingURL     string                  `json:"serving_url,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	src, err := document.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	pages, err := src.NumPages()
	if err != nil {
		return fmt.Errorf("count pages: %w", err)
	}
	estimate, _ := document.EstimatePageCount(path)

	info := DocumentInfo{
		Path:           path,
		ID:             document.ID(path),
		Pages:          pages,
		EstimatedPages: estimate,
	}

	set, err := loadSummaries(path, readSummaries)
	if err != nil {
		return err
	}
	if set.Len() > 0 {
		info.SummariesFile = readSummaries
		if info.SummariesFile == "" {
			info.SummariesFile = summary.SidecarPath(path)
		}
	}
	info.Summaries = set.Status(pages)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	pos, err := store.Load(ctx, info.ID)
	switch {
	case err == nil:
		info.Position = &pos
	case !errors.Is(err, positionstore.ErrNotFound):
		return err
	}

	if inst := config.FindInstanceByDoc(info.ID); inst != nil {
		info.ServingURL = inst.URL()
	}

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.file", "File"), filepath.Base(path))
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.docId", "ID"), info.ID)
	fmt.Fprintf(w, "%s\t%d\n", i18n.T("cmd.info.pages", "Pages"), info.Pages)
	if info.SummariesFile != "" {
		fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.summariesFile", "Summaries"), info.SummariesFile)
		fmt.Fprintf(w, "%s\t%s, %s\n", i18n.T("cmd.info.coverage", "Coverage"),
			i18n.Tn("cmd.info.summaries", "{{.Count}} summary", "{{.Count}} summaries", info.Summaries.TotalSummaries),
			i18n.Tf("cmd.info.coveredPercent", "%.1f%% of pages", info.Summaries.CoveragePercent))
		if len(info.Summaries.Uncovered) > 0 {
			fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.uncovered", "Uncovered"), formatSpans(info.Summaries.Uncovered))
		}
	} else {
		fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.summariesFile", "Summaries"), i18n.T("cmd.info.noSummaries", "none"))
	}
	if info.Position != nil {
		fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.position", "Position"),
			i18n.Tf("cmd.info.positionValue", "page %d, %s", info.Position.Page, i18n.RelativeTime(info.Position.UpdatedAt)))
	}
	if info.ServingURL != "" {
		fmt.Fprintf(w, "%s\t%s\n", i18n.T("cmd.info.serving", "Serving"), info.ServingURL)
	}
	return w.Flush()
}

func formatSpans(spans []summary.Span) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		if s.Start == s.End {
			parts[i] = fmt.Sprintf("%d", s.Start)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", s.Start, s.End)
		}
	}
	return strings.Join(parts, ", ")
}
