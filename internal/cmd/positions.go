package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/positionstore"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List, show or reset saved reading positions",
	Long: `folio remembers the last page of every document it opens.

Documents are identified by a file path or by the id shown in 'folio info'.

Examples:
  folio positions list
  folio positions show report.pdf
  folio positions reset report.pdf`,
}

var positionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved positions, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runPositionsList,
}

var positionsShowCmd = &cobra.Command{
	Use:   "show <file|id>",
	Short: "Show the saved position of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositionsShow,
}

var positionsResetCmd = &cobra.Command{
	Use:   "reset <file|id>",
	Short: "Forget the saved position so the document opens at page 1",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositionsReset,
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store positionstore.Store) error) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	return fn(ctx, store)
}

// docIDFor resolves a file path to its document id. Anything that is not an
// existing file is taken as an id.
func docIDFor(arg string) string {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		return document.ID(arg)
	}
	return arg
}

func runPositionsList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store positionstore.Store) error {
		list, err := store.List(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			if list == nil {
				list = []positionstore.Position{}
			}
			return json.NewEncoder(out).Encode(list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, i18n.T("cmd.positions.none", "No saved positions."))
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			i18n.T("cmd.positions.page", "PAGE"),
			i18n.T("cmd.positions.updated", "UPDATED"),
			i18n.T("cmd.positions.document", "DOCUMENT"))
		for _, p := range list {
			name := p.Path
			if name == "" {
				name = p.DocID
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.Page, i18n.RelativeTimeShort(p.UpdatedAt), name)
		}
		return w.Flush()
	})
}

func runPositionsShow(cmd *cobra.Command, args []string) error {
	id := docIDFor(args[0])
	return withStore(cmd, func(ctx context.Context, store positionstore.Store) error {
		pos, err := store.Load(ctx, id)
		if errors.Is(err, positionstore.ErrNotFound) {
			return errors.New(i18n.Tf("cmd.positions.notFound", "no saved position for %s", args[0]))
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			return json.NewEncoder(out).Encode(pos)
		}
		fmt.Fprintln(out, i18n.Tf("cmd.positions.show", "page %d (offset %d), saved %s", pos.Page, pos.ScrollOffset, i18n.RelativeTime(pos.UpdatedAt)))
		return nil
	})
}

func runPositionsReset(cmd *cobra.Command, args []string) error {
	id := docIDFor(args[0])
	return withStore(cmd, func(ctx context.Context, store positionstore.Store) error {
		err := store.Delete(ctx, id)
		if errors.Is(err, positionstore.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("cmd.positions.notFound", "no saved position for %s", args[0]))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("cmd.positions.reset", "Reset position for %s", args[0]))
		return nil
	})
}
