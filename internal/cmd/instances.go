package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/i18n"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List readers serving position events",
	Long: `List running 'folio read --listen' sessions and their event server URLs.

Entries for processes that have exited are removed.`,
	Args: cobra.NoArgs,
	RunE: runInstances,
}

func runInstances(cmd *cobra.Command, args []string) error {
	instances, err := config.ListInstances()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		if instances == nil {
			instances = []config.Instance{}
		}
		return json.NewEncoder(out).Encode(instances)
	}
	if len(instances) == 0 {
		fmt.Fprintln(out, i18n.T("cmd.instances.none", "No readers are listening."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		i18n.T("cmd.instances.pid", "PID"),
		i18n.T("cmd.instances.url", "URL"),
		i18n.T("cmd.instances.started", "STARTED"),
		i18n.T("cmd.positions.document", "DOCUMENT"))
	for _, inst := range instances {
		url := inst.URL()
		if inst.Auth {
			url += " (token)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", inst.PID, url, i18n.RelativeTime(inst.StartedAt), inst.Path)
	}
	return w.Flush()
}
