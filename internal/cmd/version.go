package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-folio/internal/version"
)

var (
	versionJSON bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo("folio")
		if versionJSON {
			_ = json.NewEncoder(cmd.OutOrStdout()).Encode(info) // Ignore encoding error
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String("folio"))
	},
}
