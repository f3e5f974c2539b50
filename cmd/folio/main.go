// folio reads long documents next to their page-range summaries.
package main

import (
	"os"

	"github.com/wethinkt/go-folio/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
