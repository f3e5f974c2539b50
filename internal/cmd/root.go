// Package cmd provides the CLI commands for folio.
package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/positionstore"
	"github.com/wethinkt/go-folio/internal/tui/theme"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// global flags
var (
	profileFile *os.File // held open for profiling
	logPath     string
	verbose     bool
	outputJSON  bool
)

// rootCmd is the root command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "folio [file]",
	Short: "Read long documents next to their summaries",
	Long: `folio is a terminal reader for long documents. The document scrolls on
one side, its page-range summaries on the other, and the two panes stay in
step. Only the pages around the current one are rendered, so very large
PDFs open instantly.

Running with a file argument is the same as 'folio read <file>'.

Commands:
  read       Open a document in the reader
  info       Show page count, summary coverage and saved position
  positions  List, show or reset saved reading positions
  instances  List readers serving position events
  theme      List and set themes
  language   Get or set the display language

Examples:
  folio report.pdf                    # Read a PDF
  folio read notes.txt --page 40      # Start at page 40
  folio read book.pdf --listen        # Also serve position events over HTTP
  folio positions list                # Recently read documents`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Start pprof profiling if FOLIO_PROFILE is set
		if profilePath := os.Getenv("FOLIO_PROFILE"); profilePath != "" {
			f, err := os.Create(profilePath)
			if err != nil {
				return fmt.Errorf("create profile file: %w", err)
			}
			profileFile = f

			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				profileFile = nil
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}
		return setupLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Stop CPU profiling
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
			profileFile = nil
		}
		return tuilog.Log.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runRead(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write log to file (default: $FOLIO_LOG_FILE)")

	// The root command runs read directly, so it takes the same flags.
	addReadFlags(rootCmd)
	addReadFlags(readCmd)

	infoCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	positionsCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
	instancesCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	themeShowCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")

	positionsCmd.AddCommand(positionsListCmd)
	positionsCmd.AddCommand(positionsShowCmd)
	positionsCmd.AddCommand(positionsResetCmd)
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(instancesCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(languageCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging routes tuilog to --log or FOLIO_LOG_FILE. Logging stays off
// otherwise, since the reader owns the terminal.
func setupLogging() error {
	path := logPath
	if path == "" {
		path = os.Getenv("FOLIO_LOG_FILE")
	}
	level := tuilog.LevelInfo
	if l, ok := tuilog.ParseLevel(os.Getenv("FOLIO_LOG_LEVEL")); ok {
		level = l
	}
	if verbose {
		level = tuilog.LevelDebug
	}
	if err := tuilog.Init(path, level); err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	tuilog.Log.SetLevel(level)
	return nil
}

// loadSettings reads the config and applies its language and theme.
func loadSettings() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	i18n.Init(i18n.ResolveLocale(cfg.Language))
	if err := theme.Use(cfg.Theme); err != nil {
		tuilog.Log.Warn("loadSettings: theme unavailable, using default", "theme", cfg.Theme, "error", err)
	}
	return cfg, nil
}

// openStore opens the configured position store.
func openStore(cfg config.Config) (positionstore.Store, error) {
	path, err := cfg.Store.ResolvedPath()
	if err != nil {
		return nil, err
	}
	store, err := positionstore.Open(cfg.Store.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open position store: %w", err)
	}
	tuilog.Log.Debug("openStore", "driver", cfg.Store.Driver, "path", path)
	return store, nil
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
