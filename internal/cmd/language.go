package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/i18n"
)

var languageCmd = &cobra.Command{
	Use:   "language [lang]",
	Short: "Get or set the display language",
	Long: `Get or set the display language. Use a BCP 47 tag (e.g., en, de).

Examples:
  folio language      # show current language
  folio language de   # set to German`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			lang := i18n.ResolveLocale(cfg.Language)
			i18n.Init(lang)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("cmd.language.current", "Current language: %s", lang))
			return nil
		}

		tag, err := language.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid language tag %q: %w", args[0], err)
		}
		cfg.Language = tag.String()
		if err := config.Save(cfg); err != nil {
			return err
		}
		i18n.Init(cfg.Language)
		fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("cmd.language.set", "Language set to: %s", cfg.Language))
		return nil
	},
}
