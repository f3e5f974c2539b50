package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-folio/internal/config"
	"github.com/wethinkt/go-folio/internal/i18n"
	"github.com/wethinkt/go-folio/internal/tui/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "List and set themes",
	Long: `List and set the reader's color theme.

Built-in themes are dark and light. A JSON theme placed in
~/.folio/themes/<name>.json is available by name; fields it leaves out
keep the dark defaults.

Examples:
  folio theme list          # List all available themes
  folio theme show light    # Preview a theme
  folio theme set light     # Switch to a theme`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Long:  `List all built-in and user themes. The active theme is marked with *.`,
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Display a theme with styled samples",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemeShow,
}

var themeSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set the active theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeSet,
}

// availableThemes returns embedded and user theme names, sorted and
// deduplicated.
func availableThemes() []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range theme.ListEmbedded() {
		add(name)
	}
	if dir, err := theme.ThemesDir(); err == nil {
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				add(strings.TrimSuffix(e.Name(), ".json"))
			}
		}
	}
	sort.Strings(names)
	return names
}

func runThemeList(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	active := cfg.Theme
	if active == "" {
		active = "dark"
	}

	out := cmd.OutOrStdout()
	for _, name := range availableThemes() {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, name)
	}
	return nil
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	name := cfg.Theme
	if len(args) > 0 {
		name = args[0]
	}
	t, err := theme.LoadByName(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	}

	swatch := func(label string, s theme.Style) string {
		st := lipgloss.NewStyle().Bold(s.Bold).Italic(s.Italic).Underline(s.Underline)
		if s.Fg != "" {
			st = st.Foreground(lipgloss.Color(s.Fg))
		}
		if s.Bg != "" {
			st = st.Background(lipgloss.Color(s.Bg))
		}
		return st.Render(label)
	}
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(t.GetAccent())).Bold(true)

	lines := []string{
		accent.Render(t.Name),
		swatch("text primary", t.TextPrimary),
		swatch("text secondary", t.TextSecondary),
		swatch("text muted", t.TextMuted),
		swatch("page header", t.PageHeader),
		swatch("placeholder", t.Placeholder),
		swatch("highlight", t.Highlight),
		swatch("summary label", t.SummaryLabel),
		swatch("summary selected", t.SummarySelected),
		swatch("progress", t.ProgressFill) + swatch("    ", t.ProgressEmpty),
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.GetBorderActive())).
		Padding(0, 1)
	fmt.Fprintln(out, box.Render(strings.Join(lines, "\n")))
	return nil
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if _, err := theme.LoadByName(name); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Theme = name
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("cmd.theme.set", "Theme set to: %s", name))
	return nil
}
