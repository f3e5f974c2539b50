// Package theme provides theming support for the reader.
package theme

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wethinkt/go-folio/internal/config"
)

//go:embed themes/*.json
var embeddedThemes embed.FS

// Style defines colors and text attributes for a UI element.
type Style struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Theme defines all styles used in the reader.
type Theme struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// Glamour is the glamour style used for summary markdown.
	Glamour string `json:"glamour,omitempty"`

	Accent         string `json:"accent,omitempty"`
	BorderActive   string `json:"border_active,omitempty"`
	BorderInactive string `json:"border_inactive,omitempty"`

	TextPrimary   Style `json:"text_primary,omitempty"`
	TextSecondary Style `json:"text_secondary,omitempty"`
	TextMuted     Style `json:"text_muted,omitempty"`

	// Document pane
	PageHeader  Style `json:"page_header,omitempty"`
	Placeholder Style `json:"placeholder,omitempty"`
	Highlight   Style `json:"highlight,omitempty"`

	// Summary pane
	SummaryLabel    Style `json:"summary_label,omitempty"`
	SummarySelected Style `json:"summary_selected,omitempty"`

	// Progress bar
	ProgressFill  Style `json:"progress_fill,omitempty"`
	ProgressEmpty Style `json:"progress_empty,omitempty"`
}

// DefaultTheme returns the embedded dark theme.
func DefaultTheme() Theme {
	theme, _ := LoadEmbedded("dark")
	return theme
}

// LoadEmbedded loads a theme from the embedded themes.
func LoadEmbedded(name string) (Theme, error) {
	data, err := embeddedThemes.ReadFile("themes/" + name + ".json")
	if err != nil {
		return Theme{}, err
	}

	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// ListEmbedded returns the names of all embedded themes.
func ListEmbedded() []string {
	entries, err := embeddedThemes.ReadDir("themes")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names
}

// ThemesDir returns the path to the user themes directory.
func ThemesDir() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "themes"), nil
}

// LoadByName loads a theme by name, checking user themes first, then
// embedded. Fields missing from a user theme keep the dark defaults.
func LoadByName(name string) (Theme, error) {
	if name == "" {
		return DefaultTheme(), nil
	}

	themesDir, err := ThemesDir()
	if err == nil {
		data, err := os.ReadFile(filepath.Join(themesDir, name+".json"))
		switch {
		case err == nil:
			theme := DefaultTheme()
			if err := json.Unmarshal(data, &theme); err != nil {
				return DefaultTheme(), fmt.Errorf("theme %s: %w", name, err)
			}
			theme.Name = name
			return theme, nil
		case !errors.Is(err, fs.ErrNotExist):
			return DefaultTheme(), err
		}
	}

	theme, err := LoadEmbedded(name)
	if err != nil {
		return DefaultTheme(), fmt.Errorf("unknown theme %q", name)
	}
	return theme, nil
}

// current holds the active theme once Use or Current has run.
var current *Theme

// Use makes the named theme active. On error the dark theme is used.
func Use(name string) error {
	theme, err := LoadByName(name)
	current = &theme
	return err
}

// Current returns the active theme.
func Current() Theme {
	if current == nil {
		theme := DefaultTheme()
		current = &theme
	}
	return *current
}

// GetAccent returns the accent color, with fallback.
func (t Theme) GetAccent() string {
	if t.Accent != "" {
		return t.Accent
	}
	return "#7D56F4"
}

// GetBorderActive returns the active border color.
func (t Theme) GetBorderActive() string {
	if t.BorderActive != "" {
		return t.BorderActive
	}
	return t.GetAccent()
}

// GetBorderInactive returns the inactive border color.
func (t Theme) GetBorderInactive() string {
	if t.BorderInactive != "" {
		return t.BorderInactive
	}
	return "#444444"
}

// GetGlamour returns the glamour style name.
func (t Theme) GetGlamour() string {
	if t.Glamour != "" {
		return t.Glamour
	}
	return "dark"
}
