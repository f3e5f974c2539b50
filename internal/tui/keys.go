package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/wethinkt/go-folio/internal/i18n"
)

// readerKeyMap defines key bindings for the reader.
type readerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding

	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	GoToPage  key.Binding
	GoToPct   key.Binding

	Select     key.Binding
	Clear      key.Binding
	Focus      key.Binding
	ToggleSync key.Binding
	SwapLayout key.Binding
	Quit       key.Binding
}

// defaultReaderKeyMap returns the default key bindings.
func defaultReaderKeyMap() readerKeyMap {
	return readerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", i18n.T("tui.help.scrollUp", "scroll up")),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", i18n.T("tui.help.scrollDown", "scroll down")),
		),
		PgUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", i18n.T("tui.help.pageUp", "screen up")),
		),
		PgDown: key.NewBinding(
			key.WithKeys("pgdown", "space", " "),
			key.WithHelp("pgdn", i18n.T("tui.help.pageDown", "screen down")),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n", i18n.T("tui.help.nextPage", "next page")),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left", "h"),
			key.WithHelp("p", i18n.T("tui.help.prevPage", "previous page")),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", i18n.T("tui.help.firstPage", "first page")),
		),
		LastPage: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", i18n.T("tui.help.lastPage", "last page")),
		),
		GoToPage: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", i18n.T("tui.help.goToPage", "go to page")),
		),
		GoToPct: key.NewBinding(
			key.WithKeys("%"),
			key.WithHelp("%", i18n.T("tui.help.goToPercent", "go to percent")),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", i18n.T("tui.help.openSummary", "open summary")),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", i18n.T("tui.help.clear", "clear selection")),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", i18n.T("tui.help.focus", "switch pane")),
		),
		ToggleSync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", i18n.T("tui.help.sync", "toggle sync")),
		),
		SwapLayout: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", i18n.T("tui.help.swap", "swap panes")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", i18n.T("tui.help.quit", "quit")),
		),
	}
}

// shortHelp lists the bindings shown in the footer.
func (k readerKeyMap) shortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.GoToPage, k.GoToPct, k.Focus, k.ToggleSync, k.SwapLayout, k.Quit}
}
