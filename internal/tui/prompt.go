package tui

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-folio/internal/i18n"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptPage
	promptPercent
)

// prompt is the one-line input used for page and percent jumps.
type prompt struct {
	kind  promptKind
	input textinput.Model
}

func (p *prompt) active() bool { return p.kind != promptNone }

func (p *prompt) open(kind promptKind) tea.Cmd {
	p.kind = kind
	p.input = textinput.New()
	p.input.CharLimit = 6
	switch kind {
	case promptPage:
		p.input.Prompt = i18n.T("tui.prompt.page", "Go to page: ")
	case promptPercent:
		p.input.Prompt = i18n.T("tui.prompt.percent", "Go to percent: ")
	}
	return p.input.Focus()
}

func (p *prompt) close() {
	p.kind = promptNone
	p.input.Blur()
}

func (p *prompt) value() string { return p.input.Value() }

func (p *prompt) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *prompt) view() string {
	if !p.active() {
		return ""
	}
	return p.input.View()
}
