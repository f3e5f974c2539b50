package tui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/wethinkt/go-folio/internal/pageview"
)

func termSizeOpts() []tea.ProgramOption {
	var opts []tea.ProgramOption
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stdin.Fd()), int(os.Stderr.Fd())} {
		if term.IsTerminal(fd) {
			w, h, err := term.GetSize(fd)
			if err == nil && w > 0 && h > 0 {
				opts = append(opts, tea.WithWindowSize(w, h))
				break
			}
		}
	}
	return opts
}

// NewProgram wraps r in a program sized to the current terminal. Use
// Program.Send with a NavigateMsg to move the reader from another goroutine.
func NewProgram(r *Reader, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(r, append(termSizeOpts(), opts...)...)
}

// ProgramNavigator returns a Navigator that forwards page jumps to the
// reader running in p. Range errors surface in the reader's status line
// rather than being returned.
func ProgramNavigator(p *tea.Program) pageview.Navigator {
	return programNavigator{p: p}
}

type programNavigator struct {
	p *tea.Program
}

func (n programNavigator) NavigateToPage(page int) error {
	n.p.Send(NavigateMsg{Page: page})
	return nil
}
