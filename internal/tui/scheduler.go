package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-folio/internal/timer"
)

// cmdQueue collects commands produced outside Update's return path, such as
// timers armed by the controller or saves requested by its callbacks. Update
// drains it once per message.
type cmdQueue struct {
	cmds []tea.Cmd
}

var _ timer.Scheduler = (*cmdQueue)(nil)

func (q *cmdQueue) push(cmd tea.Cmd) {
	if cmd != nil {
		q.cmds = append(q.cmds, cmd)
	}
}

// After schedules f as a tea.Tick. The fire comes back as a timerFiredMsg and
// is run inside Update, so timer handlers never race the model.
func (q *cmdQueue) After(d time.Duration, f timer.Fire) {
	q.push(tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{fire: f}
	}))
}

func (q *cmdQueue) drain() tea.Cmd {
	if len(q.cmds) == 0 {
		return nil
	}
	cmds := q.cmds
	q.cmds = nil
	return tea.Batch(cmds...)
}
