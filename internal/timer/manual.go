package timer

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing fires until
// Advance is called, which makes timer-heavy state machines testable without
// sleeping.
type Manual struct {
	now   time.Duration
	seq   int
	queue []scheduled
}

type scheduled struct {
	due  time.Duration
	seq  int
	fire Fire
}

// NewManual returns a Manual scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// After queues f to run once the virtual clock reaches now+d.
func (m *Manual) After(d time.Duration, f Fire) {
	if d < 0 {
		d = 0
	}
	m.seq++
	m.queue = append(m.queue, scheduled{due: m.now + d, seq: m.seq, fire: f})
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// Advance moves the clock forward by d, running every due token in order.
// Tokens scheduled while advancing run too if they fall inside the window.
// It returns the number of callbacks that actually ran.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for {
		idx := m.next(target)
		if idx < 0 {
			break
		}
		item := m.queue[idx]
		m.queue = append(m.queue[:idx], m.queue[idx+1:]...)
		m.now = item.due
		if item.fire.Run() {
			ran++
		}
	}
	m.now = target
	return ran
}

// Pending returns the number of queued tokens that would still run.
func (m *Manual) Pending() int {
	n := 0
	for _, item := range m.queue {
		t := item.fire.timer
		if t != nil && t.armed && t.gen == item.fire.gen {
			n++
		}
	}
	return n
}

func (m *Manual) next(target time.Duration) int {
	if len(m.queue) == 0 {
		return -1
	}
	sort.SliceStable(m.queue, func(i, j int) bool {
		if m.queue[i].due != m.queue[j].due {
			return m.queue[i].due < m.queue[j].due
		}
		return m.queue[i].seq < m.queue[j].seq
	})
	if m.queue[0].due > target {
		return -1
	}
	return 0
}
