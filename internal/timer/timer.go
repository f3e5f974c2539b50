// Package timer provides restartable one-shot timers for code that runs on a
// single event loop.
//
// A Timer never fires on its own goroutine. Arming it asks a Scheduler to
// hand a Fire value back to the owning loop after a delay; the loop then calls
// Fire.Run. Every Reset or Stop bumps the timer's generation, so a Fire that
// was issued for an earlier arming is silently dropped when it arrives.
package timer

import "time"

// Scheduler delivers f back to the owning event loop once d has elapsed.
// Implementations must not call f.Run themselves from another goroutine.
type Scheduler interface {
	After(d time.Duration, f Fire)
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f Fire)

// After calls fn(d, f).
func (fn SchedulerFunc) After(d time.Duration, f Fire) { fn(d, f) }

// Timer is a named, restartable one-shot timer.
type Timer struct {
	name  string
	sched Scheduler
	fn    func()
	gen   uint64
	armed bool
}

// New creates a stopped timer that calls fn when it fires.
func New(name string, sched Scheduler, fn func()) *Timer {
	return &Timer{name: name, sched: sched, fn: fn}
}

// Name returns the timer's name.
func (t *Timer) Name() string { return t.name }

// Reset cancels any pending firing and arms the timer to fire after d.
func (t *Timer) Reset(d time.Duration) {
	t.gen++
	t.armed = true
	t.sched.After(d, Fire{timer: t, gen: t.gen})
}

// Stop cancels a pending firing. It reports whether the timer was armed.
func (t *Timer) Stop() bool {
	was := t.armed
	t.gen++
	t.armed = false
	return was
}

// Pending reports whether the timer is armed and has not fired yet.
func (t *Timer) Pending() bool { return t.armed }

// Fire is the token a Scheduler hands back to the event loop.
type Fire struct {
	timer *Timer
	gen   uint64
}

// Name returns the name of the timer this token belongs to.
func (f Fire) Name() string {
	if f.timer == nil {
		return ""
	}
	return f.timer.name
}

// Run invokes the timer callback if this token is still current.
// It reports whether the callback ran.
func (f Fire) Run() bool {
	t := f.timer
	if t == nil || !t.armed || f.gen != t.gen {
		return false
	}
	t.armed = false
	t.fn()
	return true
}
