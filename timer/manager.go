// Package timer implements software countdown timers and the manager
// that drives them from a single elapsed-time tick. A Manager and every
// Timer attached to it are meant to be driven from exactly one goroutine
// (the owning eventloop.Loop's own goroutine); timers are not internally
// synchronized, by design, since the manager, every timer, and every
// timer's callback all execute on that same goroutine.
package timer

import "github.com/Integerfox/kit.core-sub000/container"

// Timer is a one-shot software countdown timer. The zero value is not
// usable; construct with New.
type Timer struct {
	container.ExtendedListItem

	manager     *Manager
	remainingMs uint32
	onExpired   func()
	running     bool
	canceled    bool // set by Stop after the timer was already popped this tick
}

// Link implements container.SElem.
func (t *Timer) Link() *container.ListItem { return &t.ExtendedListItem.ListItem }

// DLink implements container.DElem.
func (t *Timer) DLink() *container.ExtendedListItem { return &t.ExtendedListItem }

// New constructs a Timer bound to manager. onExpired is invoked (on the
// manager's driving goroutine, from within ProcessTimers) when the timer
// counts down to zero; it is never invoked after a successful Stop, even
// if Stop races with an already-popped-but-not-yet-delivered expiry.
func New(manager *Manager, onExpired func()) *Timer {
	return &Timer{manager: manager, onExpired: onExpired}
}

// SetTimingSource rebinds the timer to a different Manager. Only valid
// while the timer is stopped.
func (t *Timer) SetTimingSource(manager *Manager) {
	if t.running {
		panic("timer: SetTimingSource called while timer is running")
	}
	t.manager = manager
}

// Start (re)arms the timer with the given duration, stopping it first if
// already running.
func (t *Timer) Start(durationMs uint32) {
	if t.running {
		t.stopLocked()
	}
	t.remainingMs = durationMs
	t.canceled = false
	t.running = true
	t.manager.attach(t)
}

// Stop disarms the timer. Safe to call on an already-stopped timer, and
// safe to call from within another timer's expiry callback on a timer
// that was already popped for firing in the current ProcessTimers call
// but whose own callback has not run yet: in that case Stop cancels the
// still-pending delivery, so a timer never receives an expired callback
// after Stop has been called.
func (t *Timer) Stop() {
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.running {
		t.manager.detach(t)
	}
	t.running = false
	t.canceled = true
}

// IsRunning reports whether the timer is currently counting down.
func (t *Timer) IsRunning() bool { return t.running }

// Manager drives a set of Timers from a single caller-supplied elapsed
// time reading per ProcessTimers call. Two physical lists (listA/listB)
// back the "active" and "pending-attach" roles, so that a timer started
// from inside another timer's expiry callback during the current
// ProcessTimers call is held on the pending-attach list instead of
// corrupting the list being walked; once every callback of the tick has
// run, the pending-attach list is drained item by item onto the end of
// the active list.
type Manager struct {
	listA, listB  container.DoublyList[*Timer]
	active        *container.DoublyList[*Timer]
	pendingAttach *container.DoublyList[*Timer]
	lastMs        uint32
	started       bool
	inTick        bool
}

// NewManager returns a ready-to-use, unstarted Manager.
func NewManager() *Manager {
	m := &Manager{}
	m.active = &m.listA
	m.pendingAttach = &m.listB
	return m
}

// StartManager records the baseline elapsed-time reading. Must be called
// once, from the driving goroutine, before the first ProcessTimers call.
func (m *Manager) StartManager(nowMs uint32) {
	m.lastMs = nowMs
	m.started = true
}

// AreActiveTimers reports whether at least one timer is currently
// counting down.
func (m *Manager) AreActiveTimers() bool {
	return !m.active.Empty() || !m.pendingAttach.Empty()
}

func (m *Manager) attach(t *Timer) {
	if m.inTick {
		m.pendingAttach.PutLast(t)
		return
	}
	m.active.PutLast(t)
}

func (m *Manager) detach(t *Timer) {
	if m.active.Remove(t) {
		return
	}
	m.pendingAttach.Remove(t)
}

// ProcessTimers decrements every active timer by the elapsed time since
// the previous call (nowMs - lastMs, computed with wraparound-safe
// unsigned subtraction so a uint32 millisecond counter rolling over after
// ~49.7 days is handled correctly), then invokes the onExpired callback
// of every timer that reached zero. Must be called only from the
// Manager's driving goroutine. A timer Started from inside an onExpired
// callback is held on pendingAttach until every callback for this tick
// has run, so it cannot itself expire until a later ProcessTimers call.
func (m *Manager) ProcessTimers(nowMs uint32) {
	if !m.started {
		m.started = true
		m.lastMs = nowMs
		return
	}
	deltaMs := nowMs - m.lastMs // unsigned subtraction wraps correctly
	m.lastMs = nowMs
	if deltaMs == 0 {
		return
	}

	m.inTick = true
	var firing []*Timer
	t, ok := m.active.First()
	for ok {
		next, nextOK := m.active.Next(t)
		if t.remainingMs <= deltaMs {
			m.active.Remove(t)
			t.running = false
			firing = append(firing, t)
		} else {
			t.remainingMs -= deltaMs
		}
		t, ok = next, nextOK
	}

	for _, t := range firing {
		if t.canceled {
			continue
		}
		if t.onExpired != nil {
			t.onExpired()
		}
	}
	m.inTick = false

	for pt, pok := m.pendingAttach.GetFirst(); pok; pt, pok = m.pendingAttach.GetFirst() {
		m.active.PutLast(pt)
	}
}
