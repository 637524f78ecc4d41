// Package watchdog implements the Watchdog Supervisor: a single,
// process-wide aggregator of per-thread countdowns that kicks one
// hardware (or simulated) watchdog on behalf of every watched thread.
// It is an explicit *Supervisor value, constructed once by the
// application, rather than a package-level singleton, the same shift
// toward explicit receivers the rest of this module makes throughout.
package watchdog

import (
	"sync"

	"github.com/Integerfox/kit.core-sub000/container"
	"github.com/Integerfox/kit.core-sub000/fault"
	"github.com/Integerfox/kit.core-sub000/platform"
	"github.com/Integerfox/kit.core-sub000/timer"
)

// jitterRingSize is the capacity of Supervisor.passJitter. Must be a
// power of two so the write index can be masked instead of modded.
const jitterRingSize = 8

// jitterRing is a fixed-size, overwrite-oldest ring of per-pass elapsed
// millisecond samples, for diagnosing how much a monitoring pass's
// actual spacing jitters around the nominal tickDivider cadence.
type jitterRing struct {
	samples [jitterRingSize]uint32
	w       uint32
	n       uint32
}

func (r *jitterRing) push(deltaMs uint32) {
	r.samples[r.w&(jitterRingSize-1)] = deltaMs
	r.w++
	if r.n < jitterRingSize {
		r.n++
	}
}

// snapshot returns the recorded samples, oldest first.
func (r *jitterRing) snapshot() []uint32 {
	out := make([]uint32, r.n)
	start := r.w - r.n
	for i := uint32(0); i < r.n; i++ {
		out[i] = r.samples[(start+i)&(jitterRingSize-1)]
	}
	return out
}

// State is a WatchedThread record's position in its per-record state
// machine: Detached -> Watched(counting) -> Detached, or Watched ->
// Tripped(terminal).
type State int

const (
	// Detached: not currently registered with a Supervisor.
	Detached State = iota
	// Watched: registered and counting down.
	Watched
	// Tripped: this record's countdown reached zero. Terminal: a real
	// hardware watchdog trip resets the system, so there is no recovery
	// path back to Watched.
	Tripped
)

// WatchedThread is one thread's watchdog registration: its reload value,
// live countdown, and state. Only the Supervisor mutates currentCountMs
// and state; callers interact through
// BeginWatching/EndWatching/ReloadThread.
type WatchedThread struct {
	container.ListItem

	name            string
	wdogTimeoutMs   uint32
	currentCountMs  uint32
	state           State
}

// Link implements container.SElem.
func (w *WatchedThread) Link() *container.ListItem { return &w.ListItem }

// Name returns the record's diagnostic name.
func (w *WatchedThread) Name() string { return w.name }

// State returns the record's current position in the state machine.
func (w *WatchedThread) State() State { return w.state }

// NewWatchedThread constructs an unregistered record with the given
// reload value.
func NewWatchedThread(name string, wdogTimeoutMs uint32) *WatchedThread {
	return &WatchedThread{name: name, wdogTimeoutMs: wdogTimeoutMs}
}

// Supervisor aggregates every WatchedThread's countdown into a single
// hardware-watchdog kick. One Supervisor exists per process.
type Supervisor struct {
	backend platform.Backend

	mu          sync.Mutex
	watched     container.SinglyList[*WatchedThread]
	tickDivider uint32
	tickCount   uint32
	lastMarkMs  uint32
	enabled     bool
	hwTimeoutMs uint32
	passJitter  jitterRing
	self        *WatchedEventLoop
}

// New constructs a Supervisor driving backend's watchdog hooks, checking
// in every tickDivider-th call to MonitorTick. The divider reduces the
// overhead of a check that would otherwise run on every event-loop
// iteration.
func New(backend platform.Backend, tickDivider uint32) *Supervisor {
	if tickDivider == 0 {
		tickDivider = 1
	}
	return &Supervisor{backend: backend, tickDivider: tickDivider}
}

// EnableWdog arms the backend's hardware watchdog and records the
// monitoring baseline. Must be called once before the first MonitorTick.
func (s *Supervisor) EnableWdog(timeoutMs uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend.WatchdogEnable(timeoutMs)
	s.lastMarkMs = s.backend.ElapsedMs()
	s.hwTimeoutMs = timeoutMs
	s.enabled = true
}

// SelfWatch makes the Supervisor watch its own monitoring pass, through
// the same WatchedEventLoop adapter any other event-loop thread uses:
// the Supervisor is registered with itself as just another WatchedThread,
// reloaded by a health-check timer driven from timers. selfTimeoutMs must
// be strictly less than the hardware watchdog reload window passed to
// EnableWdog, so that when the supervisor thread's health-check timer
// stops reloading its record, its own monitoring passes trip the
// watchdog within a shorter window than the hardware watchdog's. (The
// self record is only decremented by monitoring passes: a supervisor
// that stops making passes altogether is left to the hardware watchdog.)
// Must be called after EnableWdog. Calling it more than once panics.
func (s *Supervisor) SelfWatch(timers *timer.Manager, selfTimeoutMs uint32) *WatchedEventLoop {
	s.mu.Lock()
	hw := s.hwTimeoutMs
	already := s.self != nil
	s.mu.Unlock()
	if already {
		panic("watchdog: SelfWatch called more than once")
	}
	fault.Assert(selfTimeoutMs < hw, "watchdog: self-watch timeout %dms must be less than the hardware watchdog window %dms", selfTimeoutMs, hw)

	record := NewWatchedThread("watchdog.Supervisor", selfTimeoutMs)
	adapter := RegisterEventLoop(s, record, timers, 0, nil) // 0: default to half of selfTimeoutMs
	adapter.StartWatching()

	s.mu.Lock()
	s.self = adapter
	s.mu.Unlock()
	return adapter
}

// JitterSamplesMs returns the elapsed-millisecond spacing of the most
// recent monitoring passes (oldest first), for diagnosing how far actual
// pass timing drifts from the nominal tickDivider cadence.
func (s *Supervisor) JitterSamplesMs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passJitter.snapshot()
}

// BeginWatching registers t, initializing its countdown to its reload
// value and transitioning Detached → Watched.
func (s *Supervisor) BeginWatching(t *WatchedThread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.currentCountMs = t.wdogTimeoutMs
	t.state = Watched
	s.watched.PutLast(t)
}

// EndWatching unregisters t, transitioning Watched → Detached. A no-op
// if t was not registered.
func (s *Supervisor) EndWatching(t *WatchedThread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watched.Remove(t) {
		t.state = Detached
	}
}

// ReloadThread resets t's countdown to its reload value. Intended to be
// called only from the context of the watched thread itself (the
// "check-in" call).
func (s *Supervisor) ReloadThread(t *WatchedThread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.state == Watched {
		t.currentCountMs = t.wdogTimeoutMs
	}
}

// MonitorTick should be called once per event-loop iteration (or work
// cycle) by the designated supervisor thread. Every tickDivider-th call
// performs an actual monitoring pass: it decrements every watched
// record's countdown by the elapsed time since the last pass, trips the
// hardware watchdog immediately and returns without kicking if any
// record's countdown has been exhausted, or kicks the hardware watchdog
// once every record is healthy.
func (s *Supervisor) MonitorTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.tickCount++
	if s.tickCount < s.tickDivider {
		return
	}
	s.tickCount = 0

	now := s.backend.ElapsedMs()
	delta := now - s.lastMarkMs // unsigned subtraction wraps correctly
	s.passJitter.push(delta)

	t, ok := s.watched.First()
	for ok {
		if t.currentCountMs <= delta {
			t.state = Tripped
			s.backend.WatchdogTrip()
			return
		}
		t.currentCountMs -= delta
		t, ok = s.watched.Next(t)
	}

	s.backend.WatchdogKick()
	s.lastMarkMs = now
}
