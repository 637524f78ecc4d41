// Package eventloop implements a cooperative, run-to-completion event
// loop: a timer manager, a 32-bit atomic pending-flags word with
// subscribed flag groups, and optional mailbox, periodic-scheduler, and
// watchdog attachments, all driven from one thread's signal semaphore.
// The tick-driven wakeup, wait/process/dispatch loop body, and
// functional-options construction generalize a microtask-and-timer
// engine onto this kernel's timer.Manager and event-flag model.
package eventloop

import (
	"sync/atomic"
	"time"

	"github.com/Integerfox/kit.core-sub000/platform"
	"github.com/Integerfox/kit.core-sub000/timer"
)

// Mailbox is the optional message-dispatch extension a Loop can be
// composed with. HasPendingMessage lets the loop skip its timed wait
// when a message is already waiting (the skip_wait argument in the
// spec's wait_and_process_events), and ProcessMessages drains the queue.
type Mailbox interface {
	HasPendingMessage() bool
	ProcessMessages()
}

// Scheduler is the optional periodic-scheduling extension a Loop can be
// composed with, satisfied by *scheduler.PeriodicScheduler. Declared as
// an interface here (instead of importing the scheduler package
// directly) so eventloop and scheduler do not import each other.
type Scheduler interface {
	ExecuteScheduler(nowMs uint64) (ranAtLeastOne bool)
}

// Watchdog is the optional watchdog attachment a Loop can be composed
// with, satisfied by a *watchdog.WatchedEventLoop adapter. Declared as
// an interface for the same reason as Scheduler.
type Watchdog interface {
	StartWatching()
	StopWatching()
	MonitorTick()
}

// FlagGroup is one subscriber's view of the shared 32-bit event-flag
// word: the bits it cares about, and the callback invoked with the
// subset of those bits that changed on a given pass.
type FlagGroup struct {
	mask     uint32
	callback func(changed uint32)
}

// Config holds the options resolved at NewLoop time.
type Config struct {
	TickPeriod time.Duration
	Timers     *timer.Manager
	Mailbox    Mailbox
	Scheduler  Scheduler
	Watchdog   Watchdog
	IdleFunc   func(nowMs uint64, ranAtLeastOneInterval bool)
}

// Option mutates a Config under construction, following the same
// closure-over-struct pattern as kitconfig.Option.
type Option func(*Config)

// WithTickPeriod sets the loop's timed-wait period. Defaults to 10ms
// (kitconfig.DefaultTickPeriodMs).
func WithTickPeriod(d time.Duration) Option { return func(c *Config) { c.TickPeriod = d } }

// WithTimerManager supplies a pre-built timer.Manager instead of letting
// NewLoop allocate one of its own. Needed whenever a Watchdog
// attachment's own health-check timer must be bound to the same manager
// the loop drains: that attachment has to exist before NewLoop returns
// (it is itself an Option's payload), so the manager it binds to must be
// constructed before the Loop is.
func WithTimerManager(m *timer.Manager) Option { return func(c *Config) { c.Timers = m } }

// WithMailbox attaches a Mailbox, enabling message-dispatch composition
// alongside the flag-group dispatch.
func WithMailbox(m Mailbox) Option { return func(c *Config) { c.Mailbox = m } }

// WithScheduler attaches a Scheduler, enabling the periodic-scheduling
// composition.
func WithScheduler(s Scheduler) Option { return func(c *Config) { c.Scheduler = s } }

// WithWatchdog attaches a Watchdog, causing StartEventLoop/StopEventLoop
// to arm/disarm it and WaitAndProcessEvents to tick it once per pass.
func WithWatchdog(w Watchdog) Option { return func(c *Config) { c.Watchdog = w } }

// WithIdleFunc sets the function called after scheduler execution (when
// a Scheduler is attached) with the current time and whether at least
// one interval ran this pass.
func WithIdleFunc(f func(nowMs uint64, ranAtLeastOneInterval bool)) Option {
	return func(c *Config) { c.IdleFunc = f }
}

// Loop is the cooperative run-to-completion engine. All of its methods
// except SignalEvent/SignalMultipleEvents/PleaseStop (which are safe to
// call from any goroutine, including an "ISR" stand-in) are intended to
// be called only from the loop's own driving goroutine.
type Loop struct {
	backend platform.Backend
	sem     platform.Semaphore
	timers  *timer.Manager

	pendingFlags atomic.Uint32
	groups       []*FlagGroup

	tickPeriod time.Duration
	running    atomic.Bool

	mailbox   Mailbox
	scheduler Scheduler
	watchdog  Watchdog
	idleFunc  func(nowMs uint64, ranAtLeastOneInterval bool)
}

// NewLoop constructs a Loop bound to backend (for elapsed-time readings)
// and sem (the driving thread's signal semaphore; see
// kitthread.Thread.Semaphore).
func NewLoop(backend platform.Backend, sem platform.Semaphore, opts ...Option) *Loop {
	cfg := Config{TickPeriod: 10 * time.Millisecond}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	timers := cfg.Timers
	if timers == nil {
		timers = timer.NewManager()
	}
	return &Loop{
		backend:    backend,
		sem:        sem,
		timers:     timers,
		tickPeriod: cfg.TickPeriod,
		mailbox:    cfg.Mailbox,
		scheduler:  cfg.Scheduler,
		watchdog:   cfg.Watchdog,
		idleFunc:   cfg.IdleFunc,
	}
}

// Timers returns the loop's timer.Manager, so callers can construct
// timer.Timer instances bound to it.
func (l *Loop) Timers() *timer.Manager { return l.timers }

// Subscribe registers a new FlagGroup watching the bits in mask. The OR
// of every subscribed mask defines the loop's "interesting" bits;
// registration order determines callback invocation order within one
// WaitAndProcessEvents pass.
func (l *Loop) Subscribe(mask uint32, callback func(changed uint32)) *FlagGroup {
	g := &FlagGroup{mask: mask, callback: callback}
	l.groups = append(l.groups, g)
	return g
}

// SignalEvent ORs bit into the pending-flags word and wakes the loop's
// thread. Safe to call from any goroutine.
func (l *Loop) SignalEvent(bit int) {
	l.SignalMultipleEvents(uint32(1) << uint(bit))
}

// SignalMultipleEvents ORs mask into the pending-flags word and wakes
// the loop's thread exactly once, regardless of how many bits or how
// rapidly SignalEvent/SignalMultipleEvents are called concurrently: the
// semaphore is posted only on the word's zero-to-non-zero transition,
// and later signals ride along until WaitAndProcessEvents clears the
// word. Posting on every call would also deliver every bit, at the cost
// of one extra no-op pass per redundant post.
func (l *Loop) SignalMultipleEvents(mask uint32) {
	if l.pendingFlags.Or(mask) == 0 {
		l.sem.SuSignal()
	}
}

// PleaseStop clears the run flag and wakes the loop so the next
// WaitAndProcessEvents call observes the stop request promptly.
func (l *Loop) PleaseStop() {
	l.running.Store(false)
	l.sem.SuSignal()
}

// StartEventLoop arms the timer manager at the current time and starts
// the watchdog attachment, if any. Must be called once before the first
// WaitAndProcessEvents/Run call.
func (l *Loop) StartEventLoop() {
	l.running.Store(true)
	l.timers.StartManager(l.backend.ElapsedMs())
	if l.watchdog != nil {
		l.watchdog.StartWatching()
	}
}

// StopEventLoop stops the watchdog attachment, if any. Does not itself
// clear the run flag; call PleaseStop first (or let the loop exit
// naturally) and StopEventLoop afterward.
func (l *Loop) StopEventLoop() {
	if l.watchdog != nil {
		l.watchdog.StopWatching()
	}
}

// WaitAndProcessEvents performs one pass: an optional timed wait on the
// thread semaphore, a timer-manager drain, and dispatch of every
// subscribed FlagGroup whose mask intersects the bits captured in one
// atomic snapshot-and-clear of pending_flags. skipWait lets a mailbox- or
// message-aware caller avoid blocking when it already knows there is
// work pending. Returns the loop's run flag, so callers drive their own
// `for loop.WaitAndProcessEvents(...) { ... }`-shaped body.
func (l *Loop) WaitAndProcessEvents(skipWait bool) bool {
	if !skipWait {
		l.sem.TimedWait(l.tickPeriod)
	}

	l.timers.ProcessTimers(l.backend.ElapsedMs())

	captured := l.pendingFlags.Swap(0)
	if captured != 0 {
		for _, g := range l.groups {
			if changed := captured & g.mask; changed != 0 {
				g.callback(changed)
			}
		}
	}

	if l.watchdog != nil {
		l.watchdog.MonitorTick()
	}

	return l.running.Load()
}

// Run is the loop's entry point: it calls RunOnce until the run flag is
// cleared via PleaseStop.
func (l *Loop) Run() {
	for l.RunOnce() {
	}
}

// RunOnce executes a single iteration of the loop body, composing the
// mailbox and periodic scheduler attachments: wait and process events
// (skipping the wait if a message is already pending), then (if still
// running) execute the scheduler and the idle function, then drain
// pending messages. Returns the run flag, the same value Run's driving
// loop checks; exposed directly so callers (including tests) can step
// the loop deterministically instead of running it on a goroutine.
func (l *Loop) RunOnce() bool {
	skipWait := l.mailbox != nil && l.mailbox.HasPendingMessage()
	if !l.WaitAndProcessEvents(skipWait) {
		return false
	}

	if l.scheduler != nil {
		ranAtLeastOne := l.scheduler.ExecuteScheduler(l.backend.ElapsedMs64())
		if l.idleFunc != nil {
			l.idleFunc(l.backend.ElapsedMs64(), ranAtLeastOne)
		}
	}

	if l.mailbox != nil {
		l.mailbox.ProcessMessages()
	}
	return true
}
