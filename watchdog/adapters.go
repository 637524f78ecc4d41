package watchdog

import (
	"github.com/Integerfox/kit.core-sub000/timer"
)

// HealthChecker is the application-supplied health check invoked by a
// WatchedEventLoop's software timer. Returning false trips the watchdog
// immediately, before the Supervisor's own countdown would have. The
// default (RegisterEventLoop's healthFunc == nil) always reports
// healthy.
type HealthChecker func() bool

// WatchedEventLoop adapts a Supervisor registration to an event-driven
// thread: it arms a software timer at a health-check interval H (H must
// be less than the WatchedThread's reload value, enforced here), and on
// every expiry either reloads the Supervisor countdown (health check
// passed) or trips the watchdog immediately (health check failed).
type WatchedEventLoop struct {
	supervisor *Supervisor
	record     *WatchedThread
	healthTmr  *timer.Timer
	healthFunc HealthChecker
	intervalMs uint32
}

// RegisterEventLoop constructs a WatchedEventLoop over record and binds
// its health-check timer to timers without starting it. Registration
// with supervisor and arming of the timer both happen later, from
// StartWatching, matching how eventloop.Loop only calls StartWatching
// from StartEventLoop.
func RegisterEventLoop(supervisor *Supervisor, record *WatchedThread, timers *timer.Manager, healthCheckIntervalMs uint32, healthFunc HealthChecker) *WatchedEventLoop {
	if healthCheckIntervalMs == 0 {
		healthCheckIntervalMs = record.wdogTimeoutMs / 2
	}
	if healthCheckIntervalMs >= record.wdogTimeoutMs {
		panic("watchdog: health check interval must be less than the watchdog timeout")
	}
	if healthFunc == nil {
		healthFunc = func() bool { return true }
	}

	w := &WatchedEventLoop{
		supervisor: supervisor,
		record:     record,
		healthFunc: healthFunc,
		intervalMs: healthCheckIntervalMs,
	}
	w.healthTmr = timer.New(timers, w.onHealthCheckExpired)
	return w
}

func (w *WatchedEventLoop) onHealthCheckExpired() {
	if w.healthFunc() {
		w.supervisor.ReloadThread(w.record)
	} else {
		w.supervisor.backendTrip()
		return
	}
	w.healthTmr.Start(w.intervalMs)
}

// StartWatching registers the record with the Supervisor and arms the
// health-check timer. Satisfies eventloop.Watchdog.
func (w *WatchedEventLoop) StartWatching() {
	w.supervisor.BeginWatching(w.record)
	w.healthTmr.Start(w.intervalMs)
}

// StopWatching disarms the health-check timer and unregisters the
// record. Satisfies eventloop.Watchdog.
func (w *WatchedEventLoop) StopWatching() {
	w.healthTmr.Stop()
	w.supervisor.EndWatching(w.record)
}

// MonitorTick forwards to the Supervisor's own MonitorTick. Only the
// thread designated as the supervisor thread should wire this into its
// eventloop.Loop (via eventloop.WithWatchdog); other WatchedEventLoops
// only need StartWatching/StopWatching wired, with health checks driving
// ReloadThread via the timer above. Satisfies eventloop.Watchdog.
func (w *WatchedEventLoop) MonitorTick() {
	w.supervisor.MonitorTick()
}

// WatchedRawThread adapts a Supervisor registration to a non-event
// thread that manually calls Kick from within its own work loop: no
// software timer is involved, and the thread itself is responsible for
// calling Kick often enough.
type WatchedRawThread struct {
	supervisor *Supervisor
	record     *WatchedThread
}

// RegisterRawThread constructs a WatchedRawThread wrapping record.
func RegisterRawThread(supervisor *Supervisor, record *WatchedThread) *WatchedRawThread {
	return &WatchedRawThread{supervisor: supervisor, record: record}
}

// Start registers record with the Supervisor.
func (w *WatchedRawThread) Start() { w.supervisor.BeginWatching(w.record) }

// Stop unregisters record.
func (w *WatchedRawThread) Stop() { w.supervisor.EndWatching(w.record) }

// Kick reloads record's countdown. Must be called from the watched
// thread's own work loop at least once every wdogTimeoutMs.
func (w *WatchedRawThread) Kick() { w.supervisor.ReloadThread(w.record) }

// backendTrip is a package-internal escape hatch letting
// WatchedEventLoop's failed health check trip the watchdog immediately,
// bypassing the normal countdown. It still goes through the Supervisor's
// own mutex.
func (s *Supervisor) backendTrip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.backend.WatchdogTrip()
}
