// Package simtime implements platform.Backend with a virtual clock that
// only advances when test code calls Advance: timing-dependent modules
// read time from platform.Backend (watchdog.Supervisor, eventloop.Loop)
// or from a millisecond reading their caller passes in (timer.Manager,
// scheduler.PeriodicScheduler), not from time.Now, so this backend can
// stand in for deterministic tests without sleeping real wall-clock time.
package simtime

import (
	"sync"
	"time"
)

// Backend is a virtual-clock platform.Backend. All methods are safe for
// concurrent use.
type Backend struct {
	mu            sync.Mutex
	nowMs         uint64
	shutdownCalls []int
	watchdogMs    uint32
	lastKickMs    uint64
	tripped       bool
	schedulingOn  bool

	sleepers []sleeper
}

type sleeper struct {
	wakeAtMs uint64
	done     chan struct{}
}

// New returns a Backend with its virtual clock at zero and scheduling
// reported as disabled; tests opt in explicitly via SetSchedulingEnabled.
func New() *Backend { return &Backend{} }

// ElapsedMs returns the current virtual-clock reading, truncated to
// uint32.
func (b *Backend) ElapsedMs() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint32(b.nowMs)
}

// ElapsedMs64 returns the current virtual-clock reading at full width.
func (b *Backend) ElapsedMs64() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nowMs
}

// Sleep blocks the calling goroutine until the virtual clock reaches
// now+d, as advanced by a concurrent call to Advance.
func (b *Backend) Sleep(d time.Duration) {
	wakeAt := b.ElapsedMs64() + uint64(d.Milliseconds())
	done := make(chan struct{})

	b.mu.Lock()
	b.sleepers = append(b.sleepers, sleeper{wakeAtMs: wakeAt, done: done})
	b.mu.Unlock()

	<-done
}

// Shutdown records the exit code instead of terminating the process, so
// tests can assert a fatal path was taken.
func (b *Backend) Shutdown(exitCode int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdownCalls = append(b.shutdownCalls, exitCode)
}

// ShutdownCalls returns every exit code passed to Shutdown so far.
func (b *Backend) ShutdownCalls() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.shutdownCalls))
	copy(out, b.shutdownCalls)
	return out
}

// WatchdogEnable records the timeout and resets the kick clock.
func (b *Backend) WatchdogEnable(timeoutMs uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watchdogMs = timeoutMs
	b.lastKickMs = b.nowMs
	b.tripped = false
}

// WatchdogKick resets the kick clock to the current virtual time.
func (b *Backend) WatchdogKick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastKickMs = b.nowMs
}

// WatchdogTrip marks the simulated watchdog as tripped, observable via
// Tripped, instead of calling Shutdown directly (tests typically want to
// assert tripping happened without also tearing down the test process).
func (b *Backend) WatchdogTrip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tripped = true
}

// Tripped reports whether WatchdogTrip has been called since the last
// WatchdogEnable.
func (b *Backend) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

// SchedulingEnabled reports the simulated scheduling-enabled flag.
func (b *Backend) SchedulingEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.schedulingOn
}

// SetSchedulingEnabled sets the simulated scheduling-enabled flag.
func (b *Backend) SetSchedulingEnabled(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schedulingOn = on
}

// Advance moves the virtual clock forward by d and releases any Sleep
// callers whose deadline has passed.
func (b *Backend) Advance(d time.Duration) {
	b.mu.Lock()
	b.nowMs += uint64(d.Milliseconds())
	now := b.nowMs
	var remaining []sleeper
	var wake []sleeper
	for _, s := range b.sleepers {
		if s.wakeAtMs <= now {
			wake = append(wake, s)
		} else {
			remaining = append(remaining, s)
		}
	}
	b.sleepers = remaining
	b.mu.Unlock()

	for _, s := range wake {
		close(s.done)
	}
}
