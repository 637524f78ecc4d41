// Package hosted implements platform.Backend for a normal OS process:
// goroutines stand in for native threads, wall-clock time via the
// monotonic clock stands in for a hardware tick counter, and Shutdown
// calls os.Exit. It is the backend production binaries and integration
// tests use; platform/simtime is its deterministic sibling for unit
// tests of timing logic.
package hosted

import (
	"os"
	"sync/atomic"
	"time"
)

// Backend is the hosted platform.Backend implementation.
type Backend struct {
	epoch          time.Time
	watchdogMs     atomic.Uint32
	watchdogKicked atomic.Int64 // unix nanos of last kick
	schedulingOn   atomic.Bool
}

// New returns a Backend with scheduling reported as enabled. The time of
// the call is recorded as the epoch used by the portable clock fallback;
// on Linux/Darwin the elapsed-time reading is CLOCK_MONOTONIC's own and
// does not start near zero.
func New() *Backend {
	b := &Backend{epoch: time.Now()}
	b.schedulingOn.Store(true)
	return b
}

// ElapsedMs returns the ElapsedMs64 reading truncated to uint32 per
// platform.Backend's contract.
func (b *Backend) ElapsedMs() uint32 { return uint32(b.ElapsedMs64()) }

// ElapsedMs64 returns the full-width monotonic reading; see
// clock_unix.go/clock_other.go for the per-OS source of the reading.
func (b *Backend) ElapsedMs64() uint64 { return monotonicMs(b.epoch) }

// Sleep blocks the calling goroutine for d.
func (b *Backend) Sleep(d time.Duration) { time.Sleep(d) }

// Shutdown calls os.Exit with the given code.
func (b *Backend) Shutdown(exitCode int) { os.Exit(exitCode) }

// WatchdogEnable records the timeout and starts the kick clock. A zero
// timeout disables watchdog monitoring.
func (b *Backend) WatchdogEnable(timeoutMs uint32) {
	b.watchdogMs.Store(timeoutMs)
	b.watchdogKicked.Store(time.Now().UnixNano())
}

// WatchdogKick records the current time as the most recent kick. The
// hosted backend has no real hardware watchdog to feed; watchdog.Supervisor
// is the component that actually detects staleness and calls WatchdogTrip.
func (b *Backend) WatchdogKick() { b.watchdogKicked.Store(time.Now().UnixNano()) }

// WatchdogTrip terminates the process with a distinguished exit code, the
// hosted stand-in for a hardware watchdog reset.
func (b *Backend) WatchdogTrip() { b.Shutdown(ExitCodeWatchdogTrip) }

// ExitCodeWatchdogTrip is the process exit code used by WatchdogTrip.
const ExitCodeWatchdogTrip = 66

// SchedulingEnabled reports whether scheduling has been toggled on. New
// enables it by default; tests that need the disabled state can flip it
// with SetSchedulingEnabled.
func (b *Backend) SchedulingEnabled() bool { return b.schedulingOn.Load() }

// SetSchedulingEnabled allows the application entry point (or a test) to
// toggle the reported scheduling state.
func (b *Backend) SetSchedulingEnabled(on bool) { b.schedulingOn.Store(on) }
