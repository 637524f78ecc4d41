// Package platform defines the backend contract that every other package
// in this module is written against: elapsed time, sleeping, process
// shutdown, and watchdog hardware control, collected behind one swappable
// Backend interface rather than hard-coded calls to time.Now, time.Sleep,
// and os.Exit scattered through every package. The Mutex and Semaphore
// primitives are separate interfaces; thread-local storage is not part of
// this package (kitthread keeps it in each Thread).
//
// Two Backend implementations ship with this module: hosted (real
// goroutines, real wall-clock time, for production and integration
// tests) and simtime (a virtual clock driven entirely by test code, for
// deterministic unit tests of timing-dependent logic). A future
// bare-metal/RTOS backend would implement the same interface without
// touching any other package.
package platform

import "time"

// Backend is the platform abstraction every timing- or thread-aware
// package depends on instead of calling time.Now/time.Sleep/os.Exit
// directly.
type Backend interface {
	// ElapsedMs returns milliseconds since some fixed, backend-defined
	// epoch, truncated to uint32. Callers must do modular-unsigned
	// arithmetic on the result, never a plain subtraction-and-compare for
	// negativity.
	ElapsedMs() uint32

	// ElapsedMs64 returns the same instant without truncation, for backends
	// and callers that need a wrap-free monotonic reading (e.g. the periodic
	// scheduler's deterministic-boundary arithmetic).
	ElapsedMs64() uint64

	// Sleep blocks the calling goroutine for the given duration. On the
	// simtime backend this blocks until the virtual clock is advanced past
	// the deadline by test code, rather than sleeping in real time.
	Sleep(d time.Duration)

	// Shutdown terminates the process (hosted) or records the call
	// (simtime, for assertions). Called by startup.Success/Failure, which
	// the production fault handler installed by kit.Initialize invokes.
	Shutdown(exitCode int)

	// WatchdogEnable arms the backend's hardware (or simulated) watchdog
	// with the given timeout. A zero timeout disables it.
	WatchdogEnable(timeoutMs uint32)

	// WatchdogKick feeds the armed watchdog, postponing its trip.
	WatchdogKick()

	// WatchdogTrip intentionally trips the watchdog (used by
	// watchdog.Supervisor when it detects an unresponsive thread).
	WatchdogTrip()

	// SchedulingEnabled reports whether preemptive scheduling is active.
	// Hosted defaults to true and simtime to false; both can be toggled
	// with their SetSchedulingEnabled method (kit.EnableScheduling calls it).
	SchedulingEnabled() bool
}

// Mutex is a recursive lock: the owning goroutine may call Lock again
// without deadlocking itself. Every supported backend is required to
// make this behavior available.
type Mutex interface {
	Lock()
	Unlock()
}

// Semaphore is a per-thread counting signal primitive. Signal is the
// cooperative, blocking-caller-safe post; SuSignal is the
// interrupt-context-safe post (no allocation, no blocking, safe to call
// from a signal handler or another thread's hot path).
type Semaphore interface {
	// Signal posts once, waking one waiter if any is blocked in Wait.
	Signal()

	// SuSignal is the ISR-safe variant of Signal: it must not allocate or
	// take a blocking lock.
	SuSignal()

	// Wait blocks until a pending signal is consumed.
	Wait()

	// TryWait consumes a pending signal without blocking, reporting
	// whether one was available.
	TryWait() bool

	// TimedWait blocks until a pending signal is consumed or the timeout
	// elapses, reporting which occurred.
	TimedWait(timeout time.Duration) bool
}
