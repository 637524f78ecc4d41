// Package kit is the application-facing entry point: Initialize wires
// the fault-handling, trace, and shutdown machinery together against a
// chosen platform.Backend, and EnableScheduling/IsSchedulingEnabled/
// Sleep/SleepInRealTime are the small set of process-wide calls that
// don't belong to any one subsystem package. Everything else
// (kitthread.Thread, timer.Timer, eventloop.Loop, scheduler.
// PeriodicScheduler, watchdog.Supervisor, startup.RegisterShutdownHandler)
// is used directly from its own package rather than re-exported through
// a facade: each subsystem keeps its own idiomatic import path instead
// of being funneled through one do-everything static-class namespace.
package kit

import (
	"sync"
	"time"

	"github.com/Integerfox/kit.core-sub000/fault"
	"github.com/Integerfox/kit.core-sub000/kitconfig"
	"github.com/Integerfox/kit.core-sub000/platform"
	"github.com/Integerfox/kit.core-sub000/startup"
	"github.com/Integerfox/kit.core-sub000/trace"
)

var (
	mu          sync.Mutex
	backend     platform.Backend
	config      kitconfig.Config
	initialized bool
)

// schedulingToggle is implemented by platform/hosted.Backend and
// platform/simtime.Backend, but is deliberately not part of
// platform.Backend itself: a bare-metal backend with scheduling
// decided entirely at compile time has no toggle to expose.
type schedulingToggle interface {
	SetSchedulingEnabled(bool)
}

// Initialize wires backend into fault's production handler and the
// startup package, runs every registered startup hook, and installs
// the default trace level. Must precede any other call into this
// module except static/package-level construction (Timer, WatchedThread,
// startup.NewHook registration, etc., which only build values). Calling
// Initialize more than once is a no-op, mirroring startup.Initialize's
// own idempotence.
func Initialize(b platform.Backend, opts ...kitconfig.Option) {
	mu.Lock()
	if initialized {
		mu.Unlock()
		return
	}
	backend = b
	config = kitconfig.Resolve(opts...)
	initialized = true
	mu.Unlock()

	trace.SetLevel(config.DefaultTraceLevel)
	startup.SetBackend(b)
	fault.SetHandler(productionFaultHandler)
	startup.Initialize()
}

// ResetForTests clears the installed backend, the resolved Config, and
// the initialized flag, so the next Initialize call takes effect again.
// Intended only for this module's own test suites.
func ResetForTests() {
	mu.Lock()
	defer mu.Unlock()
	backend = nil
	config = kitconfig.Config{}
	initialized = false
}

// Config returns the Config resolved at Initialize time.
func Config() kitconfig.Config {
	mu.Lock()
	defer mu.Unlock()
	return config
}

// productionFaultHandler is installed by Initialize as fault's Handler:
// it logs the condition via trace and forces a failure shutdown,
// mirroring FatalError::log's "log then Shutdown::failure" behavior.
// Unlike the production C++ implementation, it does not itself recurse
// through fault.Raise on a logging failure, since trace.Logger.Msg
// cannot itself raise a fault.
var faultTrace = trace.New("FATAL")

func productionFaultHandler(code fault.Code, message string) {
	faultTrace.Msg("%s: %s", code, message)
	startup.Failure(exitCodeForFault(code))
}

// exitCodeForFault maps a fault.Code to its reserved startup.Exit* code,
// mirroring the 1:1 correspondence between Kit::System::FatalError's
// logged kinds and Shutdown.h's reserved exit-code enum.
func exitCodeForFault(code fault.Code) int {
	switch code {
	case fault.CodeContainer:
		return startup.ExitContainer
	case fault.CodeOSAL:
		return startup.ExitOSAL
	case fault.CodeMemory:
		return startup.ExitMemory
	case fault.CodeFSMEventOverflow:
		return startup.ExitFSMEventOverflow
	case fault.CodeWatchdog:
		return startup.ExitWatchdog
	case fault.CodeAssert:
		return startup.ExitAssert
	case fault.CodeStreamIO:
		return startup.ExitStreamIO
	case fault.CodeDriver:
		return startup.ExitDriver
	case fault.CodeITC:
		return startup.ExitITC
	case fault.CodeDataModel:
		return startup.ExitDataModel
	default:
		return startup.ExitFailure
	}
}

// EnableScheduling turns on preemptive/multi-core scheduling on backends
// that support toggling it (platform/hosted and platform/simtime). A
// backend with no such toggle (e.g. a future bare-metal backend where
// scheduling is a build-time choice) silently ignores the call.
func EnableScheduling() {
	mu.Lock()
	b := backend
	mu.Unlock()
	if t, ok := b.(schedulingToggle); ok {
		t.SetSchedulingEnabled(true)
	}
}

// IsSchedulingEnabled reports whether preemptive/multi-core scheduling
// is currently active.
func IsSchedulingEnabled() bool {
	mu.Lock()
	b := backend
	mu.Unlock()
	return b.SchedulingEnabled()
}

// Sleep blocks the calling goroutine for d via the installed backend: on
// platform/hosted this is a real sleep, on platform/simtime it blocks
// until test code advances the virtual clock past the deadline.
func Sleep(d time.Duration) {
	mu.Lock()
	b := backend
	mu.Unlock()
	b.Sleep(d)
}

// SleepInRealTime always sleeps real wall-clock time, even under
// platform/simtime: useful for a test's driving goroutine that needs to
// yield to other goroutines between calls to Advance, without waiting on
// the virtual clock it is itself responsible for advancing.
func SleepInRealTime(d time.Duration) {
	time.Sleep(d)
}
