// Package startup implements leveled application startup hooks and a
// LIFO shutdown-handler registry.
package startup

import (
	"sync"

	"github.com/Integerfox/kit.core-sub000/container"
	"github.com/Integerfox/kit.core-sub000/platform"
)

// InitLevel orders startup-hook draining. Hooks at a lower level are
// notified, in full, before any hook at the next level runs: TestInfra <
// System < MiddleWare < Application (infrastructure that tests depend on
// comes up first; application code, which depends on everything else,
// comes up last).
type InitLevel int

const (
	TestInfra InitLevel = iota
	System
	MiddleWare
	Application

	numLevels = int(Application) + 1
)

// HookFunc is notified once, at its registered level, when Initialize
// runs.
type HookFunc func(level InitLevel)

type hook struct {
	container.ListItem
	fn HookFunc
}

func (h *hook) Link() *container.ListItem { return &h.ListItem }

var (
	hooksMu     sync.Mutex
	hooksByLvl  [numLevels]container.SinglyList[*hook]
	initialized bool
)

// Hook is a handle returned by NewHook. It has no methods; its existence
// is the registration (constructing it appends to its level's queue).
type Hook struct{}

// NewHook registers fn to run at level when Initialize is called.
// Packages that need startup-ordered initialization construct a Hook at
// package scope:
//
//	var _ = startup.NewHook(startup.System, func(startup.InitLevel) { ... })
//
// registration is a side effect of construction, so this runs as ordinary
// Go package initialization order rather than requiring an explicit
// registration call from main().
func NewHook(level InitLevel, fn HookFunc) *Hook {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooksByLvl[level].PutLast(&hook{fn: fn})
	return &Hook{}
}

// Initialize drains every registered hook, level by level, in
// registration order within a level. Calling Initialize more than once
// is a no-op; hooks registered after the first call are never notified,
// since there is no second Initialize to drain them. Startup hooks run
// exactly once, before main logic begins.
func Initialize() {
	hooksMu.Lock()
	if initialized {
		hooksMu.Unlock()
		return
	}
	initialized = true
	hooksMu.Unlock()

	for lvl := 0; lvl < numLevels; lvl++ {
		hooksMu.Lock()
		h, ok := hooksByLvl[lvl].First()
		hooksMu.Unlock()
		for ok {
			h.fn(InitLevel(lvl))
			hooksMu.Lock()
			h, ok = hooksByLvl[lvl].Next(h)
			hooksMu.Unlock()
		}
	}
}

// ResetForTests clears every registered hook and the initialized flag.
// Intended only for this module's own test suites, which otherwise leak
// hooks and the initialized flag from one test to the next within a
// test binary.
func ResetForTests() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	for i := range hooksByLvl {
		hooksByLvl[i] = container.SinglyList[*hook]{}
	}
	initialized = false
}

// ShutdownHandler is notified when the application shuts down. Notify
// receives the exit code chosen so far and returns the exit code to
// carry forward to the next handler (or out to the platform, if this is
// the last one); returning exitCode unchanged leaves it untouched.
// Handlers are notified in LIFO order: the first handler registered is
// the last one notified, mirroring Shutdown::IHandler's documented LIFO
// contract.
type ShutdownHandler interface {
	Notify(exitCode int) int
}

// ShutdownHandlerFunc adapts a plain function to ShutdownHandler.
type ShutdownHandlerFunc func(exitCode int) int

// Notify implements ShutdownHandler.
func (f ShutdownHandlerFunc) Notify(exitCode int) int { return f(exitCode) }

// Reserved exit codes, mirroring Shutdown.h's enum.
const (
	ExitSuccess int = iota
	ExitFailure
	ExitFatalError
	ExitAssert
	ExitOSAL
	ExitDataModel
	ExitContainer
	ExitStreamIO
	ExitMemory
	ExitDriver
	ExitITC
	ExitFSMEventOverflow
	ExitWatchdog
)

var (
	shutdownMu       sync.Mutex
	shutdownHandlers []ShutdownHandler
	shutdownBackend  platform.Backend
	shuttingDown     bool
)

// SetBackend installs the platform.Backend whose Shutdown method
// Success/Failure ultimately call. Must be called once during
// application wiring, before any fatal condition can occur.
func SetBackend(backend platform.Backend) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	shutdownBackend = backend
}

// RegisterShutdownHandler pushes handler onto the LIFO shutdown stack.
func RegisterShutdownHandler(handler ShutdownHandler) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	shutdownHandlers = append(shutdownHandlers, handler)
}

// Success forces a successful shutdown: every registered handler is
// notified, in LIFO order, then the platform backend is told to
// terminate with the final exit code.
func Success() int {
	return shutdown(ExitSuccess)
}

// Failure forces a shutdown with the given exit code (ExitFailure if
// unspecified callers should pass one of the Exit* constants, or an
// application-defined code beyond them).
func Failure(exitCode int) int {
	return shutdown(exitCode)
}

// shutdown drains shutdownHandlers exactly once per call (invariant:
// handlers run once whether Success or Failure triggered them, and a
// handler that itself calls Success/Failure reentrantly is a no-op,
// since the application is already exiting).
func shutdown(exitCode int) int {
	shutdownMu.Lock()
	if shuttingDown {
		shutdownMu.Unlock()
		return exitCode
	}
	shuttingDown = true
	handlers := make([]ShutdownHandler, len(shutdownHandlers))
	copy(handlers, shutdownHandlers)
	backend := shutdownBackend
	shutdownMu.Unlock()

	code := exitCode
	for i := len(handlers) - 1; i >= 0; i-- {
		code = handlers[i].Notify(code)
	}

	if backend != nil {
		backend.Shutdown(code)
	}

	shutdownMu.Lock()
	shuttingDown = false
	shutdownMu.Unlock()

	return code
}

// ResetShutdownForTests clears every registered shutdown handler and the
// installed backend. Intended only for this module's own test suites.
func ResetShutdownForTests() {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	shutdownHandlers = nil
	shutdownBackend = nil
	shuttingDown = false
}
