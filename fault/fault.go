// Package fault implements the fatal-error taxonomy and handler contract
// used throughout the kernel core. Recoverable operations return a bool;
// unrecoverable invariant violations route through Raise, which calls
// the registered Handler. The built-in default Handler panics; kit.Initialize
// replaces it with a production Handler that calls startup.Failure and
// never returns. Unit tests swap the Handler for a counter so execution
// can continue and assertions can run.
package fault

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Code enumerates the fatal-error taxonomy. Each Code maps to a Shutdown
// exit code.
type Code int

const (
	// CodeContainer indicates an intrusive-list invariant violation.
	CodeContainer Code = iota + 1
	// CodeOSAL indicates a primitive creation failure or internal
	// assertion in thread/mutex/semaphore/TLS code.
	CodeOSAL
	// CodeMemory indicates a pool/allocator failure.
	CodeMemory
	// CodeFSMEventOverflow indicates an event-queue drop.
	CodeFSMEventOverflow
	// CodeWatchdog indicates an intentional or detected supervisor failure.
	CodeWatchdog
	// CodeAssert is a reserved kind for general assertion failures.
	CodeAssert
	// CodeFailure is a reserved, catch-all kind.
	CodeFailure
	// CodeStreamIO is a reserved kind for I/O stream failures.
	CodeStreamIO
	// CodeDriver is a reserved kind for BSP driver failures.
	CodeDriver
	// CodeITC is a reserved kind for inter-thread-communication failures.
	CodeITC
	// CodeDataModel is a reserved kind for data-model failures.
	CodeDataModel
)

// String implements fmt.Stringer.
func (c Code) String() string {
	switch c {
	case CodeContainer:
		return "CONTAINER"
	case CodeOSAL:
		return "OSAL"
	case CodeMemory:
		return "MEMORY"
	case CodeFSMEventOverflow:
		return "FSM_EVENT_OVERFLOW"
	case CodeWatchdog:
		return "WATCHDOG"
	case CodeAssert:
		return "ASSERT"
	case CodeFailure:
		return "FAILURE"
	case CodeStreamIO:
		return "STREAMIO"
	case CodeDriver:
		return "DRIVER"
	case CodeITC:
		return "ITC"
	case CodeDataModel:
		return "DATA_MODEL"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error wraps a fatal Code and message, satisfying the error interface so
// it can flow through errors.Is/errors.As when a Handler chooses to return
// instead of exiting (the unit-test handler).
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Handler is called by Raise. The default Handler panics with an *Error;
// kit.Initialize installs the production Handler (it calls
// startup.Failure and never returns). Tests install CountingHandler via
// SetHandler to observe fatal conditions without terminating the process.
type Handler func(code Code, message string)

var (
	handlerMu sync.RWMutex
	handler   Handler = func(code Code, message string) {
		panic(&Error{Code: code, Message: message})
	}
)

// SetHandler installs a new fatal-error handler, returning the previous
// one so callers (typically tests) can restore it via defer.
func SetHandler(h Handler) (previous Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	previous = handler
	handler = h
	return previous
}

// Raise invokes the installed Handler. In production this never returns.
// Components should prefer returning false/error over calling Raise;
// Raise is reserved for invariant violations the caller cannot recover
// from, per the design's fatal-error taxonomy.
func Raise(code Code, format string, args ...any) {
	handlerMu.RLock()
	h := handler
	handlerMu.RUnlock()
	h(code, fmt.Sprintf(format, args...))
}

// Assert raises CodeAssert with the given message if cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		Raise(CodeAssert, format, args...)
	}
}

// CountingHandler is a Handler that increments an internal counter instead
// of terminating, for use in unit tests that must verify a fatal condition
// was detected without killing the test binary. Mirrors
// Kit/System/_testsupport/ShutdownUnitTesting.h's counter-based mock.
type CountingHandler struct {
	count atomic.Int64
	last  atomic.Pointer[Error]
}

// Handler returns the Handler function to install via SetHandler.
func (c *CountingHandler) Handler() Handler {
	return func(code Code, message string) {
		c.count.Add(1)
		c.last.Store(&Error{Code: code, Message: message})
	}
}

// Count returns the number of times the handler has fired.
func (c *CountingHandler) Count() int64 { return c.count.Load() }

// Reset clears the counter and last-seen error.
func (c *CountingHandler) Reset() {
	c.count.Store(0)
	c.last.Store(nil)
}

// Last returns the most recent fatal condition observed, or nil.
func (c *CountingHandler) Last() *Error {
	return c.last.Load()
}
