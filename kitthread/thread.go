// Package kitthread implements the Thread abstraction: a named,
// creatable/destroyable unit of concurrency with a built-in counting
// semaphore and a fixed-size thread-local storage array, plus the
// process-wide registry of active threads. A ListItem-derived class with
// static create/destroy/getCurrent/traverse methods is generalized onto
// goroutines here: a Thread wraps one goroutine, identified by parsing
// its runtime.Stack dump for a numeric goroutine ID rather than by a
// native OS thread handle.
package kitthread

import (
	"sync"
	"time"

	"github.com/Integerfox/kit.core-sub000/container"
	"github.com/Integerfox/kit.core-sub000/fault"
	"github.com/Integerfox/kit.core-sub000/kitconfig"
	"github.com/Integerfox/kit.core-sub000/platform"
	"github.com/Integerfox/kit.core-sub000/platform/hosted"
)

// Runnable is the unit of work a Thread executes.
type Runnable interface {
	// Run executes on the new thread and returns when the thread's work is
	// done.
	Run()

	// PleaseStop requests cooperative termination. It must not block; the
	// Runnable's own Run loop is responsible for noticing the request and
	// returning.
	PleaseStop()
}

// Variant selects how Create schedules the thread's goroutine.
type Variant int

const (
	// Preemptive is a plain goroutine, scheduled freely by the Go runtime.
	// This is the default and covers the large majority of callers.
	Preemptive Variant = iota
	// PinnedCore locks the goroutine to one OS thread for its lifetime
	// (runtime.LockOSThread), for Runnables that depend on thread-affine
	// state (e.g. a library with thread-local OS handles).
	PinnedCore
	// CooperativeMain runs the Runnable synchronously on the calling
	// goroutine instead of spawning one; Create blocks until Run returns.
	// This is how a process's single cooperative main loop registers
	// itself as a Thread without a second goroutine.
	CooperativeMain
)

// Thread is one registered unit of concurrency. The zero value is not
// usable; obtain a Thread via Create.
type Thread struct {
	container.ExtendedListItem // active-thread list linkage

	name      string
	goroutine uint64
	variant   Variant
	runnable  Runnable
	sem       platform.Semaphore
	tls       []any
	active    bool
	doneCh    chan struct{}
}

// Link implements container.SElem for the active-thread list.
func (t *Thread) Link() *container.ListItem { return &t.ExtendedListItem.ListItem }

// DLink implements container.DElem for the active-thread list.
func (t *Thread) DLink() *container.ExtendedListItem { return &t.ExtendedListItem }

// Name returns the thread's name as given to Create.
func (t *Thread) Name() string { return t.name }

// GoroutineID returns the underlying goroutine's numeric ID. This is an
// opaque diagnostic value, not a handle: it must never be used to look
// another Thread up other than through the registry.
func (t *Thread) GoroutineID() uint64 { return t.goroutine }

// IsActive reports whether the thread's Runnable is still executing.
func (t *Thread) IsActive() bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return t.active
}

// Runnable returns the Thread's Runnable instance.
func (t *Thread) Runnable() Runnable { return t.runnable }

// Semaphore returns the thread's built-in signal semaphore, for
// components (eventloop.Loop, the watchdog adapters) that need to bind a
// wakeup source to a specific thread rather than operating on "the
// current thread" implicitly.
func (t *Thread) Semaphore() platform.Semaphore { return t.sem }

// Signal posts to the thread's built-in semaphore, usable for
// inter-thread communication.
func (t *Thread) Signal() { t.sem.Signal() }

// SuSignal is the ISR-safe variant of Signal.
func (t *Thread) SuSignal() { t.sem.SuSignal() }

// registry holds the package-wide active-thread bookkeeping. Two distinct
// mutexes are used: createMu serializes Create calls (Destroy does not
// take it), while mu guards the active-thread list and
// the goroutine-ID index, the structure most frequently read by
// GetCurrent/Traverse. Using one mutex for both would force every lookup
// to contend with slow goroutine-creation work.
var registry = struct {
	createMu sync.Mutex

	mu      sync.Mutex
	list    container.DoublyList[*Thread]
	byGID   map[uint64]*Thread
}{byGID: make(map[uint64]*Thread)}

// Create starts a new thread running runnable and registers it in the
// active-thread list. name is used only for diagnostics (trace lines,
// panics). tlsSlots overrides kitconfig.DefaultTLSSlotCount when
// positive.
func Create(runnable Runnable, name string, variant Variant, tlsSlots int) *Thread {
	if tlsSlots <= 0 {
		tlsSlots = kitconfig.DefaultTLSSlotCount
	}

	registry.createMu.Lock()
	defer registry.createMu.Unlock()

	t := &Thread{
		name:     name,
		variant:  variant,
		runnable: runnable,
		sem:      hosted.NewSemaphore(),
		tls:      make([]any, tlsSlots),
		active:   true,
		doneCh:   make(chan struct{}),
	}

	start := func() {
		t.goroutine = currentGoroutineID()
		addToRegistry(t)
		defer func() {
			removeFromRegistry(t)
			registry.mu.Lock()
			t.active = false
			registry.mu.Unlock()
			close(t.doneCh)
		}()
		t.runnable.Run()
	}

	switch variant {
	case CooperativeMain:
		start()
	case PinnedCore:
		ready := make(chan struct{})
		go func() {
			lockOSThread()
			defer unlockOSThread()
			close(ready)
			start()
		}()
		<-ready
	default:
		go start()
	}

	return t
}

// Destroy requests cooperative termination of t by calling
// t.Runnable().PleaseStop(), then waits up to delay for the thread's Run
// to return. Go offers no mechanism for brute-force thread termination,
// so after the delay elapses Destroy simply returns, leaving the
// goroutine to exit on its own once it notices the stop request.
func Destroy(t *Thread, delay time.Duration) {
	t.runnable.PleaseStop()
	if delay <= 0 {
		return
	}
	select {
	case <-t.doneCh:
	case <-time.After(delay):
	}
}

// WaitForExit waits for the goroutine to fully exit, with no timeout.
func (t *Thread) WaitForExit() { <-t.doneCh }

func addToRegistry(t *Thread) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.list.PutLast(t)
	registry.byGID[t.goroutine] = t
}

func removeFromRegistry(t *Thread) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.list.Remove(t)
	delete(registry.byGID, t.goroutine)
}

// Wait blocks the calling thread until its built-in semaphore is
// signaled. Raises fault.CodeOSAL (via GetCurrent) if called from a
// goroutine that was not created with Create.
func Wait() { GetCurrent().sem.Wait() }

// TryWait is the non-blocking form of Wait.
func TryWait() bool { return GetCurrent().sem.TryWait() }

// TimedWait is the bounded-blocking form of Wait.
func TimedWait(timeout time.Duration) bool { return GetCurrent().sem.TimedWait(timeout) }

// GetCurrent returns the Thread registered for the calling goroutine,
// raising fault.CodeOSAL if the calling goroutine was never created via
// Create.
func GetCurrent() *Thread {
	t, ok := TryGetCurrent()
	if !ok {
		fault.Raise(fault.CodeOSAL, "kitthread: current goroutine is not a registered Thread")
	}
	return t
}

// TryGetCurrent is the non-fatal form of GetCurrent.
func TryGetCurrent() (*Thread, bool) {
	gid := currentGoroutineID()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	t, ok := registry.byGID[gid]
	return t, ok
}

// TraverserStatus controls whether Traverse continues or stops early.
type TraverserStatus int

const (
	// Continue tells Traverse to visit the next thread.
	Continue TraverserStatus = iota
	// Abort tells Traverse to stop immediately.
	Abort
)

// Traverse calls fn once per active thread, in registration order,
// holding the registry lock for the duration so the walk is protected
// against concurrent Create/Destroy. fn returning Abort stops the walk
// early.
func Traverse(fn func(*Thread) TraverserStatus) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	th, ok := registry.list.First()
	for ok {
		if fn(th) == Abort {
			return
		}
		th, ok = registry.list.Next(th)
	}
}
