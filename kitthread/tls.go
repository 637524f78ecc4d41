package kitthread

import (
	"sync"

	"github.com/Integerfox/kit.core-sub000/fault"
)

// Key identifies one thread-local storage slot, allocated once per
// process via NewKey and then used to Get/Set a per-thread value on any
// Thread. Each Key is an index into every Thread's fixed-size tls array.
type Key struct {
	index int
}

var (
	tlsMu       sync.Mutex
	tlsNextSlot int
)

// NewKey allocates the next TLS slot. Raises fault.CodeOSAL if capacity
// slots have already been allocated.
func NewKey(capacity int) Key {
	tlsMu.Lock()
	defer tlsMu.Unlock()
	if tlsNextSlot >= capacity {
		fault.Raise(fault.CodeOSAL, "kitthread: TLS slot capacity %d exhausted", capacity)
		return Key{index: -1}
	}
	k := Key{index: tlsNextSlot}
	tlsNextSlot++
	return k
}

// Get returns the value stored in slot k on thread t, or nil if never
// set.
func (t *Thread) Get(k Key) any {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if k.index < 0 || k.index >= len(t.tls) {
		fault.Raise(fault.CodeOSAL, "kitthread: TLS key out of range for thread %q", t.name)
		return nil
	}
	return t.tls[k.index]
}

// Set stores value in slot k on thread t.
func (t *Thread) Set(k Key, value any) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if k.index < 0 || k.index >= len(t.tls) {
		fault.Raise(fault.CodeOSAL, "kitthread: TLS key out of range for thread %q", t.name)
		return
	}
	t.tls[k.index] = value
}

// ResetTLSAllocatorForTests clears the global slot allocator. NewKey's
// counter is process-global state that would otherwise leak across
// table-driven test cases in this package's own tests.
func ResetTLSAllocatorForTests() {
	tlsMu.Lock()
	defer tlsMu.Unlock()
	tlsNextSlot = 0
}
