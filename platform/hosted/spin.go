package hosted

import "runtime"

// spinYield gives the scheduler a chance to run the goroutine currently
// holding a contended RecursiveMutex.
func spinYield() { runtime.Gosched() }
