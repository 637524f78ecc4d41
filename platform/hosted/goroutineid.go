package hosted

import "runtime"

// getGoroutineID parses the current goroutine's numeric ID out of a
// runtime.Stack dump, letting RecursiveMutex tell whether the calling
// goroutine already owns the lock without a dedicated per-goroutine
// context value.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
