//go:build !linux && !darwin

package hosted

import "time"

// monotonicMs falls back to the standard library's monotonic clock
// reading on platforms where golang.org/x/sys/unix's ClockGettime isn't
// available (e.g. Windows).
func monotonicMs(epoch time.Time) uint64 {
	return uint64(time.Since(epoch).Milliseconds())
}
