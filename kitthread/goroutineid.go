package kitthread

import "runtime"

// currentGoroutineID identifies the calling goroutine for the registry's
// byGID index, using the same runtime.Stack parsing trick as the
// teacher's eventloop.getGoroutineID() and platform/hosted's copy of it.
// It is duplicated locally (rather than exported from platform/hosted)
// because this package's use is registry bookkeeping, a different
// concern from that package's mutex-ownership tracking.
func currentGoroutineID() uint64 {
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

func lockOSThread()   { runtime.LockOSThread() }
func unlockOSThread() { runtime.UnlockOSThread() }
