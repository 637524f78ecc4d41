//go:build linux || darwin

package hosted

import (
	"time"

	"golang.org/x/sys/unix"
)

// monotonicMs reads CLOCK_MONOTONIC directly via golang.org/x/sys/unix
// instead of going through time.Now(): one file for the unix family, a
// portable fallback (clock_other.go) for anything else. The result is
// measured from CLOCK_MONOTONIC's own fixed, unspecified reference point;
// epoch is used only if ClockGettime fails, to fall back to time since
// epoch.
func monotonicMs(epoch time.Time) uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return uint64(time.Since(epoch).Milliseconds())
	}
	return uint64(ts.Sec)*1000 + uint64(ts.Nsec)/1e6
}
