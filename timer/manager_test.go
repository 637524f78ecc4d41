package timer_test

import (
	"testing"

	"github.com/Integerfox/kit.core-sub000/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerExpiresAfterDuration(t *testing.T) {
	m := timer.NewManager()
	m.StartManager(0)

	fired := false
	tm := timer.New(m, func() { fired = true })
	tm.Start(100)

	m.ProcessTimers(50)
	assert.False(t, fired)
	assert.True(t, tm.IsRunning())

	m.ProcessTimers(100)
	assert.True(t, fired)
	assert.False(t, tm.IsRunning())
}

func TestStopPreventsExpiry(t *testing.T) {
	m := timer.NewManager()
	m.StartManager(0)

	fired := false
	tm := timer.New(m, func() { fired = true })
	tm.Start(100)
	tm.Stop()

	m.ProcessTimers(200)
	assert.False(t, fired)
}

func TestRestartingRunningTimerResetsCountdown(t *testing.T) {
	m := timer.NewManager()
	m.StartManager(0)

	fired := false
	tm := timer.New(m, func() { fired = true })
	tm.Start(100)
	m.ProcessTimers(80)
	tm.Start(100) // restart: should count another full 100ms from here
	m.ProcessTimers(160)
	assert.False(t, fired)
	m.ProcessTimers(180)
	assert.True(t, fired)
}

func TestTimerStartedFromAnotherTimersCallbackDeferredToNextTick(t *testing.T) {
	m := timer.NewManager()
	m.StartManager(0)

	var second *timer.Timer
	secondFired := false
	second = timer.New(m, func() { secondFired = true })

	first := timer.New(m, func() {
		second.Start(10) // re-entrant attach during ProcessTimers
	})
	first.Start(50)

	m.ProcessTimers(50)
	assert.False(t, secondFired, "second timer must not fire in the same tick it was attached")
	assert.True(t, second.IsRunning())

	m.ProcessTimers(60)
	assert.True(t, secondFired)
}

func TestStopCalledFromAnotherTimersCallbackCancelsPendingFire(t *testing.T) {
	m := timer.NewManager()
	m.StartManager(0)

	bFired := false
	var b *timer.Timer
	b = timer.New(m, func() { bFired = true })

	a := timer.New(m, func() { b.Stop() })

	a.Start(50)
	b.Start(50)

	m.ProcessTimers(50)
	assert.False(t, bFired, "b's callback must not fire once a's callback stopped it in the same tick")
}

func TestAreActiveTimersReflectsAttachAndExpiry(t *testing.T) {
	m := timer.NewManager()
	m.StartManager(0)
	require.False(t, m.AreActiveTimers())

	tm := timer.New(m, func() {})
	tm.Start(10)
	assert.True(t, m.AreActiveTimers())

	m.ProcessTimers(10)
	assert.False(t, m.AreActiveTimers())
}

func TestProcessTimersHandlesUint32Wraparound(t *testing.T) {
	m := timer.NewManager()
	const nearMax uint32 = 0xFFFFFFF0
	m.StartManager(nearMax)

	fired := false
	tm := timer.New(m, func() { fired = true })
	tm.Start(32) // expires after wraparound, at nearMax+32 == 16 (mod 2^32)

	m.ProcessTimers(16) // wrapped value
	assert.True(t, fired)
}
