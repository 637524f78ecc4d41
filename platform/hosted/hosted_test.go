package hosted_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Integerfox/kit.core-sub000/platform/hosted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendElapsedMsIsMonotonicNonDecreasing(t *testing.T) {
	b := hosted.New()
	first := b.ElapsedMs64()
	time.Sleep(5 * time.Millisecond)
	second := b.ElapsedMs64()
	assert.GreaterOrEqual(t, second, first)
}

func TestBackendSchedulingTogglable(t *testing.T) {
	b := hosted.New()
	assert.True(t, b.SchedulingEnabled())
	b.SetSchedulingEnabled(false)
	assert.False(t, b.SchedulingEnabled())
}

func TestRecursiveMutexAllowsNestedLockFromSameGoroutine(t *testing.T) {
	m := hosted.NewRecursiveMutex()
	m.Lock()
	m.Lock() // would deadlock on a plain sync.Mutex
	m.Unlock()
	m.Unlock()
}

func TestRecursiveMutexExcludesOtherGoroutines(t *testing.T) {
	m := hosted.NewRecursiveMutex()
	m.Lock()

	var wg sync.WaitGroup
	wg.Add(1)
	acquired := make(chan struct{})
	go func() {
		defer wg.Done()
		m.Lock()
		close(acquired)
		m.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second goroutine acquired lock while first goroutine still held it")
	case <-time.After(20 * time.Millisecond):
	}

	m.Unlock()
	wg.Wait()
}

func TestRecursiveMutexUnlockWithoutHoldPanics(t *testing.T) {
	m := hosted.NewRecursiveMutex()
	assert.Panics(t, func() { m.Unlock() })
}

func TestSemaphoreTryWaitConsumesOneSignal(t *testing.T) {
	s := hosted.NewSemaphore()
	assert.False(t, s.TryWait())
	s.Signal()
	assert.True(t, s.TryWait())
	assert.False(t, s.TryWait())
}

func TestSemaphoreSuSignalWakesBlockedWaiter(t *testing.T) {
	s := hosted.NewSemaphore()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	s.SuSignal()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after SuSignal")
	}
}

func TestSemaphoreTimedWaitTimesOut(t *testing.T) {
	s := hosted.NewSemaphore()
	start := time.Now()
	ok := s.TimedWait(10 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSemaphoreTimedWaitSucceedsWhenSignaled(t *testing.T) {
	s := hosted.NewSemaphore()
	go func() {
		time.Sleep(2 * time.Millisecond)
		s.Signal()
	}()
	ok := s.TimedWait(time.Second)
	require.True(t, ok)
}

func TestSemaphoreCoalescesRepeatedSignalsIntoSingleWakeEdge(t *testing.T) {
	s := hosted.NewSemaphore()
	s.Signal()
	s.Signal()
	s.Signal()
	assert.True(t, s.TryWait())
	assert.True(t, s.TryWait())
	assert.True(t, s.TryWait())
	assert.False(t, s.TryWait())
}
