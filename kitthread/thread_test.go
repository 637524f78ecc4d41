package kitthread_test

import (
	"testing"
	"time"

	"github.com/Integerfox/kit.core-sub000/fault"
	"github.com/Integerfox/kit.core-sub000/kitthread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunnable struct {
	startedCh chan struct{}
	stopCh    chan struct{}
}

func newStubRunnable() *stubRunnable {
	return &stubRunnable{startedCh: make(chan struct{}), stopCh: make(chan struct{})}
}

func (r *stubRunnable) Run() {
	close(r.startedCh)
	<-r.stopCh
}

func (r *stubRunnable) PleaseStop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
}

func TestCreatePreemptiveRegistersAndGetCurrentWorks(t *testing.T) {
	r := newStubRunnable()
	var seen *kitthread.Thread
	gotCurrent := make(chan struct{})
	r2 := &runAndCapture{inner: r, capture: &seen, done: gotCurrent}

	th := kitthread.Create(r2, "worker-1", kitthread.Preemptive, 0)
	<-gotCurrent
	assert.Equal(t, th, seen)
	assert.Equal(t, "worker-1", th.Name())
	assert.True(t, th.IsActive())

	r.PleaseStop()
	th.WaitForExit()
	assert.False(t, th.IsActive())
}

// runAndCapture wraps a Runnable, recording the Thread visible to
// GetCurrent once Run has started, so the test can assert registry
// wiring happened before the inner Runnable blocks.
type runAndCapture struct {
	inner   *stubRunnable
	capture **kitthread.Thread
	done    chan struct{}
}

func (r *runAndCapture) Run() {
	*r.capture = kitthread.GetCurrent()
	close(r.done)
	r.inner.Run()
}

func (r *runAndCapture) PleaseStop() { r.inner.PleaseStop() }

func TestTryGetCurrentFalseOnUnregisteredGoroutine(t *testing.T) {
	_, ok := kitthread.TryGetCurrent()
	assert.False(t, ok)
}

func TestGetCurrentRaisesFaultWhenUnregistered(t *testing.T) {
	ch := &fault.CountingHandler{}
	prev := fault.SetHandler(ch.Handler())
	defer fault.SetHandler(prev)

	kitthread.GetCurrent()
	assert.Equal(t, int64(1), ch.Count())
	assert.Equal(t, fault.CodeOSAL, ch.Last().Code)
}

func TestCooperativeMainRunsSynchronouslyOnCallingGoroutine(t *testing.T) {
	r := newStubRunnable()
	close(r.stopCh) // Run returns immediately
	before := make(chan struct{})
	go func() { close(before) }()
	<-before

	th := kitthread.Create(r, "main", kitthread.CooperativeMain, 0)
	assert.False(t, th.IsActive())
}

func TestDestroyWaitsUpToDelayThenReturns(t *testing.T) {
	r := newStubRunnable()
	th := kitthread.Create(r, "worker-2", kitthread.Preemptive, 0)
	<-r.startedCh

	start := time.Now()
	kitthread.Destroy(th, 50*time.Millisecond)
	assert.False(t, th.IsActive())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestTraverseVisitsActiveThreadsAndCanAbortEarly(t *testing.T) {
	r1, r2 := newStubRunnable(), newStubRunnable()
	t1 := kitthread.Create(r1, "traverse-1", kitthread.Preemptive, 0)
	t2 := kitthread.Create(r2, "traverse-2", kitthread.Preemptive, 0)
	defer func() {
		kitthread.Destroy(t1, 50*time.Millisecond)
		kitthread.Destroy(t2, 50*time.Millisecond)
	}()
	<-r1.startedCh
	<-r2.startedCh

	seen := map[string]bool{}
	kitthread.Traverse(func(th *kitthread.Thread) kitthread.TraverserStatus {
		seen[th.Name()] = true
		return kitthread.Continue
	})
	assert.True(t, seen["traverse-1"])
	assert.True(t, seen["traverse-2"])

	visits := 0
	kitthread.Traverse(func(th *kitthread.Thread) kitthread.TraverserStatus {
		visits++
		return kitthread.Abort
	})
	assert.Equal(t, 1, visits)
}

func TestThreadSignalWakesWaitOnSameThread(t *testing.T) {
	woke := make(chan struct{})
	r := &waitingRunnable{stopCh: make(chan struct{}), woke: woke}
	th := kitthread.Create(r, "waiter", kitthread.Preemptive, 0)
	defer kitthread.Destroy(th, 50*time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	th.Signal()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("thread did not wake after Signal")
	}
}

type waitingRunnable struct {
	stopCh chan struct{}
	woke   chan struct{}
}

func (r *waitingRunnable) Run() {
	kitthread.Wait()
	close(r.woke)
	<-r.stopCh
}

func (r *waitingRunnable) PleaseStop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
}

func TestTLSGetSetRoundTrips(t *testing.T) {
	kitthread.ResetTLSAllocatorForTests()
	key := kitthread.NewKey(4)

	r := newStubRunnable()
	th := kitthread.Create(r, "tls-thread", kitthread.Preemptive, 4)
	defer kitthread.Destroy(th, 50*time.Millisecond)
	<-r.startedCh

	assert.Nil(t, th.Get(key))
	th.Set(key, "hello")
	assert.Equal(t, "hello", th.Get(key))
}

func TestNewKeyRaisesFaultWhenCapacityExhausted(t *testing.T) {
	kitthread.ResetTLSAllocatorForTests()
	ch := &fault.CountingHandler{}
	prev := fault.SetHandler(ch.Handler())
	defer fault.SetHandler(prev)

	kitthread.NewKey(1)
	kitthread.NewKey(1)
	require.Equal(t, int64(1), ch.Count())
	assert.Equal(t, fault.CodeOSAL, ch.Last().Code)
}
