package eventloop_test

import (
	"testing"
	"time"

	"github.com/Integerfox/kit.core-sub000/eventloop"
	"github.com/Integerfox/kit.core-sub000/platform/hosted"
	"github.com/Integerfox/kit.core-sub000/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalEventWakesAndDispatchesSubscribedGroup(t *testing.T) {
	b := hosted.New()
	sem := hosted.NewSemaphore()
	loop := eventloop.NewLoop(b, sem, eventloop.WithTickPeriod(time.Second))
	loop.StartEventLoop()

	var gotChanged uint32
	loop.Subscribe(0b0011, func(changed uint32) { gotChanged = changed })

	loop.SignalEvent(1)
	ran := loop.WaitAndProcessEvents(true)

	assert.True(t, ran)
	assert.EqualValues(t, 0b0010, gotChanged)
}

func TestUnsubscribedBitsDoNotInvokeUnrelatedGroup(t *testing.T) {
	b := hosted.New()
	sem := hosted.NewSemaphore()
	loop := eventloop.NewLoop(b, sem, eventloop.WithTickPeriod(time.Second))
	loop.StartEventLoop()

	called := false
	loop.Subscribe(0b0100, func(changed uint32) { called = true })

	loop.SignalEvent(0) // bit 0, not in the subscribed mask
	loop.WaitAndProcessEvents(true)

	assert.False(t, called)
}

func TestPleaseStopEndsRun(t *testing.T) {
	b := hosted.New()
	sem := hosted.NewSemaphore()
	loop := eventloop.NewLoop(b, sem, eventloop.WithTickPeriod(5*time.Millisecond))
	loop.StartEventLoop()

	done := make(chan struct{})
	go func() {
		loop.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	loop.PleaseStop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after PleaseStop")
	}
}

func TestTimerAttachedToLoopFiresDuringWaitAndProcessEvents(t *testing.T) {
	b := hosted.New()
	sem := hosted.NewSemaphore()
	loop := eventloop.NewLoop(b, sem, eventloop.WithTickPeriod(2*time.Millisecond))
	loop.StartEventLoop()

	fired := make(chan struct{})
	tm := timer.New(loop.Timers(), func() { close(fired) })
	tm.Start(1)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		loop.WaitAndProcessEvents(false)
		select {
		case <-fired:
			return
		default:
		}
	}
	t.Fatal("timer never fired via WaitAndProcessEvents")
}

func TestMailboxSkipsWaitWhenMessagePending(t *testing.T) {
	b := hosted.New()
	sem := hosted.NewSemaphore()
	mb := &stubMailbox{pending: true}
	loop := eventloop.NewLoop(b, sem, eventloop.WithTickPeriod(time.Second), eventloop.WithMailbox(mb))
	loop.StartEventLoop()

	start := time.Now()
	loop.RunOnce()
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.True(t, mb.processed)
}

type stubMailbox struct {
	pending   bool
	processed bool
}

func (m *stubMailbox) HasPendingMessage() bool { return m.pending }
func (m *stubMailbox) ProcessMessages()        { m.processed = true; m.pending = false }

func TestSchedulerAttachmentInvokedFromRun(t *testing.T) {
	b := hosted.New()
	sem := hosted.NewSemaphore()
	sched := &stubScheduler{}
	loop := eventloop.NewLoop(b, sem, eventloop.WithTickPeriod(2*time.Millisecond), eventloop.WithScheduler(sched))
	loop.StartEventLoop()

	loop.RunOnce()
	require.True(t, sched.called)
}

type stubScheduler struct{ called bool }

func (s *stubScheduler) ExecuteScheduler(nowMs uint64) bool {
	s.called = true
	return false
}
