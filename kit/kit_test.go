package kit_test

import (
	"testing"
	"time"

	"github.com/Integerfox/kit.core-sub000/fault"
	"github.com/Integerfox/kit.core-sub000/kit"
	"github.com/Integerfox/kit.core-sub000/kitconfig"
	"github.com/Integerfox/kit.core-sub000/platform/simtime"
	"github.com/Integerfox/kit.core-sub000/startup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetAll(t *testing.T) {
	t.Cleanup(func() {
		kit.ResetForTests()
		startup.ResetForTests()
		startup.ResetShutdownForTests()
	})
	kit.ResetForTests()
	startup.ResetForTests()
	startup.ResetShutdownForTests()
}

func TestInitializeRunsStartupHooksOnce(t *testing.T) {
	resetAll(t)
	backend := simtime.New()

	count := 0
	startup.NewHook(startup.System, func(startup.InitLevel) { count++ })

	kit.Initialize(backend)
	kit.Initialize(backend)

	assert.Equal(t, 1, count)
}

func TestEnableSchedulingTogglesSimtimeBackend(t *testing.T) {
	resetAll(t)
	backend := simtime.New()
	kit.Initialize(backend)

	require.False(t, kit.IsSchedulingEnabled())
	kit.EnableScheduling()
	assert.True(t, kit.IsSchedulingEnabled())
}

func TestSleepBlocksOnBackendUntilAdvance(t *testing.T) {
	resetAll(t)
	backend := simtime.New()
	kit.Initialize(backend)

	done := make(chan struct{})
	go func() {
		kit.Sleep(50 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Sleep returned before the virtual clock advanced")
	case <-time.After(20 * time.Millisecond):
	}

	backend.Advance(50 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sleep never returned after Advance")
	}
}

func TestFaultRaiseRoutesThroughProductionHandlerToShutdown(t *testing.T) {
	resetAll(t)
	backend := simtime.New()
	kit.Initialize(backend)

	defer fault.SetHandler(func(code fault.Code, message string) {
		panic(&fault.Error{Code: code, Message: message})
	})

	fault.Raise(fault.CodeWatchdog, "supervisor detected an unresponsive thread")

	calls := backend.ShutdownCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, startup.ExitWatchdog, calls[0])
}

func TestConfigResolvesOptions(t *testing.T) {
	resetAll(t)
	backend := simtime.New()
	kit.Initialize(backend, kitconfig.WithTickPeriod(25), kitconfig.WithTLSSlotCount(4))

	cfg := kit.Config()
	assert.EqualValues(t, 25, cfg.TickPeriodMs)
	assert.Equal(t, 4, cfg.TLSSlotCount)
}
