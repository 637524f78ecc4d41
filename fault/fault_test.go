package fault_test

import (
	"testing"

	"github.com/Integerfox/kit.core-sub000/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingHandlerCapturesRaise(t *testing.T) {
	var counter fault.CountingHandler
	prev := fault.SetHandler(counter.Handler())
	defer fault.SetHandler(prev)

	fault.Raise(fault.CodeContainer, "item %q already in a list", "timer-0")

	require.EqualValues(t, 1, counter.Count())
	last := counter.Last()
	require.NotNil(t, last)
	assert.Equal(t, fault.CodeContainer, last.Code)
	assert.Contains(t, last.Message, "timer-0")
}

func TestAssertOnlyRaisesWhenFalse(t *testing.T) {
	var counter fault.CountingHandler
	prev := fault.SetHandler(counter.Handler())
	defer fault.SetHandler(prev)

	fault.Assert(true, "should not fire")
	assert.EqualValues(t, 0, counter.Count())

	fault.Assert(false, "should fire")
	assert.EqualValues(t, 1, counter.Count())
}

func TestCodeStringTaxonomy(t *testing.T) {
	cases := map[fault.Code]string{
		fault.CodeContainer:         "CONTAINER",
		fault.CodeOSAL:              "OSAL",
		fault.CodeMemory:            "MEMORY",
		fault.CodeFSMEventOverflow:  "FSM_EVENT_OVERFLOW",
		fault.CodeWatchdog:          "WATCHDOG",
		fault.CodeAssert:            "ASSERT",
		fault.CodeFailure:           "FAILURE",
		fault.CodeStreamIO:          "STREAMIO",
		fault.CodeDriver:            "DRIVER",
		fault.CodeITC:               "ITC",
		fault.CodeDataModel:         "DATA_MODEL",
	}
	for code, want := range cases {
		assert.Equal(t, want, code.String())
	}
}

func TestDefaultHandlerPanics(t *testing.T) {
	assert.Panics(t, func() {
		fault.Raise(fault.CodeOSAL, "boom")
	})
}
