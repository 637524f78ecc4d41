package kitconfig_test

import (
	"testing"

	"github.com/Integerfox/kit.core-sub000/kitconfig"
	"github.com/Integerfox/kit.core-sub000/trace"
	"github.com/stretchr/testify/assert"
)

func TestResolveDefaults(t *testing.T) {
	cfg := kitconfig.Resolve()
	assert.Equal(t, kitconfig.DefaultTickPeriodMs, cfg.TickPeriodMs)
	assert.Equal(t, kitconfig.DefaultTLSSlotCount, cfg.TLSSlotCount)
	assert.Equal(t, kitconfig.DefaultWatchdogTimeoutMs, cfg.WatchdogTimeoutMs)
	assert.Equal(t, kitconfig.DefaultWatchdogTickDivider, cfg.WatchdogTickDivider)
	assert.Equal(t, trace.LevelNone, cfg.DefaultTraceLevel)
}

func TestResolveAppliesOptionsInOrder(t *testing.T) {
	cfg := kitconfig.Resolve(
		kitconfig.WithTickPeriod(5),
		kitconfig.WithTLSSlotCount(16),
		kitconfig.WithWatchdogTimeout(800),
		kitconfig.WithWatchdogTickDivider(4),
		kitconfig.WithDefaultTraceLevel(trace.LevelVerbose),
		nil, // nil options are ignored
	)
	assert.EqualValues(t, 5, cfg.TickPeriodMs)
	assert.Equal(t, 16, cfg.TLSSlotCount)
	assert.EqualValues(t, 800, cfg.WatchdogTimeoutMs)
	assert.EqualValues(t, 4, cfg.WatchdogTickDivider)
	assert.Equal(t, trace.LevelVerbose, cfg.DefaultTraceLevel)
}
