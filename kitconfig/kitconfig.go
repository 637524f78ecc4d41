// Package kitconfig assembles the process-wide tunables threaded through
// kit.Initialize: event-loop tick period, TLS slot count, watchdog
// timeout/tick-divider, and the default trace level, built with the same
// functional-options pattern used throughout this module. There is no
// env/file-backed configuration layer: this is an embedded target with
// no filesystem in scope, so every Option is supplied by the calling
// application's own main/init code.
package kitconfig

import "github.com/Integerfox/kit.core-sub000/trace"

const (
	DefaultTickPeriodMs       uint32 = 10
	DefaultTLSSlotCount       int    = 8
	DefaultWatchdogTimeoutMs  uint32 = 2000
	DefaultWatchdogTickDivider uint32 = 10
)

// Config holds the resolved, immutable configuration for one process.
type Config struct {
	TickPeriodMs        uint32
	TLSSlotCount        int
	WatchdogTimeoutMs   uint32
	WatchdogTickDivider uint32
	DefaultTraceLevel   trace.Level
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithTickPeriod sets the event loop's tick period in milliseconds.
func WithTickPeriod(ms uint32) Option {
	return func(c *Config) { c.TickPeriodMs = ms }
}

// WithTLSSlotCount sets the number of thread-local storage slots available
// per Thread.
func WithTLSSlotCount(n int) Option {
	return func(c *Config) { c.TLSSlotCount = n }
}

// WithWatchdogTimeout sets the Supervisor's default per-thread timeout.
func WithWatchdogTimeout(ms uint32) Option {
	return func(c *Config) { c.WatchdogTimeoutMs = ms }
}

// WithWatchdogTickDivider sets how many event-loop iterations elapse
// between Supervisor monitoring passes.
func WithWatchdogTickDivider(n uint32) Option {
	return func(c *Config) { c.WatchdogTickDivider = n }
}

// WithDefaultTraceLevel sets the trace.Level installed at Initialize time.
func WithDefaultTraceLevel(l trace.Level) Option {
	return func(c *Config) { c.DefaultTraceLevel = l }
}

// Resolve builds a Config from defaults plus the given Options, applied in
// order (later Options win on conflicting fields).
func Resolve(opts ...Option) Config {
	cfg := Config{
		TickPeriodMs:        DefaultTickPeriodMs,
		TLSSlotCount:        DefaultTLSSlotCount,
		WatchdogTimeoutMs:   DefaultWatchdogTimeoutMs,
		WatchdogTickDivider: DefaultWatchdogTickDivider,
		DefaultTraceLevel:   trace.LevelNone,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
