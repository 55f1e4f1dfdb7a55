package hm1x

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Timing defaults of the module firmware.
const (
	DefaultBaudRate          = 9600
	DefaultCommandTimeout    = 1000 * time.Millisecond
	DefaultResponseTimeout   = 100 * time.Millisecond
	DefaultPollDelay         = 10 * time.Millisecond
	DefaultRestartDelay      = 5 * time.Second
	DefaultProbeRetryDelay   = 500 * time.Millisecond
	DefaultMaxResponseLength = 64
)

// Config holds the settings a Device is created with. Use NewConfigBuilder
// to assemble one.
type Config struct {
	dialer            Dialer
	model             Model
	baudRate          int
	commandTimeout    time.Duration
	responseTimeout   time.Duration
	pollDelay         time.Duration
	restartDelay      time.Duration
	probeRetryDelay   time.Duration
	maxResponseLength int
	skipCheck         bool
	logger            *slog.Logger
}

func (c *Config) setDefaults() {
	if c.baudRate == 0 {
		c.baudRate = DefaultBaudRate
	}
	if c.commandTimeout == 0 {
		c.commandTimeout = DefaultCommandTimeout
	}
	if c.responseTimeout == 0 {
		c.responseTimeout = DefaultResponseTimeout
	}
	if c.pollDelay == 0 {
		c.pollDelay = DefaultPollDelay
	}
	if c.restartDelay == 0 {
		c.restartDelay = DefaultRestartDelay
	}
	if c.probeRetryDelay == 0 {
		c.probeRetryDelay = DefaultProbeRetryDelay
	}
	if c.maxResponseLength == 0 {
		c.maxResponseLength = DefaultMaxResponseLength
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	if _, err := CapabilitiesFor(c.model); err != nil {
		return err
	}
	if _, err := BaudFromRate(c.baudRate); err != nil {
		return err
	}
	if c.maxResponseLength < 0 {
		return fmt.Errorf("%w: negative max response length", ErrInvalidParameter)
	}
	for name, d := range map[string]time.Duration{
		"command timeout":   c.commandTimeout,
		"response timeout":  c.responseTimeout,
		"poll delay":        c.pollDelay,
		"restart delay":     c.restartDelay,
		"probe retry delay": c.probeRetryDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%w: negative %s %s", ErrInvalidParameter, name, d)
		}
	}
	return nil
}

// Model returns the configured module variant.
func (c Config) Model() Model {
	return c.model
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns an empty builder; unset fields take defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets how the transport is opened. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithModel selects the capability record. Defaults to HM10.
func (b *ConfigBuilder) WithModel(m Model) *ConfigBuilder {
	b.config.model = m
	return b
}

// WithBaudRate sets the line speed the module is expected to use. It is the
// target of the one force-baud recovery New attempts.
func (b *ConfigBuilder) WithBaudRate(rate int) *ConfigBuilder {
	b.config.baudRate = rate
	return b
}

// WithCommandTimeout bounds exact-match exchanges.
func (b *ConfigBuilder) WithCommandTimeout(d time.Duration) *ConfigBuilder {
	b.config.commandTimeout = d
	return b
}

// WithResponseTimeout sets how long capture exchanges wait before draining.
func (b *ConfigBuilder) WithResponseTimeout(d time.Duration) *ConfigBuilder {
	b.config.responseTimeout = d
	return b
}

// WithPollDelay sets the sleep between two availability checks of an
// exact-match exchange.
func (b *ConfigBuilder) WithPollDelay(d time.Duration) *ConfigBuilder {
	b.config.pollDelay = d
	return b
}

// WithRestartDelay sets how long New waits for the module to reboot during
// recovery.
func (b *ConfigBuilder) WithRestartDelay(d time.Duration) *ConfigBuilder {
	b.config.restartDelay = d
	return b
}

// WithProbeRetryDelay sets the pause before the second probe in New.
func (b *ConfigBuilder) WithProbeRetryDelay(d time.Duration) *ConfigBuilder {
	b.config.probeRetryDelay = d
	return b
}

// WithMaxResponseLength bounds captured replies; larger ones fail with
// ErrAllocation.
func (b *ConfigBuilder) WithMaxResponseLength(n int) *ConfigBuilder {
	b.config.maxResponseLength = n
	return b
}

// WithCheckOnBegin controls whether New probes and configures the module.
// Disabling it opens the transport without a single exchange.
func (b *ConfigBuilder) WithCheckOnBegin(check bool) *ConfigBuilder {
	b.config.skipCheck = !check
	return b
}

// WithLogger sets the logger. Defaults to discarding everything.
func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// Build validates the settings and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	c.setDefaults()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
