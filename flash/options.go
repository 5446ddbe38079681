package flash

import "time"

// Config holds the transfer engine tunables.
type Config struct {
	// Retries is the attempt ceiling for one report transmission.
	Retries int

	// RetryDelay is the backoff between failed attempts on one report.
	RetryDelay time.Duration

	// FirstBlockDelay is the pause after the first block of an operation,
	// covering the bootloader's full erase latency.
	FirstBlockDelay time.Duration

	// BlockDelay is the pacing pause after every subsequent block.
	BlockDelay time.Duration

	// SettleDelay is the pause after the commit sentinel.
	SettleDelay time.Duration

	// sleep is the pacing primitive, replaceable so tests run without
	// wall-clock waits.
	sleep func(time.Duration)
}

func defaultConfig() Config {
	return Config{
		Retries:         5,
		RetryDelay:      100 * time.Millisecond,
		FirstBlockDelay: 3 * time.Second,
		BlockDelay:      5 * time.Millisecond,
		SettleDelay:     250 * time.Millisecond,
		sleep:           time.Sleep,
	}
}

// Option configures the transfer engine.
type Option func(*Config)

// WithRetries sets the attempt ceiling for one report transmission.
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.Retries = retries
		}
	}
}

// WithRetryDelay sets the backoff between failed attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithPacing sets the post-first-block and inter-block pauses.
func WithPacing(first, between time.Duration) Option {
	return func(c *Config) {
		c.FirstBlockDelay = first
		c.BlockDelay = between
	}
}

// WithSettleDelay sets the pause after the commit sentinel.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		c.SettleDelay = d
	}
}

// WithSleepFunc replaces the pacing primitive.
func WithSleepFunc(sleep func(time.Duration)) Option {
	return func(c *Config) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}
