package debugger

import (
	"time"

	"github.com/ecgc-project/ecgc-util/protocol"
)

// Config holds the debugger configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// BurstSize is the maximum number of data bytes per read/write
	// burst, between 1 and protocol.MaxBurstSize
	BurstSize int

	// CommandDelay is an extra pause after each command frame, for
	// setups where the programmer-to-cartridge link runs slowly
	CommandDelay time.Duration
}

func defaultConfig() Config {
	return Config{
		BurstSize: protocol.MaxBurstSize,
	}
}

// Option is a functional option for configuring the Debugger.
type Option func(*Config)

// WithLogger sets a logger for the debugger's operations.
//
// Example:
//
//	dbg := debugger.New(port, debugger.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithBurstSize limits the number of data bytes per burst. Values
// outside 1 to protocol.MaxBurstSize are ignored.
func WithBurstSize(size int) Option {
	return func(c *Config) {
		if size >= 1 && size <= protocol.MaxBurstSize {
			c.BurstSize = size
		}
	}
}

// WithCommandDelay inserts a pause after every command frame sent.
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}

// Logger is an optional logging interface that can be provided to the
// debugger. This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
