package programmer

import (
	"github.com/ecgc-project/ecgc-util/debugger"
)

// DefaultChunkSize is the number of bytes moved per chunk, and so the
// granularity of progress reporting.
const DefaultChunkSize = 1024

// ProgressFunc is called after every completed chunk with the number
// of bytes transferred so far and the total for the operation.
type ProgressFunc func(transferred, total int)

// Config holds the programmer configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger debugger.Logger

	// ChunkSize is the number of bytes per transfer chunk
	ChunkSize int

	// Progress is called after every completed chunk (optional)
	Progress ProgressFunc
}

func defaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithLogger sets a logger for the programmer's operations.
func WithLogger(logger debugger.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithChunkSize sets the transfer chunk size. Values below 1 are
// ignored.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size >= 1 {
			c.ChunkSize = size
		}
	}
}

// WithProgressCallback registers a callback invoked after every
// completed chunk.
//
// Example:
//
//	prog := programmer.New(dbg, programmer.WithProgressCallback(
//	    func(transferred, total int) {
//	        fmt.Printf("\r%d/%d bytes", transferred, total)
//	    }))
func WithProgressCallback(fn ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}
