package serialport

import (
	"time"

	"go.bug.st/serial"

	"github.com/ecgc-project/ecgc-util/protocol"
)

// DefaultReadTimeout is the read deadline applied to the port unless
// overridden with WithReadTimeout. The programmer acknowledges every
// command within a couple of byte times, so the window can be short.
const DefaultReadTimeout = 200 * time.Millisecond

// Config holds the serial port configuration.
type Config struct {
	// BaudRate of the link. The programmer runs at protocol.BaudRate;
	// this is configurable for bench setups with non-standard firmware.
	BaudRate int

	// ReadTimeout is the deadline for a single read to produce at
	// least one byte
	ReadTimeout time.Duration
}

// Option is a functional option for configuring the port.
type Option func(*Config)

// WithBaudRate overrides the default baud rate.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithReadTimeout overrides the default read deadline.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

func defaultConfig() Config {
	return Config{
		BaudRate:    protocol.BaudRate,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Port is an exclusively-owned serial connection to the cartridge
// programmer. It implements io.ReadWriteCloser with the timeout
// semantics the debugger package relies on: a read that produces no
// data within the deadline fails with a *TimeoutError instead of
// returning 0 bytes.
type Port struct {
	name string
	port serial.Port
}

// Open opens the named serial device with the programmer's framing
// (8 data bits, no parity, 1 stop bit). Failure to open or configure
// the device yields an *OpenError.
func Open(name string, opts ...Option) (*Port, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: protocol.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, &OpenError{Port: name, Err: err}
	}

	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, &OpenError{Port: name, Err: err}
	}

	return &Port{name: name, port: p}, nil
}

// List enumerates the serial devices present on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}

// Name returns the device name the port was opened with.
func (p *Port) Name() string {
	return p.name
}

// Read reads at least one byte into buf, or fails with a *TimeoutError
// if the deadline passes without data. Combined with io.ReadFull this
// gives exact-length reads that abort instead of spinning on a dead
// link.
func (p *Port) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, &TimeoutError{Port: p.name}
	}
	return n, nil
}

// Write writes all of buf to the device, looping over short writes.
func (p *Port) Write(buf []byte) (int, error) {
	sent := 0
	for sent < len(buf) {
		n, err := p.port.Write(buf[sent:])
		if err != nil {
			return sent, err
		}
		sent += n
	}
	return sent, nil
}

// Close releases the serial device.
func (p *Port) Close() error {
	return p.port.Close()
}
