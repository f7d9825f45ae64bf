package debugger

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ecgc-project/ecgc-util/protocol"
)

// Debugger drives the uart_debug core inside the ecgc cartridge through
// the programmer's serial link. It tracks the core's enabled state and
// chunks reads and writes into protocol-sized bursts.
//
// The device must implement io.ReadWriter; serialport.Port is the real
// transport, but any implementation works (mock devices for testing,
// pipes, and so on).
type Debugger struct {
	device  io.ReadWriter
	config  Config
	enabled bool
}

// New creates a Debugger operating the given device.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    return err
//	}
//	defer port.Close()
//
//	dbg := debugger.New(port, debugger.WithLogger(logger))
func New(device io.ReadWriter, opts ...Option) *Debugger {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Debugger{
		device: device,
		config: cfg,
	}
}

// Enabled reports whether the debug core is currently enabled.
func (d *Debugger) Enabled() bool {
	return d.enabled
}

// Reset brings the link and the debug core into a defined state:
//  1. Send a synchronisation frame to complete any half-received
//     command and wait for the ready marker
//  2. Clear the configuration register (disables the core and
//     auto-increment)
//  3. Zero the operation address
//
// Call it once after opening the port, before EnableCore.
func (d *Debugger) Reset(ctx context.Context) error {
	frame := protocol.BuildSyncFrame()
	response, err := d.exchangeRaw(ctx, frame, protocol.SyncFrameSize)
	if err != nil {
		return fmt.Errorf("link synchronisation: %w", err)
	}
	if err := protocol.ParseSyncResponse(response); err != nil {
		return err
	}

	d.logDebug("link synchronised")

	if err := d.writeConfig(ctx, 0); err != nil {
		return fmt.Errorf("clear config register: %w", err)
	}
	d.enabled = false

	if err := d.setAddress(ctx, 0); err != nil {
		return fmt.Errorf("zero address: %w", err)
	}

	return nil
}

// EnableCore enables the cartridge's debug core, giving it control of
// the cartridge bus. Fails if the core is already enabled.
func (d *Debugger) EnableCore(ctx context.Context) error {
	if d.enabled {
		return &CoreStateError{Operation: "core enable", Enabled: true}
	}

	value, err := d.readConfig(ctx)
	if err != nil {
		return err
	}
	if err := d.writeConfig(ctx, value|protocol.ConfigCoreEnable); err != nil {
		return err
	}

	d.enabled = true
	d.logDebug("debug core enabled")
	return nil
}

// DisableCore disables the debug core, handing the cartridge bus back
// to the console. Fails if the core is already disabled.
func (d *Debugger) DisableCore(ctx context.Context) error {
	if !d.enabled {
		return &CoreStateError{Operation: "core disable", Enabled: false}
	}

	value, err := d.readConfig(ctx)
	if err != nil {
		return err
	}
	if err := d.writeConfig(ctx, value&^byte(protocol.ConfigCoreEnable)); err != nil {
		return err
	}

	d.enabled = false
	d.logDebug("debug core disabled")
	return nil
}

// SetAddress sets the debug core's operation address.
func (d *Debugger) SetAddress(ctx context.Context, address uint16) error {
	if err := d.assertEnabled("set address"); err != nil {
		return err
	}
	return d.setAddress(ctx, address)
}

// SetAutoIncrement enables or disables incrementing of the operation
// address after every transferred byte.
func (d *Debugger) SetAutoIncrement(ctx context.Context, enable bool) error {
	if err := d.assertEnabled("set auto increment"); err != nil {
		return err
	}

	value, err := d.readConfig(ctx)
	if err != nil {
		return err
	}

	if enable {
		value |= protocol.ConfigAutoIncrement
	} else {
		value &^= byte(protocol.ConfigAutoIncrement)
	}

	return d.writeConfig(ctx, value)
}

// Write writes data to the cartridge starting at the current operation
// address, in ascending order, split into bursts of at most the
// configured burst size. The first burst that fails aborts the whole
// write with a *TransferError carrying the number of bytes confirmed
// before the failure.
func (d *Debugger) Write(ctx context.Context, data []byte) error {
	if err := d.assertEnabled("write"); err != nil {
		return err
	}

	written := 0
	for written < len(data) {
		if err := ctx.Err(); err != nil {
			return &TransferError{BytesTransferred: written, Err: err}
		}

		burst := data[written:min(written+d.config.BurstSize, len(data))]
		if err := d.writeBurst(ctx, burst); err != nil {
			return &TransferError{BytesTransferred: written, Err: err}
		}
		written += len(burst)
	}

	return nil
}

// Read reads exactly n bytes from the cartridge starting at the current
// operation address, in ascending order. A failed burst aborts the read
// with a *TransferError carrying the number of bytes received before
// the failure.
func (d *Debugger) Read(ctx context.Context, n int) ([]byte, error) {
	if err := d.assertEnabled("read"); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("read length must be at least 1, got %d", n)
	}

	result := make([]byte, 0, n)
	for len(result) < n {
		if err := ctx.Err(); err != nil {
			return result, &TransferError{BytesTransferred: len(result), Err: err}
		}

		burst := min(n-len(result), d.config.BurstSize)
		data, err := d.readBurst(ctx, burst)
		if err != nil {
			return result, &TransferError{BytesTransferred: len(result), Err: err}
		}
		result = append(result, data...)
	}

	return result, nil
}

// WriteByte writes a single byte at the current operation address.
func (d *Debugger) WriteByte(ctx context.Context, b byte) error {
	return d.Write(ctx, []byte{b})
}

// ReadByte reads a single byte from the current operation address.
func (d *Debugger) ReadByte(ctx context.Context) (byte, error) {
	data, err := d.Read(ctx, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// setAddress performs the address command without the enabled-state
// check; Reset needs it while the core is down.
func (d *Debugger) setAddress(ctx context.Context, address uint16) error {
	cmd := protocol.BuildSetAddressCmd(address)
	response, err := d.exchange(ctx, "set address", cmd)
	if err != nil {
		return err
	}
	return protocol.ParseSetAddressResponse(response, address)
}

func (d *Debugger) readConfig(ctx context.Context) (byte, error) {
	cmd := protocol.BuildConfigReadCmd()
	response, err := d.exchange(ctx, "config read", cmd)
	if err != nil {
		return 0, err
	}
	return protocol.ParseConfigReadResponse(response)
}

func (d *Debugger) writeConfig(ctx context.Context, value byte) error {
	cmd := protocol.BuildConfigWriteCmd(value)
	response, err := d.exchange(ctx, "config write", cmd)
	if err != nil {
		return err
	}
	return protocol.ParseConfigWriteResponse(response, value)
}

func (d *Debugger) writeBurst(ctx context.Context, data []byte) error {
	cmd, err := protocol.BuildWriteBurstCmd(data)
	if err != nil {
		return err
	}

	response, err := d.exchange(ctx, "write burst", cmd)
	if err != nil {
		return err
	}
	return protocol.ParseWriteBurstResponse(response, data)
}

func (d *Debugger) readBurst(ctx context.Context, n int) ([]byte, error) {
	cmd, err := protocol.BuildReadBurstCmd(n)
	if err != nil {
		return nil, err
	}

	response, err := d.exchange(ctx, "read burst", cmd)
	if err != nil {
		return nil, err
	}
	if err := protocol.ParseReadBurstResponse(response, n); err != nil {
		return nil, err
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(d.device, data); err != nil {
		return nil, fmt.Errorf("read burst data: %w", err)
	}
	return data, nil
}

// exchange sends a command frame and reads its acknowledgment.
func (d *Debugger) exchange(ctx context.Context, operation string, cmd []byte) ([]byte, error) {
	response, err := d.exchangeRaw(ctx, cmd, protocol.ResponseLength(cmd))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	d.logDebug("command acknowledged",
		"operation", operation,
		"sent", fmt.Sprintf("% X", cmd),
		"received", fmt.Sprintf("% X", response),
	)

	return response, nil
}

func (d *Debugger) exchangeRaw(ctx context.Context, frame []byte, responseLen int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := d.device.Write(frame); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	if d.config.CommandDelay > 0 {
		time.Sleep(d.config.CommandDelay)
	}

	response := make([]byte, responseLen)
	if _, err := io.ReadFull(d.device, response); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return response, nil
}

func (d *Debugger) assertEnabled(operation string) error {
	if !d.enabled {
		return &CoreDisabledError{Operation: operation}
	}
	return nil
}

func (d *Debugger) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (d *Debugger) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

func (d *Debugger) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
