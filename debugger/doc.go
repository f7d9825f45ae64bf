// Package debugger drives the uart_debug core of an ecgc cartridge
// over the programmer's serial link.
//
// The Debugger wraps any io.ReadWriter and exposes the core's
// operations: enabling and disabling the core, setting the operation
// address and auto-increment mode, and bulk reads and writes that are
// chunked into protocol bursts transparently. On top of that sit the
// SPI bridge operations (chip select, bus clock, raw transfers) and
// the SD card command layer.
//
// A session follows a fixed shape:
//
//	dbg := debugger.New(port)
//	if err := dbg.Reset(ctx); err != nil { ... }
//	if err := dbg.EnableCore(ctx); err != nil { ... }
//	defer dbg.DisableCore(context.Background())
//
// All bus operations fail with a *CoreDisabledError until EnableCore
// has succeeded. Bulk transfers that abort partway report the number
// of bytes confirmed before the failure through *TransferError.
package debugger
