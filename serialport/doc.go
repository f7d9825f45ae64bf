// Package serialport opens the serial link to the ecgc cartridge
// programmer.
//
// The port is owned exclusively by one invocation: open it, hand it to
// a debugger.Debugger, and close it on every exit path. Reads carry a
// deadline; a read that produces nothing within it fails with a
// *TimeoutError so that callers block on a dead link for at most one
// deadline instead of forever. Writes loop until the whole buffer has
// been handed to the driver.
package serialport
