package serialport

import "fmt"

// OpenError indicates the serial device could not be opened or
// configured.
type OpenError struct {
	// Port is the device name that was being opened
	Port string

	// Err is the underlying failure
	Err error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open serial port %s: %v", e.Port, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates the programmer produced no data within the
// read deadline.
type TimeoutError struct {
	// Port is the device name the read was performed on
	Port string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for response on %s", e.Port)
}
