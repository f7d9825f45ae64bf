package debugger

import (
	"fmt"
)

// CoreStateError indicates an attempt to move the debug core into the
// state it is already in.
type CoreStateError struct {
	// Operation is the state change that was attempted
	Operation string

	// Enabled is the state the core was already in
	Enabled bool
}

func (e *CoreStateError) Error() string {
	state := "disabled"
	if e.Enabled {
		state = "enabled"
	}
	return fmt.Sprintf("%s: debug core is already %s", e.Operation, state)
}

// CoreDisabledError indicates an operation that requires the debug
// core was attempted while it is disabled.
type CoreDisabledError struct {
	// Operation is the operation that was attempted
	Operation string
}

func (e *CoreDisabledError) Error() string {
	return fmt.Sprintf("debug core must be enabled for %s operation", e.Operation)
}

// TransferError indicates a multi-burst transfer aborted partway
// through. BytesTransferred counts the bytes confirmed by the
// programmer before the failing burst; no further bursts are sent
// after the failure.
type TransferError struct {
	// BytesTransferred is the number of bytes successfully moved
	BytesTransferred int

	// Err is the failure that aborted the transfer
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer aborted after %d bytes: %v", e.BytesTransferred, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
