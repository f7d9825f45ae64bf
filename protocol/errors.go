package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// UnexpectedResponseError indicates the programmer answered a command
// with something other than the expected acknowledgment.
type UnexpectedResponseError struct {
	// Operation is the command that was being acknowledged
	Operation string

	// Expected is the acknowledgment (or its prefix) that was expected
	Expected []byte

	// Actual is what was received instead
	Actual []byte
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response during %s: expected [%s], got [%s]",
		e.Operation, formatBytes(e.Expected), formatBytes(e.Actual))
}

// IsUnexpectedResponse returns true if the error is, or wraps, an
// UnexpectedResponseError.
func IsUnexpectedResponse(err error) bool {
	var respErr *UnexpectedResponseError
	return errors.As(err, &respErr)
}

func formatBytes(bb []byte) string {
	parts := make([]string, len(bb))
	for i, b := range bb {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
