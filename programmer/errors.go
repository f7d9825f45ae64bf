package programmer

import (
	"errors"
	"fmt"
)

// BoundsError indicates a transfer request that does not fit its
// target. It is raised before any traffic reaches the cartridge.
type BoundsError struct {
	// Operation is "upload" or "dump"
	Operation string

	// Detail describes the violated bound
	Detail string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s request out of bounds: %s", e.Operation, e.Detail)
}

// IsBoundsError reports whether err is a request validation failure as
// opposed to a device fault.
func IsBoundsError(err error) bool {
	var boundsErr *BoundsError
	return errors.As(err, &boundsErr)
}
