package sdcard

import (
	"fmt"
	"strings"
)

// CommandError indicates an SD command failed: the card never produced
// a valid response, or the response carries error flags.
type CommandError struct {
	// Cmd is the command index that was sent
	Cmd byte

	// Arg is the 32-bit command argument
	Arg uint32

	// Raw holds the bytes read back while polling for the response
	Raw []byte

	// Response is the decoded response, if one could be decoded
	Response *Response
}

func (e *CommandError) Error() string {
	parts := make([]string, len(e.Raw))
	for i, b := range e.Raw {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}

	return fmt.Sprintf("error responding to CMD%d with arg 0x%08X: received %s",
		e.Cmd, e.Arg, strings.Join(parts, " "))
}
