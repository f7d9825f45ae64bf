package protocol

import (
	"bytes"
	"encoding/binary"
)

// ResponseLength returns the number of acknowledgment bytes the device
// sends for a command frame built by this package. Read burst data is
// not included; it follows the acknowledgment on the wire.
func ResponseLength(cmd []byte) int {
	if len(cmd) == 0 {
		return 0
	}

	switch cmd[0] {
	case CmdConfigRead:
		return 2
	default:
		// all other commands echo the full frame
		return len(cmd)
	}
}

// ParseConfigReadResponse extracts the configuration register value from
// a Config Read acknowledgment.
//
// Response structure:
//
//	[CMD|1][VALUE]
func ParseConfigReadResponse(response []byte) (byte, error) {
	if len(response) != 2 || response[0] != CmdConfigRead|ResponseBit {
		return 0, &UnexpectedResponseError{
			Operation: "config read",
			Expected:  []byte{CmdConfigRead | ResponseBit},
			Actual:    response,
		}
	}

	return response[1], nil
}

// ParseConfigWriteResponse validates a Config Write acknowledgment
// against the written value.
func ParseConfigWriteResponse(response []byte, value byte) error {
	expected := []byte{CmdConfigWrite | ResponseBit, value}
	if !bytes.Equal(response, expected) {
		return &UnexpectedResponseError{
			Operation: "config write",
			Expected:  expected,
			Actual:    response,
		}
	}

	return nil
}

// ParseSetAddressResponse validates a Set Address acknowledgment against
// the address that was set.
func ParseSetAddressResponse(response []byte, address uint16) error {
	expected := make([]byte, 3)
	expected[0] = CmdSetAddress | ResponseBit
	binary.LittleEndian.PutUint16(expected[1:], address)

	if !bytes.Equal(response, expected) {
		return &UnexpectedResponseError{
			Operation: "set address",
			Expected:  expected,
			Actual:    response,
		}
	}

	return nil
}

// ParseReadBurstResponse validates a Read Burst acknowledgment for a
// burst of n bytes. The n data bytes follow the acknowledgment and are
// read separately.
func ParseReadBurstResponse(response []byte, n int) error {
	expected := []byte{CmdReadBurst | ResponseBit, byte(n - 1)}
	if !bytes.Equal(response, expected) {
		return &UnexpectedResponseError{
			Operation: "read burst",
			Expected:  expected,
			Actual:    response,
		}
	}

	return nil
}

// ParseWriteBurstResponse validates a Write Burst acknowledgment, which
// echoes the burst header and every data byte written.
func ParseWriteBurstResponse(response []byte, data []byte) error {
	expected := make([]byte, 0, 2+len(data))
	expected = append(expected, CmdWriteBurst|ResponseBit)
	expected = append(expected, byte(len(data)-1))
	expected = append(expected, data...)

	if !bytes.Equal(response, expected) {
		return &UnexpectedResponseError{
			Operation: "write burst",
			Expected:  expected,
			Actual:    response,
		}
	}

	return nil
}

// ParseSyncResponse validates the programmer's answer to a
// synchronisation frame. Only the final byte is meaningful; everything
// before it is the tail of whatever command the zero bytes completed.
func ParseSyncResponse(response []byte) error {
	if len(response) == 0 || response[len(response)-1] != SyncReady {
		return &UnexpectedResponseError{
			Operation: "link synchronisation",
			Expected:  []byte{SyncReady},
			Actual:    response,
		}
	}

	return nil
}
