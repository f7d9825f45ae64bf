package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildConfigReadCmd constructs a Config Read command frame.
//
// Frame structure:
//
//	[CMD]
//
// The expected response is [CMD|1][VALUE].
func BuildConfigReadCmd() []byte {
	return []byte{CmdConfigRead}
}

// BuildConfigWriteCmd constructs a Config Write command frame.
//
// Frame structure:
//
//	[CMD][VALUE]
//
// The expected response echoes both bytes with the response bit set.
func BuildConfigWriteCmd(value byte) []byte {
	return []byte{CmdConfigWrite, value}
}

// BuildSetAddressCmd constructs a Set Address command frame.
// The address is transmitted little-endian.
//
// Frame structure:
//
//	[CMD][ADDR_L][ADDR_H]
func BuildSetAddressCmd(address uint16) []byte {
	frame := make([]byte, 3)
	frame[0] = CmdSetAddress
	binary.LittleEndian.PutUint16(frame[1:], address)
	return frame
}

// BuildReadBurstCmd constructs a Read Burst command frame requesting n
// bytes from the current address. n must be between 1 and MaxBurstSize.
//
// Frame structure:
//
//	[CMD][N-1]
//
// The device acknowledges with [CMD|1][N-1] followed by n data bytes.
func BuildReadBurstCmd(n int) ([]byte, error) {
	if n < 1 || n > MaxBurstSize {
		return nil, fmt.Errorf("burst length must be between 1 and %d, got %d", MaxBurstSize, n)
	}

	return []byte{CmdReadBurst, byte(n - 1)}, nil
}

// BuildWriteBurstCmd constructs a Write Burst command frame carrying the
// given data. len(data) must be between 1 and MaxBurstSize.
//
// Frame structure:
//
//	[CMD][N-1][DATA...]
//
// The device acknowledges by echoing the entire frame with the response
// bit set.
func BuildWriteBurstCmd(data []byte) ([]byte, error) {
	if len(data) < 1 || len(data) > MaxBurstSize {
		return nil, fmt.Errorf("burst length must be between 1 and %d, got %d", MaxBurstSize, len(data))
	}

	frame := make([]byte, 0, 2+len(data))
	frame = append(frame, CmdWriteBurst)
	frame = append(frame, byte(len(data)-1))
	frame = append(frame, data...)
	return frame, nil
}

// BuildSyncFrame constructs a link synchronisation frame: SyncFrameSize
// zero bytes, enough to terminate any command the programmer may have
// half-received before the host attached.
func BuildSyncFrame() []byte {
	return make([]byte, SyncFrameSize)
}
