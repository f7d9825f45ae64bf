package sdcard

import (
	"encoding/binary"
	"fmt"
)

// CmdAppPrefix is the command index of CMD55, which announces that the
// next command is an application command.
const CmdAppPrefix = 55

// FrameSize is the size of an SD command frame in bytes:
// command(1) + argument(4) + CRC(1).
const FrameSize = 6

// BuildCommandFrame constructs the 6-byte SPI frame for an SD command.
//
// Frame structure:
//
//	[01 CMD(6)][ARG(32, big-endian)][CRC7(7) 1]
//
// cmd must be a 6-bit command index.
func BuildCommandFrame(cmd byte, arg uint32) ([]byte, error) {
	if cmd > 0x3F {
		return nil, fmt.Errorf("cmd must be a 6-bit unsigned integer, got %d", cmd)
	}

	frame := make([]byte, FrameSize)
	frame[0] = cmd | 0x40
	binary.BigEndian.PutUint32(frame[1:5], arg)
	frame[5] = (CRC7(frame[:5]) << 1) | 1

	return frame, nil
}

// expectedResponses maps command index to the response type the card
// answers with in SPI mode. Commands absent from the table are not
// valid in SPI mode.
var expectedResponses = map[byte]ResponseType{
	0:  ResponseR1,
	1:  ResponseR1,
	6:  ResponseR1,
	8:  ResponseR7,
	9:  ResponseR1,
	10: ResponseR1,
	12: ResponseR1B,
	13: ResponseR2,
	16: ResponseR1,
	17: ResponseR1,
	18: ResponseR1,
	24: ResponseR1,
	25: ResponseR1,
	27: ResponseR1,
	28: ResponseR1B,
	29: ResponseR1B,
	30: ResponseR1,
	32: ResponseR1,
	33: ResponseR1,
	38: ResponseR1B,
	42: ResponseR1,
	55: ResponseR1,
	56: ResponseR1,
	58: ResponseR3,
	59: ResponseR1,
}

// expectedAppResponses is the same table for application commands
// (those sent after CMD55).
var expectedAppResponses = map[byte]ResponseType{
	13: ResponseR2,
	22: ResponseR1,
	23: ResponseR1,
	41: ResponseR1,
	42: ResponseR1,
	51: ResponseR1,
}

// ExpectedResponse returns the response type of the given SD command in
// SPI mode, or an error for command indices that are not valid in SPI
// mode.
func ExpectedResponse(cmd byte) (ResponseType, error) {
	rt, ok := expectedResponses[cmd]
	if !ok {
		return 0, fmt.Errorf("CMD%d is not a valid SD command in SPI mode", cmd)
	}
	return rt, nil
}

// ExpectedAppResponse returns the response type of the given SD
// application command in SPI mode.
func ExpectedAppResponse(acmd byte) (ResponseType, error) {
	rt, ok := expectedAppResponses[acmd]
	if !ok {
		return 0, fmt.Errorf("ACMD%d is not a valid SD application command in SPI mode", acmd)
	}
	return rt, nil
}
