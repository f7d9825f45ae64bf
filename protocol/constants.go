package protocol

// Serial link parameters of the ecgc programmer's UART.
const (
	// BaudRate is the fixed baud rate of the programmer's serial link
	BaudRate = 115200

	// DataBits is the number of data bits per serial frame
	DataBits = 8

	// StopBits is the number of stop bits per serial frame (no parity)
	StopBits = 1
)

// Command bytes of the uart_debug core protocol.
//
// Every command is acknowledged by echoing the command byte with
// ResponseBit set, followed by an echo of the command's operands.
const (
	// CmdConfigRead reads the debug core's configuration register
	CmdConfigRead = 0x02

	// CmdConfigWrite writes the debug core's configuration register
	CmdConfigWrite = 0x04

	// CmdSetAddress sets the debug core's 16-bit operation address
	CmdSetAddress = 0x10

	// CmdReadBurst reads 1-256 bytes starting at the current address
	CmdReadBurst = 0x20

	// CmdWriteBurst writes 1-256 bytes starting at the current address
	CmdWriteBurst = 0x30

	// ResponseBit is OR'ed into the command byte of every acknowledgment
	ResponseBit = 0x01
)

// Configuration register bits.
const (
	// ConfigCoreEnable enables the debug core, giving it control of the
	// cartridge bus
	ConfigCoreEnable = 0x10

	// ConfigAutoIncrement increments the address after every byte of a
	// read or write burst
	ConfigAutoIncrement = 0x20
)

// Protocol limits.
const (
	// MaxBurstSize is the maximum number of data bytes per read/write
	// burst. Burst lengths are encoded on the wire as length-1 in a
	// single byte.
	MaxBurstSize = 256

	// AddressSpaceSize is the size of the cartridge address space
	// reachable through the debug core (16-bit addressing)
	AddressSpaceSize = 0x10000

	// SyncFrameSize is the size of the link synchronisation frame:
	// one maximal write burst (CMD + LEN + 256 data bytes). Sending
	// this many zero bytes terminates any half-received command.
	SyncFrameSize = 258

	// SyncReady is the final byte of the programmer's answer to a
	// synchronisation frame
	SyncReady = 0x01
)
