// Package protocol implements the wire protocol of the ecgc cartridge
// programmer's uart_debug core.
//
// # Protocol Overview
//
// The protocol is a binary command/response exchange over a 115200 baud
// 8N1 serial link. The host sends a command frame; the programmer
// acknowledges by echoing the command byte with the response bit (0x01)
// set, followed by an echo of the command's operands:
//
//	Config read:   02            ->  03 <value>
//	Config write:  04 <value>    ->  05 <value>
//	Set address:   10 <lo> <hi>  ->  11 <lo> <hi>
//	Read burst:    20 <n-1>      ->  21 <n-1> <data...>
//	Write burst:   30 <n-1> <d>  ->  31 <n-1> <d echo>
//
// Bursts move between 1 and 256 bytes; the length is encoded as n-1 in a
// single byte. Addresses are 16-bit little-endian into the cartridge's
// 64 KiB memory map.
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame := protocol.BuildSetAddressCmd(0x4000)
//	frame, err := protocol.BuildWriteBurstCmd(data)
//
// # Response Validators
//
// Each command has a matching Parse* function that validates the echoed
// acknowledgment:
//
//	if err := protocol.ParseSetAddressResponse(resp, 0x4000); err != nil {
//	    return err
//	}
//
// A failed validation returns an *UnexpectedResponseError carrying the
// expected and actual bytes.
//
// # Link Synchronisation
//
// The host cannot know whether the programmer is mid-command when it
// attaches, so the session starts with a synchronisation frame of 258
// zero bytes (one maximal write burst). Whatever state the programmer
// was in, the frame completes it; the final byte of the programmer's
// answer is the ready marker 0x01.
package protocol
