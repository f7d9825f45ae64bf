package debugger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ecgc-project/ecgc-util/sdcard"
)

// sdResponseAttempts is the number of bytes the card may take to start
// its response after a command frame. The SD specification allows up
// to 8.
const sdResponseAttempts = 8

// SDCommand sends an SD command to the card over the SPI bus and
// decodes its response. The card is selected for the duration of the
// exchange and deselected afterwards unless keepSelected is set, which
// block read and write sequences need. The card is always deselected
// when an error occurs.
//
// Responses that carry error flags are returned alongside a
// *sdcard.CommandError so callers can inspect the card's status.
func (d *Debugger) SDCommand(ctx context.Context, cmd byte, arg uint32, keepSelected bool) (*sdcard.Response, error) {
	rt, err := sdcard.ExpectedResponse(cmd)
	if err != nil {
		return nil, err
	}
	return d.sdExchange(ctx, cmd, arg, rt, keepSelected)
}

// SDAppCommand sends an SD application command (CMD55 followed by the
// command itself) and decodes the response of the application command.
func (d *Debugger) SDAppCommand(ctx context.Context, acmd byte, arg uint32, keepSelected bool) (*sdcard.Response, error) {
	rt, err := sdcard.ExpectedAppResponse(acmd)
	if err != nil {
		return nil, err
	}

	prefix, err := d.sdExchange(ctx, sdcard.CmdAppPrefix, 0, sdcard.ResponseR1, true)
	if err != nil {
		return nil, fmt.Errorf("ACMD%d prefix: %w", acmd, err)
	}
	if prefix.R1.IllegalCommand {
		d.sdRelease(ctx)
		return prefix, &sdcard.CommandError{Cmd: sdcard.CmdAppPrefix, Arg: 0}
	}

	return d.sdExchange(ctx, acmd, arg, rt, keepSelected)
}

// sdExchange runs one command/response exchange on an already defined
// bus state. It selects the card, sends the frame, polls for R1, reads
// the response's extra bytes, and releases the card unless the caller
// asked to keep it selected.
func (d *Debugger) sdExchange(ctx context.Context, cmd byte, arg uint32, rt sdcard.ResponseType, keepSelected bool) (*sdcard.Response, error) {
	frame, err := sdcard.BuildCommandFrame(cmd, arg)
	if err != nil {
		return nil, err
	}

	if err := d.SPISelect(ctx, ChipSelectSD); err != nil {
		return nil, err
	}
	if err := d.SPIWrite(ctx, frame); err != nil {
		d.sdRelease(ctx)
		return nil, fmt.Errorf("CMD%d frame: %w", cmd, err)
	}

	// The card holds MISO high until its response starts; poll one
	// byte at a time until the MSB drops.
	var raw []byte
	r1 := byte(0xFF)
	for i := 0; i < sdResponseAttempts; i++ {
		in, err := d.SPITransfer(ctx, []byte{0xFF})
		if err != nil {
			d.sdRelease(ctx)
			return nil, fmt.Errorf("CMD%d response: %w", cmd, err)
		}
		raw = append(raw, in[0])
		if in[0]&0x80 == 0 {
			r1 = in[0]
			break
		}
	}
	if r1&0x80 != 0 {
		d.sdRelease(ctx)
		return nil, &sdcard.CommandError{Cmd: cmd, Arg: arg, Raw: raw}
	}

	var extra []byte
	if n := rt.ExtraSize(); n > 0 {
		extra, err = d.SPITransfer(ctx, bytes.Repeat([]byte{0xFF}, n))
		if err != nil {
			d.sdRelease(ctx)
			return nil, fmt.Errorf("CMD%d response body: %w", cmd, err)
		}
		raw = append(raw, extra...)
	}

	response, err := sdcard.NewResponse(rt, r1, extra)
	if err != nil {
		d.sdRelease(ctx)
		return nil, &sdcard.CommandError{Cmd: cmd, Arg: arg, Raw: raw}
	}

	d.logDebug("sd: command exchanged",
		"cmd", cmd,
		"arg", fmt.Sprintf("0x%08X", arg),
		"response", response.String(),
	)

	if response.ErrorOccurred() {
		d.sdRelease(ctx)
		return response, &sdcard.CommandError{Cmd: cmd, Arg: arg, Raw: raw, Response: response}
	}

	if !keepSelected {
		d.sdRelease(ctx)
	}
	return response, nil
}

// sdRelease deselects the card and clocks it twice with MOSI high so it
// finishes whatever internal processing is pending. Errors here are
// only logged; callers are already on an exit path.
func (d *Debugger) sdRelease(ctx context.Context) {
	if err := d.SPIDeselect(ctx); err != nil {
		d.logError("sd: deselect failed", "error", err)
		return
	}
	if err := d.SPIWrite(ctx, []byte{0xFF, 0xFF}); err != nil {
		d.logError("sd: release clocks failed", "error", err)
	}
}
