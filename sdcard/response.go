package sdcard

import (
	"encoding/binary"
	"fmt"
)

// ResponseType enumerates the SPI-mode response formats of the SD card.
type ResponseType int

const (
	// ResponseR1 is the single status byte every command answers with
	ResponseR1 ResponseType = iota

	// ResponseR1B is R1 followed by a busy byte
	ResponseR1B

	// ResponseR2 is R1 followed by a second status byte
	ResponseR2

	// ResponseR3 is R1 followed by the 32-bit OCR register
	ResponseR3

	// ResponseR7 is R1 followed by the 32-bit CMD8 echo
	ResponseR7
)

func (rt ResponseType) String() string {
	switch rt {
	case ResponseR1:
		return "R1"
	case ResponseR1B:
		return "R1b"
	case ResponseR2:
		return "R2"
	case ResponseR3:
		return "R3"
	case ResponseR7:
		return "R7"
	default:
		return fmt.Sprintf("ResponseType(%d)", int(rt))
	}
}

// ExtraSize returns the number of bytes following R1 for this response
// type.
func (rt ResponseType) ExtraSize() int {
	switch rt {
	case ResponseR1B, ResponseR2:
		return 1
	case ResponseR3, ResponseR7:
		return 4
	default:
		return 0
	}
}

// R1 holds the decoded fields of the card's R1 status byte.
type R1 struct {
	ParameterError     bool
	AddressError       bool
	EraseSequenceError bool
	CRCError           bool
	IllegalCommand     bool
	EraseReset         bool
	Idle               bool
}

// ParseR1 decodes an R1 status byte. A byte with the MSB set is not a
// valid R1 response.
func ParseR1(b byte) (R1, error) {
	if b&0x80 != 0 {
		return R1{}, fmt.Errorf("invalid R1 response 0x%02X: MSB is not low", b)
	}

	return R1{
		ParameterError:     b&0x40 != 0,
		AddressError:       b&0x20 != 0,
		EraseSequenceError: b&0x10 != 0,
		CRCError:           b&0x08 != 0,
		IllegalCommand:     b&0x04 != 0,
		EraseReset:         b&0x02 != 0,
		Idle:               b&0x01 != 0,
	}, nil
}

// ErrorOccurred reports whether any of the R1 error flags is set. The
// idle flag is not an error.
func (r R1) ErrorOccurred() bool {
	return r.ParameterError || r.AddressError || r.EraseSequenceError ||
		r.CRCError || r.IllegalCommand || r.EraseReset
}

// R2 holds the decoded fields of the second status byte of an R2
// response.
type R2 struct {
	OutOfRange    bool
	EraseParam    bool
	WPViolation   bool
	CardECCFailed bool
	CCError       bool
	Error         bool
	WPEraseSkip   bool
	CardIsLocked  bool
}

func parseR2(b byte) R2 {
	return R2{
		OutOfRange:    b&0x80 != 0,
		EraseParam:    b&0x40 != 0,
		WPViolation:   b&0x20 != 0,
		CardECCFailed: b&0x10 != 0,
		CCError:       b&0x08 != 0,
		Error:         b&0x04 != 0,
		WPEraseSkip:   b&0x02 != 0,
		CardIsLocked:  b&0x01 != 0,
	}
}

// ErrorOccurred reports whether any R2 error flag is set. The lock flag
// is status, not an error.
func (r R2) ErrorOccurred() bool {
	return r.OutOfRange || r.EraseParam || r.WPViolation ||
		r.CardECCFailed || r.CCError || r.Error || r.WPEraseSkip
}

// Response is a fully decoded SPI-mode SD response. R1 is always
// present; the remaining fields are populated according to Type.
type Response struct {
	// Type is the response format this response was decoded as
	Type ResponseType

	// R1 is the decoded first status byte
	R1 R1

	// Busy is the busy byte of an R1b response (0x00 = still busy)
	Busy byte

	// R2 is the decoded second status byte of an R2 response
	R2 R2

	// OCR is the operating conditions register of an R3 response
	OCR uint32

	// Echo is the 32-bit argument echo of an R7 response
	Echo uint32
}

// NewResponse builds a Response of the given type from the R1 status
// byte and the extra bytes that followed it. len(extra) must equal
// rt.ExtraSize().
func NewResponse(rt ResponseType, r1 byte, extra []byte) (*Response, error) {
	status, err := ParseR1(r1)
	if err != nil {
		return nil, err
	}

	if len(extra) != rt.ExtraSize() {
		return nil, fmt.Errorf("expected %d extra bytes decoding %s, got %d",
			rt.ExtraSize(), rt, len(extra))
	}

	resp := &Response{Type: rt, R1: status}

	switch rt {
	case ResponseR1B:
		resp.Busy = extra[0]
	case ResponseR2:
		resp.R2 = parseR2(extra[0])
	case ResponseR3:
		resp.OCR = binary.BigEndian.Uint32(extra)
	case ResponseR7:
		resp.Echo = binary.BigEndian.Uint32(extra)
	}

	return resp, nil
}

// ErrorOccurred reports whether the response indicates a card error.
func (r *Response) ErrorOccurred() bool {
	if r.R1.ErrorOccurred() {
		return true
	}
	if r.Type == ResponseR2 {
		return r.R2.ErrorOccurred()
	}
	return false
}

// VoltageAccepted returns the voltage-accepted field of an R7 response.
func (r *Response) VoltageAccepted() byte {
	return byte(r.Echo >> 8 & 0x0F)
}

// CheckPattern returns the echoed check pattern of an R7 response.
func (r *Response) CheckPattern() byte {
	return byte(r.Echo)
}

// String renders the response for the debug console.
func (r *Response) String() string {
	s := fmt.Sprintf("%s: idle=%t", r.Type, r.R1.Idle)
	if r.R1.ErrorOccurred() {
		s += fmt.Sprintf(" r1_errors=%+v", r.R1)
	}

	switch r.Type {
	case ResponseR1B:
		s += fmt.Sprintf(" busy=0x%02X", r.Busy)
	case ResponseR2:
		s += fmt.Sprintf(" status=%+v", r.R2)
	case ResponseR3:
		s += fmt.Sprintf(" ocr=0x%08X", r.OCR)
	case ResponseR7:
		s += fmt.Sprintf(" voltage=0x%X pattern=0x%02X", r.VoltageAccepted(), r.CheckPattern())
	}

	return s
}
