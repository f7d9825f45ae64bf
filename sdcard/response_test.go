package sdcard

import "testing"

func TestParseR1(t *testing.T) {
	tests := []struct {
		name    string
		input   byte
		idle    bool
		isError bool
		wantErr bool
	}{
		{
			name:  "clean ready state",
			input: 0x00,
		},
		{
			name:  "idle after reset",
			input: 0x01,
			idle:  true,
		},
		{
			name:    "illegal command",
			input:   0x05,
			idle:    true,
			isError: true,
		},
		{
			name:    "CRC error",
			input:   0x08,
			isError: true,
		},
		{
			name:    "MSB set is not a response",
			input:   0xFF,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r1, err := ParseR1(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r1.Idle != tt.idle {
				t.Errorf("Idle = %t, want %t", r1.Idle, tt.idle)
			}
			if r1.ErrorOccurred() != tt.isError {
				t.Errorf("ErrorOccurred() = %t, want %t", r1.ErrorOccurred(), tt.isError)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	tests := []struct {
		name    string
		rt      ResponseType
		r1      byte
		extra   []byte
		check   func(t *testing.T, r *Response)
		wantErr bool
	}{
		{
			name: "plain R1",
			rt:   ResponseR1,
			r1:   0x01,
			check: func(t *testing.T, r *Response) {
				if !r.R1.Idle {
					t.Error("Idle flag not decoded")
				}
			},
		},
		{
			name:  "R1b with busy byte",
			rt:    ResponseR1B,
			r1:    0x00,
			extra: []byte{0x00},
			check: func(t *testing.T, r *Response) {
				if r.Busy != 0x00 {
					t.Errorf("Busy = 0x%02X, want 0x00", r.Busy)
				}
			},
		},
		{
			name:  "R2 with locked card",
			rt:    ResponseR2,
			r1:    0x00,
			extra: []byte{0x01},
			check: func(t *testing.T, r *Response) {
				if !r.R2.CardIsLocked {
					t.Error("CardIsLocked not decoded")
				}
				if r.ErrorOccurred() {
					t.Error("locked card reported as error")
				}
			},
		},
		{
			name:  "R3 with OCR",
			rt:    ResponseR3,
			r1:    0x01,
			extra: []byte{0xC0, 0xFF, 0x80, 0x00},
			check: func(t *testing.T, r *Response) {
				if r.OCR != 0xC0FF8000 {
					t.Errorf("OCR = 0x%08X, want 0xC0FF8000", r.OCR)
				}
			},
		},
		{
			name:  "R7 echo fields",
			rt:    ResponseR7,
			r1:    0x01,
			extra: []byte{0x00, 0x00, 0x01, 0xAA},
			check: func(t *testing.T, r *Response) {
				if r.VoltageAccepted() != 0x1 {
					t.Errorf("VoltageAccepted() = 0x%X, want 0x1", r.VoltageAccepted())
				}
				if r.CheckPattern() != 0xAA {
					t.Errorf("CheckPattern() = 0x%02X, want 0xAA", r.CheckPattern())
				}
			},
		},
		{
			name:    "wrong extra length",
			rt:      ResponseR3,
			r1:      0x00,
			extra:   []byte{0x01},
			wantErr: true,
		},
		{
			name:    "invalid R1 byte",
			rt:      ResponseR1,
			r1:      0x80,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewResponse(tt.rt, tt.r1, tt.extra)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Type != tt.rt {
				t.Errorf("Type = %s, want %s", resp.Type, tt.rt)
			}
			tt.check(t, resp)
		})
	}
}

func TestResponseErrorOccurredR2(t *testing.T) {
	resp, err := NewResponse(ResponseR2, 0x00, []byte{0x04})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.ErrorOccurred() {
		t.Error("R2 error flag not reported by ErrorOccurred()")
	}
}
