package debugger

import (
	"bytes"
	"context"
	"testing"
)

func TestParseChipSelect(t *testing.T) {
	tests := []struct {
		name    string
		want    ChipSelect
		wantErr bool
	}{
		{"flash", ChipSelectFlash, false},
		{"rtc", ChipSelectRTC, false},
		{"sd", ChipSelectSD, false},
		{"none", ChipSelectNone, false},
		{"eeprom", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChipSelect(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChipSelect(%q) error = %v, wantErr %t", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseChipSelect(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestChipSelectString(t *testing.T) {
	if got := ChipSelectSD.String(); got != "sd" {
		t.Errorf("ChipSelectSD.String() = %q, want %q", got, "sd")
	}
	if got := ChipSelect(0x42).String(); got != "ChipSelect(0x42)" {
		t.Errorf("ChipSelect(0x42).String() = %q, want %q", got, "ChipSelect(0x42)")
	}
}

func TestSPISetSpeed(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		wantFDiv   byte
		wantActual float64
	}{
		{"400 kHz init clock", 400_000, 249, 400_000},
		{"half bridge clock", 50_000_000, 1, 50_000_000},
		{"above bridge clock clamps to full speed", 1e9, 0, 100_000_000},
		{"below divider range clamps to slowest", 1000, 255, float64(SPIClockHz) / 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbg, mock := newTestDebugger(t)

			actual, err := dbg.SPISetSpeed(context.Background(), tt.freq)
			if err != nil {
				t.Fatalf("SPISetSpeed(%g) error = %v", tt.freq, err)
			}
			if actual != tt.wantActual {
				t.Errorf("actual frequency = %g, want %g", actual, tt.wantActual)
			}
			if mock.memory[RegSPIFDiv] != tt.wantFDiv {
				t.Errorf("FDIV register = %d, want %d", mock.memory[RegSPIFDiv], tt.wantFDiv)
			}
		})
	}
}

func TestSPISetSpeedRejectsNonPositive(t *testing.T) {
	dbg, _ := newTestDebugger(t)

	for _, freq := range []float64{0, -1} {
		if _, err := dbg.SPISetSpeed(context.Background(), freq); err == nil {
			t.Errorf("SPISetSpeed(%g) error = nil, want error", freq)
		}
	}
}

func TestSPISelectDeselect(t *testing.T) {
	dbg, mock := newTestDebugger(t)
	ctx := context.Background()

	if err := dbg.SPISelect(ctx, ChipSelectFlash); err != nil {
		t.Fatalf("SPISelect() error = %v", err)
	}
	if mock.memory[RegSPICS] != byte(ChipSelectFlash) {
		t.Errorf("CS register = 0x%02X, want 0x%02X", mock.memory[RegSPICS], byte(ChipSelectFlash))
	}

	if err := dbg.SPIDeselect(ctx); err != nil {
		t.Fatalf("SPIDeselect() error = %v", err)
	}
	if mock.memory[RegSPICS] != byte(ChipSelectNone) {
		t.Errorf("CS register = 0x%02X, want 0x%02X", mock.memory[RegSPICS], byte(ChipSelectNone))
	}
}

func TestInitSPI(t *testing.T) {
	dbg, mock := newTestDebugger(t)

	if err := dbg.InitSPI(context.Background()); err != nil {
		t.Fatalf("InitSPI() error = %v", err)
	}

	if mock.memory[RegSPICtrl] != spiDefaultCtrl {
		t.Errorf("CTRL register = 0x%02X, want 0x%02X", mock.memory[RegSPICtrl], spiDefaultCtrl)
	}
	if mock.memory[RegSPICS] != byte(ChipSelectNone) {
		t.Errorf("CS register = 0x%02X, want deselected", mock.memory[RegSPICS])
	}
	if mock.memory[RegSPIFDiv] != 249 {
		t.Errorf("FDIV register = %d, want 249 (400 kHz)", mock.memory[RegSPIFDiv])
	}

	// the power-up clocks leave MOSI high on the data register
	if mock.memory[RegSPIData] != 0xFF {
		t.Errorf("DATA register = 0x%02X, want 0xFF", mock.memory[RegSPIData])
	}
}

func TestSPITransfer(t *testing.T) {
	dbg, mock := newTestDebugger(t)

	mock.spiQueue = []byte{0x11, 0x22, 0x33}

	got, err := dbg.SPITransfer(context.Background(), []byte{0xA0, 0xA1, 0xA2})
	if err != nil {
		t.Fatalf("SPITransfer() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0x11, 0x22, 0x33}) {
		t.Errorf("SPITransfer() = % X, want 11 22 33", got)
	}

	// the last byte shifted out stays latched in the data register
	if mock.memory[RegSPIData] != 0xA2 {
		t.Errorf("DATA register = 0x%02X, want 0xA2", mock.memory[RegSPIData])
	}
}

func TestSPIOperationsRequireEnabledCore(t *testing.T) {
	mock := newMockCartridge()
	dbg := New(mock)
	if err := dbg.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if err := dbg.SPISelect(context.Background(), ChipSelectSD); err == nil {
		t.Error("SPISelect() with disabled core error = nil, want error")
	}
}
