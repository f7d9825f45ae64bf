package debugger

import (
	"bytes"
	"context"
	"fmt"
	"math"
)

// Memory-mapped registers of the cartridge firmware's SPI bridge.
const (
	// RegSPIBase is the base address of the SPI register block
	RegSPIBase = 0xA600

	// RegSPICtrl is the SPI control register
	RegSPICtrl = RegSPIBase + 0

	// RegSPIFDiv is the SPI clock divider register; the bus clock is
	// SPIClockHz / (FDIV + 1)
	RegSPIFDiv = RegSPIBase + 1

	// RegSPICS is the chip select register (active low, one bit per
	// peripheral)
	RegSPICS = RegSPIBase + 2

	// RegSPIData shifts out a written byte and latches the byte
	// shifted in, which a subsequent read returns
	RegSPIData = RegSPIBase + 3
)

// SPIClockHz is the input clock of the SPI bridge's divider.
const SPIClockHz = 100_000_000

// spiDefaultCtrl is the control register value the bridge is
// initialised with.
const spiDefaultCtrl = 0x01

// sdInitClockHz is the conservative bus speed used while the SD card
// is brought out of reset.
const sdInitClockHz = 400_000

// ChipSelect identifies a peripheral on the cartridge's SPI bus. The
// value is what gets written to the chip select register (active low).
type ChipSelect byte

const (
	// ChipSelectFlash selects the SPI flash chip
	ChipSelectFlash ChipSelect = 0xFE

	// ChipSelectRTC selects the real-time clock
	ChipSelectRTC ChipSelect = 0xFD

	// ChipSelectSD selects the SD card
	ChipSelectSD ChipSelect = 0xFB

	// ChipSelectNone deselects all peripherals
	ChipSelectNone ChipSelect = 0xFF
)

// ParseChipSelect resolves a peripheral name as used by the debug
// console: "flash", "rtc", "sd" or "none".
func ParseChipSelect(name string) (ChipSelect, error) {
	switch name {
	case "flash":
		return ChipSelectFlash, nil
	case "rtc":
		return ChipSelectRTC, nil
	case "sd":
		return ChipSelectSD, nil
	case "none":
		return ChipSelectNone, nil
	default:
		return 0, fmt.Errorf("unknown SPI peripheral %q (must be flash, rtc, sd or none)", name)
	}
}

func (cs ChipSelect) String() string {
	switch cs {
	case ChipSelectFlash:
		return "flash"
	case ChipSelectRTC:
		return "rtc"
	case ChipSelectSD:
		return "sd"
	case ChipSelectNone:
		return "none"
	default:
		return fmt.Sprintf("ChipSelect(0x%02X)", byte(cs))
	}
}

// InitSPI brings the SPI bridge and the SD card into a defined state:
// default control register, nothing selected, 400 kHz bus clock, and
// at least 74 clocks of MOSI high for the card's power-up sequence.
// Requires the debug core to be enabled.
func (d *Debugger) InitSPI(ctx context.Context) error {
	if err := d.writeRegister(ctx, RegSPICtrl, spiDefaultCtrl); err != nil {
		return fmt.Errorf("init SPI control: %w", err)
	}
	if err := d.SPIDeselect(ctx); err != nil {
		return err
	}
	if _, err := d.SPISetSpeed(ctx, sdInitClockHz); err != nil {
		return err
	}

	// 10 bytes = 80 clocks of MOSI high
	if err := d.SPIWrite(ctx, bytes.Repeat([]byte{0xFF}, 10)); err != nil {
		return fmt.Errorf("SD power-up clocks: %w", err)
	}

	return nil
}

// SPISetSpeed programs the divider for the requested bus frequency and
// returns the actual frequency achieved, which is the closest value
// SPIClockHz / (n+1) for an 8-bit n.
func (d *Debugger) SPISetSpeed(ctx context.Context, freq float64) (float64, error) {
	if freq <= 0 {
		return 0, fmt.Errorf("SPI frequency must be positive, got %g", freq)
	}

	fdiv := int(math.Round(SPIClockHz/freq)) - 1
	if fdiv < 0 {
		fdiv = 0
	}
	if fdiv > 0xFF {
		fdiv = 0xFF
	}
	actual := float64(SPIClockHz) / float64(fdiv+1)

	if err := d.writeRegister(ctx, RegSPIFDiv, byte(fdiv)); err != nil {
		return 0, fmt.Errorf("set SPI speed: %w", err)
	}

	d.logInfo("spi: set frequency", "requested", freq, "actual", actual)
	return actual, nil
}

// SPISelect asserts the chip select of the given peripheral.
func (d *Debugger) SPISelect(ctx context.Context, cs ChipSelect) error {
	if err := d.writeRegister(ctx, RegSPICS, byte(cs)); err != nil {
		return fmt.Errorf("select %s: %w", cs, err)
	}

	d.logDebug("spi: selected", "peripheral", cs.String())
	return nil
}

// SPIDeselect releases all chip selects.
func (d *Debugger) SPIDeselect(ctx context.Context) error {
	if err := d.writeRegister(ctx, RegSPICS, byte(ChipSelectNone)); err != nil {
		return fmt.Errorf("deselect: %w", err)
	}

	d.logDebug("spi: deselected all")
	return nil
}

// SPIWrite shifts the given bytes out on the SPI bus, discarding
// whatever is shifted in.
func (d *Debugger) SPIWrite(ctx context.Context, data []byte) error {
	if err := d.SetAutoIncrement(ctx, false); err != nil {
		return err
	}
	if err := d.SetAddress(ctx, RegSPIData); err != nil {
		return err
	}

	return d.Write(ctx, data)
}

// SPITransfer shifts the given bytes out on the SPI bus one at a time
// and returns the bytes shifted in alongside each of them.
func (d *Debugger) SPITransfer(ctx context.Context, data []byte) ([]byte, error) {
	if err := d.SetAutoIncrement(ctx, false); err != nil {
		return nil, err
	}
	if err := d.SetAddress(ctx, RegSPIData); err != nil {
		return nil, err
	}

	result := make([]byte, 0, len(data))
	for _, b := range data {
		if err := d.WriteByte(ctx, b); err != nil {
			return result, err
		}
		in, err := d.ReadByte(ctx)
		if err != nil {
			return result, err
		}
		result = append(result, in)
	}

	return result, nil
}

// writeRegister writes a single firmware register with auto-increment
// off.
func (d *Debugger) writeRegister(ctx context.Context, address uint16, value byte) error {
	if err := d.SetAutoIncrement(ctx, false); err != nil {
		return err
	}
	if err := d.SetAddress(ctx, address); err != nil {
		return err
	}
	return d.WriteByte(ctx, value)
}
