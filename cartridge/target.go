package cartridge

import "fmt"

// MemorySize is the size of the cartridge memory map addressable through
// the debug core (16-bit addressing).
const MemorySize = 0x10000

// Target identifies one of the cartridge's programmable memory regions.
type Target int

const (
	// TargetBoot is the 4 KiB boot ROM at the bottom of the memory map
	TargetBoot Target = iota

	// TargetDRAM is the 8 KiB DRAM window in the cartridge RAM region
	TargetDRAM

	// TargetFlash is the 16 KiB banked flash window
	TargetFlash
)

// region describes the location of a target inside the memory map.
type region struct {
	base     uint16
	capacity int
}

var regions = map[Target]region{
	TargetBoot:  {base: 0x0000, capacity: 0x1000},
	TargetDRAM:  {base: 0xA000, capacity: 0x2000},
	TargetFlash: {base: 0x4000, capacity: 0x4000},
}

// ParseTarget resolves a target name as accepted on the command line.
// Valid names are "boot", "dram" and "flash".
func ParseTarget(name string) (Target, error) {
	switch name {
	case "boot":
		return TargetBoot, nil
	case "dram":
		return TargetDRAM, nil
	case "flash":
		return TargetFlash, nil
	default:
		return 0, fmt.Errorf("unknown target %q (must be boot, dram or flash)", name)
	}
}

func (t Target) String() string {
	switch t {
	case TargetBoot:
		return "boot"
	case TargetDRAM:
		return "dram"
	case TargetFlash:
		return "flash"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// BaseAddress returns the address of the target's first byte in the
// cartridge memory map.
func (t Target) BaseAddress() uint16 {
	return regions[t].base
}

// Capacity returns the number of writable/readable bytes in the target.
func (t Target) Capacity() int {
	return regions[t].capacity
}
