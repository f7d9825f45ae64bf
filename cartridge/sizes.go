package cartridge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	sizePattern = regexp.MustCompile(`^([0-9]+)(k|M)?$`)
	hexPattern  = regexp.MustCompile(`^0x([0-9A-Fa-f]+)$`)
)

// ParseSize parses a byte count as accepted by the command-line tools:
// a decimal number with an optional k (KiB) or M (MiB) suffix, or a
// 0x-prefixed hexadecimal number.
//
//	ParseSize("4k")     // 4096
//	ParseSize("2M")     // 2097152
//	ParseSize("0x1000") // 4096
func ParseSize(s string) (int, error) {
	if m := sizePattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("size %q is not in a supported format", s)
		}

		switch m[2] {
		case "k":
			n *= 1024
		case "M":
			n *= 1024 * 1024
		}
		return n, nil
	}

	if m := hexPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseInt(m[1], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("size %q is not in a supported format", s)
		}
		return int(n), nil
	}

	return 0, fmt.Errorf("size %q is not in a supported format", s)
}

// FormatSize composes a byte count into the largest exactly-dividing
// size suffix: "4k" for 4096, "2M" for 2097152, plain digits otherwise.
func FormatSize(n int) string {
	if n < 0 {
		return strconv.Itoa(n)
	}

	switch {
	case n%(1024*1024) == 0:
		return strconv.Itoa(n/(1024*1024)) + "M"
	case n%1024 == 0:
		return strconv.Itoa(n/1024) + "k"
	default:
		return strconv.Itoa(n)
	}
}

// ParseInt parses an RGBDS assembler formatted integer as used by the
// debug console: plain decimal, $-prefixed hexadecimal or %-prefixed
// binary.
//
//	ParseInt("69")    // 69
//	ParseInt("$4000") // 16384
//	ParseInt("%1010") // 10
func ParseInt(s string) (int, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		n, err := strconv.ParseInt(s[1:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid integer", s)
		}
		return int(n), nil

	case strings.HasPrefix(s, "%"):
		n, err := strconv.ParseInt(s[1:], 2, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid integer", s)
		}
		return int(n), nil

	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid integer", s)
		}
		return n, nil
	}
}

// ParseUint8 parses an RGBDS formatted integer and checks it fits in an
// 8-bit unsigned value.
func ParseUint8(s string) (byte, error) {
	n, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 0xFF {
		return 0, fmt.Errorf("value %q is not a valid 8-bit unsigned integer", s)
	}
	return byte(n), nil
}

// ParseAddress parses an RGBDS formatted integer and checks it fits in
// the cartridge's 16-bit address space.
func ParseAddress(s string) (uint16, error) {
	n, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= MemorySize {
		return 0, fmt.Errorf("address %q is outside the cartridge memory map (0x0000-0xFFFF)", s)
	}
	return uint16(n), nil
}
