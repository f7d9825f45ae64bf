package console

import (
	"fmt"
	"strings"
)

// Hexdump renders data as 16-byte lines aligned to 16-byte address
// boundaries, the classic two groups of eight with an ASCII gutter:
//
//	4000  4B 00 00 00 00 FF FF FF   FF FF FF FF FF FF FF FF   |K...............|
//
// Cells before the start address on the first line and after the last
// byte on the final line are padded with "--" and render as "." in the
// gutter.
func Hexdump(startAddress uint16, data []byte) []string {
	if len(data) == 0 {
		return nil
	}

	aligned := int(startAddress) - int(startAddress)%16
	leadPad := int(startAddress) - aligned

	// cells holds the whole dump including padding; nil-marked cells
	// are represented by values outside the byte range
	cells := make([]int, 0, leadPad+len(data))
	for i := 0; i < leadPad; i++ {
		cells = append(cells, -1)
	}
	for _, b := range data {
		cells = append(cells, int(b))
	}
	for len(cells)%16 != 0 {
		cells = append(cells, -1)
	}

	lines := make([]string, 0, len(cells)/16)
	for i := 0; i < len(cells); i += 16 {
		row := cells[i : i+16]

		var sb strings.Builder
		fmt.Fprintf(&sb, "%04X  ", aligned+i)
		for _, group := range [][]int{row[:8], row[8:]} {
			parts := make([]string, len(group))
			for j, c := range group {
				if c < 0 {
					parts[j] = "--"
				} else {
					parts[j] = fmt.Sprintf("%02X", c)
				}
			}
			sb.WriteString(strings.Join(parts, " "))
			sb.WriteString("   ")
		}

		sb.WriteByte('|')
		for _, c := range row {
			sb.WriteByte(asciiCell(c))
		}
		sb.WriteByte('|')

		lines = append(lines, sb.String())
	}

	return lines
}

func asciiCell(c int) byte {
	if c > 0x1F && c < 0x7F {
		return byte(c)
	}
	return '.'
}
