// Package cartridge describes the ecgc cartridge's memory layout as
// seen through the programmer's debug core.
//
// The debug core addresses a 64 KiB memory map. Three regions of it are
// programmable targets for image uploads:
//
//	boot   0x0000  4 KiB   boot ROM
//	dram   0xA000  8 KiB   DRAM window
//	flash  0x4000  16 KiB  banked flash window
//
// The package also provides the integer formats shared by the
// command-line tools: byte counts with k/M suffixes (ParseSize,
// FormatSize) and RGBDS assembler style integers for the debug console
// (ParseInt and friends).
package cartridge
