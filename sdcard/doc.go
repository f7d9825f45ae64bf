// Package sdcard models the SD card SPI-mode command set as driven
// through the cartridge's SPI bridge.
//
// It builds 6-byte command frames (command index, big-endian argument,
// CRC-7), maps command indices to their expected response formats and
// decodes the R1/R1b/R2/R3/R7 response families. Actual bus traffic is
// the debugger package's job; this package is pure data.
package sdcard
