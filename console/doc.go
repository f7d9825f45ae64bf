// Package console implements the interactive prompt of ecgc-debug: a
// read-eval loop that parses peek/poke commands and runs them against
// a cartridge debug session.
//
// Commands are parsed into a closed set of Command values before
// anything touches the hardware, so every input error is caught and
// reported without side effects. Command failures, whether validation
// or device faults, are printed with a "***" prefix and leave the
// session running.
package console
