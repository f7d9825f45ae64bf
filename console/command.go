package console

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ecgc-project/ecgc-util/cartridge"
	"github.com/ecgc-project/ecgc-util/debugger"
)

// CommandKind enumerates the console's commands. The set is closed:
// execution matches on it exhaustively.
type CommandKind int

const (
	// CommandRead reads bytes from a cartridge address
	CommandRead CommandKind = iota

	// CommandWrite writes bytes to a cartridge address
	CommandWrite

	// CommandSPI transfers raw bytes on the SPI bus
	CommandSPI

	// CommandSD sends a command to the SD card
	CommandSD

	// CommandHelp prints usage for a command or the command list
	CommandHelp

	// CommandExit ends the session
	CommandExit
)

// Command is a fully parsed and validated console command. Fields are
// populated according to Kind.
type Command struct {
	Kind CommandKind

	// Address is the operation address of read and write commands
	Address uint16

	// Size is the number of bytes a read command fetches
	Size int

	// Fixed disables address auto-increment for read and write
	Fixed bool

	// Data is the payload of write and spi commands, with any repeat
	// factor already applied
	Data []byte

	// ChipSelect is the peripheral an spi command talks to
	ChipSelect debugger.ChipSelect

	// KeepSelected leaves the chip select asserted after spi and sd
	// commands
	KeepSelected bool

	// SDCmd and SDArg identify the SD command an sd command sends
	SDCmd byte
	SDArg uint32

	// HelpTopic is the command a help command asks about, empty for
	// the overview
	HelpTopic string
}

// Parse turns one line of console input into a validated Command.
// Errors cover both unknown syntax and violated value constraints;
// they are ordinary outcomes the console reports without ending the
// session.
func Parse(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	verb, args := fields[0], fields[1:]
	switch verb {
	case "read":
		return parseRead(args)
	case "write":
		return parseWrite(args)
	case "spi":
		return parseSPI(args)
	case "sd":
		return parseSD(args)
	case "help", "?":
		return parseHelp(args)
	case "exit":
		return &Command{Kind: CommandExit}, nil
	default:
		return nil, fmt.Errorf("unknown command %q (type help for the command list)", verb)
	}
}

func parseRead(args []string) (*Command, error) {
	cmd := &Command{Kind: CommandRead, Size: 1}

	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f", "--fixed":
			cmd.Fixed = true
		case "-s", "--size":
			val, ok := flagValue(args, &i)
			if !ok {
				return nil, fmt.Errorf("flag %s needs a value", args[i])
			}
			size, err := cartridge.ParseInt(val)
			if err != nil {
				return nil, err
			}
			cmd.Size = size
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown flag %q", args[i])
			}
			positional = append(positional, args[i])
		}
	}

	if len(positional) != 1 {
		return nil, fmt.Errorf("usage: read [-f] [-s SIZE] address")
	}

	address, err := cartridge.ParseAddress(positional[0])
	if err != nil {
		return nil, err
	}
	cmd.Address = address

	if cmd.Size < 1 || cmd.Size > 0xFFFF {
		return nil, fmt.Errorf("size must be between 1 and $FFFF")
	}
	if err := checkOperationRange(cmd.Address, cmd.Size, cmd.Fixed); err != nil {
		return nil, err
	}

	return cmd, nil
}

func parseWrite(args []string) (*Command, error) {
	cmd := &Command{Kind: CommandWrite}
	repeat := 1

	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f", "--fixed":
			cmd.Fixed = true
		case "-r", "--repeat":
			val, ok := flagValue(args, &i)
			if !ok {
				return nil, fmt.Errorf("flag %s needs a value", args[i])
			}
			n, err := cartridge.ParseInt(val)
			if err != nil {
				return nil, err
			}
			repeat = n
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown flag %q", args[i])
			}
			positional = append(positional, args[i])
		}
	}

	if len(positional) < 2 {
		return nil, fmt.Errorf("usage: write [-f] [-r TIMES] address data [data ...]")
	}

	address, err := cartridge.ParseAddress(positional[0])
	if err != nil {
		return nil, err
	}
	cmd.Address = address

	pattern, err := parseDataBytes(positional[1:])
	if err != nil {
		return nil, err
	}
	if repeat < 1 {
		return nil, fmt.Errorf("repeat parameter must be a non-zero positive integer")
	}

	if err := checkOperationRange(cmd.Address, len(pattern)*repeat, cmd.Fixed); err != nil {
		return nil, err
	}
	cmd.Data = bytes.Repeat(pattern, repeat)

	return cmd, nil
}

func parseSPI(args []string) (*Command, error) {
	cmd := &Command{Kind: CommandSPI}
	repeat := 1

	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-k", "--keep-selected":
			cmd.KeepSelected = true
		case "-r", "--repeat":
			val, ok := flagValue(args, &i)
			if !ok {
				return nil, fmt.Errorf("flag %s needs a value", args[i])
			}
			n, err := cartridge.ParseInt(val)
			if err != nil {
				return nil, err
			}
			repeat = n
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown flag %q", args[i])
			}
			positional = append(positional, args[i])
		}
	}

	if len(positional) < 2 {
		return nil, fmt.Errorf("usage: spi [-r TIMES] [-k] {flash,rtc,sd,none} data [data ...]")
	}

	cs, err := debugger.ParseChipSelect(positional[0])
	if err != nil {
		return nil, err
	}
	cmd.ChipSelect = cs

	pattern, err := parseDataBytes(positional[1:])
	if err != nil {
		return nil, err
	}
	if repeat < 1 {
		return nil, fmt.Errorf("repeat parameter must be a non-zero positive integer")
	}
	cmd.Data = bytes.Repeat(pattern, repeat)

	return cmd, nil
}

func parseSD(args []string) (*Command, error) {
	cmd := &Command{Kind: CommandSD}

	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-k", "--keep-selected":
			cmd.KeepSelected = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown flag %q", args[i])
			}
			positional = append(positional, args[i])
		}
	}

	if len(positional) != 2 {
		return nil, fmt.Errorf("usage: sd [-k] cmd arg")
	}

	index, err := cartridge.ParseInt(positional[0])
	if err != nil {
		return nil, err
	}
	if index < 0 || index > 0x3F {
		return nil, fmt.Errorf("cmd must be a 6-bit unsigned integer")
	}
	cmd.SDCmd = byte(index)

	arg, err := cartridge.ParseInt(positional[1])
	if err != nil {
		return nil, err
	}
	if arg < 0 || int64(arg) > 0xFFFFFFFF {
		return nil, fmt.Errorf("arg must be a 32-bit unsigned integer")
	}
	cmd.SDArg = uint32(arg)

	return cmd, nil
}

func parseHelp(args []string) (*Command, error) {
	cmd := &Command{Kind: CommandHelp}
	if len(args) > 0 {
		cmd.HelpTopic = args[0]
	}
	return cmd, nil
}

// flagValue consumes the value following the flag at *i, advancing the
// index past it.
func flagValue(args []string, i *int) (string, bool) {
	if *i+1 >= len(args) {
		return "", false
	}
	*i++
	return args[*i], true
}

func parseDataBytes(fields []string) ([]byte, error) {
	data := make([]byte, len(fields))
	for i, f := range fields {
		b, err := cartridge.ParseUint8(f)
		if err != nil {
			return nil, err
		}
		data[i] = b
	}
	return data, nil
}

// checkOperationRange rejects operations that would run past the top
// of the cartridge memory map. Fixed-address operations touch a single
// cell and cannot overflow.
func checkOperationRange(address uint16, size int, fixed bool) error {
	if size < 0 || size > 0xFFFF {
		return fmt.Errorf("size must be a 16-bit unsigned integer")
	}
	if !fixed && int(address)+size > cartridge.MemorySize {
		return fmt.Errorf("given parameters result in operations outside the cartridge's memory map")
	}
	return nil
}
