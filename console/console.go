package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ecgc-project/ecgc-util/debugger"
	"github.com/ecgc-project/ecgc-util/sdcard"
)

// Session is the slice of the debugger the console drives. It is
// satisfied by *debugger.Debugger.
type Session interface {
	SetAutoIncrement(ctx context.Context, enable bool) error
	SetAddress(ctx context.Context, address uint16) error
	Read(ctx context.Context, n int) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	SPISelect(ctx context.Context, cs debugger.ChipSelect) error
	SPIDeselect(ctx context.Context) error
	SPITransfer(ctx context.Context, data []byte) ([]byte, error)
	SDCommand(ctx context.Context, cmd byte, arg uint32, keepSelected bool) (*sdcard.Response, error)
}

// LineReader yields one line of user input per call. io.EOF ends the
// session like an exit command.
type LineReader interface {
	ReadLine() (string, error)
}

// Console is the interactive read-eval loop of ecgc-debug.
type Console struct {
	session Session
	reader  LineReader
	out     io.Writer
}

// New creates a console reading commands from reader and printing
// results to out.
func New(session Session, reader LineReader, out io.Writer) *Console {
	return &Console{
		session: session,
		reader:  reader,
		out:     out,
	}
}

// Run processes commands until an exit command, end-of-input, or a
// cancelled context. Command failures of any kind are printed and the
// loop continues; only input errors and cancellation end the session.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "type help or ? to list commands")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd, err := Parse(line)
		if err != nil {
			c.printError(err)
			continue
		}

		if cmd.Kind == CommandExit {
			return nil
		}

		if err := c.Execute(ctx, cmd); err != nil {
			c.printError(err)
		}
	}
}

// Execute runs a single parsed command against the session, printing
// its output.
func (c *Console) Execute(ctx context.Context, cmd *Command) error {
	switch cmd.Kind {
	case CommandRead:
		return c.executeRead(ctx, cmd)
	case CommandWrite:
		return c.executeWrite(ctx, cmd)
	case CommandSPI:
		return c.executeSPI(ctx, cmd)
	case CommandSD:
		return c.executeSD(ctx, cmd)
	case CommandHelp:
		c.printHelp(cmd.HelpTopic)
		return nil
	case CommandExit:
		return nil
	default:
		return fmt.Errorf("unhandled command kind %d", cmd.Kind)
	}
}

func (c *Console) executeRead(ctx context.Context, cmd *Command) error {
	if err := c.session.SetAutoIncrement(ctx, !cmd.Fixed); err != nil {
		return err
	}
	if err := c.session.SetAddress(ctx, cmd.Address); err != nil {
		return err
	}

	data, err := c.session.Read(ctx, cmd.Size)
	if err != nil {
		return err
	}

	// a fixed read is a register poll, not a memory range; dump it
	// from offset zero
	start := cmd.Address
	if cmd.Fixed {
		start = 0
	}
	for _, line := range Hexdump(start, data) {
		fmt.Fprintln(c.out, line)
	}
	return nil
}

func (c *Console) executeWrite(ctx context.Context, cmd *Command) error {
	if err := c.session.SetAutoIncrement(ctx, !cmd.Fixed); err != nil {
		return err
	}
	if err := c.session.SetAddress(ctx, cmd.Address); err != nil {
		return err
	}
	return c.session.Write(ctx, cmd.Data)
}

func (c *Console) executeSPI(ctx context.Context, cmd *Command) error {
	if err := c.session.SPISelect(ctx, cmd.ChipSelect); err != nil {
		return err
	}

	read, err := c.session.SPITransfer(ctx, cmd.Data)
	if err != nil {
		return err
	}

	if !cmd.KeepSelected {
		if err := c.session.SPIDeselect(ctx); err != nil {
			return err
		}
	}

	// written and received bytes interleaved pairwise
	writeLines := Hexdump(0, cmd.Data)
	readLines := Hexdump(0, read)
	for i := 0; i < len(writeLines) && i < len(readLines); i++ {
		fmt.Fprintln(c.out, writeLines[i])
		fmt.Fprintln(c.out, readLines[i])
		fmt.Fprintln(c.out)
	}
	return nil
}

func (c *Console) executeSD(ctx context.Context, cmd *Command) error {
	response, err := c.session.SDCommand(ctx, cmd.SDCmd, cmd.SDArg, cmd.KeepSelected)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, response.String())
	return nil
}

func (c *Console) printError(err error) {
	fmt.Fprintf(c.out, "*** %v\n", err)
}

var helpTopics = map[string]string{
	"read": `read [-f] [-s SIZE] address

Reads from the specified address. SIZE bytes are read (default 1),
incrementing the address after every byte. The -f/--fixed flag keeps
the address fixed instead, polling a single cell.

Examples:
    read $4000
    read $0100 -s 16
    read $A100 -f -s 256`,

	"write": `write [-f] [-r TIMES] address data [data ...]

Writes the given bytes to the specified address, incrementing the
address after every byte unless -f/--fixed is given. The data pattern
can be repeated with -r/--repeat TIMES.

Examples:
    write $4000 $FF
    write $A100 -f $DE $AD $BE $EF
    write $4000 -r $4000 $00`,

	"spi": `spi [-r TIMES] [-k] {flash,rtc,sd,none} data [data ...]

Transfers the given bytes over SPI to the selected peripheral, printing
the bytes shifted in below the bytes shifted out. The chip select is
released when the command completes unless -k/--keep-selected is given.
The data pattern can be repeated with -r/--repeat TIMES.

Examples:
    spi flash $4B $00 $00 $00 $00 -k
    spi flash -r 16 $00`,

	"sd": `sd [-k] cmd arg

Sends the SD command with the given index and 32-bit argument to the
card and prints the decoded response. Framing and CRC are handled
automatically; the response format follows from the command index.

Example:
    sd 0 0

WARNING: familiarity with the SD card SPI protocol is recommended.
Misuse could corrupt data on the card.`,

	"exit": "exit\n\nEnds the session.",
}

func (c *Console) printHelp(topic string) {
	if topic == "" {
		fmt.Fprintf(c.out, `Available commands:

    read [-f] [-s SIZE] address
    write [-f] [-r TIMES] address data [data ...]
    spi [-r TIMES] [-k] {flash,rtc,sd,none} data [data ...]
    sd [-k] cmd arg
    exit

Integers follow the RGBDS assembler format: decimal (69), $-prefixed
hexadecimal ($45) or %%-prefixed binary (%%1000101).

Type help <command> for details on a command.
`)
		return
	}

	if text, ok := helpTopics[topic]; ok {
		fmt.Fprintln(c.out, text)
	} else {
		fmt.Fprintf(c.out, "*** no help for %q\n", topic)
	}
}
