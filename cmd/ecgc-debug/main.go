// ecgc-debug opens an interactive console for peeking and poking the
// cartridge's memory space, SPI bus and SD card.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ecgc-project/ecgc-util/cli"
	"github.com/ecgc-project/ecgc-util/console"
	"github.com/ecgc-project/ecgc-util/serialport"
)

var (
	listPorts bool
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "ecgc-debug serial_port",
	Short: "Interactive console for peeking and poking cartridge registers",
	Long: `Opens an interactive prompt on the ecgc cartridge connected through the
given serial port. The read, write, spi and sd commands give direct
access to the cartridge's memory space and peripherals; type help at
the prompt for details.

Note that all address operations must stay within the 16-bit cartridge
memory map ($0000-$FFFF). Operations outside this range are rejected.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       cli.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(verbosity)
		defer glog.Flush()

		if listPorts {
			return runListPorts()
		}
		if len(args) != 1 {
			return fmt.Errorf("serial_port argument is required (or use --list-ports)")
		}
		return runConsole(cmd.Context(), args[0])
	},
}

func runListPorts() error {
	ports, err := serialport.List()
	if err != nil {
		return fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func runConsole(ctx context.Context, portName string) error {
	session, err := cli.OpenSession(ctx, portName)
	if err != nil {
		return err
	}
	defer session.Close()

	// spi and sd commands need the bridge in a known state; read and
	// write work either way
	if err := session.Debugger.InitSPI(ctx); err != nil {
		glog.Warningf("SPI bridge init failed: %v", err)
	}

	reader, out, restore, err := openTerminal()
	if err != nil {
		return err
	}
	defer restore()

	fmt.Fprintf(out, "ecgc-debug %s\n", cli.Version)
	return console.New(session.Debugger, reader, out).Run(ctx)
}

// stdio bridges the terminal package onto the process streams.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// scannerReader reads plain lines when input is not a terminal (piped
// scripts, tests).
type scannerReader struct {
	scanner *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// openTerminal sets up line-edited input when stdin is a terminal and
// falls back to plain buffered reads otherwise. The returned restore
// function undoes the raw mode.
func openTerminal() (console.LineReader, io.Writer, func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return &scannerReader{scanner: bufio.NewScanner(os.Stdin)}, os.Stdout, func() {}, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("set terminal raw mode: %w", err)
	}

	t := term.NewTerminal(stdio{}, "> ")
	restore := func() { term.Restore(fd, oldState) }
	return t, t, restore, nil
}

func main() {
	rootCmd.Flags().BoolVar(&listPorts, "list-ports", false,
		"list the serial ports present on the system and exit")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity of program output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ecgc-debug: %v\n", err)
		os.Exit(1)
	}
}
