// Package cli holds the pieces shared by the ecgc command-line tools:
// logging setup, session bring-up and tear-down.
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/golang/glog"

	"github.com/ecgc-project/ecgc-util/debugger"
	"github.com/ecgc-project/ecgc-util/serialport"
)

// Version is the release version reported by all tools.
const Version = "0.4.0"

// SetupLogging routes glog output to stderr at the verbosity selected
// with repeated -v flags: 0 warnings and errors, 1 operations, 2 wire
// traffic.
func SetupLogging(verbosity int) {
	if !flag.Parsed() {
		flag.CommandLine.Parse(nil)
	}
	flag.Set("logtostderr", "true")
	flag.Set("v", strconv.Itoa(verbosity))
}

// Session is an open link to the cartridge with the debug core
// enabled.
type Session struct {
	Port     *serialport.Port
	Debugger *debugger.Debugger
}

// OpenSession opens the serial port, synchronises the link, and
// enables the debug core.
func OpenSession(ctx context.Context, portName string) (*Session, error) {
	port, err := serialport.Open(portName)
	if err != nil {
		return nil, err
	}

	dbg := debugger.New(port, debugger.WithLogger(GlogLogger{}))
	if err := dbg.Reset(ctx); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset link: %w", err)
	}
	if err := dbg.EnableCore(ctx); err != nil {
		port.Close()
		return nil, fmt.Errorf("enable debug core: %w", err)
	}

	return &Session{Port: port, Debugger: dbg}, nil
}

// Close disables the debug core and releases the port. The core is
// disabled on a fresh context so a cancelled operation still hands the
// cartridge bus back to the console.
func (s *Session) Close() {
	if err := s.Debugger.DisableCore(context.Background()); err != nil {
		glog.Warningf("disable debug core: %v", err)
	}
	if err := s.Port.Close(); err != nil {
		glog.Warningf("close serial port: %v", err)
	}
}
