package programmer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ecgc-project/ecgc-util/cartridge"
	"github.com/ecgc-project/ecgc-util/debugger"
	"github.com/ecgc-project/ecgc-util/protocol"
)

// mockDevice emulates the uart_debug core's command handling, enough
// to run whole transfers against an in-memory cartridge.
type mockDevice struct {
	memory  [protocol.AddressSpaceSize]byte
	config  byte
	address uint16

	in  bytes.Buffer
	out bytes.Buffer

	// wireBytes counts every byte written to the device, to verify
	// that rejected requests produce no traffic at all
	wireBytes int

	// failAtBurst corrupts the acknowledgment of the Nth burst
	// command (1-based); zero disables
	failAtBurst int
	burstCount  int
}

func (m *mockDevice) Write(p []byte) (int, error) {
	m.wireBytes += len(p)
	m.in.Write(p)
	m.process()
	return len(p), nil
}

func (m *mockDevice) Read(p []byte) (int, error) {
	if m.out.Len() == 0 {
		return 0, io.EOF
	}
	return m.out.Read(p)
}

func (m *mockDevice) process() {
	for m.in.Len() > 0 {
		buf := m.in.Bytes()
		autoinc := m.config&protocol.ConfigAutoIncrement != 0

		switch buf[0] {
		case 0x00:
			if len(buf) < protocol.SyncFrameSize {
				return
			}
			m.in.Next(protocol.SyncFrameSize)
			response := make([]byte, protocol.SyncFrameSize)
			response[protocol.SyncFrameSize-1] = protocol.SyncReady
			m.out.Write(response)

		case protocol.CmdConfigRead:
			m.in.Next(1)
			m.out.Write([]byte{protocol.CmdConfigRead | protocol.ResponseBit, m.config})

		case protocol.CmdConfigWrite:
			if len(buf) < 2 {
				return
			}
			m.in.Next(2)
			m.config = buf[1]
			m.out.Write([]byte{protocol.CmdConfigWrite | protocol.ResponseBit, buf[1]})

		case protocol.CmdSetAddress:
			if len(buf) < 3 {
				return
			}
			m.in.Next(3)
			m.address = uint16(buf[1]) | uint16(buf[2])<<8
			m.out.Write([]byte{protocol.CmdSetAddress | protocol.ResponseBit, buf[1], buf[2]})

		case protocol.CmdReadBurst:
			if len(buf) < 2 {
				return
			}
			m.in.Next(2)
			n := int(buf[1]) + 1
			m.burstCount++
			echo := byte(protocol.CmdReadBurst | protocol.ResponseBit)
			if m.burstCount == m.failAtBurst {
				echo = 0x7F
			}
			m.out.Write([]byte{echo, buf[1]})
			for i := 0; i < n; i++ {
				m.out.WriteByte(m.memory[m.address])
				if autoinc {
					m.address++
				}
			}

		case protocol.CmdWriteBurst:
			if len(buf) < 2 {
				return
			}
			n := int(buf[1]) + 1
			if len(buf) < 2+n {
				return
			}
			m.in.Next(2 + n)
			m.burstCount++
			echo := byte(protocol.CmdWriteBurst | protocol.ResponseBit)
			if m.burstCount == m.failAtBurst {
				echo = 0x7F
			}
			for _, b := range buf[2 : 2+n] {
				m.memory[m.address] = b
				if autoinc {
					m.address++
				}
			}
			m.out.WriteByte(echo)
			m.out.Write(buf[1 : 2+n])

		default:
			m.in.Next(1)
		}
	}
}

func newTestProgrammer(t *testing.T, opts ...Option) (*Programmer, *mockDevice) {
	t.Helper()

	mock := &mockDevice{}
	dbg := debugger.New(mock)

	if err := dbg.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := dbg.EnableCore(context.Background()); err != nil {
		t.Fatalf("EnableCore() error = %v", err)
	}

	// session setup traffic does not count against pre-flight checks
	mock.wireBytes = 0

	return New(dbg, opts...), mock
}

func TestUploadDumpRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		target cartridge.Target
		offset int
		size   int
	}{
		{"dram full", cartridge.TargetDRAM, 0, 0x2000},
		{"dram offset", cartridge.TargetDRAM, 0x100, 1000},
		{"boot small", cartridge.TargetBoot, 0, 10},
		{"flash partial", cartridge.TargetFlash, 0x1000, 0x2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, _ := newTestProgrammer(t)
			ctx := context.Background()

			image := make([]byte, tt.size)
			for i := range image {
				image[i] = byte(i*13 + 7)
			}

			req := Request{Target: tt.target, Offset: tt.offset, Size: tt.size}
			summary, err := prog.Upload(ctx, req, image)
			if err != nil {
				t.Fatalf("Upload() error = %v", err)
			}
			if summary.BytesTransferred != tt.size {
				t.Errorf("BytesTransferred = %d, want %d", summary.BytesTransferred, tt.size)
			}

			var dumped bytes.Buffer
			address := int(tt.target.BaseAddress()) + tt.offset
			if _, err := prog.Dump(ctx, address, tt.size, &dumped); err != nil {
				t.Fatalf("Dump() error = %v", err)
			}

			if !bytes.Equal(dumped.Bytes(), image) {
				t.Error("dumped data differs from uploaded image")
			}
		})
	}
}

func TestUploadDefaultSize(t *testing.T) {
	prog, mock := newTestProgrammer(t)

	image := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	summary, err := prog.Upload(context.Background(), Request{Target: cartridge.TargetDRAM}, image)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if summary.BytesTransferred != 10 {
		t.Errorf("BytesTransferred = %d, want 10", summary.BytesTransferred)
	}

	base := cartridge.TargetDRAM.BaseAddress()
	if !bytes.Equal(mock.memory[base:base+10], image) {
		t.Error("image not written at the target base address")
	}

	// the rest of the target is left untouched
	if mock.memory[base+10] != 0 {
		t.Errorf("memory[base+10] = 0x%02X, want 0x00", mock.memory[base+10])
	}
}

func TestUploadDefaultSizeClampsToCapacity(t *testing.T) {
	prog, _ := newTestProgrammer(t)

	// image larger than the target: only the fitting prefix is written
	image := make([]byte, 0x3000)
	summary, err := prog.Upload(context.Background(), Request{Target: cartridge.TargetDRAM}, image)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if want := cartridge.TargetDRAM.Capacity(); summary.BytesTransferred != want {
		t.Errorf("BytesTransferred = %d, want %d", summary.BytesTransferred, want)
	}
}

func TestUploadBoundsChecksSendNothing(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		image []byte
	}{
		{
			"explicit size exceeds capacity",
			Request{Target: cartridge.TargetBoot, Size: 0x5000},
			make([]byte, 0x5000),
		},
		{
			"offset plus size exceeds capacity",
			Request{Target: cartridge.TargetDRAM, Offset: 0x1F00, Size: 0x200},
			make([]byte, 0x200),
		},
		{
			"size exceeds image",
			Request{Target: cartridge.TargetDRAM, Size: 100},
			make([]byte, 50),
		},
		{
			"negative size",
			Request{Target: cartridge.TargetDRAM, Size: -1},
			make([]byte, 50),
		},
		{
			"negative offset",
			Request{Target: cartridge.TargetDRAM, Offset: -1},
			make([]byte, 50),
		},
		{
			"offset outside target",
			Request{Target: cartridge.TargetDRAM, Offset: 0x2000},
			make([]byte, 50),
		},
		{
			"empty image",
			Request{Target: cartridge.TargetDRAM},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, mock := newTestProgrammer(t)

			_, err := prog.Upload(context.Background(), tt.req, tt.image)
			if !IsBoundsError(err) {
				t.Fatalf("Upload() error = %v, want *BoundsError", err)
			}
			if mock.wireBytes != 0 {
				t.Errorf("rejected upload sent %d bytes over the wire, want 0", mock.wireBytes)
			}
		})
	}
}

func TestDumpBounds(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		length int
	}{
		{"negative offset", -1, 10},
		{"offset outside memory", cartridge.MemorySize, 10},
		{"zero length", 0, 0},
		{"negative length", 0, -5},
		{"range past end of memory", cartridge.MemorySize - 10, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, mock := newTestProgrammer(t)

			var out bytes.Buffer
			_, err := prog.Dump(context.Background(), tt.offset, tt.length, &out)
			if !IsBoundsError(err) {
				t.Fatalf("Dump() error = %v, want *BoundsError", err)
			}
			if mock.wireBytes != 0 {
				t.Errorf("rejected dump sent %d bytes over the wire, want 0", mock.wireBytes)
			}
		})
	}
}

func TestDumpExactLength(t *testing.T) {
	prog, mock := newTestProgrammer(t)

	for i := 0; i < 100; i++ {
		mock.memory[0x4000+i] = byte(i)
	}

	var out bytes.Buffer
	summary, err := prog.Dump(context.Background(), 0x4000, 100, &out)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if summary.BytesTransferred != 100 {
		t.Errorf("BytesTransferred = %d, want 100", summary.BytesTransferred)
	}
	if out.Len() != 100 {
		t.Fatalf("dumped %d bytes, want 100", out.Len())
	}
	for i, b := range out.Bytes() {
		if b != byte(i) {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X (ascending address order)", i, b, byte(i))
		}
	}
}

func TestUploadTransferErrorCumulativeCount(t *testing.T) {
	prog, mock := newTestProgrammer(t)

	// 3000 bytes = chunks of 1024, each chunk four bursts of up to
	// 256. Failing the sixth burst means one full chunk (1024) plus
	// one burst (256) were confirmed.
	mock.failAtBurst = 6

	image := make([]byte, 3000)
	_, err := prog.Upload(context.Background(), Request{Target: cartridge.TargetFlash}, image)

	var transferErr *debugger.TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("Upload() error = %v, want *debugger.TransferError", err)
	}
	if transferErr.BytesTransferred != 1280 {
		t.Errorf("BytesTransferred = %d, want 1280", transferErr.BytesTransferred)
	}
}

func TestProgressCallback(t *testing.T) {
	var calls [][2]int
	prog, _ := newTestProgrammer(t, WithProgressCallback(func(transferred, total int) {
		calls = append(calls, [2]int{transferred, total})
	}))

	image := make([]byte, 3000)
	if _, err := prog.Upload(context.Background(), Request{Target: cartridge.TargetFlash}, image); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	want := [][2]int{{1024, 3000}, {2048, 3000}, {3000, 3000}}
	if len(calls) != len(want) {
		t.Fatalf("progress called %d times, want %d", len(calls), len(want))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}
