package debugger

import (
	"bytes"
	"io"

	"github.com/ecgc-project/ecgc-util/protocol"
)

// mockCartridge emulates the uart_debug core for tests: it parses
// command frames written to it and queues the acknowledgments the real
// cartridge would send. It implements io.ReadWriter so it can stand in
// for a serial port.
type mockCartridge struct {
	memory  [protocol.AddressSpaceSize]byte
	config  byte
	address uint16

	in  bytes.Buffer
	out bytes.Buffer

	// spiQueue feeds reads of the SPI data register, emulating bytes
	// shifted in from a peripheral. When empty, reads fall through to
	// memory.
	spiQueue []byte

	// failAfterBursts corrupts the acknowledgment of the Nth burst
	// command (1-based). Zero disables failure injection.
	failAfterBursts int
	burstCount      int
}

func newMockCartridge() *mockCartridge {
	return &mockCartridge{}
}

func (m *mockCartridge) Write(p []byte) (int, error) {
	m.in.Write(p)
	m.process()
	return len(p), nil
}

func (m *mockCartridge) Read(p []byte) (int, error) {
	if m.out.Len() == 0 {
		return 0, io.EOF
	}
	return m.out.Read(p)
}

func (m *mockCartridge) autoIncrement() bool {
	return m.config&protocol.ConfigAutoIncrement != 0
}

// process consumes as many complete command frames as the input buffer
// holds.
func (m *mockCartridge) process() {
	for m.in.Len() > 0 {
		buf := m.in.Bytes()

		switch buf[0] {
		case 0x00:
			// sync frame: wait for all zeros, answer with the ready
			// marker in the final byte
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
			if m.burstCount == m.failAfterBursts {
				echo = 0x7F
			}
			m.out.Write([]byte{echo, buf[1]})
			for i := 0; i < n; i++ {
				m.out.WriteByte(m.readCell())
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
			if m.burstCount == m.failAfterBursts {
				echo = 0x7F
			}
			for _, b := range buf[2 : 2+n] {
				m.writeCell(b)
			}
			m.out.WriteByte(echo)
			m.out.Write(buf[1 : 2+n])

		default:
			// unknown command byte: the real core would hang, the mock
			// just drops it
			m.in.Next(1)
		}
	}
}

func (m *mockCartridge) readCell() byte {
	var b byte
	if m.address == RegSPIData && len(m.spiQueue) > 0 {
		b = m.spiQueue[0]
		m.spiQueue = m.spiQueue[1:]
	} else {
		b = m.memory[m.address]
	}
	if m.autoIncrement() {
		m.address++
	}
	return b
}

func (m *mockCartridge) writeCell(b byte) {
	m.memory[m.address] = b
	if m.autoIncrement() {
		m.address++
	}
}
