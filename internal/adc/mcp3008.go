package adc

import (
	"fmt"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

// MCP3008 reads one single-ended channel of an MCP3008 converter over SPI.
type MCP3008 struct {
	port    spi.PortCloser
	conn    spi.Conn
	channel int
}

// NewMCP3008 opens the given SPI port ("" for the first available) and
// prepares the given converter channel (0..7).
func NewMCP3008(dev string, channel int) (*MCP3008, error) {
	if channel < 0 || channel > 7 {
		return nil, fmt.Errorf("mcp3008: channel %d out of range", channel)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", dev, err)
	}

	// 1.35 MHz is the MCP3008 maximum clock at 2.7V supply; safe at 3.3V.
	conn, err := port.Connect(1350*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	return &MCP3008{port: port, conn: conn, channel: channel}, nil
}

// Read performs one conversion and returns the 10-bit result.
func (m *MCP3008) Read() (uint16, error) {
	tx := requestFrame(m.channel)
	rx := make([]byte, len(tx))
	if err := m.conn.Tx(tx[:], rx); err != nil {
		return 0, fmt.Errorf("spi tx: %w", err)
	}
	return decodeFrame(rx), nil
}

// Close releases the SPI port.
func (m *MCP3008) Close() error {
	if m.port != nil {
		if err := m.port.Close(); err != nil {
			return fmt.Errorf("close spi port: %w", err)
		}
	}
	return nil
}

// requestFrame builds the 3-byte conversion request: start bit, then
// single-ended mode and channel in the top nibble of the second byte.
func requestFrame(channel int) [3]byte {
	return [3]byte{0x01, byte(0x80 | channel<<4), 0x00}
}

// decodeFrame extracts the 10-bit result from the 3-byte reply: the low two
// bits of the second byte are the high bits of the sample.
func decodeFrame(rx []byte) uint16 {
	return uint16(rx[1]&0x03)<<8 | uint16(rx[2])
}
