// Package adc reads the cook-time potentiometer. The real implementation is
// an MCP3008 on the SPI bus; the fake allows testing without hardware.
package adc

// Max is the highest reading the 10-bit converter can report.
const Max = 1023

// Reader reads the potentiometer position.
type Reader interface {
	// Read returns the current dial position, 0..Max.
	Read() (uint16, error)

	// Close releases bus resources.
	Close() error
}
