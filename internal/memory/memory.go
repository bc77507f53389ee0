// Package memory implements the flat 64KB address space seen by the CPU core.
package memory

import (
	"errors"
	"fmt"
)

const (
	// Size is the number of addressable bytes
	Size = 0x10000

	// ProgramStart is where Load places programs
	ProgramStart uint16 = 0x8000

	// ResetVector holds the little-endian entry point used by reset
	ResetVector uint16 = 0xFFFC
)

// ErrProgramTooLarge is returned when a load would run past the end of memory.
var ErrProgramTooLarge = errors.New("program does not fit in memory")

// Memory is a zero-initialised 64KB byte array. There is no mirroring and
// no memory-mapped I/O: every address reads back what was last written.
type Memory struct {
	data [Size]uint8
}

// New creates a new zero-filled Memory instance
func New() *Memory {
	return &Memory{}
}

// Read reads a byte
func (m *Memory) Read(address uint16) uint8 {
	return m.data[address]
}

// Write writes a byte
func (m *Memory) Write(address uint16, value uint8) {
	m.data[address] = value
}

// ReadWord reads a little-endian word. The high byte address wraps at $FFFF.
func (m *Memory) ReadWord(address uint16) uint16 {
	low := uint16(m.data[address])
	high := uint16(m.data[address+1])
	return (high << 8) | low
}

// WriteWord writes a little-endian word.
func (m *Memory) WriteWord(address uint16, value uint16) {
	m.data[address] = uint8(value & 0xFF)
	m.data[address+1] = uint8(value >> 8)
}

// Load copies data into memory starting at address.
func (m *Memory) Load(address uint16, data []byte) error {
	if int(address)+len(data) > Size {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrProgramTooLarge, len(data), address)
	}
	copy(m.data[address:], data)
	return nil
}
