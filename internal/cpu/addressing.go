package cpu

import "fmt"

// AddressingMode selects how an instruction locates its operand
type AddressingMode int

const (
	// NoneAddressing is the zero value and never appears in the opcode table
	NoneAddressing AddressingMode = iota
	Implied
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect  // JMP only
	IndirectX // (zp,X)
	IndirectY // (zp),Y
)

var addressingModeNames = [...]string{
	NoneAddressing: "NoneAddressing",
	Implied:        "Implied",
	Accumulator:    "Accumulator",
	Immediate:      "Immediate",
	ZeroPage:       "ZeroPage",
	ZeroPageX:      "ZeroPageX",
	ZeroPageY:      "ZeroPageY",
	Relative:       "Relative",
	Absolute:       "Absolute",
	AbsoluteX:      "AbsoluteX",
	AbsoluteY:      "AbsoluteY",
	Indirect:       "Indirect",
	IndirectX:      "IndirectX",
	IndirectY:      "IndirectY",
}

func (m AddressingMode) String() string {
	if m >= 0 && int(m) < len(addressingModeNames) {
		return addressingModeNames[m]
	}
	return fmt.Sprintf("AddressingMode(%d)", int(m))
}

// operandBytes is the number of bytes following the opcode for the mode
func (m AddressingMode) operandBytes() uint8 {
	switch m {
	case Implied, Accumulator:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, Relative, IndirectX, IndirectY:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	}
	return 0
}

// operandAddress returns the effective address for the given addressing mode.
// PC must point at the first operand byte. The boolean is false for modes
// that have no memory operand (Implied, Accumulator, Relative); the handler
// works on a register or consumes the operand byte itself.
// PC is never modified here.
func (cpu *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator, Relative:
		return 0, false

	case Immediate:
		return cpu.PC, true

	case ZeroPage:
		return uint16(cpu.memory.Read(cpu.PC)), true

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC)
		return uint16(base + cpu.X), true // Wrap within zero page

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC)
		return uint16(base + cpu.Y), true // Wrap within zero page

	case Absolute:
		return cpu.readWord(cpu.PC), true

	case AbsoluteX:
		return cpu.readWord(cpu.PC) + uint16(cpu.X), true

	case AbsoluteY:
		return cpu.readWord(cpu.PC) + uint16(cpu.Y), true

	case Indirect:
		ptr := cpu.readWord(cpu.PC)
		// Hardware page bug: a pointer at $xxFF takes its high byte from $xx00
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr & pageMask) | uint16(uint8(ptr)+1)))
		return (high << 8) | low, true

	case IndirectX:
		ptr := cpu.memory.Read(cpu.PC) + cpu.X
		return cpu.readZeroPageWord(ptr), true

	case IndirectY:
		ptr := cpu.memory.Read(cpu.PC)
		return cpu.readZeroPageWord(ptr) + uint16(cpu.Y), true
	}

	panic(InvalidAddressingModeError{Mode: mode})
}

// readWord reads a little-endian word, wrapping at $FFFF
func (cpu *CPU) readWord(address uint16) uint16 {
	low := uint16(cpu.memory.Read(address))
	high := uint16(cpu.memory.Read(address + 1))
	return (high << 8) | low
}

// readZeroPageWord reads a little-endian word whose high byte wraps within zero page
func (cpu *CPU) readZeroPageWord(ptr uint8) uint16 {
	low := uint16(cpu.memory.Read(uint16(ptr)))
	high := uint16(cpu.memory.Read(uint16(ptr + 1)))
	return (high << 8) | low
}
