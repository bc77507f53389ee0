// Package monitor provides an interactive ebiten window that single-steps
// the interpreter and shows registers, flags and one page of memory.
package monitor

import (
	"fmt"
	"strings"

	"nescore/internal/app"
	"nescore/internal/cpu"
)

const (
	// Layout in 7x13 glyph cells
	charWidth  = 7
	lineHeight = 14
	columns    = 80
	rows       = 30

	screenWidth  = columns * charWidth
	screenHeight = rows * lineHeight

	bytesPerRow = 16
)

// flagToken is one status bit as shown in the flag row
type flagToken struct {
	name    string
	enabled bool
}

func flagTokens(status uint8) []flagToken {
	return []flagToken{
		{"N", status&cpu.FlagNegative != 0},
		{"V", status&cpu.FlagOverflow != 0},
		{"D", status&cpu.FlagDecimal != 0},
		{"I", status&cpu.FlagInterrupt != 0},
		{"Z", status&cpu.FlagZero != 0},
		{"C", status&cpu.FlagCarry != 0},
	}
}

func registerLines(s app.CPUState) []string {
	return []string{
		fmt.Sprintf("PC $%04X   A $%02X   X $%02X   Y $%02X   P $%02X", s.PC, s.A, s.X, s.Y, s.Status),
		fmt.Sprintf("State %-8s Steps %-10d Cycles %d", s.State, s.Steps, s.Cycles),
	}
}

// disassemble renders the instruction at pc without executing it
func disassemble(read func(uint16) uint8, pc uint16) string {
	code := read(pc)
	op, ok := cpu.Lookup(code)
	if !ok {
		return fmt.Sprintf("$%04X  %02X        ???", pc, code)
	}

	raw := make([]string, 0, 3)
	for i := uint16(0); i < uint16(op.Bytes); i++ {
		raw = append(raw, fmt.Sprintf("%02X", read(pc+i)))
	}
	return fmt.Sprintf("$%04X  %-8s  %s %s", pc, strings.Join(raw, " "), op.Mnemonic, operandText(read, pc, op))
}

func operandText(read func(uint16) uint8, pc uint16, op cpu.OpCode) string {
	lo := read(pc + 1)
	word := uint16(read(pc+2))<<8 | uint16(lo)

	switch op.Mode {
	case cpu.Accumulator:
		return "A"
	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", lo)
	case cpu.ZeroPage:
		return fmt.Sprintf("$%02X", lo)
	case cpu.ZeroPageX:
		return fmt.Sprintf("$%02X,X", lo)
	case cpu.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", lo)
	case cpu.Relative:
		return fmt.Sprintf("$%04X", uint16(int32(pc)+2+int32(int8(lo))))
	case cpu.Absolute:
		return fmt.Sprintf("$%04X", word)
	case cpu.AbsoluteX:
		return fmt.Sprintf("$%04X,X", word)
	case cpu.AbsoluteY:
		return fmt.Sprintf("$%04X,Y", word)
	case cpu.Indirect:
		return fmt.Sprintf("($%04X)", word)
	case cpu.IndirectX:
		return fmt.Sprintf("($%02X,X)", lo)
	case cpu.IndirectY:
		return fmt.Sprintf("($%02X),Y", lo)
	}
	return ""
}

// memoryLines renders one 256-byte page as 16 hex rows
func memoryLines(read func(uint16) uint8, page uint8) []string {
	base := uint16(page) << 8
	lines := make([]string, 0, 256/bytesPerRow)
	for row := uint16(0); row < 256; row += bytesPerRow {
		var b strings.Builder
		fmt.Fprintf(&b, "$%04X ", base+row)
		for i := uint16(0); i < bytesPerRow; i++ {
			fmt.Fprintf(&b, " %02X", read(base+row+i))
		}
		lines = append(lines, b.String())
	}
	return lines
}

// dump is the plain-text snapshot copied to the clipboard
func dump(r *app.Runner, page uint8) string {
	c := r.CPU()
	s := r.GetCPUState()

	var b strings.Builder
	for _, line := range registerLines(s) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Flags %s\n", cpu.FlagsString(s.Status))
	b.WriteString(disassemble(c.MemRead, s.PC))
	b.WriteString("\n\n")
	for _, line := range memoryLines(c.MemRead, page) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

const helpLine = "SPACE step  R run/pause  BKSP restart  PGUP/PGDN page  C copy  F5 save  F9 load  ESC quit"
