package cpu

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// loopThreshold is how many consecutive fetches from one PC count as stuck
const loopThreshold = 100

// SetTraceOutput enables per-instruction tracing to w; nil disables it
func (cpu *CPU) SetTraceOutput(w io.Writer) {
	cpu.trace = w
}

// EnableLoopDetection enables/disables infinite loop detection
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.enableLoopDetection = enable
	cpu.pcStayCount = 0
}

// detectInfiniteLoop detects when CPU is stuck at the same PC, e.g. JMP to itself
func (cpu *CPU) detectInfiniteLoop(pc uint16, opcode uint8) {
	if pc != cpu.lastPC {
		cpu.pcStayCount = 0
		cpu.lastPC = pc
		return
	}
	cpu.pcStayCount++
	if cpu.pcStayCount == loopThreshold || cpu.pcStayCount%(loopThreshold*10) == 0 {
		log.Printf("[CPU_LOOP] CPU stuck at PC=$%04X executing opcode=0x%02X for %d steps | %s",
			pc, opcode, cpu.pcStayCount, cpu.String())
	}
}

// logInstruction writes one trace line for the instruction about to execute
func (cpu *CPU) logInstruction(pc uint16, op *OpCode) {
	operands := make([]string, 0, 2)
	for i := uint16(1); i < uint16(op.Bytes); i++ {
		operands = append(operands, fmt.Sprintf("%02X", cpu.memory.Read(pc+i)))
	}
	fmt.Fprintf(cpu.trace, "[CPU_TRACE] $%04X  %02X %-5s  %s %-11s | A=$%02X X=$%02X Y=$%02X | %s\n",
		pc, op.Code, strings.Join(operands, " "), op.Mnemonic, op.Mode,
		cpu.A, cpu.X, cpu.Y, FlagsString(cpu.Status))
}

// FlagsString renders the status register as NV--DIZC with '-' for clear bits
func FlagsString(status uint8) string {
	const names = "NV--DIZC"
	var b strings.Builder
	for i := 0; i < 8; i++ {
		mask := uint8(0x80) >> i
		if names[i] != '-' && status&mask != 0 {
			b.WriteByte(names[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// String summarises the register file
func (cpu *CPU) String() string {
	return fmt.Sprintf("PC=$%04X A=$%02X X=$%02X Y=$%02X P=%s %s",
		cpu.PC, cpu.A, cpu.X, cpu.Y, FlagsString(cpu.Status), cpu.State)
}
