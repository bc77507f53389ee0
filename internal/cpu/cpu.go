// Package cpu implements the 6502 instruction interpreter core.
package cpu

import (
	"fmt"
	"io"

	"nescore/internal/memory"
)

// Status register bit masks
const (
	FlagCarry     uint8 = 0x01
	FlagZero      uint8 = 0x02
	FlagInterrupt uint8 = 0x04
	FlagDecimal   uint8 = 0x08
	FlagOverflow  uint8 = 0x40
	FlagNegative  uint8 = 0x80
)

const (
	// Page boundary mask
	pageMask = 0xFF00
	// Sign bit of a byte
	signBit = 0x80
)

// State is the execution state of the interpreter
type State int

const (
	Running State = iota
	Halted        // reached BRK
	Faulted       // unknown or unimplemented opcode
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Halted:
		return "Halted"
	case Faulted:
		return "Faulted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// loader is implemented by memories that can bounds-check a bulk copy
type loader interface {
	Load(address uint16, data []byte) error
}

// handler executes one instruction. address is meaningless for modes
// without a memory operand.
type handler func(cpu *CPU, op *OpCode, address uint16)

// CPU holds the register file and owns its memory exclusively.
type CPU struct {
	// Registers
	A      uint8  // Accumulator
	X      uint8  // X register
	Y      uint8  // Y register
	Status uint8  // NV--DIZC
	PC     uint16 // Program counter

	State State

	memory       MemoryInterface
	instructions *[256]*OpCode
	handlers     *[mnemonicCount]handler

	// Informational counters
	steps  uint64
	cycles uint64

	// Debug
	trace               io.Writer
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// New creates a CPU with zeroed registers and a fresh zero-filled 64KB memory.
func New() *CPU {
	return NewWithMemory(memory.New())
}

// NewWithMemory creates a CPU over the given memory.
func NewWithMemory(mem MemoryInterface) *CPU {
	return &CPU{
		memory:       mem,
		instructions: opcodeTable,
		handlers:     &instructionHandlers,
		State:        Running,
	}
}

// Reset zeroes A, X, Y and the status register and loads PC from the reset
// vector at $FFFC. Memory is left untouched.
func (cpu *CPU) Reset() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.Status = 0
	cpu.PC = cpu.MemReadWord(memory.ResetVector)
	cpu.State = Running
	cpu.pcStayCount = 0
}

// Load copies program into memory at $8000 and points PC at it. Registers
// and flags keep their values so callers can seed pre-conditions.
func (cpu *CPU) Load(program []byte) error {
	if l, ok := cpu.memory.(loader); ok {
		if err := l.Load(memory.ProgramStart, program); err != nil {
			return err
		}
	} else {
		if int(memory.ProgramStart)+len(program) > memory.Size {
			return fmt.Errorf("%w: %d bytes at $%04X", memory.ErrProgramTooLarge, len(program), memory.ProgramStart)
		}
		for i, b := range program {
			cpu.memory.Write(memory.ProgramStart+uint16(i), b)
		}
	}
	cpu.PC = memory.ProgramStart
	cpu.State = Running
	return nil
}

// LoadAndRun loads program and runs it until BRK or a fault.
func (cpu *CPU) LoadAndRun(program []byte) error {
	if err := cpu.Load(program); err != nil {
		return err
	}
	return cpu.Run()
}

// Run executes instructions until the CPU halts on BRK (nil) or faults.
func (cpu *CPU) Run() error {
	for {
		if err := cpu.Step(); err != nil {
			return err
		}
		if cpu.State != Running {
			return nil
		}
	}
}

// RunSteps executes at most limit instructions and returns how many ran.
// ErrStepLimit is returned if the CPU is still running afterwards.
func (cpu *CPU) RunSteps(limit int) (int, error) {
	for n := 0; n < limit; n++ {
		if err := cpu.Step(); err != nil {
			return n, err
		}
		if cpu.State != Running {
			return n + 1, nil
		}
	}
	return limit, ErrStepLimit
}

// Step fetches, decodes and executes a single instruction.
func (cpu *CPU) Step() error {
	if cpu.State != Running {
		return fmt.Errorf("%w: %s", ErrNotRunning, cpu.State)
	}

	// Fetch
	pc := cpu.PC
	code := cpu.memory.Read(pc)
	cpu.PC++

	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(pc, code)
	}

	// Decode
	op := cpu.instructions[code]
	if op == nil {
		cpu.State = Faulted
		return &UnknownOpcodeError{Opcode: code, PC: pc}
	}
	execute := cpu.handlers[op.Mnemonic]
	if execute == nil {
		cpu.State = Faulted
		return &UnimplementedInstructionError{Mnemonic: op.Mnemonic, PC: pc}
	}

	if cpu.trace != nil {
		cpu.logInstruction(pc, op)
	}

	// Execute
	address, _ := cpu.operandAddress(op.Mode)
	execute(cpu, op, address)

	cpu.steps++
	cpu.cycles += uint64(op.Cycles)

	if cpu.State != Running || op.Mnemonic.isBranch() || op.Mnemonic == JMP {
		return nil
	}
	cpu.PC += uint16(op.Bytes - 1)
	return nil
}

// MemRead reads a byte
func (cpu *CPU) MemRead(address uint16) uint8 {
	return cpu.memory.Read(address)
}

// MemWrite writes a byte
func (cpu *CPU) MemWrite(address uint16, value uint8) {
	cpu.memory.Write(address, value)
}

// MemReadWord reads a little-endian word
func (cpu *CPU) MemReadWord(address uint16) uint16 {
	return cpu.readWord(address)
}

// MemWriteWord writes a little-endian word
func (cpu *CPU) MemWriteWord(address uint16, value uint16) {
	cpu.memory.Write(address, uint8(value&0xFF))
	cpu.memory.Write(address+1, uint8(value>>8))
}

// Flag reports whether every bit in mask is set in the status register
func (cpu *CPU) Flag(mask uint8) bool {
	return cpu.Status&mask == mask
}

func (cpu *CPU) setFlag(mask uint8, on bool) {
	if on {
		cpu.Status |= mask
	} else {
		cpu.Status &^= mask
	}
}

// updateZN sets Zero and Negative from result and touches no other bit
func (cpu *CPU) updateZN(result uint8) {
	cpu.setFlag(FlagZero, result == 0)
	cpu.setFlag(FlagNegative, result&signBit != 0)
}

// Steps returns the number of instructions executed
func (cpu *CPU) Steps() uint64 {
	return cpu.steps
}

// Cycles returns the nominal cycle count of executed instructions
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}
