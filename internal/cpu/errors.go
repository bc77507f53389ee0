package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRunning is returned when stepping a halted or faulted CPU
	ErrNotRunning = errors.New("cpu is not running")

	// ErrStepLimit is returned by RunSteps when the budget runs out before BRK
	ErrStepLimit = errors.New("step limit reached")
)

// UnknownOpcodeError reports a fetched byte with no opcode table entry.
type UnknownOpcodeError struct {
	Opcode uint8
	PC     uint16 // address the opcode was fetched from
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode: 0x%02X at $%04X", e.Opcode, e.PC)
}

// UnimplementedInstructionError reports a tabled opcode with no handler.
type UnimplementedInstructionError struct {
	Mnemonic Mnemonic
	PC       uint16
}

func (e *UnimplementedInstructionError) Error() string {
	return fmt.Sprintf("CPU instruction %s not implemented (at $%04X)", e.Mnemonic, e.PC)
}

// InvalidAddressingModeError is the panic value raised when an address is
// resolved for a mode that has none. It means the opcode table is corrupt;
// no program can trigger it.
type InvalidAddressingModeError struct {
	Mode AddressingMode
}

func (e InvalidAddressingModeError) Error() string {
	return fmt.Sprintf("addressing mode %s is not supported", e.Mode)
}
