package cpu

// instructionHandlers maps every mnemonic to its implementation
var instructionHandlers = [mnemonicCount]handler{
	LDA: (*CPU).lda, LDX: (*CPU).ldx, LDY: (*CPU).ldy,
	STA: (*CPU).sta, STX: (*CPU).stx, STY: (*CPU).sty,
	ADC: (*CPU).adc, SBC: (*CPU).sbc,
	AND: (*CPU).and, ORA: (*CPU).ora, EOR: (*CPU).eor, BIT: (*CPU).bit,
	ASL: (*CPU).asl, LSR: (*CPU).lsr, ROL: (*CPU).rol, ROR: (*CPU).ror,
	CMP: (*CPU).cmp, CPX: (*CPU).cpx, CPY: (*CPU).cpy,
	INC: (*CPU).inc, DEC: (*CPU).dec,
	INX: (*CPU).inx, INY: (*CPU).iny, DEX: (*CPU).dex, DEY: (*CPU).dey,
	TAX: (*CPU).tax, TAY: (*CPU).tay, TXA: (*CPU).txa, TYA: (*CPU).tya,
	CLC: (*CPU).clc, CLD: (*CPU).cld, CLI: (*CPU).cli, CLV: (*CPU).clv,
	SEC: (*CPU).sec,
	BCC: (*CPU).bcc, BCS: (*CPU).bcs, BEQ: (*CPU).beq, BNE: (*CPU).bne,
	BMI: (*CPU).bmi, BPL: (*CPU).bpl, BVC: (*CPU).bvc, BVS: (*CPU).bvs,
	JMP: (*CPU).jmp,
	NOP: (*CPU).nop,
	BRK: (*CPU).brk,
}

// Load operations
func (cpu *CPU) lda(_ *OpCode, address uint16) {
	cpu.A = cpu.memory.Read(address)
	cpu.updateZN(cpu.A)
}

func (cpu *CPU) ldx(_ *OpCode, address uint16) {
	cpu.X = cpu.memory.Read(address)
	cpu.updateZN(cpu.X)
}

func (cpu *CPU) ldy(_ *OpCode, address uint16) {
	cpu.Y = cpu.memory.Read(address)
	cpu.updateZN(cpu.Y)
}

// Store operations
func (cpu *CPU) sta(_ *OpCode, address uint16) {
	cpu.memory.Write(address, cpu.A)
}

func (cpu *CPU) stx(_ *OpCode, address uint16) {
	cpu.memory.Write(address, cpu.X)
}

func (cpu *CPU) sty(_ *OpCode, address uint16) {
	cpu.memory.Write(address, cpu.Y)
}

// Arithmetic operations
func (cpu *CPU) adc(_ *OpCode, address uint16) {
	cpu.addWithCarry(cpu.memory.Read(address))
}

// sbc is binary only; A - M - !C is A + ^M + C
func (cpu *CPU) sbc(_ *OpCode, address uint16) {
	cpu.addWithCarry(cpu.memory.Read(address) ^ 0xFF)
}

func (cpu *CPU) addWithCarry(value uint8) {
	carry := uint16(cpu.Status & FlagCarry)
	sum := uint16(cpu.A) + uint16(value) + carry
	result := uint8(sum)

	// Overflow: both inputs share a sign and the result does not
	cpu.setFlag(FlagOverflow, (cpu.A^value)&signBit == 0 && (cpu.A^result)&signBit != 0)
	cpu.setFlag(FlagCarry, sum > 0xFF)
	cpu.A = result
	cpu.updateZN(cpu.A)
}

// Logical operations
func (cpu *CPU) and(_ *OpCode, address uint16) {
	cpu.A &= cpu.memory.Read(address)
	cpu.updateZN(cpu.A)
}

func (cpu *CPU) ora(_ *OpCode, address uint16) {
	cpu.A |= cpu.memory.Read(address)
	cpu.updateZN(cpu.A)
}

func (cpu *CPU) eor(_ *OpCode, address uint16) {
	cpu.A ^= cpu.memory.Read(address)
	cpu.updateZN(cpu.A)
}

func (cpu *CPU) bit(_ *OpCode, address uint16) {
	value := cpu.memory.Read(address)
	cpu.setFlag(FlagZero, cpu.A&value == 0)
	cpu.setFlag(FlagOverflow, value&FlagOverflow != 0)
	cpu.setFlag(FlagNegative, value&FlagNegative != 0)
}

// Shift and rotate operations. Accumulator mode works on A, every other
// mode on memory.
func (cpu *CPU) asl(op *OpCode, address uint16) {
	cpu.modify(op, address, func(value uint8) uint8 {
		cpu.setFlag(FlagCarry, value&0x80 != 0)
		return value << 1
	})
}

func (cpu *CPU) lsr(op *OpCode, address uint16) {
	cpu.modify(op, address, func(value uint8) uint8 {
		cpu.setFlag(FlagCarry, value&0x01 != 0)
		return value >> 1
	})
}

func (cpu *CPU) rol(op *OpCode, address uint16) {
	cpu.modify(op, address, func(value uint8) uint8 {
		carryIn := cpu.Status & FlagCarry
		cpu.setFlag(FlagCarry, value&0x80 != 0)
		return value<<1 | carryIn
	})
}

func (cpu *CPU) ror(op *OpCode, address uint16) {
	cpu.modify(op, address, func(value uint8) uint8 {
		carryIn := (cpu.Status & FlagCarry) << 7
		cpu.setFlag(FlagCarry, value&0x01 != 0)
		return value>>1 | carryIn
	})
}

// modify applies f to A or to the byte at address and updates Z/N from the result
func (cpu *CPU) modify(op *OpCode, address uint16, f func(uint8) uint8) {
	if op.Mode == Accumulator {
		cpu.A = f(cpu.A)
		cpu.updateZN(cpu.A)
		return
	}
	value := f(cpu.memory.Read(address))
	cpu.memory.Write(address, value)
	cpu.updateZN(value)
}

// Comparison operations
func (cpu *CPU) cmp(_ *OpCode, address uint16) {
	cpu.compare(cpu.A, cpu.memory.Read(address))
}

func (cpu *CPU) cpx(_ *OpCode, address uint16) {
	cpu.compare(cpu.X, cpu.memory.Read(address))
}

func (cpu *CPU) cpy(_ *OpCode, address uint16) {
	cpu.compare(cpu.Y, cpu.memory.Read(address))
}

func (cpu *CPU) compare(register, value uint8) {
	cpu.setFlag(FlagCarry, register >= value)
	cpu.updateZN(register - value)
}

// Increment/Decrement operations
func (cpu *CPU) inc(_ *OpCode, address uint16) {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	cpu.updateZN(value)
}

func (cpu *CPU) dec(_ *OpCode, address uint16) {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.updateZN(value)
}

func (cpu *CPU) inx(_ *OpCode, _ uint16) {
	cpu.X++
	cpu.updateZN(cpu.X)
}

func (cpu *CPU) iny(_ *OpCode, _ uint16) {
	cpu.Y++
	cpu.updateZN(cpu.Y)
}

func (cpu *CPU) dex(_ *OpCode, _ uint16) {
	cpu.X--
	cpu.updateZN(cpu.X)
}

func (cpu *CPU) dey(_ *OpCode, _ uint16) {
	cpu.Y--
	cpu.updateZN(cpu.Y)
}

// Transfer operations
func (cpu *CPU) tax(_ *OpCode, _ uint16) {
	cpu.X = cpu.A
	cpu.updateZN(cpu.X)
}

func (cpu *CPU) tay(_ *OpCode, _ uint16) {
	cpu.Y = cpu.A
	cpu.updateZN(cpu.Y)
}

func (cpu *CPU) txa(_ *OpCode, _ uint16) {
	cpu.A = cpu.X
	cpu.updateZN(cpu.A)
}

func (cpu *CPU) tya(_ *OpCode, _ uint16) {
	cpu.A = cpu.Y
	cpu.updateZN(cpu.A)
}

// Flag operations. Nothing in this core sets D or I.
func (cpu *CPU) clc(_ *OpCode, _ uint16) { cpu.setFlag(FlagCarry, false) }
func (cpu *CPU) cld(_ *OpCode, _ uint16) { cpu.setFlag(FlagDecimal, false) }
func (cpu *CPU) cli(_ *OpCode, _ uint16) { cpu.setFlag(FlagInterrupt, false) }
func (cpu *CPU) clv(_ *OpCode, _ uint16) { cpu.setFlag(FlagOverflow, false) }
func (cpu *CPU) sec(_ *OpCode, _ uint16) { cpu.setFlag(FlagCarry, true) }

// Branch operations
func (cpu *CPU) bcc(_ *OpCode, _ uint16) { cpu.branch(!cpu.Flag(FlagCarry)) }
func (cpu *CPU) bcs(_ *OpCode, _ uint16) { cpu.branch(cpu.Flag(FlagCarry)) }
func (cpu *CPU) bne(_ *OpCode, _ uint16) { cpu.branch(!cpu.Flag(FlagZero)) }
func (cpu *CPU) beq(_ *OpCode, _ uint16) { cpu.branch(cpu.Flag(FlagZero)) }
func (cpu *CPU) bpl(_ *OpCode, _ uint16) { cpu.branch(!cpu.Flag(FlagNegative)) }
func (cpu *CPU) bmi(_ *OpCode, _ uint16) { cpu.branch(cpu.Flag(FlagNegative)) }
func (cpu *CPU) bvc(_ *OpCode, _ uint16) { cpu.branch(!cpu.Flag(FlagOverflow)) }
func (cpu *CPU) bvs(_ *OpCode, _ uint16) { cpu.branch(cpu.Flag(FlagOverflow)) }

// branch consumes the displacement byte and, if taken, adds it to the
// address that follows it.
func (cpu *CPU) branch(taken bool) {
	offset := int8(cpu.memory.Read(cpu.PC))
	cpu.PC++
	if taken {
		cpu.PC = uint16(int32(cpu.PC) + int32(offset))
	}
}

// Control flow operations
func (cpu *CPU) jmp(_ *OpCode, address uint16) {
	cpu.PC = address
}

func (cpu *CPU) nop(_ *OpCode, _ uint16) {}

// brk stops the run loop; no interrupt sequence is emulated
func (cpu *CPU) brk(_ *OpCode, _ uint16) {
	cpu.State = Halted
}
