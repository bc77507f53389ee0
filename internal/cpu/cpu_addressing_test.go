package cpu

import (
	"testing"
)

// AddressingModeTest represents a test case for addressing mode behavior
type AddressingModeTest struct {
	Name            string
	Mode            AddressingMode
	Setup           func(*CPUTestHelper)
	Operands        []uint8
	ExpectedAddress uint16 // Expected effective address calculated
	NoAddress       bool   // Mode has no memory operand
}

// runAddressingTests resolves each mode with PC on the first operand byte at $8001
func runAddressingTests(t *testing.T, tests []AddressingModeTest) {
	t.Helper()

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			helper.LoadProgram(0x8001, test.Operands...)
			helper.CPU.PC = 0x8001

			if test.Setup != nil {
				test.Setup(helper)
			}

			address, ok := helper.CPU.operandAddress(test.Mode)

			if ok == test.NoAddress {
				t.Fatalf("%s: operandAddress() ok=%v, want %v", test.Name, ok, !test.NoAddress)
			}
			if ok && address != test.ExpectedAddress {
				t.Errorf("%s: Expected address 0x%04X, got 0x%04X", test.Name, test.ExpectedAddress, address)
			}
			if helper.CPU.PC != 0x8001 {
				t.Errorf("%s: resolver moved PC to 0x%04X", test.Name, helper.CPU.PC)
			}
		})
	}
}

func TestImmediateAndZeroPageAddressing(t *testing.T) {
	runAddressingTests(t, []AddressingModeTest{
		{
			Name:            "Immediate_Is_PC",
			Mode:            Immediate,
			Operands:        []uint8{0x42},
			ExpectedAddress: 0x8001,
		},
		{
			Name:            "ZeroPage",
			Mode:            ZeroPage,
			Operands:        []uint8{0x80},
			ExpectedAddress: 0x0080,
		},
		{
			Name:            "ZeroPageX",
			Mode:            ZeroPageX,
			Operands:        []uint8{0x80},
			Setup:           func(h *CPUTestHelper) { h.CPU.X = 0x0F },
			ExpectedAddress: 0x008F,
		},
		{
			Name:            "ZeroPageX_Wraparound",
			Mode:            ZeroPageX,
			Operands:        []uint8{0xFF},
			Setup:           func(h *CPUTestHelper) { h.CPU.X = 0x01 },
			ExpectedAddress: 0x0000,
		},
		{
			Name:            "ZeroPageY_Wraparound",
			Mode:            ZeroPageY,
			Operands:        []uint8{0x80},
			Setup:           func(h *CPUTestHelper) { h.CPU.Y = 0xFF },
			ExpectedAddress: 0x007F,
		},
	})
}

func TestAbsoluteAddressing(t *testing.T) {
	runAddressingTests(t, []AddressingModeTest{
		{
			Name:            "Absolute",
			Mode:            Absolute,
			Operands:        []uint8{0x34, 0x12},
			ExpectedAddress: 0x1234,
		},
		{
			Name:            "AbsoluteX_PageCross",
			Mode:            AbsoluteX,
			Operands:        []uint8{0xFF, 0x20},
			Setup:           func(h *CPUTestHelper) { h.CPU.X = 0x01 },
			ExpectedAddress: 0x2100,
		},
		{
			Name:            "AbsoluteX_Wraps_At_FFFF",
			Mode:            AbsoluteX,
			Operands:        []uint8{0xFF, 0xFF},
			Setup:           func(h *CPUTestHelper) { h.CPU.X = 0x02 },
			ExpectedAddress: 0x0001,
		},
		{
			Name:            "AbsoluteY",
			Mode:            AbsoluteY,
			Operands:        []uint8{0x00, 0x30},
			Setup:           func(h *CPUTestHelper) { h.CPU.Y = 0x80 },
			ExpectedAddress: 0x3080,
		},
	})
}

func TestIndirectAddressing(t *testing.T) {
	runAddressingTests(t, []AddressingModeTest{
		{
			Name:     "Indirect",
			Mode:     Indirect,
			Operands: []uint8{0x20, 0x01},
			Setup: func(h *CPUTestHelper) {
				h.Memory.SetBytes(0x0120, 0xCD, 0xAB)
			},
			ExpectedAddress: 0xABCD,
		},
		{
			Name:     "Indirect_PageBoundaryBug",
			Mode:     Indirect,
			Operands: []uint8{0xFF, 0x10},
			Setup: func(h *CPUTestHelper) {
				h.Memory.SetByte(0x10FF, 0x00)
				h.Memory.SetByte(0x1000, 0x40)
				h.Memory.SetByte(0x1100, 0x80)
			},
			ExpectedAddress: 0x4000,
		},
		{
			Name:     "IndirectX",
			Mode:     IndirectX,
			Operands: []uint8{0x20},
			Setup: func(h *CPUTestHelper) {
				h.CPU.X = 0x04
				h.Memory.SetBytes(0x0024, 0x74, 0x20)
			},
			ExpectedAddress: 0x2074,
		},
		{
			Name:     "IndirectX_Base_Wraparound",
			Mode:     IndirectX,
			Operands: []uint8{0xFE},
			Setup: func(h *CPUTestHelper) {
				h.CPU.X = 0x03 // $FE + 3 = $01
				h.Memory.SetBytes(0x0001, 0x00, 0x50)
			},
			ExpectedAddress: 0x5000,
		},
		{
			Name:     "IndirectX_Pointer_Wraparound",
			Mode:     IndirectX,
			Operands: []uint8{0xFF},
			Setup: func(h *CPUTestHelper) {
				h.Memory.SetByte(0x00FF, 0x34)
				h.Memory.SetByte(0x0000, 0x12) // high byte from $00, not $0100
				h.Memory.SetByte(0x0100, 0x99)
			},
			ExpectedAddress: 0x1234,
		},
		{
			Name:     "IndirectY",
			Mode:     IndirectY,
			Operands: []uint8{0x86},
			Setup: func(h *CPUTestHelper) {
				h.CPU.Y = 0x10
				h.Memory.SetBytes(0x0086, 0x28, 0x40)
			},
			ExpectedAddress: 0x4038,
		},
		{
			Name:     "IndirectY_Wraps_At_FFFF",
			Mode:     IndirectY,
			Operands: []uint8{0x10},
			Setup: func(h *CPUTestHelper) {
				h.CPU.Y = 0x02
				h.Memory.SetBytes(0x0010, 0xFF, 0xFF)
			},
			ExpectedAddress: 0x0001,
		},
	})
}

func TestImplicitOperandModes(t *testing.T) {
	runAddressingTests(t, []AddressingModeTest{
		{Name: "Implied", Mode: Implied, NoAddress: true},
		{Name: "Accumulator", Mode: Accumulator, NoAddress: true},
		{Name: "Relative", Mode: Relative, Operands: []uint8{0x05}, NoAddress: true},
	})
}

func TestNoneAddressingPanics(t *testing.T) {
	c := New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic for NoneAddressing")
		}
		err, ok := r.(InvalidAddressingModeError)
		if !ok {
			t.Fatalf("Expected InvalidAddressingModeError, got %T: %v", r, r)
		}
		if err.Mode != NoneAddressing {
			t.Errorf("Expected mode NoneAddressing, got %s", err.Mode)
		}
	}()

	c.operandAddress(NoneAddressing)
}

// TestIndirectRoundTrip loads through pointers written by the host
func TestIndirectRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		setup   func(c *CPU)
	}{
		{
			name:    "IndirectX",
			program: []byte{0xA2, 0x04, 0xA1, 0x20, 0x00}, // LDX #$04; LDA ($20,X)
			setup: func(c *CPU) {
				c.MemWriteWord(0x0024, 0x0705)
			},
		},
		{
			name:    "IndirectY",
			program: []byte{0xA0, 0x05, 0xB1, 0x20, 0x00}, // LDY #$05; LDA ($20),Y
			setup: func(c *CPU) {
				c.MemWriteWord(0x0020, 0x0700)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.MemWrite(0x0705, 0x0A)
			tt.setup(c)

			if err := c.LoadAndRun(tt.program); err != nil {
				t.Fatalf("LoadAndRun() unexpected error: %v", err)
			}
			if c.A != 0x0A {
				t.Errorf("Expected A=0x0A, got 0x%02X", c.A)
			}
		})
	}
}

func TestAddressingModeString(t *testing.T) {
	if got := IndirectY.String(); got != "IndirectY" {
		t.Errorf("IndirectY.String() = %q", got)
	}
	if got := AddressingMode(99).String(); got != "AddressingMode(99)" {
		t.Errorf("AddressingMode(99).String() = %q", got)
	}
}
