package cpu

import (
	"strings"
	"testing"
)

func TestOpcodeTableConsistency(t *testing.T) {
	count := 0
	for code, op := range opcodeTable {
		if op == nil {
			continue
		}
		count++

		if int(op.Code) != code {
			t.Errorf("table[0x%02X] holds descriptor for 0x%02X", code, op.Code)
		}
		if op.Mode == NoneAddressing {
			t.Errorf("0x%02X %s uses NoneAddressing", op.Code, op.Mnemonic)
		}
		if op.Bytes < 1 || op.Bytes > 3 {
			t.Errorf("0x%02X %s has %d bytes", op.Code, op.Mnemonic, op.Bytes)
		}
		if op.Cycles == 0 {
			t.Errorf("0x%02X %s has zero cycles", op.Code, op.Mnemonic)
		}
		if op.Mnemonic.isBranch() != (op.Mode == Relative) {
			t.Errorf("0x%02X %s: branch/Relative mismatch", op.Code, op.Mnemonic)
		}
	}

	if count != len(opcodeList) {
		t.Errorf("table has %d entries, declaration list has %d", count, len(opcodeList))
	}
}

func TestEveryMnemonicHasHandler(t *testing.T) {
	for m := Mnemonic(0); m < mnemonicCount; m++ {
		if instructionHandlers[m] == nil {
			t.Errorf("%s has no handler", m)
		}
		if strings.HasPrefix(m.String(), "Mnemonic(") {
			t.Errorf("Mnemonic %d has no name", int(m))
		}
	}
}

func TestBuildOpcodeTableRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		list    []OpCode
		wantErr string
	}{
		{
			// AND zero page declared with ADC's byte
			name: "Duplicate opcode byte",
			list: []OpCode{
				{0x65, ADC, 2, 3, ZeroPage},
				{0x65, AND, 2, 3, ZeroPage},
			},
			wantErr: "duplicate opcode $65",
		},
		{
			name:    "NoneAddressing entry",
			list:    []OpCode{{0x02, NOP, 1, 2, NoneAddressing}},
			wantErr: "uses NoneAddressing",
		},
		{
			name:    "Length disagrees with mode",
			list:    []OpCode{{0xAD, LDA, 2, 4, Absolute}},
			wantErr: "declares 2 bytes, want 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := buildOpcodeTable(tt.list)
			if err == nil {
				t.Fatalf("buildOpcodeTable() = %v, want error", table)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	defer func() {
		if recover() == nil {
			t.Error("mustBuildOpcodeTable() did not panic on duplicate")
		}
	}()
	mustBuildOpcodeTable([]OpCode{{0x00, BRK, 1, 7, Implied}, {0x00, NOP, 1, 2, Implied}})
}

func TestLookup(t *testing.T) {
	tests := []struct {
		code  uint8
		found bool
		want  OpCode
	}{
		{0xA9, true, OpCode{0xA9, LDA, 2, 2, Immediate}},
		{0x6C, true, OpCode{0x6C, JMP, 3, 5, Indirect}},
		{0x00, true, OpCode{0x00, BRK, 1, 7, Implied}},
		{0x02, false, OpCode{}},
		{0xFF, false, OpCode{}},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.code)
		if ok != tt.found {
			t.Errorf("Lookup(0x%02X) found=%v, want %v", tt.code, ok, tt.found)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(0x%02X) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestOpCodeString(t *testing.T) {
	op, _ := Lookup(0xB1)
	want := "LDA $B1 (IndirectY, 2 bytes, 5 cycles)"
	if op.String() != want {
		t.Errorf("String() = %q, want %q", op.String(), want)
	}
}
