package script

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nescore/internal/cpu"
)

func newHarness(t *testing.T) (*Harness, *cpu.CPU, *bytes.Buffer) {
	t.Helper()
	c := cpu.New()
	h := New(c)
	t.Cleanup(h.Close)

	var out bytes.Buffer
	h.SetOutput(&out)
	return h, c, &out
}

func TestFiveOpsScript(t *testing.T) {
	h, c, out := newHarness(t)

	err := h.DoString(`
		load({0xA9, 0xC0, 0xAA, 0xE8, 0x00})
		local steps = run()
		assert(reg("x") == 0xC1, "x")
		assert(state() == "Halted", state())
		assert(flag("n"), "n")
		print(steps, reg("pc"))
	`)
	if err != nil {
		t.Fatalf("DoString() unexpected error: %v", err)
	}

	if c.X != 0xC1 {
		t.Errorf("Expected X=0xC1, got 0x%02X", c.X)
	}
	if got := strings.TrimSpace(out.String()); got != "4\t32773" {
		t.Errorf("print output = %q", got)
	}
}

func TestStepAndRegisters(t *testing.T) {
	h, c, _ := newHarness(t)

	err := h.DoString(`
		setreg("a", 0x10)
		setreg("p", 0x01)
		load({0x69, 0x05, 0x00})
		assert(step() == true)
		assert(reg("a") == 0x16, "adc with carry")
		assert(not flag("c"))
		assert(step() == false)
	`)
	if err != nil {
		t.Fatalf("DoString() unexpected error: %v", err)
	}
	if c.State != cpu.Halted {
		t.Errorf("Expected Halted, got %s", c.State)
	}
}

func TestPeekPokeAndReset(t *testing.T) {
	h, c, _ := newHarness(t)

	err := h.DoString(`
		poke(0xFFFC, 0x00)
		poke(0xFFFD, 0x90)
		poke(0x9000, 0xE8)
		setreg("x", 0x41)
		reset()
		assert(reg("pc") == 0x9000)
		assert(reg("x") == 0)
		step()
		assert(reg("x") == 1)
		assert(peek(0x9000) == 0xE8)
	`)
	if err != nil {
		t.Fatalf("DoString() unexpected error: %v", err)
	}
	if c.PC != 0x9001 {
		t.Errorf("Expected PC=0x9001, got 0x%04X", c.PC)
	}
}

func TestRunWithLimit(t *testing.T) {
	h, c, _ := newHarness(t)

	err := h.DoString(`
		load({0x4C, 0x00, 0x80})
		assert(run(25) == 25)
		assert(state() == "Running")
	`)
	if err != nil {
		t.Fatalf("DoString() unexpected error: %v", err)
	}
	if c.Steps() != 25 {
		t.Errorf("Expected 25 steps, got %d", c.Steps())
	}
}

func TestFaultSurfacesAsGoError(t *testing.T) {
	h, c, _ := newHarness(t)

	err := h.DoString(`
		load({0xA9, 0x01, 0x02})
		run()
		error("not reached")
	`)

	var unknown *cpu.UnknownOpcodeError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownOpcodeError, got %v", err)
	}
	if unknown.PC != 0x8002 {
		t.Errorf("Expected fault at $8002, got $%04X", unknown.PC)
	}
	if c.State != cpu.Faulted {
		t.Errorf("Expected Faulted, got %s", c.State)
	}
}

func TestSetPCResumes(t *testing.T) {
	t.Run("After_Halt", func(t *testing.T) {
		h, c, _ := newHarness(t)

		err := h.DoString(`
			load({0xE8, 0x00, 0xE8, 0x00})
			run()
			assert(state() == "Halted")
			setreg("pc", 0x8002)
			assert(state() == "Running")
			run()
		`)
		if err != nil {
			t.Fatalf("DoString() unexpected error: %v", err)
		}
		if c.X != 2 || c.State != cpu.Halted {
			t.Errorf("Expected X=2 and Halted, got X=%d %s", c.X, c.State)
		}
	})

	t.Run("After_Fault", func(t *testing.T) {
		h, c, _ := newHarness(t)

		if err := h.DoString(`load({0x02, 0xE8, 0x00}) run()`); err == nil {
			t.Fatal("Expected fault")
		}
		err := h.DoString(`
			setreg("pc", 0x8001)
			run()
		`)
		if err != nil {
			t.Fatalf("DoString() unexpected error: %v", err)
		}
		if c.X != 1 || c.State != cpu.Halted {
			t.Errorf("Expected X=1 and Halted, got X=%d %s", c.X, c.State)
		}
	})
}

func TestLoadTooLarge(t *testing.T) {
	h, _, _ := newHarness(t)

	err := h.DoString(`
		local t = {}
		for i = 1, 0x8001 do t[i] = 0 end
		load(t)
	`)
	if err == nil || !strings.Contains(err.Error(), "does not fit") {
		t.Fatalf("Expected program size error, got %v", err)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"Syntax", "load(", "script failed"},
		{"Unknown_Register", `reg("sp")`, "unknown register sp"},
		{"Unknown_Flag", `flag("b")`, "unknown flag b"},
		{"Address_Range", `peek(0x10000)`, "out of range"},
		{"Byte_Range", `poke(0, 256)`, "out of range"},
		{"Bad_Program_Element", `load({1, "x"})`, "element 2 is not a byte"},
		{"Fractional_Program_Element", `load({0xA9, 1.5})`, "element 2 is not a byte"},
		{"Fractional_Byte", `poke(0, 2.5)`, "out of range"},
		{"Fractional_Address", `peek(0.5)`, "out of range"},
		{"Assertion", `assert(false, "boom")`, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newHarness(t)
			err := h.DoString(tt.src)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDoFile(t *testing.T) {
	h, c, _ := newHarness(t)

	path := filepath.Join(t.TempDir(), "inx.lua")
	src := "load({0xE8, 0xE8, 0x00})\nrun()\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}

	if err := h.DoFile(path); err != nil {
		t.Fatalf("DoFile() unexpected error: %v", err)
	}
	if c.X != 2 {
		t.Errorf("Expected X=2, got %d", c.X)
	}

	if err := h.DoFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("Expected error for missing file")
	}
}
