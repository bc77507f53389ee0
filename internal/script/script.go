// Package script exposes the interpreter to Lua test and automation scripts.
//
// Globals available to a script:
//
//	load(tbl)        copy the byte list tbl to $8000 and point PC at it
//	reset()          reset through the vector at $FFFC
//	step()           execute one instruction, returns true while running
//	run([n])         run to BRK, or at most n steps; returns steps executed
//	peek(addr)       read a byte
//	poke(addr, v)    write a byte
//	reg(name)        read a, x, y, p or pc
//	setreg(name, v)  write a register; setting pc also resumes a stopped CPU
//	flag(name)       read c, z, i, d, v or n as a boolean
//	state()          "Running", "Halted" or "Faulted"
//
// A CPU fault raised inside a script aborts it; the Go error returned by
// DoString or DoFile wraps the original fault.
package script

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"nescore/internal/cpu"
)

// Harness binds one Lua state to one CPU
type Harness struct {
	L   *lua.LState
	cpu *cpu.CPU
	out io.Writer

	// last CPU error raised into Lua
	fault error
}

var flagNames = map[string]uint8{
	"c": cpu.FlagCarry,
	"z": cpu.FlagZero,
	"i": cpu.FlagInterrupt,
	"d": cpu.FlagDecimal,
	"v": cpu.FlagOverflow,
	"n": cpu.FlagNegative,
}

// New creates a harness over c with the standard Lua libraries opened
func New(c *cpu.CPU) *Harness {
	h := &Harness{
		L:   lua.NewState(),
		cpu: c,
		out: os.Stdout,
	}

	funcs := map[string]lua.LGFunction{
		"load":   h.luaLoad,
		"reset":  h.luaReset,
		"step":   h.luaStep,
		"run":    h.luaRun,
		"peek":   h.luaPeek,
		"poke":   h.luaPoke,
		"reg":    h.luaReg,
		"setreg": h.luaSetReg,
		"flag":   h.luaFlag,
		"state":  h.luaState,
		"print":  h.luaPrint,
	}
	for name, fn := range funcs {
		h.L.SetGlobal(name, h.L.NewFunction(fn))
	}
	return h
}

// SetOutput redirects the script's print()
func (h *Harness) SetOutput(w io.Writer) {
	h.out = w
}

// Close releases the Lua state
func (h *Harness) Close() {
	h.L.Close()
}

// DoString runs a Lua chunk
func (h *Harness) DoString(src string) error {
	h.fault = nil
	return h.result(h.L.DoString(src), "script")
}

// DoFile runs a Lua file
func (h *Harness) DoFile(path string) error {
	h.fault = nil
	return h.result(h.L.DoFile(path), path)
}

func (h *Harness) result(err error, name string) error {
	if err == nil {
		return nil
	}
	if h.fault != nil {
		return errors.Wrapf(h.fault, "%s aborted", name)
	}
	return errors.Wrapf(err, "%s failed", name)
}

// raise records a CPU error and aborts the running chunk
func (h *Harness) raise(L *lua.LState, err error) int {
	h.fault = err
	L.RaiseError("%v", err)
	return 0
}

// integral reports whether n is a whole number within [0, limit]
func integral(n lua.LNumber, limit int) bool {
	return n >= 0 && n <= lua.LNumber(limit) && n == lua.LNumber(int(n))
}

func checkAddress(L *lua.LState, n int) uint16 {
	v := L.CheckNumber(n)
	if !integral(v, 0xFFFF) {
		L.ArgError(n, fmt.Sprintf("address %v out of range", v))
	}
	return uint16(v)
}

func checkByte(L *lua.LState, n int) uint8 {
	v := L.CheckNumber(n)
	if !integral(v, 0xFF) {
		L.ArgError(n, fmt.Sprintf("value %v out of range", v))
	}
	return uint8(v)
}

func (h *Harness) luaLoad(L *lua.LState) int {
	tbl := L.CheckTable(1)
	program := make([]byte, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		n, ok := tbl.RawGetInt(i).(lua.LNumber)
		if !ok || !integral(n, 0xFF) {
			L.ArgError(1, fmt.Sprintf("element %d is not a byte", i))
		}
		program = append(program, byte(n))
	}
	if err := h.cpu.Load(program); err != nil {
		return h.raise(L, err)
	}
	return 0
}

func (h *Harness) luaReset(L *lua.LState) int {
	h.cpu.Reset()
	return 0
}

func (h *Harness) luaStep(L *lua.LState) int {
	if err := h.cpu.Step(); err != nil {
		return h.raise(L, err)
	}
	L.Push(lua.LBool(h.cpu.State == cpu.Running))
	return 1
}

func (h *Harness) luaRun(L *lua.LState) int {
	start := h.cpu.Steps()

	var err error
	if L.GetTop() >= 1 {
		_, err = h.cpu.RunSteps(L.CheckInt(1))
		if errors.Is(err, cpu.ErrStepLimit) {
			err = nil
		}
	} else {
		err = h.cpu.Run()
	}
	if err != nil {
		return h.raise(L, err)
	}

	L.Push(lua.LNumber(h.cpu.Steps() - start))
	return 1
}

func (h *Harness) luaPeek(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.MemRead(checkAddress(L, 1))))
	return 1
}

func (h *Harness) luaPoke(L *lua.LState) int {
	h.cpu.MemWrite(checkAddress(L, 1), checkByte(L, 2))
	return 0
}

func (h *Harness) luaReg(L *lua.LState) int {
	var v int
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "a":
		v = int(h.cpu.A)
	case "x":
		v = int(h.cpu.X)
	case "y":
		v = int(h.cpu.Y)
	case "p":
		v = int(h.cpu.Status)
	case "pc":
		v = int(h.cpu.PC)
	default:
		L.ArgError(1, "unknown register "+name)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Harness) luaSetReg(L *lua.LState) int {
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "a":
		h.cpu.A = checkByte(L, 2)
	case "x":
		h.cpu.X = checkByte(L, 2)
	case "y":
		h.cpu.Y = checkByte(L, 2)
	case "p":
		h.cpu.Status = checkByte(L, 2)
	case "pc":
		// a jump out of BRK or a fault resumes execution
		h.cpu.PC = checkAddress(L, 2)
		h.cpu.State = cpu.Running
	default:
		L.ArgError(1, "unknown register "+name)
	}
	return 0
}

func (h *Harness) luaFlag(L *lua.LState) int {
	name := strings.ToLower(L.CheckString(1))
	mask, ok := flagNames[name]
	if !ok {
		L.ArgError(1, "unknown flag "+name)
	}
	L.Push(lua.LBool(h.cpu.Flag(mask)))
	return 1
}

func (h *Harness) luaState(L *lua.LState) int {
	L.Push(lua.LString(h.cpu.State.String()))
	return 1
}

func (h *Harness) luaPrint(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(h.out, strings.Join(parts, "\t"))
	return 0
}
