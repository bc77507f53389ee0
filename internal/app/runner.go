package app

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"nescore/internal/cpu"
	"nescore/internal/memory"
)

// Runner drives a CPU with the limits and debug options from Config
type Runner struct {
	cpu    *cpu.CPU
	config *Config

	program     []byte
	programPath string

	// Timing
	emulationTime time.Duration
	lastResult    Result
}

// Result summarises one Run
type Result struct {
	Steps   int
	State   cpu.State
	Elapsed time.Duration
	Err     error
}

// CPUState is a snapshot of the register file for display
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	Status  uint8
	State   cpu.State
	Steps   uint64
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags represents the status bits the core uses
type CPUFlags struct {
	N, V, D, I, Z, C bool
}

// NewRunner creates a runner over a fresh CPU. A nil config uses defaults.
func NewRunner(config *Config) *Runner {
	if config == nil {
		config = NewConfig()
	}
	r := &Runner{
		cpu:    cpu.New(),
		config: config,
	}
	r.cpu.EnableLoopDetection(config.Debug.LoopDetection)
	return r
}

// CPU returns the underlying interpreter
func (r *Runner) CPU() *cpu.CPU {
	return r.cpu
}

// Config returns the active configuration
func (r *Runner) Config() *Config {
	return r.config
}

// SetTraceOutput forwards per-instruction tracing to w when enabled in config
func (r *Runner) SetTraceOutput(w io.Writer) {
	if r.config.Debug.Trace {
		r.cpu.SetTraceOutput(w)
	} else {
		r.cpu.SetTraceOutput(nil)
	}
}

// LoadProgramFile reads a raw binary image and loads it
func (r *Runner) LoadProgramFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read program %s", path)
	}
	if err := r.LoadProgram(data); err != nil {
		return errors.Wrapf(err, "failed to load program %s", path)
	}
	r.programPath = path
	return nil
}

// ProgramPath returns the file the current program was read from, if any
func (r *Runner) ProgramPath() string {
	return r.programPath
}

// LoadProgram copies program to $8000. With UseResetVector the CPU is reset
// through the vector at $FFFC; images too short to carry a vector get one
// pointing at $8000.
func (r *Runner) LoadProgram(program []byte) error {
	if err := r.cpu.Load(program); err != nil {
		return errors.Wrap(err, "load")
	}
	r.program = program

	if r.config.Execution.UseResetVector {
		if !coversResetVector(program) {
			r.cpu.MemWriteWord(memory.ResetVector, memory.ProgramStart)
		}
		r.cpu.Reset()
	}

	if r.config.DebugEnabled() {
		log.Printf("[RUNNER] Loaded %d bytes at $%04X, entry $%04X", len(program), memory.ProgramStart, r.cpu.PC)
	}
	return nil
}

// coversResetVector reports whether an image loaded at $8000 supplies both
// reset vector bytes
func coversResetVector(program []byte) bool {
	return int(memory.ProgramStart)+len(program) > int(memory.ResetVector)+1
}

// Restart reloads the last program
func (r *Runner) Restart() error {
	if r.program == nil {
		return errors.New("no program loaded")
	}
	return r.LoadProgram(r.program)
}

// Run executes until BRK, a fault, or the configured step budget
func (r *Runner) Run() Result {
	start := time.Now()
	startSteps := r.cpu.Steps()

	var err error
	if limit := r.config.Execution.MaxSteps; limit > 0 {
		_, err = r.cpu.RunSteps(limit)
	} else {
		err = r.cpu.Run()
	}

	r.emulationTime += time.Since(start)
	r.lastResult = Result{
		Steps:   int(r.cpu.Steps() - startSteps),
		State:   r.cpu.State,
		Elapsed: time.Since(start),
	}
	if err != nil {
		r.lastResult.Err = errors.Wrapf(err, "run stopped at %s", r.cpu)
	}

	if r.config.DebugEnabled() || r.lastResult.Err != nil {
		log.Printf("[RUNNER] %d steps in %v, %s", r.lastResult.Steps, r.lastResult.Elapsed, r.cpu)
	}
	return r.lastResult
}

// StepInstruction executes one CPU instruction
func (r *Runner) StepInstruction() error {
	return errors.Wrap(r.cpu.Step(), "step")
}

// StepFrame executes up to Monitor.StepsPerFrame instructions, stopping early
// when the CPU leaves the Running state
func (r *Runner) StepFrame() error {
	for i := 0; i < r.config.Monitor.StepsPerFrame; i++ {
		if r.cpu.State != cpu.Running {
			return nil
		}
		if err := r.cpu.Step(); err != nil {
			return errors.Wrap(err, "step")
		}
	}
	return nil
}

// IsRunning reports whether the CPU can still execute
func (r *Runner) IsRunning() bool {
	return r.cpu.State == cpu.Running
}

// LastResult returns the result of the most recent Run
func (r *Runner) LastResult() Result {
	return r.lastResult
}

// GetEmulationTime returns the wall time spent inside Run
func (r *Runner) GetEmulationTime() time.Duration {
	return r.emulationTime
}

// GetCPUState returns the current CPU state for debugging
func (r *Runner) GetCPUState() CPUState {
	c := r.cpu
	return CPUState{
		PC:     c.PC,
		A:      c.A,
		X:      c.X,
		Y:      c.Y,
		Status: c.Status,
		State:  c.State,
		Steps:  c.Steps(),
		Cycles: c.Cycles(),
		Flags: CPUFlags{
			N: c.Flag(cpu.FlagNegative),
			V: c.Flag(cpu.FlagOverflow),
			D: c.Flag(cpu.FlagDecimal),
			I: c.Flag(cpu.FlagInterrupt),
			Z: c.Flag(cpu.FlagZero),
			C: c.Flag(cpu.FlagCarry),
		},
	}
}

// IsStepLimit reports whether err only means the step budget ran out
func IsStepLimit(err error) bool {
	return errors.Is(err, cpu.ErrStepLimit)
}
