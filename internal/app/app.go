package app

import (
	"fmt"
	"io"
	"log"

	"nescore/internal/script"
)

// Application wires configuration, the runner, save states and scripting
type Application struct {
	config *Config
	runner *Runner
	states *StateManager
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication loads configPath (defaults when empty) and builds the runner
func NewApplication(configPath string) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			return nil, &ApplicationError{Component: "config", Operation: "load", Err: err}
		}
	}
	return NewApplicationWithConfig(config), nil
}

// NewApplicationWithConfig builds an application around an existing config
func NewApplicationWithConfig(config *Config) *Application {
	return &Application{
		config: config,
		runner: NewRunner(config),
		states: NewStateManager(config.Paths.States),
	}
}

// ApplyDebugSettings pushes the debug section into the runner. Trace lines go
// to w when tracing is enabled.
func (app *Application) ApplyDebugSettings(w io.Writer) {
	app.runner.SetTraceOutput(w)
	app.runner.CPU().EnableLoopDetection(app.config.Debug.LoopDetection)

	if app.config.DebugEnabled() {
		log.Printf("[APP_DEBUG] trace=%v loop_detection=%v max_steps=%d reset_vector=%v",
			app.config.Debug.Trace, app.config.Debug.LoopDetection,
			app.config.Execution.MaxSteps, app.config.Execution.UseResetVector)
	}
}

// LoadProgram reads a raw binary into memory at $8000
func (app *Application) LoadProgram(path string) error {
	if err := app.runner.LoadProgramFile(path); err != nil {
		return &ApplicationError{Component: "runner", Operation: "program load", Err: err}
	}
	return nil
}

// Run executes the loaded program. Hitting the step budget is not an error.
func (app *Application) Run() (Result, error) {
	result := app.runner.Run()
	if result.Err != nil && !IsStepLimit(result.Err) {
		return result, &ApplicationError{Component: "cpu", Operation: "run", Err: result.Err}
	}
	return result, nil
}

// RunScript executes a Lua file against the runner's CPU. Script output goes
// to out.
func (app *Application) RunScript(path string, out io.Writer) error {
	h := script.New(app.runner.CPU())
	defer h.Close()
	h.SetOutput(out)

	if err := h.DoFile(path); err != nil {
		return &ApplicationError{Component: "script", Operation: "run", Err: err}
	}
	return nil
}

// SaveState writes the current CPU and memory to slot
func (app *Application) SaveState(slot int) error {
	return app.states.SaveState(app.runner, slot)
}

// LoadState restores slot
func (app *Application) LoadState(slot int) error {
	return app.states.LoadState(app.runner, slot)
}

// Runner returns the program runner
func (app *Application) Runner() *Runner {
	return app.runner
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// StateManager returns the save state manager
func (app *Application) StateManager() *StateManager {
	return app.states
}
