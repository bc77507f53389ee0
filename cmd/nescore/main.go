// Package main implements the nescore command line runner.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"nescore/internal/app"
	"nescore/internal/monitor"
	"nescore/internal/version"
)

func main() {
	var (
		programFile = flag.String("program", "", "Path to a raw program image loaded at $8000")
		configFile  = flag.String("config", "", "Path to configuration file")
		scriptFile  = flag.String("script", "", "Lua script to run after loading")
		maxSteps    = flag.Int("max-steps", -1, "Step budget (0 = unlimited, default from config)")
		trace       = flag.Bool("trace", false, "Trace every instruction")
		reset       = flag.Bool("reset", false, "Enter through the reset vector instead of $8000")
		monitorMode = flag.Bool("monitor", false, "Open the interactive monitor window")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVersion {
		version.PrintBuildInfo(os.Stdout)
		os.Exit(0)
	}

	setupGracefulShutdown()

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplication(configPath)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	config := application.GetConfig()
	applyFlags(config, *maxSteps, *trace, *reset)
	application.ApplyDebugSettings(traceWriter(os.Stdout, config.Debug.ColorTrace))

	if *programFile != "" {
		if err := application.LoadProgram(*programFile); err != nil {
			log.Fatalf("Failed to load program: %v", err)
		}
	}

	switch {
	case *scriptFile != "":
		if err := application.RunScript(*scriptFile, os.Stdout); err != nil {
			log.Fatalf("Script failed: %v", err)
		}
	case *monitorMode:
		if err := monitor.New(application).Run(); err != nil {
			log.Fatalf("Monitor failed: %v", err)
		}
	case *programFile != "":
		result, err := application.Run()
		fmt.Println(application.Runner().CPU())
		if err != nil {
			log.Fatalf("Run failed after %d steps: %v", result.Steps, err)
		}
		if app.IsStepLimit(result.Err) {
			fmt.Printf("Step budget of %d exhausted\n", config.Execution.MaxSteps)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

// applyFlags overrides config values the user set on the command line
func applyFlags(config *app.Config, maxSteps int, trace, reset bool) {
	if maxSteps >= 0 {
		config.Execution.MaxSteps = maxSteps
	}
	if trace {
		config.Debug.Trace = true
	}
	if reset {
		config.Execution.UseResetVector = true
	}
}

// traceWriter colours trace output only when stdout is a terminal
func traceWriter(out *os.File, colour bool) io.Writer {
	if colour && term.IsTerminal(int(out.Fd())) {
		return &colorWriter{w: out}
	}
	return out
}

// setupGracefulShutdown sets up signal handling for graceful shutdown
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nInterrupt received, shutting down...")
		os.Exit(130)
	}()
}

func printUsage() {
	fmt.Println("nescore - 6502 instruction interpreter")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nescore -program <file> [options]   # Run a raw program to BRK")
	fmt.Println("  nescore -script <file.lua>          # Drive the CPU from Lua")
	fmt.Println("  nescore -monitor -program <file>    # Step through a program interactively")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  nescore -program prog.bin -trace")
	fmt.Println("  nescore -program prog.bin -max-steps 5000")
	fmt.Println("  nescore -program prog.bin -reset -config custom.json")
	fmt.Println()
	fmt.Println("MONITOR KEYS:")
	fmt.Println("  Space      - Step one instruction")
	fmt.Println("  R          - Run / pause")
	fmt.Println("  Backspace  - Reload program")
	fmt.Println("  PgUp/PgDn  - Change memory page")
	fmt.Println("  C          - Copy registers and page to clipboard")
	fmt.Println("  F5 / F9    - Save / load state slot 0")
	fmt.Println("  Escape     - Quit")
	fmt.Println()
	fmt.Printf("CONFIGURATION:\n  Config file: %s\n", app.GetDefaultConfigPath())
}
