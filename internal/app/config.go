// Package app provides configuration and the program runner for the nescore host.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"nescore/internal/memory"
)

// Config holds all application configuration
type Config struct {
	Execution ExecutionConfig `json:"execution"`
	Debug     DebugConfig     `json:"debug"`
	Monitor   MonitorConfig   `json:"monitor"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// ExecutionConfig controls how programs are started and bounded
type ExecutionConfig struct {
	MaxSteps       int  `json:"max_steps"`        // 0 runs until BRK or fault
	UseResetVector bool `json:"use_reset_vector"` // enter through $FFFC instead of $8000
	LoadAddress    int  `json:"load_address"`     // informational, programs always load at $8000
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	Trace         bool   `json:"trace"`
	LoopDetection bool   `json:"loop_detection"`
	LogLevel      string `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
	ColorTrace    bool   `json:"color_trace"`
}

// MonitorConfig contains settings for the interactive monitor window
type MonitorConfig struct {
	Scale         int `json:"scale"`
	Page          int `json:"page"` // memory page shown at startup
	StepsPerFrame int `json:"steps_per_frame"`
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	States string `json:"states"`
}

var logLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Execution: ExecutionConfig{
			MaxSteps:       1000000,
			UseResetVector: false,
			LoadAddress:    int(memory.ProgramStart),
		},
		Debug: DebugConfig{
			Trace:         false,
			LoopDetection: true,
			LogLevel:      "INFO",
			ColorTrace:    true,
		},
		Monitor: MonitorConfig{
			Scale:         2,
			Page:          0x80,
			StepsPerFrame: 1,
		},
		Paths: PathsConfig{
			States: "./states",
		},
	}
}

// LoadConfig returns defaults overlaid with the JSON file at path. A missing
// file is created with the defaults.
func LoadConfig(path string) (*Config, error) {
	c := NewConfig()
	if err := c.LoadFromFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	if err := json.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// Validate rejects values that cannot be repaired and clamps the rest
func (c *Config) Validate() error {
	if c.Execution.MaxSteps < 0 {
		return &ConfigError{Field: "execution.max_steps", Value: c.Execution.MaxSteps, Err: errors.New("must not be negative")}
	}

	if c.Execution.LoadAddress != int(memory.ProgramStart) {
		c.Execution.LoadAddress = int(memory.ProgramStart)
	}

	level := strings.ToUpper(c.Debug.LogLevel)
	valid := false
	for _, l := range logLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return &ConfigError{Field: "debug.log_level", Value: c.Debug.LogLevel, Err: errors.New("unknown level")}
	}
	c.Debug.LogLevel = level

	if c.Monitor.Scale <= 0 {
		c.Monitor.Scale = 1
	}

	if c.Monitor.Page < 0 || c.Monitor.Page > 0xFF {
		c.Monitor.Page = 0
	}

	if c.Monitor.StepsPerFrame <= 0 {
		c.Monitor.StepsPerFrame = 1
	}

	if c.Paths.States == "" {
		c.Paths.States = "./states"
	}

	return nil
}

// DebugEnabled reports whether DEBUG-level messages should be logged
func (c *Config) DebugEnabled() bool {
	return c.Debug.LogLevel == "DEBUG"
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nescore.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
