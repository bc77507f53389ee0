package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"nescore/internal/cpu"
	"nescore/internal/memory"
	"nescore/internal/version"
)

// StateManager manages save states
type StateManager struct {
	saveDirectory string
	maxSlots      int
}

// SaveState represents a saved interpreter state
type SaveState struct {
	// Metadata
	Version         string    `json:"version"`
	Timestamp       time.Time `json:"timestamp"`
	ProgramPath     string    `json:"program_path"`
	ProgramChecksum string    `json:"program_checksum"`
	SlotNumber      int       `json:"slot_number"`

	CPUState CPUStateData `json:"cpu_state"`
	Memory   []uint8      `json:"memory"`
}

// CPUStateData represents CPU state for save files
type CPUStateData struct {
	PC     uint16 `json:"pc"`
	A      uint8  `json:"a"`
	X      uint8  `json:"x"`
	Y      uint8  `json:"y"`
	Status uint8  `json:"status"`
	State  string `json:"state"`
}

// StateSlotInfo contains information about a save state slot
type StateSlotInfo struct {
	SlotNumber int       `json:"slot_number"`
	Used       bool      `json:"used"`
	Timestamp  time.Time `json:"timestamp"`
	FilePath   string    `json:"file_path"`
}

// NewStateManager creates a new state manager
func NewStateManager(saveDirectory string) *StateManager {
	return &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
	}
}

// SaveState writes the runner's CPU and memory to a slot
func (sm *StateManager) SaveState(r *Runner, slot int) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	c := r.CPU()
	state := &SaveState{
		Version:         version.GetVersion(),
		Timestamp:       time.Now(),
		ProgramPath:     r.programPath,
		ProgramChecksum: checksum(r.program),
		SlotNumber:      slot,
		CPUState: CPUStateData{
			PC:     c.PC,
			A:      c.A,
			X:      c.X,
			Y:      c.Y,
			Status: c.Status,
			State:  c.State.String(),
		},
		Memory: make([]uint8, memory.Size),
	}
	for i := range state.Memory {
		state.Memory[i] = c.MemRead(uint16(i))
	}

	return sm.saveToFile(state, sm.getSlotFilePath(slot, r.programPath))
}

// LoadState restores a slot saved for the same program
func (sm *StateManager) LoadState(r *Runner, slot int) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	state, err := sm.loadFromFile(sm.getSlotFilePath(slot, r.programPath))
	if err != nil {
		return err
	}

	if err := sm.validateSaveState(state, checksum(r.program)); err != nil {
		return errors.Wrapf(err, "slot %d", slot)
	}

	sm.restoreState(r.CPU(), state)
	return nil
}

func (sm *StateManager) checkSlot(slot int) error {
	if slot < 0 || slot >= sm.maxSlots {
		return errors.Errorf("invalid slot %d (0-%d)", slot, sm.maxSlots-1)
	}
	return nil
}

// saveToFile saves a state to a file
func (sm *StateManager) saveToFile(state *SaveState, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal state")
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write file")
	}
	return nil
}

// loadFromFile loads a state from a file
func (sm *StateManager) loadFromFile(filePath string) (*SaveState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal state")
	}
	return &state, nil
}

// validateSaveState validates a loaded save state
func (sm *StateManager) validateSaveState(state *SaveState, programChecksum string) error {
	if state.Version == "" {
		return errors.New("missing version information")
	}
	if state.ProgramChecksum != programChecksum {
		return errors.New("save state is for a different program")
	}
	if len(state.Memory) != memory.Size {
		return errors.Errorf("memory image has %d bytes, want %d", len(state.Memory), memory.Size)
	}
	return nil
}

// restoreState copies registers and memory back into the CPU
func (sm *StateManager) restoreState(c *cpu.CPU, state *SaveState) {
	for i, b := range state.Memory {
		c.MemWrite(uint16(i), b)
	}

	c.PC = state.CPUState.PC
	c.A = state.CPUState.A
	c.X = state.CPUState.X
	c.Y = state.CPUState.Y
	c.Status = state.CPUState.Status

	switch state.CPUState.State {
	case cpu.Halted.String():
		c.State = cpu.Halted
	case cpu.Faulted.String():
		c.State = cpu.Faulted
	default:
		c.State = cpu.Running
	}
}

// getSlotFilePath generates the file path for a save slot
func (sm *StateManager) getSlotFilePath(slot int, programPath string) string {
	name := "program"
	if programPath != "" {
		base := filepath.Base(programPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(sm.saveDirectory, fmt.Sprintf("%s_slot_%d.save", name, slot))
}

func checksum(program []byte) string {
	sum := sha256.Sum256(program)
	return hex.EncodeToString(sum[:])
}

// GetSlotInfo returns information about all save slots
func (sm *StateManager) GetSlotInfo(programPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)
	for i := range slots {
		path := sm.getSlotFilePath(i, programPath)
		slots[i] = StateSlotInfo{SlotNumber: i, FilePath: path}

		if info, err := os.Stat(path); err == nil {
			slots[i].Used = true
			slots[i].Timestamp = info.ModTime()
		}
	}
	return slots
}

// DeleteState deletes a save state slot
func (sm *StateManager) DeleteState(slot int, programPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}
	path := sm.getSlotFilePath(slot, programPath)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete save state")
	}
	return nil
}

// HasSaveState checks if a save state exists in the given slot
func (sm *StateManager) HasSaveState(slot int, programPath string) bool {
	_, err := os.Stat(sm.getSlotFilePath(slot, programPath))
	return err == nil
}

// GetMaxSlots returns the maximum number of save slots
func (sm *StateManager) GetMaxSlots() int {
	return sm.maxSlots
}

// GetSaveDirectory returns the save directory path
func (sm *StateManager) GetSaveDirectory() string {
	return sm.saveDirectory
}
