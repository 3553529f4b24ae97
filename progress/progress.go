package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State records how far a resumable pass has gotten so an interrupted
// run can pick up where it left off instead of starting over.
type State struct {
	LastID    uint   `json:"lastId"`
	Count     int    `json:"count"`
	Total     int    `json:"total"`
	Timestamp string `json:"timestamp"`
}

// Load reads the progress side file. A missing file is not an error;
// it returns a zero state so the caller starts from the beginning.
func Load(path string) (State, error) {
	var state State
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return state, fmt.Errorf("failed to read progress file: %v", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse progress file: %v", err)
	}
	return state, nil
}

// Save writes the progress side file, stamping the current time.
func Save(path string, state State) error {
	state.Timestamp = time.Now().Format(time.RFC3339)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %v", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create progress directory: %v", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write progress file: %v", err)
	}
	return nil
}

// Clear removes the side file after a pass completes cleanly.
func Clear(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove progress file: %v", err)
	}
	return nil
}
