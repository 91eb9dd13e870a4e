package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Checkpoint records where a paged import left off so an interrupted run
// resumes instead of starting over.
type Checkpoint struct {
	Offset        int `json:"offset"`
	TotalImported int `json:"totalImported"`
}

// LoadCheckpoint reads a checkpoint file, returning a zero checkpoint when
// the file does not exist.
func LoadCheckpoint(path string) (Checkpoint, error) {
	var cp Checkpoint
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cp, nil
	}
	if err != nil {
		return cp, fmt.Errorf("read checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, fmt.Errorf("parse checkpoint: %w", err)
	}
	return cp, nil
}

func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// RemoveCheckpoint deletes the checkpoint after a completed run. A missing
// file is not an error.
func RemoveCheckpoint(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}
