package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactMeta travels with every persisted model: the registry key, the
// exact feature order the model was trained with, and the run's metrics.
type ArtifactMeta struct {
	Model     string    `json:"model_name"`
	Schema    []string  `json:"feature_schema"`
	Metrics   Metrics   `json:"training_metrics"`
	TrainedAt time.Time `json:"trained_at"`
}

// artifactPath is <dir>/<model>_model.json.
func artifactPath(dir, model string) string {
	return filepath.Join(dir, model+"_model.json")
}

// saveJSON writes an artifact atomically: the full payload lands in a temp
// file first and a rename swaps it in, so a crash mid-write never corrupts a
// loadable artifact.
func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	enc := json.NewEncoder(tmp)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
