// Package artifact persists the trained model bundle.
package artifact

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hed1ad/factoryguard/pkg/detectors/iforest"
	"github.com/hed1ad/factoryguard/pkg/features"
)

// Bundle is everything serving needs to reproduce the training-time
// transform and decision: the serialized forest plus the calibration
// statistics and humidity noise bound it was trained with. Serving must
// never substitute its own constants for these.
type Bundle struct {
	Calibration features.Calibration
	NoiseBound  float64
	Forest      []byte
}

// Save writes the bundle via a temp file and rename, so a failed training
// run never leaves a partial artifact behind.
func Save(path string, b *Bundle) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(b); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads a bundle and rebuilds the forest from it.
func Load(path string) (*Bundle, *iforest.IsolationForest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}

	forest := iforest.New()
	if err := forest.Load(b.Forest); err != nil {
		return nil, nil, fmt.Errorf("load forest from artifact %s: %w", path, err)
	}

	return &b, forest, nil
}
