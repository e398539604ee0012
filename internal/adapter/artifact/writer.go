package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Bundle is the on-disk form of a complete artifact set.
type Bundle struct {
	Metadata MetadataFile
	Encoders map[string][]string
	Scaler   ScalerFile
	Model    ModelFile
}

// Write stores b as indented JSON files in dir, creating dir if needed.
func Write(dir string, files Files, b Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	entries := []struct {
		name string
		v    any
	}{
		{files.Metadata, b.Metadata},
		{files.Encoders, b.Encoders},
		{files.Scaler, b.Scaler},
		{files.Model, b.Model},
	}
	for _, e := range entries {
		data, err := json.MarshalIndent(e.v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", e.name, err)
		}
		data = append(data, '\n')
		if err := os.WriteFile(filepath.Join(dir, e.name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	return nil
}
