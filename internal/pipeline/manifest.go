package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
)

// ManifestFile records what the last run left in the output directory.
const ManifestFile = ".hdlgen_manifest.json"

const manifestVersion = 1

// Manifest is the record of one run.
type Manifest struct {
	Version      int          `json:"version"`
	Design       string       `json:"design"`
	Language     string       `json:"language"`
	Tables       facts.Tables `json:"tables"`
	CompileOrder []string     `json:"compile_order"`
}

// LoadManifest reads the manifest of dir. A missing manifest, or one of
// another version, is reported as not found.
func LoadManifest(dir string) (Manifest, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, false, nil
	}
	if err != nil {
		return Manifest{}, false, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, false, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Version != manifestVersion {
		return Manifest{}, false, nil
	}
	return m, true, nil
}

// SaveManifest replaces the manifest of dir.
func SaveManifest(dir string, m Manifest) error {
	m.Version = manifestVersion
	if err := writeJSONAtomic(filepath.Join(dir, ManifestFile), m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// staleFiles lists files of the previous manifest that the current run no
// longer produces.
func staleFiles(delta facts.Delta, current facts.Tables) []string {
	present := map[string]bool{}
	for _, f := range current.Files {
		present[f.Path] = true
	}
	var out []string
	for _, f := range delta.Removed.Files {
		if !present[f.Path] {
			out = append(out, f.Path)
		}
	}
	return out
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return emit.WriteAtomic(path, append(data, '\n'))
}
