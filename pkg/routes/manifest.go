package routes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestVersion is the schema version written into every manifest.
const ManifestVersion = "1"

// Manifest is the JSON form of a collected route table. It is written next
// to the generated types so that runtime code can validate paths against
// the same table the types were emitted from.
type Manifest struct {
	Version     string  `json:"version"`
	BuildID     string  `json:"buildId,omitempty"`
	GeneratedAt string  `json:"generatedAt"`
	Routes      Mapping `json:"routes"`
}

// NewManifest wraps m for serialization.
func NewManifest(m Mapping, buildID string, now time.Time) *Manifest {
	return &Manifest{
		Version:     ManifestVersion,
		BuildID:     buildID,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Routes:      m,
	}
}

// WriteManifest writes the manifest as indented JSON, creating parent
// directories as needed.
func WriteManifest(path string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by WriteManifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %q", manifest.Version)
	}
	if manifest.Routes == nil {
		manifest.Routes = Mapping{}
	}
	return &manifest, nil
}
