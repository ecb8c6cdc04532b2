package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/barscan/internal/testutil"
)

// ManifestFileName is written next to the generated images.
const ManifestFileName = "manifest.json"

// ManifestEntry describes one generated image.
type ManifestEntry struct {
	File        string `json:"file"`
	Scenario    string `json:"scenario"`
	Description string `json:"description"`
	Want        string `json:"want,omitempty"`
}

// WriteFixtures renders each scenario to dir/<name>.png and writes a manifest.
func WriteFixtures(dir string, scenarios []Scenario) ([]ManifestEntry, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create fixture directory: %w", err)
	}
	entries := make([]ManifestEntry, 0, len(scenarios))
	for _, sc := range scenarios {
		img, err := sc.Render()
		if err != nil {
			return entries, fmt.Errorf("render %s: %w", sc.Name, err)
		}
		file := sc.Name + ".png"
		if err := testutil.SavePNG(filepath.Join(dir, file), img); err != nil {
			return entries, fmt.Errorf("write %s: %w", file, err)
		}
		entries = append(entries, ManifestEntry{File: file, Scenario: sc.Name, Description: sc.Description, Want: sc.Want})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return entries, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), append(data, '\n'), 0o600); err != nil {
		return entries, fmt.Errorf("failed to write manifest: %w", err)
	}
	return entries, nil
}
