// Package watch scans a directory tree for incoming documents and hands
// eligible folders to the processor. Per-folder state lives in a
// directory_info.json manifest next to the documents.
package watch

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Inzamam1121/Process-Doc/constants"
)

// Manifest records what the watcher has seen in one folder. Items is the
// candidate count at the last successful pass; a folder is rescanned when the
// live count exceeds it.
type Manifest struct {
	URL            string `json:"url"`
	Items          int    `json:"items"`
	ProcessedItems int    `json:"processedItems"`
}

const manifestSchema = `{
	"type": "object",
	"required": ["url", "items", "processedItems"],
	"properties": {
		"url":            {"type": "string"},
		"items":          {"type": "integer", "minimum": 0},
		"processedItems": {"type": "integer", "minimum": 0}
	}
}`

var compiledManifestSchema = jsonschema.MustCompileString("manifest.json", manifestSchema)

// ReadManifest loads and validates a folder's manifest. ok is false when the
// manifest is absent, unreadable, or fails validation; the caller treats all
// three the same way, as a folder never successfully scanned.
func ReadManifest(dir string) (Manifest, bool) {
	raw, err := os.ReadFile(filepath.Join(dir, constants.ManifestFilename))
	if err != nil {
		return Manifest{}, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Manifest{}, false
	}
	if err := compiledManifestSchema.Validate(v); err != nil {
		return Manifest{}, false
	}

	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, false
	}
	return m, true
}

// WriteManifest persists the manifest, indented for hand inspection.
func WriteManifest(dir string, m Manifest) error {
	if m.URL == "" {
		if abs, err := filepath.Abs(dir); err == nil {
			m.URL = abs
		} else {
			m.URL = dir
		}
	}
	out, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, constants.ManifestFilename), out, 0o644)
}

// CandidateFiles lists the folder's regular files eligible for processing,
// excluding the manifest itself.
func CandidateFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.EqualFold(name, constants.ManifestFilename) {
			continue
		}
		if !constants.AllowedExt(filepath.Ext(name)) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}
