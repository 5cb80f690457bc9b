package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveDocument writes v as YAML to filePath, creating directories as needed.
func SaveDocument(v any, filePath string) error {
	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Ensure .yaml extension
	if !strings.HasSuffix(filePath, ".yaml") && !strings.HasSuffix(filePath, ".yml") {
		filePath = filePath + ".yaml"
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// LoadDocument reads the YAML file at filePath into out.
func LoadDocument(filePath string, out any) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", filepath.Base(filePath), err)
	}

	return nil
}

// DocumentPath returns the file path of one entity of the given kind.
func DocumentPath(projectDir, kind, id string) string {
	return filepath.Join(projectDir, kind, id+".yaml")
}

// ListDocuments returns the ids of all stored entities of one kind, sorted.
// A missing directory yields an empty list.
func ListDocuments(projectDir, kind string) ([]string, error) {
	dir := filepath.Join(projectDir, kind)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s directory: %w", kind, err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"))
	}
	sort.Strings(ids)
	return ids, nil
}

// RemoveDocument deletes one entity file. Removing a missing file is not an error.
func RemoveDocument(projectDir, kind, id string) error {
	err := os.Remove(DocumentPath(projectDir, kind, id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s/%s: %w", kind, id, err)
	}
	return nil
}

// SaveManifest writes the project manifest.
func SaveManifest(projectDir string, m Manifest) error {
	if m.Version == 0 {
		m.Version = CurrentVersion
	}
	return SaveDocument(m, filepath.Join(projectDir, ManifestFile))
}

// LoadManifest reads the project manifest. A missing manifest yields a
// zero manifest and os.ErrNotExist.
func LoadManifest(projectDir string) (Manifest, error) {
	var m Manifest
	path := filepath.Join(projectDir, ManifestFile)
	if _, err := os.Stat(path); err != nil {
		return m, err
	}
	if err := LoadDocument(path, &m); err != nil {
		return m, err
	}
	return m, nil
}
