package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ManifestFile is the manifest looked up in a plugin directory
const ManifestFile = "plugin.yml"

// Manifest is the parsed plugin.yml of a converter
type Manifest struct {
	ID          string   `yaml:"id"` // UUID
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Executable  string   `yaml:"executable"`
	Extensions  []string `yaml:"extensions"`
	Author      string   `yaml:"author"`
}

func validateManifest(m *Manifest) error {
	if m.ID == "" {
		return errors.New("manifest missing required field: id (UUID)")
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("manifest field 'id' must be a valid UUID, got: %s", m.ID)
	}

	if m.Name == "" {
		return errors.New("manifest missing required field: name")
	}
	if len(m.Name) > 100 {
		return errors.New("manifest field 'name' exceeds 100 characters")
	}

	if m.Version == "" {
		return errors.New("manifest missing required field: version")
	}
	if !isValidSemver(m.Version) {
		return fmt.Errorf("manifest field 'version' must be in semver format (e.g., '1.0.0'), got: %s", m.Version)
	}

	if m.Executable == "" {
		return errors.New("manifest missing required field: executable")
	}

	if len(m.Extensions) == 0 {
		return errors.New("manifest missing required field: extensions (must have at least one)")
	}
	for i, ext := range m.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension at index %d must start with a dot, got: %s", i, ext)
		}
	}

	if len(m.Description) > 500 {
		return errors.New("manifest field 'description' exceeds 500 characters")
	}
	if len(m.Author) > 200 {
		return errors.New("manifest field 'author' exceeds 200 characters")
	}
	return nil
}

// isValidSemver accepts MAJOR.MINOR.PATCH with numeric parts
func isValidSemver(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return false
			}
		}
	}
	return true
}
