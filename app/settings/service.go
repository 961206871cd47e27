package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"gridview/app/query"
	"gridview/app/table"
	"gridview/app/timestamps"
)

// ValidationError reports a settings value outside its allowed range
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Key, e.Message)
}

// SettingsService manages reading/writing settings from disk.
type SettingsService struct {
	path string
}

// NewSettingsService creates a service for the settings file at path. An
// empty path means gridview.yml next to the executable.
func NewSettingsService(path string) *SettingsService {
	return &SettingsService{path: path}
}

// Path returns the settings file the service reads and writes
func (s *SettingsService) Path() (string, error) {
	return ResolvePath(s.path)
}

// GetSettings returns the effective settings (defaults overlaid with file overrides if any).
func (s *SettingsService) GetSettings() (Settings, error) {
	return Load(s.path)
}

// SaveSettings validates in and saves only the values that differ from
// defaults. An instance ID is generated when neither in nor the existing
// file carries one.
func (s *SettingsService) SaveSettings(in Settings) error {
	if err := Validate(in); err != nil {
		return err
	}
	path, err := s.Path()
	if err != nil {
		return err
	}

	// Build a minimal map containing only non-default values to avoid zero-value serialization pitfalls
	data := make(map[string]any)
	if in.PageSize != defaultSettings.PageSize {
		data["page_size"] = in.PageSize
	}
	if in.RowHeight != defaultSettings.RowHeight {
		data["row_height"] = in.RowHeight
	}
	if in.Overscan != defaultSettings.Overscan {
		data["overscan"] = in.Overscan
	}
	if mode := strings.ToLower(strings.TrimSpace(in.DefaultMode)); mode != "" && mode != defaultSettings.DefaultMode {
		data["default_mode"] = mode
	}
	if in.EnableQueryCache != defaultSettings.EnableQueryCache {
		data["enable_query_cache"] = in.EnableQueryCache
	}
	if in.EnableStageCache != defaultSettings.EnableStageCache {
		data["enable_stage_cache"] = in.EnableStageCache
	}
	if in.CacheMaxEntries != defaultSettings.CacheMaxEntries {
		data["cache_max_entries"] = in.CacheMaxEntries
	}
	if strings.TrimSpace(in.DefaultIngestTimezone) != strings.TrimSpace(defaultSettings.DefaultIngestTimezone) {
		data["default_ingest_timezone"] = strings.TrimSpace(in.DefaultIngestTimezone)
	}
	if strings.TrimSpace(in.DateDisplayFormat) != strings.TrimSpace(defaultSettings.DateDisplayFormat) {
		data["date_display_format"] = strings.TrimSpace(in.DateDisplayFormat)
	}
	if level := strings.ToLower(strings.TrimSpace(in.LogLevel)); level != defaultSettings.LogLevel {
		data["log_level"] = level
	}
	if in.MaxDirectoryFiles != defaultSettings.MaxDirectoryFiles {
		data["max_directory_files"] = in.MaxDirectoryFiles
	}

	if len(in.Plugins) > 0 {
		data["plugins"] = in.Plugins
	}

	// Preserve instance ID; use incoming if provided, otherwise the one on disk
	instanceID := strings.TrimSpace(in.InstanceID)
	if instanceID == "" {
		old, _ := Load(s.path)
		instanceID = strings.TrimSpace(old.InstanceID)
	}
	if instanceID == "" {
		instanceID = uuid.New().String()
	}
	data["instance_id"] = instanceID

	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// WriteDefaults writes a settings file holding every default value and a new
// instance ID. An existing file is only replaced when overwrite is set.
func (s *SettingsService) WriteDefaults(overwrite bool) (string, error) {
	path, err := s.Path()
	if err != nil {
		return "", err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("settings file %s already exists", path)
		}
	}

	out := defaultSettings
	out.InstanceID = uuid.New().String()
	b, err := yaml.Marshal(out)
	if err != nil {
		return path, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, b, 0o644)
}

// EnsureInstanceID generates and saves a unique instance ID if one doesn't exist
func (s *SettingsService) EnsureInstanceID() (string, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(settings.InstanceID) != "" {
		return settings.InstanceID, nil
	}
	settings.InstanceID = uuid.New().String()
	if err := s.SaveSettings(settings); err != nil {
		return "", err
	}
	return settings.InstanceID, nil
}

// Validate checks every value against its allowed range
func Validate(s Settings) error {
	if s.PageSize < 0 {
		return &ValidationError{Key: "page_size", Message: "must not be negative"}
	}
	if s.RowHeight <= 0 {
		return &ValidationError{Key: "row_height", Message: "must be greater than zero"}
	}
	if s.Overscan < 0 {
		return &ValidationError{Key: "overscan", Message: "must not be negative"}
	}
	if !validMode(s.DefaultMode) {
		return &ValidationError{Key: "default_mode", Message: fmt.Sprintf("unknown mode %q, expected paged or virtual", s.DefaultMode)}
	}
	if s.CacheMaxEntries < 1 {
		return &ValidationError{Key: "cache_max_entries", Message: "must be at least 1"}
	}
	if !timestamps.ValidTZ(s.DefaultIngestTimezone) {
		return &ValidationError{Key: "default_ingest_timezone", Message: fmt.Sprintf("unknown timezone %q", s.DefaultIngestTimezone)}
	}
	if strings.TrimSpace(s.DateDisplayFormat) == "" {
		return &ValidationError{Key: "date_display_format", Message: "must not be empty"}
	}
	if !validLogLevel(s.LogLevel) {
		return &ValidationError{Key: "log_level", Message: fmt.Sprintf("unknown level %q", s.LogLevel)}
	}
	if s.MaxDirectoryFiles < 10 {
		return &ValidationError{Key: "max_directory_files", Message: "must be at least 10"}
	}
	for i, p := range s.Plugins {
		if strings.TrimSpace(p.Path) == "" {
			return &ValidationError{Key: fmt.Sprintf("plugins[%d].path", i), Message: "must not be empty"}
		}
	}
	return nil
}

func validMode(s string) bool {
	_, ok := table.ParseMode(s)
	return ok
}

func validLogLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// CacheConfig returns the memoization settings for query pipelines
func (s Settings) CacheConfig() query.CacheConfig {
	return query.CacheConfigFromSettings(s.EnableQueryCache, s.EnableStageCache, s.CacheMaxEntries)
}

// IngestLocation returns the zone for dates without an explicit offset
func (s Settings) IngestLocation() *time.Location {
	return timestamps.GetLocationForTZ(s.DefaultIngestTimezone)
}

// TableOptions maps the settings onto table options. Viewport height is
// left at its default; the caller sets it from the terminal size.
func (s Settings) TableOptions() table.Options {
	opts := table.DefaultOptions()
	opts.PageSize = s.PageSize
	opts.RowHeight = s.RowHeight
	opts.Overscan = s.Overscan
	if mode, ok := table.ParseMode(s.DefaultMode); ok {
		opts.Mode = mode
	}
	opts.Cache = s.CacheConfig()
	return opts
}
