package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GetEffectiveSettings returns the effective settings (defaults overlaid with file overrides if any).
// If anything goes wrong, it returns defaults.
func GetEffectiveSettings(path string) Settings {
	settings, err := Load(path)
	if err != nil {
		return defaultSettings
	}
	return settings
}

// Load reads the settings file at path, or the default location when path is
// empty. A missing file yields the defaults without error. Values of the
// wrong type or outside their range are ignored.
func Load(path string) (Settings, error) {
	settings := defaultSettings
	path, err := ResolvePath(path)
	if err != nil {
		return settings, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}
	// Unmarshal into a generic map to detect key presence
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings, err
	}
	applyOverrides(&settings, m)
	return settings, nil
}

func applyOverrides(settings *Settings, m map[string]any) {
	if v, ok := m["page_size"]; ok {
		if vi, oki := v.(int); oki && vi >= 0 {
			settings.PageSize = vi
		}
	}
	if v, ok := m["row_height"]; ok {
		if vf, okf := asFloat(v); okf && vf > 0 {
			settings.RowHeight = vf
		}
	}
	if v, ok := m["overscan"]; ok {
		if vi, oki := v.(int); oki && vi >= 0 {
			settings.Overscan = vi
		}
	}
	if v, ok := m["default_mode"]; ok {
		if vs, oks := v.(string); oks && validMode(vs) {
			settings.DefaultMode = vs
		}
	}
	if v, ok := m["enable_query_cache"]; ok {
		if vb, okb := v.(bool); okb {
			settings.EnableQueryCache = vb
		}
	}
	if v, ok := m["enable_stage_cache"]; ok {
		if vb, okb := v.(bool); okb {
			settings.EnableStageCache = vb
		}
	}
	if v, ok := m["cache_max_entries"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.CacheMaxEntries = vi
		}
	}
	if v, ok := m["default_ingest_timezone"]; ok {
		if vs, oks := v.(string); oks {
			settings.DefaultIngestTimezone = vs
		}
	}
	if v, ok := m["date_display_format"]; ok {
		if vs, oks := v.(string); oks && vs != "" {
			settings.DateDisplayFormat = vs
		}
	}
	if v, ok := m["log_level"]; ok {
		if vs, oks := v.(string); oks && validLogLevel(vs) {
			settings.LogLevel = vs
		}
	}
	if v, ok := m["max_directory_files"]; ok {
		if vi, oki := v.(int); oki && vi >= 10 {
			settings.MaxDirectoryFiles = vi
		}
	}
	if v, ok := m["plugins"]; ok {
		if list, okl := v.([]any); okl {
			settings.Plugins = parsePlugins(list)
		}
	}
	if v, ok := m["instance_id"]; ok {
		if vs, oks := v.(string); oks {
			settings.InstanceID = vs
		}
	}
}

// parsePlugins keeps the entries that name a path. A missing enabled key
// means enabled.
func parsePlugins(list []any) []PluginConfig {
	var out []PluginConfig
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		path, _ := m["path"].(string)
		if path == "" {
			continue
		}
		cfg := PluginConfig{Path: path, Enabled: true}
		cfg.Name, _ = m["name"].(string)
		if enabled, okb := m["enabled"].(bool); okb {
			cfg.Enabled = enabled
		}
		out = append(out, cfg)
	}
	return out
}

// asFloat accepts both YAML ints and floats
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ResolvePath returns path when set, otherwise gridview.yml next to the
// executable.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return settingsFilePath()
}

func settingsFilePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	return filepath.Join(dir, FileName), nil
}
