// Package plugin runs external converters for file types the built-in
// readers do not handle. A plugin is a directory holding plugin.yml and an
// executable that prints the file as CSV.
package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"gridview/app/fileloader"
	"gridview/app/settings"
)

// Registry maps file extensions to the enabled plugins that read them
type Registry struct {
	mu      sync.RWMutex
	plugins map[string][]*Plugin // lowercase extension -> plugins, first registered wins
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string][]*Plugin)}
}

// Load replaces the registry contents with the enabled plugins of configs.
// Plugins that fail validation are skipped and reported together in the
// returned error; the rest stay usable.
func (r *Registry) Load(configs []settings.PluginConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plugins = make(map[string][]*Plugin)
	var errs []error
	for _, config := range configs {
		if !config.Enabled {
			continue
		}
		manifest, execPath, err := validateConfig(config)
		if err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", displayName(config), err))
			continue
		}
		p := &Plugin{Config: config, Manifest: *manifest, ExecPath: execPath}
		for _, ext := range manifest.Extensions {
			ext = strings.ToLower(ext)
			r.plugins[ext] = append(r.plugins[ext], p)
		}
	}
	return errors.Join(errs...)
}

func displayName(config settings.PluginConfig) string {
	if config.Name != "" {
		return config.Name
	}
	return config.Path
}

// Validate checks the plugin at path without registering it. path may be
// the plugin directory, its manifest or its executable.
func Validate(path string) (*Manifest, string, error) {
	return validateConfig(settings.PluginConfig{Path: path})
}

func validateConfig(config settings.PluginConfig) (*Manifest, string, error) {
	if config.Path == "" {
		return nil, "", errors.New("plugin path is empty")
	}
	info, err := os.Stat(config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("path does not exist: %s", config.Path)
		}
		return nil, "", fmt.Errorf("cannot access path: %v", err)
	}

	var pluginDir, execPath string
	if info.IsDir() {
		pluginDir = config.Path
	} else {
		pluginDir = filepath.Dir(config.Path)
		switch filepath.Base(config.Path) {
		case "plugin.yml", "plugin.yaml":
		default:
			execPath = config.Path
		}
	}

	manifest, err := readManifest(filepath.Join(pluginDir, ManifestFile))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read manifest: %w", err)
	}
	if execPath == "" {
		execPath = manifest.Executable
		if !filepath.IsAbs(execPath) {
			execPath = filepath.Clean(filepath.Join(pluginDir, execPath))
		}
	}
	if err := validateExecutable(execPath); err != nil {
		return nil, "", err
	}
	return manifest, execPath, nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found at %s", ManifestFile, path)
		}
		return nil, fmt.Errorf("cannot read manifest: %v", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid YAML: %v", err)
	}
	if err := validateManifest(&manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func validateExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("executable not found: %s", path)
		}
		return fmt.Errorf("cannot access executable: %v", err)
	}
	if info.IsDir() {
		return fmt.Errorf("executable is a directory: %s", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("executable does not have execute permission: %s", path)
	}
	return nil
}

// ForExtension returns the first plugin registered for ext, compared
// case-insensitively.
func (r *Registry) ForExtension(ext string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugins := r.plugins[strings.ToLower(ext)]
	if len(plugins) == 0 {
		return nil, false
	}
	return plugins[0], true
}

// ByID returns the plugin whose manifest carries id
func (r *Registry) ByID(id string) (*Plugin, bool) {
	for _, p := range r.List() {
		if p.Manifest.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ConverterFor implements fileloader.ConverterSet
func (r *Registry) ConverterFor(path string) (fileloader.Converter, bool) {
	p, ok := r.ForExtension(filepath.Ext(path))
	if !ok {
		return nil, false
	}
	return p, true
}

// List returns each registered plugin once, ordered by name
func (r *Registry) List() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []*Plugin
	for _, plugins := range r.plugins {
		for _, p := range plugins {
			if !seen[p.Manifest.ID] {
				seen[p.Manifest.ID] = true
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Manifest.Name < out[j].Manifest.Name })
	return out
}

// Extensions returns the sorted lowercase extensions with a plugin
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.plugins))
	for ext := range r.plugins {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
