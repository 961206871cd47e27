package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"gridview/app/table"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeFile(t, `
page_size: 50
row_height: 2
overscan: 0
default_mode: virtual
enable_stage_cache: true
cache_max_entries: 16
default_ingest_timezone: UTC
log_level: debug
max_directory_files: 20
instance_id: abc
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, s.PageSize)
	assert.Equal(t, 2.0, s.RowHeight)
	assert.Equal(t, 0, s.Overscan)
	assert.Equal(t, "virtual", s.DefaultMode)
	assert.True(t, s.EnableQueryCache)
	assert.True(t, s.EnableStageCache)
	assert.Equal(t, 16, s.CacheMaxEntries)
	assert.Equal(t, "UTC", s.DefaultIngestTimezone)
	assert.Equal(t, "yyyy-MM-dd HH:mm:ss", s.DateDisplayFormat)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 20, s.MaxDirectoryFiles)
	assert.Equal(t, "abc", s.InstanceID)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	path := writeFile(t, `
page_size: -4
row_height: "tall"
overscan: -1
default_mode: carousel
cache_max_entries: 0
log_level: loud
max_directory_files: 3
enable_query_cache: "yes"
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeFile(t, "page_size: [1, 2\n")
	_, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Defaults(), GetEffectiveSettings(path))
}

func TestSaveSettingsWritesOnlyOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	svc := NewSettingsService(path)

	s := Defaults()
	s.PageSize = 100
	s.EnableQueryCache = false
	require.NoError(t, svc.SaveSettings(s))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(b, &m))

	assert.Len(t, m, 3)
	assert.Equal(t, 100, m["page_size"])
	assert.Equal(t, false, m["enable_query_cache"])
	assert.NotEmpty(t, m["instance_id"])

	loaded, err := svc.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 100, loaded.PageSize)
	assert.False(t, loaded.EnableQueryCache)
}

func TestSaveSettingsKeepsInstanceID(t *testing.T) {
	svc := NewSettingsService(filepath.Join(t.TempDir(), FileName))

	id, err := svc.EnsureInstanceID()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s := Defaults()
	s.Overscan = 5
	require.NoError(t, svc.SaveSettings(s))

	loaded, err := svc.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, id, loaded.InstanceID)
	assert.Equal(t, 5, loaded.Overscan)

	again, err := svc.EnsureInstanceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestSaveSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	svc := NewSettingsService(path)

	s := Defaults()
	s.DefaultIngestTimezone = "Mars/Olympus_Mons"
	err := svc.SaveSettings(s)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "default_ingest_timezone", verr.Key)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		key    string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"negative page size", func(s *Settings) { s.PageSize = -1 }, "page_size"},
		{"zero row height", func(s *Settings) { s.RowHeight = 0 }, "row_height"},
		{"negative overscan", func(s *Settings) { s.Overscan = -2 }, "overscan"},
		{"unknown mode", func(s *Settings) { s.DefaultMode = "grid" }, "default_mode"},
		{"cache too small", func(s *Settings) { s.CacheMaxEntries = 0 }, "cache_max_entries"},
		{"empty date format", func(s *Settings) { s.DateDisplayFormat = " " }, "date_display_format"},
		{"unknown log level", func(s *Settings) { s.LogLevel = "trace" }, "log_level"},
		{"few directory files", func(s *Settings) { s.MaxDirectoryFiles = 1 }, "max_directory_files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.modify(&s)
			err := Validate(s)
			if tt.key == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.key, verr.Key)
		})
	}
}

func TestTableOptions(t *testing.T) {
	s := Defaults()
	s.PageSize = 10
	s.DefaultMode = "virtual"
	s.EnableStageCache = true
	s.CacheMaxEntries = 4

	opts := s.TableOptions()
	assert.Equal(t, 10, opts.PageSize)
	assert.Equal(t, table.ModeVirtual, opts.Mode)
	assert.Equal(t, 3, opts.Overscan)
	assert.True(t, opts.Cache.EnablePipelineCache)
	assert.True(t, opts.Cache.EnableStageCache)
	assert.Equal(t, 4, opts.Cache.MaxEntries)

	s.EnableQueryCache = false
	assert.False(t, s.CacheConfig().EnableStageCache)
}

func TestResolvePath(t *testing.T) {
	p, err := ResolvePath("/tmp/custom.yml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yml", p)

	p, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(p))
}

func TestWriteDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", FileName)
	svc := NewSettingsService(path)

	written, err := svc.WriteDefaults(false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.InstanceID)
	loaded.InstanceID = ""
	assert.Equal(t, Defaults(), loaded)

	_, err = svc.WriteDefaults(false)
	assert.ErrorContains(t, err, "already exists")

	_, err = svc.WriteDefaults(true)
	assert.NoError(t, err)
}

func TestLoadPlugins(t *testing.T) {
	path := writeFile(t, `
plugins:
  - name: evtx
    path: /opt/gridview/evtx
  - name: off
    path: /opt/gridview/off
    enabled: false
  - name: broken
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []PluginConfig{
		{Name: "evtx", Path: "/opt/gridview/evtx", Enabled: true},
		{Name: "off", Path: "/opt/gridview/off", Enabled: false},
	}, s.Plugins)

	svc := NewSettingsService(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, svc.SaveSettings(s))
	saved, err := svc.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, s.Plugins, saved.Plugins)

	s.Plugins = append(s.Plugins, PluginConfig{Name: "empty"})
	assert.Error(t, Validate(s))
}
