package settings

// PluginConfig registers an external converter for file types the loader
// cannot read itself.
type PluginConfig struct {
	Name    string `yaml:"name" json:"name"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
	// Plugin directory holding plugin.yml, the manifest itself, or the executable
	Path string `yaml:"path" json:"path"`
}

// Settings holds application settings that can be overridden by the user.
type Settings struct {
	// Rows per page in paged mode
	PageSize int `yaml:"page_size" json:"page_size"`
	// Height of one row in virtual mode; 1 means one terminal line
	RowHeight float64 `yaml:"row_height" json:"row_height"`
	// Extra rows rendered above and below the viewport
	Overscan int `yaml:"overscan" json:"overscan"`
	// "paged" or "virtual"
	DefaultMode string `yaml:"default_mode" json:"default_mode"`
	// Remove omitempty so that false is serialized (we need to persist explicit overrides)
	EnableQueryCache bool `yaml:"enable_query_cache" json:"enable_query_cache"`
	EnableStageCache bool `yaml:"enable_stage_cache" json:"enable_stage_cache"`
	// Upper bound on memoized results shared by all open tables
	CacheMaxEntries int `yaml:"cache_max_entries" json:"cache_max_entries"`
	// Default timezone to assume when parsing dates that do not include an explicit timezone
	// Examples: "Local" (system local), "UTC", or any IANA TZ like "America/Los_Angeles"
	DefaultIngestTimezone string `yaml:"default_ingest_timezone" json:"default_ingest_timezone"`
	// Pattern used to render date cells, e.g. "yyyy-MM-dd HH:mm:ss"
	DateDisplayFormat string `yaml:"date_display_format" json:"date_display_format"`
	// debug, info, warn or error
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Maximum number of files when loading a directory
	MaxDirectoryFiles int `yaml:"max_directory_files" json:"max_directory_files"`
	// External converters, tried before the built-in readers
	Plugins []PluginConfig `yaml:"plugins,omitempty" json:"plugins,omitempty"`
	// InstanceID is a unique identifier for this installation
	InstanceID string `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`
}

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	PageSize:         25,
	RowHeight:        1,
	Overscan:         3,
	DefaultMode:      "paged",
	EnableQueryCache: true,
	EnableStageCache: false,
	CacheMaxEntries:  8,
	// By default, interpret no-timezone dates in the system local timezone
	DefaultIngestTimezone: "Local",
	DateDisplayFormat:     "yyyy-MM-dd HH:mm:ss",
	LogLevel:              "info",
	MaxDirectoryFiles:     500,
}

// Defaults returns a copy of the built-in defaults
func Defaults() Settings {
	return defaultSettings
}

// FileName is the settings file looked up next to the executable
const FileName = "gridview.yml"
