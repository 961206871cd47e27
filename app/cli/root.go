// Package cli wires the loader, the query engine and the viewer into the
// gridview command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gridview/app/cache"
	"gridview/app/logging"
	"gridview/app/plugin"
	"gridview/app/settings"
)

// env is what every command runs with: effective settings, a logger and the
// memo cache shared by all tables of the process.
type env struct {
	configPath string
	logLevel   string

	service  *settings.SettingsService
	settings settings.Settings
	logger   *logging.Logger
	cache    *cache.Cache
	plugins  *plugin.Registry
}

// setup loads settings and builds the logger, cache and plugin registry.
// Log output goes to w. Broken plugins are logged and skipped.
func (e *env) setup(w io.Writer) error {
	e.service = settings.NewSettingsService(e.configPath)
	s, err := e.service.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	e.settings = s

	levelName := s.LogLevel
	if e.logLevel != "" {
		levelName = e.logLevel
	}
	level, ok := logging.ParseLevel(levelName)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelName)
	}
	e.logger = logging.New(w, level)
	e.cache = cache.NewCacheWithLogger(s.CacheMaxEntries, e.logger)

	e.plugins = plugin.NewRegistry()
	if err := e.plugins.Load(s.Plugins); err != nil {
		e.logger.Warnf("[PLUGIN] %v", err)
	}
	return nil
}

// NewRootCommand builds the gridview command tree
func NewRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "gridview",
		Short:         "Search, filter, sort and page through CSV, TSV, XLSX and JSON data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "settings file (default: "+settings.FileName+" next to the executable)")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "debug, info, warn or error (overrides the settings file)")

	root.AddCommand(
		newQueryCommand(e),
		newViewCommand(e),
		newColumnsCommand(e),
		newConfigCommand(e),
		newPluginsCommand(e),
	)
	return root
}
