package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gridview/app/fileloader"
	"gridview/app/timestamps"
)

type loaderFlags struct {
	jpath        string
	noHeader     bool
	pattern      string
	sourceColumn bool
	maxFiles     int
	timezone     string
}

func (f *loaderFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.jpath, "jpath", "", "JSONPath selecting the row array of a JSON document, e.g. $.items")
	fs.BoolVar(&f.noHeader, "no-header", false, "treat the first row as data")
	fs.StringVar(&f.pattern, "pattern", "**/*", "glob of files to load when the path is a directory")
	fs.BoolVar(&f.sourceColumn, "source-column", false, "add a "+fileloader.SourceColumn+" column when loading a directory")
	fs.IntVar(&f.maxFiles, "max-files", 0, "maximum files to load from a directory (default from settings)")
	fs.StringVar(&f.timezone, "timezone", "", "zone for dates without an offset (default from settings)")
}

func (f *loaderFlags) location(e *env) *time.Location {
	return timestamps.GetIngestTimezoneWithOverride(f.timezone, e.settings.DefaultIngestTimezone)
}

func (f *loaderFlags) options(e *env) fileloader.Options {
	opts := fileloader.DefaultOptions()
	opts.JPath = f.jpath
	opts.NoHeaderRow = f.noHeader
	opts.Pattern = f.pattern
	opts.IncludeSourceColumn = f.sourceColumn
	opts.MaxFiles = e.settings.MaxDirectoryFiles
	if f.maxFiles > 0 {
		opts.MaxFiles = f.maxFiles
	}
	opts.Location = f.location(e)
	opts.Logger = e.logger
	if e.plugins != nil {
		opts.Converters = e.plugins
	}
	return opts
}

func (f *loaderFlags) load(ctx context.Context, e *env, path string) (*fileloader.Dataset, error) {
	if f.timezone != "" && !timestamps.ValidTZ(f.timezone) {
		return nil, fmt.Errorf("unknown timezone %q", f.timezone)
	}
	return fileloader.Load(ctx, path, f.options(e))
}
