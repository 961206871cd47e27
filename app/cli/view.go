package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gridview/app/logging"
	"gridview/app/table"
	"gridview/app/tui"
)

type viewFlags struct {
	loader  loaderFlags
	mode    string
	logFile string
}

func newViewCommand(e *env) *cobra.Command {
	f := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "view <path>",
		Short: "Browse a file or directory in an interactive terminal table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, e, f, args[0])
		},
	}
	f.loader.bind(cmd)
	cmd.Flags().StringVar(&f.mode, "mode", "", "paged or virtual (default from settings)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "append log output to this file while the viewer runs")
	return cmd
}

func runView(cmd *cobra.Command, e *env, f *viewFlags, path string) error {
	// The viewer owns the terminal, so logs go to a file or nowhere.
	logger := logging.Discard()
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer file.Close()
		logger = logging.New(file, e.logger.Level())
	}
	e.logger = logger
	e.cache.SetLogger(logger)

	ds, err := f.loader.load(cmd.Context(), e, path)
	if err != nil {
		return err
	}
	for _, w := range ds.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}

	opts := e.settings.TableOptions()
	opts.SharedCache = e.cache
	opts.Logger = logger
	// One terminal line per row; the viewer sets the height on the first resize.
	opts.RowHeight = 1
	if f.mode != "" {
		mode, ok := table.ParseMode(f.mode)
		if !ok {
			return fmt.Errorf("unknown mode %q, expected paged or virtual", f.mode)
		}
		opts.Mode = mode
	}

	tbl, err := openTable(ds, opts)
	if err != nil {
		return err
	}

	logger.Infof("[VIEW] %s: %d rows, %d columns, mode %s", ds.Path, len(ds.Records), len(ds.Columns), tbl.Mode())
	err = tui.Run(tbl, tui.Options{
		Title:       filepath.Base(ds.Path),
		Location:    f.loader.location(e),
		DatePattern: e.settings.DateDisplayFormat,
		Logger:      logger,
	})
	if err != nil {
		logger.Errorf("[VIEW] %v", err)
		return err
	}
	logger.Debugf("[CACHE_STATS] %s", statsLine(tbl.CacheStats()))
	return nil
}
