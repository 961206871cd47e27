package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"gridview/app/cache"
	"gridview/app/fileloader"
	"gridview/app/query"
	"gridview/app/table"
)

type queryFlags struct {
	loader loaderFlags

	search   string
	filters  []string
	sort     string
	page     int
	pageSize int
	format   string

	histogram        string
	histogramBuckets int
	stats            bool

	virtual        bool
	scrollTop      float64
	viewportHeight float64
	rowHeight      float64
	overscan       int
}

func newQueryCommand(e *env) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query <path>",
		Short: "Run search, filters and sort over a file and print one page or window",
		Example: `  gridview query people.csv --search ann --filter "age>30" --sort age:desc
  gridview query logs/ --pattern "**/*.jsonl.gz" --filter 'level:in=warn,error' --format json
  gridview query big.csv --virtual --scroll-top 1200 --viewport-height 40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, e, f, args[0])
		},
	}

	f.loader.bind(cmd)
	fs := cmd.Flags()
	fs.StringVar(&f.search, "search", "", "free-text search across searchable columns")
	fs.StringArrayVar(&f.filters, "filter", nil, `filter expression, e.g. "city=Berlin age>30"; repeatable`)
	fs.StringVar(&f.sort, "sort", "", "sort column, optionally suffixed with :asc or :desc")
	fs.IntVar(&f.page, "page", 1, "page to print in paged mode")
	fs.IntVar(&f.pageSize, "page-size", 0, "rows per page (default from settings)")
	fs.StringVarP(&f.format, "format", "o", formatTable, "output format: table, json or csv")
	fs.StringVar(&f.histogram, "histogram", "", "print a time histogram of the result over this date column (auto picks one)")
	fs.Lookup("histogram").NoOptDefVal = "auto"
	fs.IntVar(&f.histogramBuckets, "histogram-buckets", 20, "maximum histogram buckets")
	fs.BoolVar(&f.stats, "stats", false, "print memo cache statistics after the result")
	fs.BoolVar(&f.virtual, "virtual", false, "print the virtual window instead of a page")
	fs.Float64Var(&f.scrollTop, "scroll-top", 0, "scroll offset of the virtual viewport")
	fs.Float64Var(&f.viewportHeight, "viewport-height", 20, "height of the virtual viewport")
	fs.Float64Var(&f.rowHeight, "row-height", 0, "height of one row (default from settings)")
	fs.IntVar(&f.overscan, "overscan", 0, "extra rows at each viewport edge (default from settings)")
	return cmd
}

func runQuery(cmd *cobra.Command, e *env, f *queryFlags, path string) error {
	format := normalizeFormat(f.format)
	switch format {
	case formatTable, formatJSON, formatCSV:
	default:
		return fmt.Errorf("unknown format %q, expected table, json or csv", f.format)
	}

	ds, err := f.loader.load(cmd.Context(), e, path)
	if err != nil {
		return err
	}

	opts := e.settings.TableOptions()
	opts.SharedCache = e.cache
	opts.Logger = e.logger
	flags := cmd.Flags()
	if flags.Changed("page-size") {
		opts.PageSize = f.pageSize
	}
	if flags.Changed("row-height") {
		opts.RowHeight = f.rowHeight
	}
	if flags.Changed("overscan") {
		opts.Overscan = f.overscan
	}
	opts.ViewportHeight = f.viewportHeight
	if f.virtual {
		opts.Mode = table.ModeVirtual
	}

	tbl, err := openTable(ds, opts)
	if err != nil {
		return err
	}

	state, err := f.state(query.ExprOptions{Location: f.loader.location(e)})
	if err != nil {
		return err
	}
	if err := tbl.SetState(state); err != nil {
		return err
	}
	if tbl.Mode() == table.ModeVirtual {
		if err := tbl.OnScroll(f.scrollTop); err != nil {
			return err
		}
	}

	r := renderer{
		columns:     tbl.Schema().Columns(),
		location:    f.loader.location(e),
		datePattern: e.settings.DateDisplayFormat,
	}
	view := tbl.View()
	if err := r.write(cmd.OutOrStdout(), format, view.Records); err != nil {
		return err
	}

	// Machine-readable formats keep stdout clean; the summary goes to stderr.
	summaryOut := cmd.OutOrStdout()
	if format != formatTable {
		summaryOut = cmd.ErrOrStderr()
	}
	if err := writeSummary(summaryOut, view); err != nil {
		return err
	}
	if f.stats {
		if _, err := fmt.Fprintln(summaryOut, statsLine(tbl.CacheStats())); err != nil {
			return err
		}
	}

	if f.histogram == "" {
		return nil
	}
	return writeHistogram(cmd.Context(), summaryOut, tbl, ds, f, r)
}

// openTable builds a table over the dataset's schema and records
func openTable(ds *fileloader.Dataset, opts table.Options) (*table.Table[query.Record], error) {
	schema, err := ds.Schema()
	if err != nil {
		return nil, err
	}
	tbl, err := table.New(schema, opts)
	if err != nil {
		return nil, err
	}
	if err := tbl.SetSnapshot(ds.Snapshot()); err != nil {
		return nil, err
	}
	return tbl, nil
}

// state builds the query state the flags describe. Later --filter flags
// replace earlier conditions on the same field.
func (f *queryFlags) state(exprOpts query.ExprOptions) (query.QueryState, error) {
	state := query.NewQueryState().WithSearchTerm(strings.TrimSpace(f.search))
	for _, expr := range f.filters {
		conds, err := query.ParseFilterExpression(expr, exprOpts)
		if err != nil {
			return state, err
		}
		for _, c := range conds {
			state = state.WithFilter(c)
		}
	}
	if f.sort != "" {
		field, dir, err := parseSort(f.sort)
		if err != nil {
			return state, err
		}
		state = state.WithSort(field, dir)
	}
	return state.WithPage(f.page), nil
}

// parseSort reads "field", "field:asc" or "field:desc".
func parseSort(s string) (string, query.SortDirection, error) {
	s = strings.TrimSpace(s)
	field, dir := s, query.SortAsc
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		switch strings.ToLower(s[idx+1:]) {
		case "asc":
			field = s[:idx]
		case "desc":
			field, dir = s[:idx], query.SortDesc
		}
	}
	if field == "" {
		return "", dir, fmt.Errorf("sort needs a column name, got %q", s)
	}
	return field, dir, nil
}

func writeSummary(w io.Writer, view table.View[query.Record]) error {
	var line string
	if view.Mode == table.ModeVirtual {
		line = fmt.Sprintf("rows %d-%d of %d", view.Range.StartIndex, view.Range.EndIndex, view.Total)
	} else {
		line = fmt.Sprintf("page %d/%d, %d rows", view.Page, view.TotalPages, view.Total)
	}
	if view.Cached {
		line += " (cached)"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// statsLine summarizes the memo cache, one clause per cached stage
func statsLine(s cache.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cache: %d/%d entries, %d pipeline hits, %d stage hits, %d misses, %d evictions, hit rate %.0f%%",
		s.TotalEntries, s.MaxEntries, s.PipelineHits, s.StageHits, s.Misses, s.Evictions, s.HitRate*100)

	stages := make([]string, 0, len(s.StageStats))
	for name := range s.StageStats {
		stages = append(stages, name)
	}
	sort.Strings(stages)
	for _, name := range stages {
		st := s.StageStats[name]
		fmt.Fprintf(&b, "; %s: %d entries, %d rows", name, st.EntryCount, st.TotalRows)
	}
	return b.String()
}
