// Package table holds the query state of one table and the view derived
// from it. A Table is driven from a single goroutine.
package table

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"gridview/app/cache"
	"gridview/app/query"
	"gridview/app/window"
)

// View is the derived presentation of a table
type View[R any] struct {
	Records    []R // Rows to render: the current page or the visible window
	Total      int // Rows in the processed result
	Page       int
	TotalPages int
	PageSize   int
	Range      window.Range // Visible window in virtual mode
	Mode       Mode
	Cached     bool // Result came from the memo cache
}

// Table owns a snapshot of records, the query state applied to it and the
// current view. Every setter either applies fully or returns an error and
// leaves state and view as they were.
type Table[R any] struct {
	id       string
	schema   *query.Schema[R]
	pipeline *query.QueryPipeline[R]
	cache    *cache.Cache
	snapshot query.Snapshot[R]
	state    query.QueryState
	viewport *window.Viewport
	opts     Options

	result []R
	cached bool
	view   View[R]
}

// New creates an empty table over schema
func New[R any](schema *query.Schema[R], opts Options) (*Table[R], error) {
	if schema == nil {
		return nil, &query.ConfigurationError{Message: "table needs a schema"}
	}
	viewport, err := window.NewViewport(opts.ViewportHeight, opts.RowHeight, opts.Overscan)
	if err != nil {
		return nil, err
	}

	c := opts.SharedCache
	if c == nil && (opts.Cache.EnablePipelineCache || opts.Cache.EnableStageCache) {
		c = cache.NewCacheWithLogger(opts.Cache.MaxEntries, opts.Logger)
	}

	t := &Table[R]{
		id:       uuid.NewString(),
		schema:   schema,
		cache:    c,
		state:    query.NewQueryState(),
		viewport: viewport,
		opts:     opts,
	}
	t.pipeline = query.NewQueryPipeline(schema, c, t.id, opts.Cache)
	t.pipeline.SetLogger(opts.Logger)
	t.snapshot = query.NewSnapshot[R](nil)

	if err := t.refresh(t.state, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[R]) logf(level, format string, args ...any) {
	if t.opts.Logger != nil {
		t.opts.Logger.Log(level, fmt.Sprintf(format, args...))
	}
}

// ID returns the table's unique id, which also namespaces its cache keys
func (t *Table[R]) ID() string { return t.id }

// Schema returns the table's columns
func (t *Table[R]) Schema() *query.Schema[R] { return t.schema }

// State returns the current query state
func (t *Table[R]) State() query.QueryState { return t.state }

// View returns the current view
func (t *Table[R]) View() View[R] { return t.view }

// Result returns the full processed result, before paging or windowing.
// The slice is shared with the memo cache and must not be modified.
func (t *Table[R]) Result() []R { return t.result }

// Len returns the number of records in the current snapshot
func (t *Table[R]) Len() int { return len(t.snapshot.Records) }

// Mode returns the presentation mode
func (t *Table[R]) Mode() Mode { return t.opts.Mode }

// Viewport exposes the scroll state used in virtual mode
func (t *Table[R]) Viewport() *window.Viewport { return t.viewport }

// CacheStats reports the memo cache; zero when caching is off
func (t *Table[R]) CacheStats() cache.Stats {
	if t.cache == nil {
		return cache.Stats{}
	}
	return t.cache.GetCacheStats()
}

// SetRecords replaces the data with a new snapshot of records
func (t *Table[R]) SetRecords(records []R) error {
	return t.SetSnapshot(query.NewSnapshot(records))
}

// SetSnapshot replaces the data. The query state is kept; page and scroll
// position are clamped to the new result.
func (t *Table[R]) SetSnapshot(snap query.Snapshot[R]) error {
	previous := t.snapshot
	t.snapshot = snap
	if err := t.refresh(t.state, false); err != nil {
		t.snapshot = previous
		return err
	}
	if previous.Key != snap.Key {
		if n := t.pipeline.Invalidate(previous.Key); n > 0 {
			t.logf("debug", "[TABLE_SNAPSHOT] Replaced snapshot %s, invalidated %d cached results", previous.Key, n)
		}
	}
	return nil
}

// SetSearchTerm changes the free-text search
func (t *Table[R]) SetSearchTerm(term string) error {
	return t.applyQuery(t.state.WithSearchTerm(term))
}

// SetFilter sets the condition on field. An empty operator picks the
// column's default; an empty value removes the condition.
func (t *Table[R]) SetFilter(field string, value any, op query.Operator) error {
	if err := t.schema.CheckFilterable(field); err != nil {
		return err
	}
	if op == "" {
		col, _ := t.schema.Column(field)
		op = query.DefaultOperator(col.FilterKind)
	}
	return t.applyQuery(t.state.WithFilter(query.FilterCondition{Field: field, Operator: op, Operand: value}))
}

// SetFilters replaces all conditions at once
func (t *Table[R]) SetFilters(conditions []query.FilterCondition) error {
	next := t.state.WithoutFilters()
	for _, cond := range conditions {
		if err := t.schema.CheckFilterable(cond.Field); err != nil {
			return err
		}
		next = next.WithFilter(cond)
	}
	return t.applyQuery(next)
}

// RemoveFilter drops the condition on field
func (t *Table[R]) RemoveFilter(field string) error {
	return t.applyQuery(t.state.WithoutFilter(field))
}

// ClearFilters drops every condition
func (t *Table[R]) ClearFilters() error {
	return t.applyQuery(t.state.WithoutFilters())
}

// SetSort sorts ascending by field, or flips the direction when field is
// already the sort field.
func (t *Table[R]) SetSort(field string) error {
	if err := t.schema.CheckSortable(field); err != nil {
		return err
	}
	return t.applyQuery(t.state.ToggleSort(field))
}

// SetSortDirection sorts by field in an explicit direction. An empty field
// removes sorting.
func (t *Table[R]) SetSortDirection(field string, dir query.SortDirection) error {
	if field != "" {
		if err := t.schema.CheckSortable(field); err != nil {
			return err
		}
	}
	return t.applyQuery(t.state.WithSort(field, dir))
}

// SetState applies a complete query state, e.g. one built from CLI flags.
// The page is kept and clamped.
func (t *Table[R]) SetState(state query.QueryState) error {
	return t.refresh(state, true)
}

// SetPage moves to page n, clamped into [1, TotalPages]
func (t *Table[R]) SetPage(n int) error {
	t.state = t.state.WithPage(query.ClampPage(n, len(t.result), t.opts.PageSize))
	return t.rebuildView()
}

// NextPage moves one page forward, stopping at the last page
func (t *Table[R]) NextPage() error {
	return t.SetPage(t.state.Page + 1)
}

// PrevPage moves one page back, stopping at the first page
func (t *Table[R]) PrevPage() error {
	return t.SetPage(t.state.Page - 1)
}

// SetPageSize changes the page size and returns to the first page
func (t *Table[R]) SetPageSize(size int) error {
	t.opts.PageSize = size
	return t.SetPage(1)
}

// OnScroll records a new scroll offset of the virtual viewport
func (t *Table[R]) OnScroll(scrollTop float64) error {
	if math.IsNaN(scrollTop) || math.IsInf(scrollTop, 0) {
		return &window.ConfigurationError{Param: "scrollTop", Value: scrollTop}
	}
	previous := t.viewport.ScrollTop()
	t.viewport.ScrollTo(scrollTop, len(t.result))
	if err := t.rebuildView(); err != nil {
		t.viewport.ScrollTo(previous, len(t.result))
		return err
	}
	return nil
}

// ScrollToRow scrolls the virtual viewport just enough to show row
func (t *Table[R]) ScrollToRow(row int) error {
	t.viewport.ScrollToRow(row, len(t.result))
	return t.rebuildView()
}

// SetViewportHeight resizes the virtual viewport
func (t *Table[R]) SetViewportHeight(height float64) error {
	if err := t.viewport.SetHeight(height); err != nil {
		return err
	}
	t.viewport.ScrollTo(t.viewport.ScrollTop(), len(t.result))
	return t.rebuildView()
}

// SetMode switches between paged and virtual presentation
func (t *Table[R]) SetMode(mode Mode) error {
	t.opts.Mode = mode
	return t.rebuildView()
}

// applyQuery runs a changed query. Search, filter and sort changes always
// return to the first page and the top of the viewport.
func (t *Table[R]) applyQuery(next query.QueryState) error {
	return t.refresh(next.WithPage(1), true)
}

// refresh runs the pipeline for state and commits it only on success.
func (t *Table[R]) refresh(state query.QueryState, resetScroll bool) error {
	res, err := t.pipeline.Execute(t.snapshot, state)
	if err != nil {
		t.logf("warn", "[TABLE_QUERY] Rejected query: %v", err)
		return err
	}

	t.result = res.Records
	t.cached = res.Cached
	t.state = state.WithPage(query.ClampPage(state.Page, len(t.result), t.opts.PageSize))
	if resetScroll {
		t.viewport.Reset()
	} else {
		t.viewport.ScrollTo(t.viewport.ScrollTop(), len(t.result))
	}
	t.logf("debug", "[TABLE_QUERY] %d of %d records (cached=%v)", len(t.result), len(t.snapshot.Records), res.Cached)

	return t.rebuildView()
}

func (t *Table[R]) rebuildView() error {
	total := len(t.result)
	view := View[R]{
		Total:    total,
		Mode:     t.opts.Mode,
		PageSize: t.opts.PageSize,
		Cached:   t.cached,
	}

	page := query.Paginate(t.result, t.state.Page, t.opts.PageSize)
	view.Page = page.Page
	view.TotalPages = page.TotalPages

	switch t.opts.Mode {
	case ModeVirtual:
		r, err := t.viewport.Range(total)
		if err != nil {
			return err
		}
		view.Range = r
		view.Records = t.result[r.StartIndex:r.EndIndex]
	default:
		view.Records = page.Records
		view.Range = window.Range{StartIndex: min((page.Page-1)*max(page.PageSize, 0), total)}
		view.Range.EndIndex = view.Range.StartIndex + len(page.Records)
	}

	t.view = view
	return nil
}
