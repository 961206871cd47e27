// Package tui is an interactive terminal viewer over one table.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gridview/app/cache"
	"gridview/app/query"
	"gridview/app/table"
	"gridview/app/timestamps"
)

// Lines taken by everything except data rows: title, prompt, column header,
// separator, status and help.
const chromeLines = 6

const statusDuration = 4 * time.Second

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeFilter
	modeExpression
)

// Options configures the viewer
type Options struct {
	Title       string
	Location    *time.Location // Zone for rendering dates and typing filter operands
	DatePattern string         // Display pattern such as "yyyy-MM-dd HH:mm:ss"
	Logger      cache.Logger
}

// Model is the bubbletea model of the viewer. It drives a table and renders
// the rows the table's view selects.
type Model struct {
	table   *table.Table[query.Record]
	columns []query.Column[query.Record]
	opts    Options
	keys    keyMap

	width  int
	height int
	ready  bool

	cursor    int // Absolute row in the processed result
	scrollY   int // First rendered row within the page, paged mode only
	colCursor int
	colOffset int

	mode  inputMode
	input textinput.Model

	statusMsg   string
	statusErr   bool
	statusUntil time.Time

	writeClip func([]byte) error
}

type statusClearMsg struct{}

// New creates a viewer over t
func New(t *table.Table[query.Record], opts Options) Model {
	ti := textinput.New()
	ti.CharLimit = 512

	return Model{
		table:     t,
		columns:   t.Schema().Columns(),
		opts:      opts,
		keys:      defaultKeyMap(),
		input:     ti,
		writeClip: writeClipboard,
	}
}

// Run shows the viewer full screen until the user quits
func Run(t *table.Table[query.Record], opts Options) error {
	_, err := tea.NewProgram(New(t, opts), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if err := m.table.SetViewportHeight(float64(m.visibleRowCount())); err != nil {
			return m, m.setError(err)
		}
		m.followCursor()
		m.syncColumns()
		return m, nil

	case statusClearMsg:
		if time.Now().After(m.statusUntil) {
			m.statusMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.visibleRowCount())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.visibleRowCount())
	case key.Matches(msg, m.keys.Top):
		m.moveTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveTo(m.table.View().Total - 1)
	case key.Matches(msg, m.keys.Left):
		if m.colCursor > 0 {
			m.colCursor--
		}
		m.syncColumns()
	case key.Matches(msg, m.keys.Right):
		if m.colCursor < len(m.columns)-1 {
			m.colCursor++
		}
		m.syncColumns()
	case key.Matches(msg, m.keys.NextPage):
		return m, m.changePage(1)
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.changePage(-1)
	case key.Matches(msg, m.keys.Search):
		return m, m.openInput(modeSearch, "/", m.table.State().SearchTerm)
	case key.Matches(msg, m.keys.Filter):
		col, ok := m.currentColumn()
		if !ok {
			return m, nil
		}
		return m, m.openInput(modeFilter, fmt.Sprintf("filter %s ", col.Key), "")
	case key.Matches(msg, m.keys.Expression):
		return m, m.openInput(modeExpression, "filter ", "")
	case key.Matches(msg, m.keys.Unfilter):
		if col, ok := m.currentColumn(); ok {
			return m, m.applyQuery(m.table.RemoveFilter(col.Key))
		}
	case key.Matches(msg, m.keys.Clear):
		return m, m.applyQuery(m.table.ClearFilters())
	case key.Matches(msg, m.keys.Sort):
		if col, ok := m.currentColumn(); ok {
			return m, m.applyQuery(m.table.SetSort(col.Key))
		}
	case key.Matches(msg, m.keys.Mode):
		return m, m.toggleMode()
	case key.Matches(msg, m.keys.Yank):
		return m, m.yankRow()
	case key.Matches(msg, m.keys.YankCell):
		return m, m.yankCell()
	}
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Prompts
// ═══════════════════════════════════════════════════════════════════════════

func (m *Model) openInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.closeInput()
		return m, m.submit(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) submit(mode inputMode, value string) tea.Cmd {
	switch mode {
	case modeSearch:
		return m.applyQuery(m.table.SetSearchTerm(strings.TrimSpace(value)))
	case modeFilter:
		col, ok := m.currentColumn()
		if !ok {
			return nil
		}
		cond, err := m.columnCondition(col, strings.TrimSpace(value))
		if err != nil {
			return m.setError(err)
		}
		return m.applyQuery(m.table.SetFilter(cond.Field, cond.Operand, cond.Operator))
	case modeExpression:
		conds, err := query.ParseFilterExpression(value, m.exprOptions())
		if err != nil {
			return m.setError(err)
		}
		return m.applyQuery(m.table.SetFilters(conds))
	}
	return nil
}

// columnCondition reads a prompt entry for one column. Input starting with an
// operator ("~bo", ">30", ":in=a,b") is parsed as a filter expression on the
// column; anything else uses the column's default operator. Empty input
// yields an inactive condition, which removes the filter.
func (m *Model) columnCondition(col query.Column[query.Record], value string) (query.FilterCondition, error) {
	if value == "" || !strings.ContainsAny(value[:1], "=~<>^$:") {
		return query.FilterCondition{Field: col.Key, Operator: query.DefaultOperator(col.FilterKind), Operand: value}, nil
	}
	return query.ParseFilterCondition(`"`+col.Key+`"`+value, m.exprOptions())
}

func (m *Model) exprOptions() query.ExprOptions {
	return query.ExprOptions{Location: m.opts.Location}
}

// applyQuery reports err, or moves the cursor to the top of the new result.
func (m *Model) applyQuery(err error) tea.Cmd {
	if err != nil {
		return m.setError(err)
	}
	m.cursor = 0
	m.scrollY = 0
	view := m.table.View()
	return m.setStatus(fmt.Sprintf("%d rows", view.Total))
}

// ═══════════════════════════════════════════════════════════════════════════
// Navigation
// ═══════════════════════════════════════════════════════════════════════════

func (m *Model) moveCursor(delta int) {
	m.moveTo(m.cursor + delta)
}

// moveTo places the cursor on an absolute row and brings it into view,
// turning the page in paged mode.
func (m *Model) moveTo(row int) {
	total := m.table.View().Total
	if total == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(row, total-1))
	m.followCursor()
}

func (m *Model) followCursor() {
	view := m.table.View()
	if view.Total == 0 {
		m.cursor, m.scrollY = 0, 0
		return
	}
	m.cursor = min(m.cursor, view.Total-1)

	if view.Mode == table.ModeVirtual {
		if err := m.table.ScrollToRow(m.cursor); err != nil {
			m.logf("warn", "[TUI_SCROLL] %v", err)
		}
		return
	}

	if view.PageSize > 0 {
		if page := m.cursor/view.PageSize + 1; page != view.Page {
			if err := m.table.SetPage(page); err != nil {
				m.logf("warn", "[TUI_PAGE] %v", err)
				return
			}
			view = m.table.View()
		}
	}

	rel := m.cursor - view.Range.StartIndex
	visible := m.visibleRowCount()
	if rel < m.scrollY {
		m.scrollY = rel
	} else if rel >= m.scrollY+visible {
		m.scrollY = rel - visible + 1
	}
	m.scrollY = max(0, min(m.scrollY, len(view.Records)-1))
}

func (m *Model) changePage(delta int) tea.Cmd {
	view := m.table.View()
	if view.Mode == table.ModeVirtual {
		m.moveCursor(delta * m.visibleRowCount())
		return nil
	}

	var err error
	if delta > 0 {
		err = m.table.NextPage()
	} else {
		err = m.table.PrevPage()
	}
	if err != nil {
		return m.setError(err)
	}
	m.cursor = m.table.View().Range.StartIndex
	m.scrollY = 0
	return nil
}

func (m *Model) toggleMode() tea.Cmd {
	next := table.ModeVirtual
	if m.table.Mode() == table.ModeVirtual {
		next = table.ModePaged
	}
	if err := m.table.SetMode(next); err != nil {
		return m.setError(err)
	}
	m.scrollY = 0
	m.followCursor()
	return m.setStatus(next.String() + " mode")
}

// syncColumns keeps the horizontal offset where the column cursor is visible.
func (m *Model) syncColumns() {
	if len(m.columns) == 0 {
		return
	}
	_, rows := m.visibleRows()
	m.colOffset, _ = m.visibleColumns(m.columnWidths(m.cellText(rows)))
}

func (m Model) currentColumn() (query.Column[query.Record], bool) {
	if m.colCursor < 0 || m.colCursor >= len(m.columns) {
		return query.Column[query.Record]{}, false
	}
	return m.columns[m.colCursor], true
}

func (m Model) visibleRowCount() int {
	return max(1, m.height-chromeLines)
}

// visibleRows returns the rows on screen and the absolute index of the first.
func (m Model) visibleRows() (int, []query.Record) {
	view := m.table.View()
	limit := m.visibleRowCount()

	offset := m.scrollY
	if view.Mode == table.ModeVirtual {
		offset = m.table.Viewport().FirstVisibleRow() - view.Range.StartIndex
	}
	offset = max(0, min(offset, len(view.Records)))
	end := min(offset+limit, len(view.Records))
	return view.Range.StartIndex + offset, view.Records[offset:end]
}

func (m Model) currentRecord() (query.Record, bool) {
	view := m.table.View()
	idx := m.cursor - view.Range.StartIndex
	if idx < 0 || idx >= len(view.Records) {
		return nil, false
	}
	return view.Records[idx], true
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard
// ═══════════════════════════════════════════════════════════════════════════

func (m *Model) yankRow() tea.Cmd {
	rec, ok := m.currentRecord()
	if !ok {
		return nil
	}
	header := make([]string, len(m.columns))
	row := make([]string, len(m.columns))
	for i, col := range m.columns {
		header[i] = col.Label
		row[i] = m.formatCell(col.Get(rec))
	}
	if err := m.writeClip([]byte(tsvLines(header, [][]string{row}))); err != nil {
		return m.setError(err)
	}
	return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(row)))
}

func (m *Model) yankCell() tea.Cmd {
	rec, ok := m.currentRecord()
	col, colOK := m.currentColumn()
	if !ok || !colOK {
		return nil
	}
	val := m.formatCell(col.Get(rec))
	if err := m.writeClip([]byte(val)); err != nil {
		return m.setError(err)
	}
	if len(val) > 40 {
		val = val[:37] + "..."
	}
	return m.setStatus("Copied: " + val)
}

// ═══════════════════════════════════════════════════════════════════════════
// Status
// ═══════════════════════════════════════════════════════════════════════════

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = false
	m.statusUntil = time.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(time.Time) tea.Msg { return statusClearMsg{} })
}

func (m *Model) setError(err error) tea.Cmd {
	m.logf("warn", "[TUI_ERROR] %v", err)
	cmd := m.setStatus(err.Error())
	m.statusErr = true
	return cmd
}

func (m *Model) logf(level, format string, args ...any) {
	if m.opts.Logger != nil {
		m.opts.Logger.Log(level, fmt.Sprintf(format, args...))
	}
}

func (m Model) formatCell(v any) string {
	if t, ok := v.(time.Time); ok {
		return timestamps.Format(t, m.opts.Location, m.opts.DatePattern)
	}
	return query.Stringify(v)
}
