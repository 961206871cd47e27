package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gridview/app/query"
	"gridview/app/table"
)

const (
	maxColWidth = 32
	minColWidth = 3
	colGap      = "  "
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79FF"}
	colorInfo   = lipgloss.AdaptiveColor{Light: "#0A7CA6", Dark: "#4FC1E9"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	colorError  = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#1E8449", Dark: "#7BD88F"}
	colorRowBg  = lipgloss.AdaptiveColor{Light: "#E8E8F8", Dark: "#2A2A40"}

	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle        = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle        = lipgloss.NewStyle().Foreground(colorError)
	okStyle           = lipgloss.NewStyle().Foreground(colorOK)
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	headerActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	rowActiveStyle    = lipgloss.NewStyle().Background(colorRowBg)
	cellActiveStyle   = lipgloss.NewStyle().Background(colorAccent).Foreground(lipgloss.Color("#000000"))
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	view := m.table.View()
	var sb strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "gridview"
	}
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d/%d rows, %d columns", title, view.Total, m.table.Len(), len(m.columns))))
	sb.WriteString(mutedStyle.Render("  " + positionInfo(view)))
	sb.WriteString("\n")

	if m.mode != modeNormal {
		sb.WriteString(m.input.View())
	} else {
		sb.WriteString(mutedStyle.Render(stateSummary(m.table.State())))
	}
	sb.WriteString("\n")

	sb.WriteString(m.renderTable())

	if m.statusMsg != "" && time.Now().Before(m.statusUntil) {
		if m.statusErr {
			sb.WriteString(errorStyle.Render(m.statusMsg))
		} else {
			sb.WriteString(okStyle.Render(m.statusMsg))
		}
	}
	sb.WriteString("\n")

	if m.mode != modeNormal {
		sb.WriteString(mutedStyle.Render("enter confirm  esc cancel"))
	} else {
		sb.WriteString(mutedStyle.Render(m.keys.helpLine()))
	}
	return sb.String()
}

func positionInfo(view table.View[query.Record]) string {
	info := fmt.Sprintf("%s: page %d/%d", view.Mode, view.Page, view.TotalPages)
	if view.Mode == table.ModeVirtual {
		info = fmt.Sprintf("%s: rows %d-%d", view.Mode, view.Range.StartIndex, view.Range.EndIndex)
	}
	if view.Cached {
		info += " (cached)"
	}
	return info
}

func stateSummary(state query.QueryState) string {
	var parts []string
	if state.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("search %q", state.SearchTerm))
	}
	for _, f := range state.Filters {
		if f.Active() {
			parts = append(parts, fmt.Sprintf("%s %s %s", f.Field, f.Operator, query.Stringify(f.Operand)))
		}
	}
	if state.SortField != "" {
		parts = append(parts, fmt.Sprintf("sort %s %s", state.SortField, state.SortDirection))
	}
	if len(parts) == 0 {
		return "no search or filters"
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTable() string {
	if len(m.columns) == 0 {
		return "No columns\n"
	}

	start, rows := m.visibleRows()
	cells := m.cellText(rows)
	widths := m.columnWidths(cells)
	first, last := m.visibleColumns(widths)
	state := m.table.State()

	var header, sep strings.Builder
	for i := first; i <= last; i++ {
		label := m.columns[i].Label
		if m.columns[i].Key == state.SortField {
			label += " " + sortArrow(state.SortDirection)
		}
		if _, ok := state.Filter(m.columns[i].Key); ok {
			label += "*"
		}
		style := headerStyle
		if i == m.colCursor {
			style = headerActiveStyle
		}
		header.WriteString(style.Render(fit(label, widths[i])))
		header.WriteString(colGap)
		sep.WriteString(mutedStyle.Render(strings.Repeat("─", widths[i])))
		sep.WriteString(colGap)
	}

	var sb strings.Builder
	sb.WriteString(header.String())
	sb.WriteString("\n")
	sb.WriteString(sep.String())
	sb.WriteString("\n")

	for r, row := range cells {
		selected := start+r == m.cursor
		for i := first; i <= last; i++ {
			text := fit(row[i], widths[i])
			switch {
			case selected && i == m.colCursor:
				text = cellActiveStyle.Render(text)
			case selected:
				text = rowActiveStyle.Render(text)
			}
			sb.WriteString(text)
			sb.WriteString(colGap)
		}
		sb.WriteString("\n")
	}

	for i := len(rows); i < m.visibleRowCount(); i++ {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) cellText(rows []query.Record) [][]string {
	out := make([][]string, len(rows))
	for r, rec := range rows {
		out[r] = make([]string, len(m.columns))
		for i, col := range m.columns {
			out[r][i] = sanitizeCell(m.formatCell(col.Get(rec)))
		}
	}
	return out
}

func (m Model) columnWidths(cells [][]string) []int {
	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		widths[i] = ansi.StringWidth(col.Label) + 2
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], ansi.StringWidth(c))
		}
	}
	for i := range widths {
		widths[i] = max(minColWidth, min(widths[i], maxColWidth))
	}
	return widths
}

// visibleColumns picks the columns that fit the terminal width, starting at
// colOffset and extended so that the column cursor is always shown.
func (m Model) visibleColumns(widths []int) (int, int) {
	first := min(m.colOffset, m.colCursor)
	used := 0
	for first < m.colCursor {
		used = 0
		for i := first; i <= m.colCursor; i++ {
			used += widths[i] + len(colGap)
		}
		if used <= m.width {
			break
		}
		first++
	}

	last := first
	used = widths[first] + len(colGap)
	for last+1 < len(widths) && used+widths[last+1]+len(colGap) <= m.width {
		last++
		used += widths[last] + len(colGap)
	}
	return first, max(last, m.colCursor)
}

func sortArrow(dir query.SortDirection) string {
	if dir == query.SortDesc {
		return "▼"
	}
	return "▲"
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
