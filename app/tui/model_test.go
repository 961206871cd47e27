package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridview/app/query"
	"gridview/app/table"
)

func peopleTable(t *testing.T, pageSize int, records []query.Record) *table.Table[query.Record] {
	t.Helper()
	schema, err := query.NewSchema([]query.Column[query.Record]{
		query.RecordColumn("id", "ID", query.FilterNumber),
		query.RecordColumn("name", "Name", query.FilterText),
		query.RecordColumn("age", "Age", query.FilterNumber),
	})
	require.NoError(t, err)

	opts := table.DefaultOptions()
	opts.PageSize = pageSize
	tbl, err := table.New(schema, opts)
	require.NoError(t, err)
	require.NoError(t, tbl.SetRecords(records))
	return tbl
}

func people() []query.Record {
	return []query.Record{
		{"id": 1, "name": "Bob", "age": 30},
		{"id": 2, "name": "Amy", "age": 25},
		{"id": 3, "name": "Cid", "age": 25},
	}
}

func numbered(n int) []query.Record {
	records := make([]query.Record, n)
	for i := range records {
		records[i] = query.Record{"id": i, "name": fmt.Sprintf("row %03d", i), "age": i % 50}
	}
	return records
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// sized returns a model whose screen shows exactly rows data rows.
func sized(t *testing.T, tbl *table.Table[query.Record], rows int) Model {
	t.Helper()
	return send(New(tbl, Options{Title: "people", Location: time.UTC}), tea.WindowSizeMsg{Width: 120, Height: rows + chromeLines})
}

func TestPagedNavigationTurnsPages(t *testing.T) {
	tbl := peopleTable(t, 3, numbered(10))
	m := sized(t, tbl, 3)

	m = send(m, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 3, m.cursor)
	assert.Equal(t, 2, tbl.View().Page)

	m = send(m, runes("G"))
	assert.Equal(t, 9, m.cursor)
	assert.Equal(t, 4, tbl.View().Page)

	m = send(m, runes("g"))
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 1, tbl.View().Page)

	m = send(m, runes("n"))
	assert.Equal(t, 2, tbl.View().Page)
	assert.Equal(t, 3, m.cursor)

	m = send(m, runes("b"), runes("b"))
	assert.Equal(t, 1, tbl.View().Page)
	assert.Equal(t, 0, m.cursor)
}

func TestVirtualModeFollowsCursor(t *testing.T) {
	tbl := peopleTable(t, 25, numbered(100))
	m := sized(t, tbl, 5)

	m = send(m, runes("m"))
	require.Equal(t, table.ModeVirtual, tbl.Mode())

	m = send(m, runes("G"))
	assert.Equal(t, 99, m.cursor)
	assert.Equal(t, 95, tbl.Viewport().FirstVisibleRow())

	start, rows := m.visibleRows()
	assert.Equal(t, 95, start)
	require.Len(t, rows, 5)
	assert.Equal(t, 99, rows[4]["id"])

	m = send(m, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 94, m.cursor)
	assert.Equal(t, 94, tbl.Viewport().FirstVisibleRow())

	m = send(m, runes("m"))
	assert.Equal(t, table.ModePaged, tbl.Mode())
	assert.Equal(t, 4, tbl.View().Page)
}

func TestSearchPrompt(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	m = send(m, runes("/"))
	assert.Equal(t, modeSearch, m.mode)

	m = send(m, runes("amy"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "amy", tbl.State().SearchTerm)
	require.Equal(t, 1, tbl.View().Total)
	assert.Equal(t, "Amy", tbl.View().Records[0]["name"])
}

func TestEscCancelsPrompt(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	m = send(m, runes("/"), runes("zzz"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeNormal, m.mode)
	assert.Empty(t, tbl.State().SearchTerm)
	assert.Equal(t, 3, tbl.View().Total)
}

func TestColumnFilterPrompt(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	m = send(m, runes("l"), runes("l"))
	require.Equal(t, 2, m.colCursor)

	m = send(m, runes("f"), runes(">26"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, tbl.View().Total)
	assert.Equal(t, "Bob", tbl.View().Records[0]["name"])

	cond, ok := tbl.State().Filter("age")
	require.True(t, ok)
	assert.Equal(t, query.OpGreaterThan, cond.Operator)

	m = send(m, runes("x"))
	assert.Equal(t, 3, tbl.View().Total)

	// Plain input uses the column's default operator.
	m = send(m, runes("h"), runes("f"), runes("am"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, tbl.View().Total)
	assert.Equal(t, "Amy", tbl.View().Records[0]["name"])

	send(m, runes("c"))
	assert.Equal(t, 3, tbl.View().Total)
}

func TestInvalidExpressionKeepsView(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	m = send(m, runes("F"), runes("age>26"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, tbl.View().Total)

	m = send(m, runes("F"), runes("a=1 OR b=2"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "only AND")
	assert.Equal(t, 1, tbl.View().Total)
	assert.Contains(t, m.View(), "only AND")
}

func TestSortToggle(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	m = send(m, runes("l"), runes("s"))
	assert.Equal(t, "Amy", tbl.View().Records[0]["name"])

	m = send(m, runes("s"))
	assert.Equal(t, "Cid", tbl.View().Records[0]["name"])
	assert.Contains(t, m.View(), "Name ▼")
}

func TestYankRow(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	var got []byte
	m.writeClip = func(b []byte) error {
		got = b
		return nil
	}

	m = send(m, runes("y"))
	assert.Equal(t, "ID\tName\tAge\n1\tBob\t30\n", string(got))
	assert.Contains(t, m.statusMsg, "Copied row")

	m = send(m, runes("j"), runes("l"), runes("Y"))
	assert.Equal(t, "Amy", string(got))

	m.writeClip = func([]byte) error { return errors.New("no display") }
	m = send(m, runes("y"))
	assert.True(t, m.statusErr)
}

func TestViewRendering(t *testing.T) {
	tbl := peopleTable(t, 2, people())
	m := New(tbl, Options{Title: "people"})
	assert.Equal(t, "Loading...", m.View())

	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 12})
	out := m.View()
	assert.Contains(t, out, "people: 3/3 rows, 3 columns")
	assert.Contains(t, out, "paged: page 1/2")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "Cid")
}

func TestQuit(t *testing.T) {
	tbl := peopleTable(t, 25, people())
	m := sized(t, tbl, 5)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
