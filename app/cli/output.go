package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/ohler55/ojg/oj"

	"gridview/app/query"
	"gridview/app/timestamps"
)

// Output formats of the query command
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

var (
	headerCellStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	borderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderer turns records into one of the output formats. Dates are rendered
// with the configured display pattern in the ingest zone.
type renderer struct {
	columns     []query.Column[query.Record]
	location    *time.Location
	datePattern string
}

func (r renderer) cell(v any) string {
	if t, ok := v.(time.Time); ok {
		return timestamps.Format(t, r.location, r.datePattern)
	}
	return query.Stringify(v)
}

func (r renderer) header() []string {
	out := make([]string, len(r.columns))
	for i, c := range r.columns {
		out[i] = c.Label
	}
	return out
}

func (r renderer) row(rec query.Record) []string {
	out := make([]string, len(r.columns))
	for i, c := range r.columns {
		out[i] = r.cell(c.Get(rec))
	}
	return out
}

func (r renderer) write(w io.Writer, format string, records []query.Record) error {
	switch format {
	case formatTable:
		return r.writeTable(w, records)
	case formatJSON:
		return r.writeJSON(w, records)
	case formatCSV:
		return r.writeCSV(w, records)
	default:
		return fmt.Errorf("unknown format %q, expected table, json or csv", format)
	}
}

func (r renderer) writeTable(w io.Writer, records []query.Record) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = r.row(rec)
	}
	return writeGrid(w, r.header(), rows)
}

// writeJSON writes an array of objects. Numbers, booleans and nulls keep
// their JSON types; dates become display strings.
func (r renderer) writeJSON(w io.Writer, records []query.Record) error {
	out := make([]any, len(records))
	for i, rec := range records {
		obj := make(map[string]any, len(r.columns))
		for _, c := range r.columns {
			v := c.Get(rec)
			if t, ok := v.(time.Time); ok {
				v = timestamps.Format(t, r.location, r.datePattern)
			}
			obj[c.Key] = v
		}
		out[i] = obj
	}
	b, err := oj.Marshal(out, &oj.Options{Indent: 2, Sort: true})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func (r renderer) writeCSV(w io.Writer, records []query.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.header()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(r.row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeGrid renders headers and rows as a bordered table.
func writeGrid(w io.Writer, headers []string, rows [][]string) error {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func normalizeFormat(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
