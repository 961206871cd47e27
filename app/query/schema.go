package query

import (
	"fmt"
	"strings"
)

// Schema is the immutable column set of one table.
type Schema[R any] struct {
	columns []Column[R]
	index   map[string]int
}

// NewSchema validates and indexes columns. Keys must be non-empty and unique
// and every column needs a getter.
func NewSchema[R any](columns []Column[R]) (*Schema[R], error) {
	if len(columns) == 0 {
		return nil, &ConfigurationError{Message: "schema has no columns"}
	}

	cols := make([]Column[R], len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, col := range cols {
		if strings.TrimSpace(col.Key) == "" {
			return nil, &ConfigurationError{Message: fmt.Sprintf("column %d has an empty key", i)}
		}
		if col.Get == nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("column %q has no getter", col.Key)}
		}
		if _, dup := index[col.Key]; dup {
			return nil, &ConfigurationError{Message: fmt.Sprintf("duplicate column key %q", col.Key)}
		}
		if cols[i].Label == "" {
			cols[i].Label = col.Key
		}
		index[col.Key] = i
	}

	return &Schema[R]{columns: cols, index: index}, nil
}

// Columns returns a copy of the columns in declaration order
func (s *Schema[R]) Columns() []Column[R] {
	cols := make([]Column[R], len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Len returns the number of columns
func (s *Schema[R]) Len() int {
	return len(s.columns)
}

// Column looks up a column by key
func (s *Schema[R]) Column(key string) (Column[R], bool) {
	i, ok := s.index[key]
	if !ok {
		return Column[R]{}, false
	}
	return s.columns[i], true
}

// Searchable returns the columns taking part in search
func (s *Schema[R]) Searchable() []Column[R] {
	var cols []Column[R]
	for _, col := range s.columns {
		if col.Searchable {
			cols = append(cols, col)
		}
	}
	return cols
}

// CheckFilterable returns an InvalidColumnError unless field names a
// filterable column.
func (s *Schema[R]) CheckFilterable(field string) error {
	col, ok := s.Column(field)
	if !ok {
		return &InvalidColumnError{Field: field, Reason: "no such column"}
	}
	if !col.Filterable {
		return &InvalidColumnError{Field: field, Reason: "column is not filterable"}
	}
	return nil
}

// CheckSortable returns an InvalidColumnError unless field names a sortable
// column.
func (s *Schema[R]) CheckSortable(field string) error {
	col, ok := s.Column(field)
	if !ok {
		return &InvalidColumnError{Field: field, Reason: "no such column"}
	}
	if !col.Sortable {
		return &InvalidColumnError{Field: field, Reason: "column is not sortable"}
	}
	return nil
}

// Validate checks every filter field and the sort field of state.
func (s *Schema[R]) Validate(state QueryState) error {
	for _, cond := range state.Filters {
		if err := s.CheckFilterable(cond.Field); err != nil {
			return err
		}
	}
	if state.SortField != "" {
		if err := s.CheckSortable(state.SortField); err != nil {
			return err
		}
	}
	return nil
}
