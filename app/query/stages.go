package query

import (
	"fmt"
	"strconv"
)

// PipelineStage represents a single stage in the query pipeline
type PipelineStage[R any] interface {
	// Execute processes the input records and returns the stage output.
	// The input slice must not be modified.
	Execute(input []R) ([]R, error)

	// CanCache returns true if this stage's results can be cached
	CanCache() bool

	// CacheKey returns a unique key for caching this stage's results
	CacheKey() string

	// Name returns the stage name for logging and cache stats
	Name() string
}

// SearchStage keeps records matching a free-text term
type SearchStage[R any] struct {
	term   string
	schema *Schema[R]
}

// NewSearchStage creates a new search stage
func NewSearchStage[R any](term string, schema *Schema[R]) *SearchStage[R] {
	return &SearchStage[R]{term: term, schema: schema}
}

// Execute runs the search matcher
func (s *SearchStage[R]) Execute(input []R) ([]R, error) {
	return Search(input, s.term, s.schema), nil
}

// CanCache returns true if this stage can be cached
func (s *SearchStage[R]) CanCache() bool {
	return true
}

// CacheKey returns a unique key for caching
func (s *SearchStage[R]) CacheKey() string {
	return strconv.Quote(s.term)
}

// Name returns the stage name
func (s *SearchStage[R]) Name() string {
	return "search"
}

// FilterStage keeps records satisfying every active condition
type FilterStage[R any] struct {
	conditions []FilterCondition
	schema     *Schema[R]
}

// NewFilterStage creates a new filter stage
func NewFilterStage[R any](conditions []FilterCondition, schema *Schema[R]) *FilterStage[R] {
	conds := make([]FilterCondition, len(conditions))
	copy(conds, conditions)
	return &FilterStage[R]{conditions: conds, schema: schema}
}

// Execute applies the filter set
func (f *FilterStage[R]) Execute(input []R) ([]R, error) {
	for _, cond := range f.conditions {
		if !cond.Active() {
			continue
		}
		if err := f.schema.CheckFilterable(cond.Field); err != nil {
			return nil, err
		}
	}
	return ApplyFilters(input, f.conditions, f.schema), nil
}

// CanCache returns true if this stage can be cached
func (f *FilterStage[R]) CanCache() bool {
	return true
}

// CacheKey returns a unique key for caching
func (f *FilterStage[R]) CacheKey() string {
	return filtersKey(f.conditions)
}

// Name returns the stage name
func (f *FilterStage[R]) Name() string {
	return "filter"
}

// SortStage orders records by one column. An empty field leaves the input
// order untouched.
type SortStage[R any] struct {
	field     string
	direction SortDirection
	schema    *Schema[R]
}

// NewSortStage creates a new sort stage
func NewSortStage[R any](field string, direction SortDirection, schema *Schema[R]) *SortStage[R] {
	return &SortStage[R]{field: field, direction: direction, schema: schema}
}

// Execute sorts the input
func (s *SortStage[R]) Execute(input []R) ([]R, error) {
	if s.field == "" {
		return input, nil
	}
	if err := s.schema.CheckSortable(s.field); err != nil {
		return nil, err
	}
	col, _ := s.schema.Column(s.field)
	return SortRecords(input, col, s.direction), nil
}

// CanCache returns true if this stage can be cached
func (s *SortStage[R]) CanCache() bool {
	return true
}

// CacheKey returns a unique key for caching
func (s *SortStage[R]) CacheKey() string {
	if s.field == "" {
		return "none"
	}
	return fmt.Sprintf("%s:%s", strconv.Quote(s.field), s.direction)
}

// Name returns the stage name
func (s *SortStage[R]) Name() string {
	return "sort"
}

// StagesFor builds the search, filter and sort stages for state, in that order.
func StagesFor[R any](schema *Schema[R], state QueryState) []PipelineStage[R] {
	return []PipelineStage[R]{
		NewSearchStage(state.SearchTerm, schema),
		NewFilterStage(state.Filters, schema),
		NewSortStage(state.SortField, state.SortDirection, schema),
	}
}
