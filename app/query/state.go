package query

// QueryState is the caller-owned query of one table. It is a value: every
// With* helper returns a new state and leaves the receiver untouched.
type QueryState struct {
	SearchTerm    string
	Filters       []FilterCondition
	SortField     string // empty means unsorted
	SortDirection SortDirection
	Page          int
}

// NewQueryState returns the state a table starts with.
func NewQueryState() QueryState {
	return QueryState{
		SearchTerm:    "",
		Filters:       []FilterCondition{},
		SortField:     "",
		SortDirection: SortAsc,
		Page:          1,
	}
}

func (s QueryState) cloneFilters() []FilterCondition {
	filters := make([]FilterCondition, len(s.Filters))
	copy(filters, s.Filters)
	return filters
}

// WithSearchTerm replaces the search term.
func (s QueryState) WithSearchTerm(term string) QueryState {
	s.Filters = s.cloneFilters()
	s.SearchTerm = term
	return s
}

// WithFilter sets the condition for cond.Field, replacing any existing one in
// place. An empty operand removes the field's condition instead.
func (s QueryState) WithFilter(cond FilterCondition) QueryState {
	if !cond.Active() {
		return s.WithoutFilter(cond.Field)
	}

	filters := s.cloneFilters()
	replaced := false
	for i := range filters {
		if filters[i].Field == cond.Field {
			filters[i] = cond
			replaced = true
			break
		}
	}
	if !replaced {
		filters = append(filters, cond)
	}
	s.Filters = filters
	return s
}

// WithoutFilter drops the condition on field, if any.
func (s QueryState) WithoutFilter(field string) QueryState {
	filters := make([]FilterCondition, 0, len(s.Filters))
	for _, f := range s.Filters {
		if f.Field != field {
			filters = append(filters, f)
		}
	}
	s.Filters = filters
	return s
}

// WithoutFilters drops every condition.
func (s QueryState) WithoutFilters() QueryState {
	s.Filters = []FilterCondition{}
	return s
}

// Filter returns the condition on field, if any.
func (s QueryState) Filter(field string) (FilterCondition, bool) {
	for _, f := range s.Filters {
		if f.Field == field {
			return f, true
		}
	}
	return FilterCondition{}, false
}

// WithSort sorts by field in direction. An empty field clears sorting.
func (s QueryState) WithSort(field string, dir SortDirection) QueryState {
	s.Filters = s.cloneFilters()
	s.SortField = field
	s.SortDirection = dir
	if field == "" {
		s.SortDirection = SortAsc
	}
	return s
}

// ToggleSort sorts ascending by a new field, or flips the direction when
// field is already the sort field.
func (s QueryState) ToggleSort(field string) QueryState {
	if s.SortField == field && field != "" {
		if s.SortDirection == SortAsc {
			return s.WithSort(field, SortDesc)
		}
		return s.WithSort(field, SortAsc)
	}
	return s.WithSort(field, SortAsc)
}

// WithPage replaces the page number. Clamping is the caller's business.
func (s QueryState) WithPage(page int) QueryState {
	s.Filters = s.cloneFilters()
	s.Page = page
	return s
}

// SameQuery reports whether a and b select and order the same records,
// ignoring the page.
func SameQuery(a, b QueryState) bool {
	if a.SearchTerm != b.SearchTerm || a.SortField != b.SortField {
		return false
	}
	if a.SortField != "" && a.SortDirection != b.SortDirection {
		return false
	}
	return filtersKey(a.Filters) == filtersKey(b.Filters)
}
