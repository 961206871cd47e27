package query

import "strings"

// Record is the row shape produced by the file loader: field name -> cell value.
// Cell values are nil, string, any Go integer or float type, bool or time.Time.
// The engine itself is generic over the record type and only reaches into a
// record through Column.Get.
type Record map[string]any

// Field returns a getter reading key from a Record.
func Field(key string) func(Record) any {
	return func(r Record) any {
		return r[key]
	}
}

// FilterKind describes which filter control a column offers.
type FilterKind int

const (
	FilterText FilterKind = iota
	FilterSelect
	FilterNumber
	FilterDate
)

// String returns the string representation of FilterKind
func (k FilterKind) String() string {
	switch k {
	case FilterSelect:
		return "select"
	case FilterNumber:
		return "number"
	case FilterDate:
		return "date"
	default:
		return "text"
	}
}

// ParseFilterKind maps a name back to a FilterKind. Unknown names are text.
func ParseFilterKind(s string) FilterKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "select":
		return FilterSelect
	case "number":
		return FilterNumber
	case "date":
		return FilterDate
	default:
		return FilterText
	}
}

// Column describes one field of a record for display, sorting, filtering and
// search. Get is the only way the engine reads a field.
type Column[R any] struct {
	Key        string
	Label      string
	Sortable   bool
	Filterable bool
	Searchable bool
	FilterKind FilterKind
	Get        func(R) any
}

// RecordColumn builds a fully enabled column over Record values.
func RecordColumn(key, label string, kind FilterKind) Column[Record] {
	if label == "" {
		label = key
	}
	return Column[Record]{
		Key:        key,
		Label:      label,
		Sortable:   true,
		Filterable: true,
		Searchable: true,
		FilterKind: kind,
		Get:        Field(key),
	}
}

// Operator is the matching rule of a filter condition.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "startsWith"
	OpEndsWith    Operator = "endsWith"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpIn          Operator = "in"
	OpBetween     Operator = "between"
)

// Operators lists every supported operator.
var Operators = []Operator{
	OpEquals, OpContains, OpStartsWith, OpEndsWith,
	OpGreaterThan, OpLessThan, OpIn, OpBetween,
}

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// DefaultOperator picks the operator a filter control of the given kind uses
// when the caller does not name one.
func DefaultOperator(kind FilterKind) Operator {
	switch kind {
	case FilterText:
		return OpContains
	default:
		return OpEquals
	}
}

// FilterCondition is one named filter: field, operator and operand.
type FilterCondition struct {
	Field    string
	Operator Operator
	Operand  any
}

// Active reports whether the condition takes part in filtering. Conditions
// with an empty operand never remove records.
func (c FilterCondition) Active() bool {
	return !IsEmptyOperand(c.Operand)
}

// SortDirection represents sort order
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

// String returns the string representation of SortDirection
func (d SortDirection) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}

// ParseSortDirection accepts asc/ascending and desc/descending.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return SortAsc, true
	case "desc", "descending":
		return SortDesc, true
	default:
		return SortAsc, false
	}
}

// CacheConfig controls memoization of pipeline results
type CacheConfig struct {
	EnablePipelineCache bool // Memoize full pipeline results
	EnableStageCache    bool // Memoize search and search+filter prefixes
	MaxEntries          int  // Upper bound on cached results
}

// DefaultCacheConfig keeps exactly one full result: one-step memoization.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		EnablePipelineCache: true,
		EnableStageCache:    false,
		MaxEntries:          1,
	}
}

// CacheConfigFromSettings creates cache config based on user settings
func CacheConfigFromSettings(enableCache, enableStageCache bool, maxEntries int) CacheConfig {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return CacheConfig{
		EnablePipelineCache: enableCache,
		EnableStageCache:    enableCache && enableStageCache,
		MaxEntries:          maxEntries,
	}
}
