package fileloader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gridview/app/query"
	"gridview/app/timestamps"
)

// ColumnType is the inferred value type of a column
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeNumber
	TypeBool
	TypeDate
)

// String returns the string representation of ColumnType
func (t ColumnType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeDate:
		return "date"
	default:
		return "text"
	}
}

// ColumnInfo describes one loaded column
type ColumnInfo struct {
	Name       string
	Type       ColumnType
	FilterKind query.FilterKind
	Distinct   int // Distinct non-empty values, capped at the select threshold + 1
	Empty      int // Empty cells
}

// inferColumn picks the narrowest type every non-empty cell parses as:
// number, then boolean, then date, else text. A column with no values is text.
func inferColumn(name string, rows [][]string, idx int, options Options) ColumnInfo {
	info := ColumnInfo{Name: name}
	isNumber, isBool, isDate := true, true, true
	nonEmpty := 0
	limit := options.SelectThreshold + 1
	distinct := make(map[string]struct{})

	for _, row := range rows {
		cell := cellAt(row, idx)
		if cell == "" {
			info.Empty++
			continue
		}
		nonEmpty++
		if len(distinct) < limit {
			distinct[cell] = struct{}{}
		}
		if isNumber {
			if _, ok := parseNumber(cell); !ok {
				isNumber = false
			}
		}
		if isBool {
			if _, ok := parseBool(cell); !ok {
				isBool = false
			}
		}
		if isDate && !isNumber {
			if _, ok := timestamps.ParseDate(cell, options.Location); !ok {
				isDate = false
			}
		}
	}
	info.Distinct = len(distinct)

	switch {
	case nonEmpty == 0:
		info.Type = TypeText
	case isNumber:
		info.Type = TypeNumber
	case isBool:
		info.Type = TypeBool
	case isDate:
		info.Type = TypeDate
	default:
		info.Type = TypeText
	}
	// Epoch numbers under a time-like header are dates.
	if info.Type == TypeNumber && timestamps.IsTimestampHeader(name) && allEpochs(rows, idx) {
		info.Type = TypeDate
	}
	info.FilterKind = filterKindFor(info, nonEmpty, options.SelectThreshold)
	return info
}

func filterKindFor(info ColumnInfo, nonEmpty, threshold int) query.FilterKind {
	switch info.Type {
	case TypeNumber:
		return query.FilterNumber
	case TypeDate:
		return query.FilterDate
	case TypeBool:
		return query.FilterSelect
	}
	// A select needs repeated values; a column of unique labels stays text.
	if threshold > 0 && info.Distinct > 0 && info.Distinct <= threshold && info.Distinct < nonEmpty {
		return query.FilterSelect
	}
	return query.FilterText
}

// convertCell turns a cell into the typed value of its column. Empty cells
// become nil; cells that fail to convert stay strings.
func convertCell(cell string, typ ColumnType, loc *time.Location) any {
	if cell == "" {
		return nil
	}
	switch typ {
	case TypeNumber:
		if n, ok := parseNumber(cell); ok {
			return n
		}
	case TypeBool:
		if b, ok := parseBool(cell); ok {
			return b
		}
	case TypeDate:
		if t, ok := timestamps.Parse(cell, loc); ok {
			return t
		}
	}
	return cell
}

// parseNumber prefers int64 and falls back to float64. Values with leading
// zeros such as zip codes are not numbers.
func parseNumber(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if hasLeadingZero(trimmed) {
		return nil, false
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	default:
		return false, false
	}
}

// minEpochSeconds is 2001-09-09; smaller integers are unlikely epochs.
const minEpochSeconds = 1_000_000_000

func allEpochs(rows [][]string, idx int) bool {
	for _, row := range rows {
		cell := cellAt(row, idx)
		if cell == "" {
			continue
		}
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil || n < minEpochSeconds {
			return false
		}
	}
	return true
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
