package fileloader

import (
	"strconv"
	"strings"
)

// excelColumnName converts a 0-based index to Excel-style column name.
// Examples: 0 -> a, 1 -> b, 25 -> z, 26 -> aa, 27 -> ab, 701 -> zz, 702 -> aaa
func excelColumnName(index int) string {
	result := ""
	index++ // Convert to 1-based for the algorithm

	for index > 0 {
		index-- // Adjust for 0-based letter indexing
		result = string(rune('a'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders trims header names, replaces empty ones with unnamed_a,
// unnamed_b, ... and makes repeated names unique by appending _2, _3, ...
//
// Example:
//
//	Input:  ["name", "", "age", "  ", "name"]
//	Output: ["name", "unnamed_a", "age", "unnamed_b", "name_2"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	emptyCount := 0

	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			normalized[i] = "unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		} else {
			normalized[i] = h
		}
	}

	return dedupeHeaders(normalized)
}

func dedupeHeaders(header []string) []string {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	counts := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		counts[h]++
		if counts[h] == 1 {
			out[i] = h
			continue
		}
		n := counts[h]
		candidate := h + "_" + strconv.Itoa(n)
		for seen[candidate] {
			n++
			candidate = h + "_" + strconv.Itoa(n)
		}
		seen[candidate] = true
		counts[h] = n
		out[i] = candidate
	}
	return out
}

// syntheticHeader names width columns unnamed_a, unnamed_b, ...
func syntheticHeader(width int) []string {
	return NormalizeHeaders(make([]string, width))
}

// splitHeader turns the first row into the header unless noHeader is set,
// in which case every row is data.
func splitHeader(rows [][]string, noHeader bool) rawTable {
	if len(rows) == 0 {
		return rawTable{}
	}
	if noHeader {
		width := 0
		for _, r := range rows {
			width = max(width, len(r))
		}
		return rawTable{header: syntheticHeader(width), rows: rows}
	}
	return rawTable{header: NormalizeHeaders(rows[0]), rows: rows[1:]}
}
