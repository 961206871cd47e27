package fileloader

import (
	"fmt"
	"sort"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// selectRows returns the array of rows in data. A JSONPath expression picks
// it out of the document; without one the document must be the array, or a
// single object read as one row.
func selectRows(data any, expression string) ([]any, error) {
	if expression == "" {
		switch v := data.(type) {
		case []any:
			return v, nil
		case map[string]any:
			return []any{v}, nil
		default:
			return nil, fmt.Errorf("JSON document must be an array or an object, got %T", data)
		}
	}

	x, err := jp.ParseString(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression: %w", err)
	}

	results := x.Get(data)
	if len(results) == 0 {
		return nil, fmt.Errorf("JSONPath expression returned no results")
	}

	arr, ok := results[0].([]any)
	if !ok {
		if objMap, isMap := results[0].(map[string]any); isMap {
			keys := make([]string, 0, len(objMap))
			for key := range objMap {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("JSONPath expression must return an array, got an object with keys %v", keys)
		}
		return nil, fmt.Errorf("JSONPath expression must return an array, got %T", results[0])
	}
	return arr, nil
}

// ApplyJSONPath applies a JSONPath expression to JSON data and returns the
// rows with the header first. The expression should return either:
// - An array of objects: the union of their keys becomes the header
// - An array of arrays: the first array is the header row
func ApplyJSONPath(data any, expression string) ([][]string, error) {
	if expression == "" {
		return nil, fmt.Errorf("JSONPath expression is empty")
	}
	arr, err := selectRows(data, expression)
	if err != nil {
		return nil, err
	}
	table, err := tableFromArray(arr, false)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(table.rows)+1)
	rows = append(rows, table.header)
	return append(rows, table.rows...), nil
}

// tableFromArray converts an array of objects or an array of arrays into a
// raw table. Nested objects are flattened one level into "parent.child"
// columns; anything deeper is kept as compact JSON.
func tableFromArray(arr []any, noHeader bool) (rawTable, error) {
	if len(arr) == 0 {
		return rawTable{}, fmt.Errorf("JSON array is empty")
	}

	switch arr[0].(type) {
	case map[string]any:
		return tableFromObjects(arr), nil
	case []any:
		rows := make([][]string, 0, len(arr))
		for _, item := range arr {
			itemArr, ok := item.([]any)
			if !ok {
				continue // Skip non-array items
			}
			row := make([]string, len(itemArr))
			for i, val := range itemArr {
				row[i] = valueToString(val)
			}
			rows = append(rows, row)
		}
		return splitHeader(rows, noHeader), nil
	default:
		return rawTable{}, fmt.Errorf("JSON rows must be objects or arrays, got %T", arr[0])
	}
}

func tableFromObjects(arr []any) rawTable {
	headerIndex := make(map[string]int)
	var headers []string
	var flatRows []map[string]string

	for _, item := range arr {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue // Skip non-object items
		}
		flat := flattenObject(itemMap)
		for key := range flat {
			if _, seen := headerIndex[key]; !seen {
				headerIndex[key] = len(headers)
				headers = append(headers, key)
			}
		}
		flatRows = append(flatRows, flat)
	}

	// Sort headers alphabetically for consistent ordering
	sort.Strings(headers)

	rows := make([][]string, len(flatRows))
	for i, flat := range flatRows {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = flat[h]
		}
		rows[i] = row
	}
	return rawTable{header: NormalizeHeaders(headers), rows: rows}
}

func flattenObject(obj map[string]any) map[string]string {
	flat := make(map[string]string, len(obj))
	for key, value := range obj {
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			for sub, subValue := range nested {
				flat[key+"."+sub] = valueToString(subValue)
			}
			continue
		}
		flat[key] = valueToString(value)
	}
	return flat
}

// valueToString converts a value to a string representation.
// If the value is a map or slice, it JSON-stringifies it.
// Otherwise, it converts it to a string using fmt.Sprintf.
func valueToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		jsonBytes, err := oj.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	default:
		return fmt.Sprintf("%v", val)
	}
}
