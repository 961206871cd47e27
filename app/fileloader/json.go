package fileloader

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// parseJSONData parses JSON data from bytes.
// It supports both standard JSON and JSON streaming format (including JSON
// Lines): several objects or arrays separated by whitespace become one array.
func parseJSONData(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	// First try to parse as standard JSON
	jsonData, err := oj.Parse(data)
	if err == nil {
		return jsonData, nil
	}

	objects, streamErr := parseJSONStream(data)
	if streamErr != nil || len(objects) == 0 {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return objects, nil
}

// parseJSONStream extracts multiple JSON values from a byte stream.
// It handles objects and arrays that may span multiple lines or appear multiple times per line.
func parseJSONStream(data []byte) ([]any, error) {
	var objects []any
	str := string(data)
	pos := 0

	for pos < len(str) {
		for pos < len(str) && isExprSpace(str[pos]) {
			pos++
		}
		if pos >= len(str) {
			break
		}

		if str[pos] != '{' && str[pos] != '[' {
			return nil, fmt.Errorf("expected { or [ at position %d", pos)
		}

		start := pos
		end, err := findJSONValueEnd(str, pos)
		if err != nil {
			return nil, err
		}

		obj, err := oj.ParseString(str[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON at position %d: %w", start, err)
		}
		objects = append(objects, obj)
		pos = end
	}

	return objects, nil
}

func isExprSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// findJSONValueEnd finds the end position of a JSON value (object or array) starting at pos.
// It properly handles nested objects/arrays and strings with escape sequences.
func findJSONValueEnd(str string, pos int) (int, error) {
	var stack []byte
	inString := false
	escaped := false

	for i := pos; i < len(str); i++ {
		ch := str[i]

		if escaped {
			escaped = false
			continue
		}

		if inString {
			if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			open := byte('{')
			if ch == ']' {
				open = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return 0, fmt.Errorf("unmatched %c at position %d", ch, i)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, nil
			}
		}
	}

	return 0, fmt.Errorf("unclosed JSON value")
}

// readJSON parses a JSON document or JSON Lines stream into a raw table.
// Without a JSONPath the document itself must be an array of rows, or a
// single object that becomes one row.
func readJSON(data []byte, lines bool, options Options) (rawTable, error) {
	text, err := decodeText(data)
	if err != nil {
		return rawTable{}, err
	}

	var jsonData any
	if lines {
		var objects []any
		objects, err = parseJSONStream(text)
		if err == nil && len(objects) == 0 {
			err = fmt.Errorf("no JSON values found")
		}
		jsonData = objects
	} else {
		jsonData, err = parseJSONData(text)
	}
	if err != nil {
		return rawTable{}, err
	}

	arr, err := selectRows(jsonData, options.JPath)
	if err != nil {
		return rawTable{}, err
	}
	return tableFromArray(arr, options.NoHeaderRow)
}
