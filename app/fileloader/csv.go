package fileloader

import (
	"encoding/csv"
	"fmt"
	"io"
)

// readDelimited parses CSV or TSV data after BOM/UTF-16 decoding. Rows may
// have differing widths; short rows read as empty cells later on.
func readDelimited(data []byte, delimiter rune, options Options) (rawTable, error) {
	if len(data) == 0 {
		return rawTable{}, fmt.Errorf("data is empty")
	}

	reader := csv.NewReader(textReader(data))
	reader.Comma = delimiter
	// Allow variable number of fields per record to handle corrupted CSV files
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if rec == nil {
				return rawTable{}, fmt.Errorf("failed to parse row %d: %w", len(rows)+1, err)
			}
		}
		rows = append(rows, rec)
	}

	if len(rows) == 0 {
		return rawTable{}, fmt.Errorf("no rows found")
	}
	return splitHeader(rows, options.NoHeaderRow), nil
}
