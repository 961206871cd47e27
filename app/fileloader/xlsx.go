package fileloader

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an XLSX workbook held in memory
func readXLSX(data []byte, options Options) (rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return rawTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	// Get the first sheet name
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return rawTable{}, fmt.Errorf("no sheets found in XLSX file")
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return rawTable{}, err
	}
	if len(rows) == 0 {
		return rawTable{}, fmt.Errorf("no rows found in XLSX file")
	}

	return splitHeader(rows, options.NoHeaderRow), nil
}
