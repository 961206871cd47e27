// Package fileloader reads CSV, TSV, XLSX, JSON and JSON Lines files, plain
// or compressed, into typed records for the query engine. A directory loads
// as one dataset whose header is the union of its files' headers.
package fileloader

import (
	"context"
	"time"

	"gridview/app/cache"
)

// FileType represents the type of data file being processed
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeTSV
	FileTypeXLSX
	FileTypeJSON
	FileTypeJSONL
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeTSV:
		return "TSV"
	case FileTypeXLSX:
		return "XLSX"
	case FileTypeJSON:
		return "JSON"
	case FileTypeJSONL:
		return "JSONL"
	default:
		return "Unknown"
	}
}

// SourceColumn names the column that records which file of a directory a
// row came from.
const SourceColumn = "__source_file__"

// Options controls how files are parsed
type Options struct {
	NoHeaderRow bool   // First row is data; headers become unnamed_a, unnamed_b, ...
	JPath       string // JSONPath selecting the row array of a JSON document

	// Directory mode
	Pattern             string // Glob relative to the directory, e.g. "**/*.csv"
	MaxFiles            int    // 0 = unlimited
	IncludeSourceColumn bool

	// Type inference
	Location        *time.Location // Zone for dates without an offset; time.Local when nil
	SelectThreshold int            // Text columns with at most this many distinct values filter as select; 0 disables

	// Converters are consulted before the built-in readers; nil disables them
	Converters ConverterSet

	Logger cache.Logger
}

// Converter turns a file into CSV bytes with a header row.
type Converter interface {
	Name() string
	Convert(ctx context.Context, path string) ([]byte, error)
}

// ConverterSet picks the converter registered for a file, if any.
type ConverterSet interface {
	ConverterFor(path string) (Converter, bool)
}

// DefaultOptions returns the default parsing options
func DefaultOptions() Options {
	return Options{
		Pattern:         "**/*",
		MaxFiles:        500,
		SelectThreshold: 12,
	}
}

// rawTable is a parsed file before type inference: a header and string cells.
type rawTable struct {
	header []string
	rows   [][]string
}
