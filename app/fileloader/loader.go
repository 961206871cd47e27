package fileloader

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gridview/app/query"
)

// Dataset is a loaded file or directory: typed records plus the column
// metadata the query engine needs.
type Dataset struct {
	Path     string
	Hash     string // HighwayHash of the source bytes
	Header   []string
	Columns  []ColumnInfo
	Records  []query.Record
	Warnings []string

	snapshotKey string
}

// Schema builds a query schema with one fully enabled column per header
// entry, using the inferred filter kinds.
func (d *Dataset) Schema() (*query.Schema[query.Record], error) {
	cols := make([]query.Column[query.Record], len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = query.RecordColumn(c.Name, "", c.FilterKind)
	}
	return query.NewSchema(cols)
}

// Snapshot wraps the records under a key derived from the content hash and
// the parse options, so reloading unchanged data reuses memoized results.
func (d *Dataset) Snapshot() query.Snapshot[query.Record] {
	return query.NewKeyedSnapshot(d.snapshotKey, d.Records)
}

// Column returns the metadata of the named column
func (d *Dataset) Column(name string) (ColumnInfo, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// Load reads the file or directory at path. Directories are read with
// options.Pattern and merged into one dataset.
func Load(ctx context.Context, path string, options Options) (*Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is empty")
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var ds *Dataset
	if stat.IsDir() {
		ds, err = loadDirectory(ctx, path, options)
	} else {
		ds, err = loadFile(ctx, path, options)
	}
	if err != nil {
		return nil, err
	}

	logf(options, "info", "[LOAD] %s: %d rows, %d columns", path, len(ds.Records), len(ds.Header))
	for _, w := range ds.Warnings {
		logf(options, "warn", "[LOAD_WARNING] %s: %s", path, w)
	}
	return ds, nil
}

func loadFile(ctx context.Context, path string, options Options) (*Dataset, error) {
	table, hash, warning, err := readFile(ctx, path, options)
	if err != nil {
		return nil, err
	}
	var warnings []string
	if warning != "" {
		warnings = append(warnings, warning)
	}
	return buildDataset(path, hash, table, options, warnings)
}

// readFile reads, hashes, decompresses and parses one file
func readFile(ctx context.Context, path string, options Options) (rawTable, string, string, error) {
	if options.Converters != nil {
		if conv, ok := options.Converters.ConverterFor(path); ok {
			return readConverted(ctx, conv, path, options)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rawTable{}, "", "", err
	}
	hash, err := hashParts(data)
	if err != nil {
		return rawTable{}, "", "", err
	}

	fileType, compression := DetectFileTypeAndCompression(path)
	if compression == CompressionNone {
		compression = detectCompression(data)
	}
	decompressed, err := decompressData(data, compression)
	if err != nil {
		return rawTable{}, "", "", err
	}

	table, err := parseData(decompressed.Data, fileType, options)
	if err != nil {
		return rawTable{}, "", "", fmt.Errorf("failed to read %s as %s: %w", path, fileType, err)
	}
	return table, hash, decompressed.Warning, nil
}

// readConverted runs a converter and parses its output as CSV
func readConverted(ctx context.Context, conv Converter, path string, options Options) (rawTable, string, string, error) {
	logf(options, "debug", "[LOAD] converting %s with %s", path, conv.Name())
	data, err := conv.Convert(ctx, path)
	if err != nil {
		return rawTable{}, "", "", err
	}
	hash, err := hashParts([]byte(conv.Name()), data)
	if err != nil {
		return rawTable{}, "", "", err
	}
	table, err := readDelimited(data, ',', options)
	if err != nil {
		return rawTable{}, "", "", fmt.Errorf("%s returned invalid CSV for %s: %w", conv.Name(), path, err)
	}
	return table, hash, "", nil
}

func parseData(data []byte, fileType FileType, options Options) (rawTable, error) {
	switch fileType {
	case FileTypeTSV:
		return readDelimited(data, '\t', options)
	case FileTypeXLSX:
		return readXLSX(data, options)
	case FileTypeJSON:
		return readJSON(data, false, options)
	case FileTypeJSONL:
		return readJSON(data, true, options)
	default:
		return readDelimited(data, ',', options)
	}
}

// buildDataset infers column types and converts every row into a record
func buildDataset(path, hash string, table rawTable, options Options, warnings []string) (*Dataset, error) {
	if len(table.header) == 0 {
		return nil, fmt.Errorf("no columns found in %s", path)
	}
	loc := options.Location
	if loc == nil {
		loc = time.Local
	}
	options.Location = loc

	columns := make([]ColumnInfo, len(table.header))
	for i, name := range table.header {
		columns[i] = inferColumn(name, table.rows, i, options)
	}

	records := make([]query.Record, len(table.rows))
	for i, row := range table.rows {
		rec := make(query.Record, len(columns))
		for j, col := range columns {
			rec[col.Name] = convertCell(cellAt(row, j), col.Type, loc)
		}
		records[i] = rec
	}

	key, err := hashParts([]byte(hash), []byte(optionsFingerprint(options)))
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Path:        path,
		Hash:        hash,
		Header:      table.header,
		Columns:     columns,
		Records:     records,
		Warnings:    warnings,
		snapshotKey: key,
	}, nil
}

// optionsFingerprint covers every option that changes the records built
// from the same bytes.
func optionsFingerprint(options Options) string {
	return strings.Join([]string{
		strconv.FormatBool(options.NoHeaderRow),
		options.JPath,
		options.Pattern,
		strconv.Itoa(options.MaxFiles),
		strconv.FormatBool(options.IncludeSourceColumn),
		options.Location.String(),
		strconv.Itoa(options.SelectThreshold),
	}, "|")
}

func logf(options Options, level, format string, args ...any) {
	if options.Logger != nil {
		options.Logger.Log(level, fmt.Sprintf(format, args...))
	}
}
