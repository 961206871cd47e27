package fileloader

import (
	"path/filepath"
	"strings"
)

// compressionExtensions maps compression extensions to their CompressionType
var compressionExtensions = map[string]CompressionType{
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
	".lz4": CompressionLZ4,
}

// DetectFileType determines the file type from the extension, ignoring any
// compression suffix. Unknown extensions read as CSV.
func DetectFileType(filePath string) FileType {
	if filePath == "" {
		return FileTypeUnknown
	}
	return detectFileTypeFromPath(stripCompressionExt(strings.ToLower(filePath)))
}

// DetectFileTypeAndCompression determines both the file type and compression type.
// It first checks for double extensions (e.g., .csv.gz) and falls back to magic byte
// detection if no compression extension is found but the file might be compressed.
func DetectFileTypeAndCompression(filePath string) (FileType, CompressionType) {
	if filePath == "" {
		return FileTypeUnknown, CompressionNone
	}

	lower := strings.ToLower(filePath)
	compressionType := CompressionNone
	innerPath := lower

	for ext, ct := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			compressionType = ct
			innerPath = strings.TrimSuffix(lower, ext)
			break
		}
	}

	if compressionType == CompressionNone {
		if magicType, err := DetectCompressionByMagic(filePath); err == nil && magicType != CompressionNone {
			compressionType = magicType
		}
	}

	return detectFileTypeFromPath(innerPath), compressionType
}

// detectFileTypeFromPath determines file type from a path (without compression extension)
func detectFileTypeFromPath(path string) FileType {
	switch filepath.Ext(path) {
	case ".tsv", ".tab":
		return FileTypeTSV
	case ".xlsx":
		return FileTypeXLSX
	case ".json":
		return FileTypeJSON
	case ".jsonl", ".ndjson":
		return FileTypeJSONL
	default:
		return FileTypeCSV
	}
}

func stripCompressionExt(lower string) string {
	for ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			return strings.TrimSuffix(lower, ext)
		}
	}
	return lower
}

// GetUncompressedExtension returns the file extension without compression suffix
// e.g., "data.csv.gz" -> ".csv", "data.json.bz2" -> ".json"
func GetUncompressedExtension(filePath string) string {
	return filepath.Ext(stripCompressionExt(strings.ToLower(filePath)))
}
