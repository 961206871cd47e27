package fileloader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression format of a file
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
	CompressionLZ4
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// Magic byte signatures for compression detection
var (
	// Gzip magic bytes: 1f 8b
	gzipMagic = []byte{0x1f, 0x8b}
	// Bzip2 magic bytes: 42 5a 68 ("BZh")
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	// XZ magic bytes: fd 37 7a 58 5a 00
	xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	// LZ4 frame magic bytes: 04 22 4d 18
	lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DecompressionResult contains the decompressed data and any warning
type DecompressionResult struct {
	Data    []byte
	Warning string // Non-empty if decompression was incomplete
}

// DetectCompressionByMagic reads the first few bytes of a file and detects compression type
func DetectCompressionByMagic(filePath string) (CompressionType, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return CompressionNone, err
	}
	defer f.Close()

	// XZ has the longest magic (6 bytes)
	header := make([]byte, 6)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return CompressionNone, err
	}
	return detectCompression(header[:n]), nil
}

func detectCompression(header []byte) CompressionType {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(header, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// DecompressFile reads a compressed file and returns the decompressed data.
// If decompression fails mid-stream, it returns partial data with a warning message.
func DecompressFile(filePath string, compressionType CompressionType) (*DecompressionResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return decompressData(data, compressionType)
}

// decompressData inflates data in memory. Partial output with a warning is
// returned when the stream breaks after producing some bytes.
func decompressData(data []byte, compressionType CompressionType) (*DecompressionResult, error) {
	if compressionType == CompressionNone {
		return &DecompressionResult{Data: data}, nil
	}

	var reader io.Reader
	src := bytes.NewReader(data)

	switch compressionType {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader

	case CompressionBzip2:
		reader = bzip2.NewReader(src)

	case CompressionXZ:
		xzReader, err := xz.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xzReader

	case CompressionLZ4:
		reader = lz4.NewReader(src)

	default:
		return nil, fmt.Errorf("unsupported compression type: %v", compressionType)
	}

	var buf bytes.Buffer
	_, decompressErr := io.Copy(&buf, reader)

	result := &DecompressionResult{Data: buf.Bytes()}
	if decompressErr != nil {
		if len(result.Data) == 0 {
			return nil, fmt.Errorf("decompression failed: %w", decompressErr)
		}
		result.Warning = fmt.Sprintf("Decompression incomplete: %v. Some data may be missing.", decompressErr)
	}
	return result, nil
}
