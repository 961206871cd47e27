package fileloader

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// textReader returns data as UTF-8. A UTF-8 or UTF-16 byte order mark
// selects the source encoding and is dropped; without one the data is
// read as UTF-8.
func textReader(data []byte) io.Reader {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(bytes.NewReader(data), decoder)
}

// decodeText is textReader for callers that need the whole buffer
func decodeText(data []byte) ([]byte, error) {
	return io.ReadAll(textReader(data))
}
