package tui

import (
	"fmt"
	"strings"
	"sync"

	clipboard "golang.design/x/clipboard"
)

// Maximum clipboard size in bytes (10MB), avoids X11 BadLength errors on Linux
const maxClipboardSize = 10 * 1024 * 1024

var (
	clipOnce sync.Once
	clipErr  error
)

// writeClipboard puts text on the system clipboard. The clipboard is
// initialised on first use; writes recover from panics in the platform layer.
func writeClipboard(data []byte) (err error) {
	if len(data) > maxClipboardSize {
		return fmt.Errorf("data too large for clipboard (%d bytes, max %d bytes)", len(data), maxClipboardSize)
	}

	clipOnce.Do(func() {
		clipErr = clipboard.Init()
	})
	if clipErr != nil {
		return fmt.Errorf("clipboard not available: %w", clipErr)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard write failed: %v", r)
		}
	}()

	clipboard.Write(clipboard.FmtText, data)
	return nil
}

func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// tsvLines renders a header line followed by one line per row, tab separated.
func tsvLines(header []string, rows [][]string) string {
	var b strings.Builder
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(sanitizeCell(c))
		}
		b.WriteByte('\n')
	}
	writeLine(header)
	for _, row := range rows {
		writeLine(row)
	}
	return b.String()
}
