package timestamps

import (
	"strings"
)

var (
	exactTimestampNames    = []string{"@timestamp", "timestamp", "time"}
	containsTimestampNames = []string{"@timestamp", "timestamp", "datetime", "date", "time"}
)

// DetectTimestampIndex attempts to find the most likely timestamp column.
// Preference order:
// 1) Exact name: "@timestamp", "timestamp", "time"
// 2) Contains: "@timestamp", "timestamp", "datetime", "date", "time", or a
//    "ts" word such as "ts", "event_ts" or "ts_utc"
// Returns -1 if no timestamp column is detected.
func DetectTimestampIndex(header []string) int {
	if len(header) == 0 {
		return -1
	}
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, ex := range exactTimestampNames {
		for i, h := range lower {
			if h == ex {
				return i
			}
		}
	}
	for _, key := range containsTimestampNames {
		for i, h := range lower {
			if strings.Contains(h, key) {
				return i
			}
		}
	}
	for i, h := range lower {
		if isTSWord(h) {
			return i
		}
	}
	return -1
}

// isTSWord matches "ts" as a whole name or an underscore-separated part, so
// that "counts" or "points" do not.
func isTSWord(h string) bool {
	return h == "ts" || strings.HasSuffix(h, "_ts") || strings.HasPrefix(h, "ts_")
}

// IsTimestampHeader reports whether a column name suggests it holds
// timestamps, using the same name heuristics as DetectTimestampIndex.
func IsTimestampHeader(name string) bool {
	h := strings.ToLower(strings.TrimSpace(name))
	if h == "" {
		return false
	}
	for _, key := range containsTimestampNames {
		if strings.Contains(h, key) {
			return true
		}
	}
	return isTSWord(h)
}
