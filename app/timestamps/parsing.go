package timestamps

import (
	"strconv"
	"strings"
	"time"
)

// Layouts carrying their own zone, tried first.
var zonedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.000 MST",
	"2006-01-02T15:04:05.00 MST",
	"2006-01-02T15:04:05.0 MST",
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05.00 MST",
	"2006-01-02 15:04:05.0 MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05Z",
	"2006-01-02T15:04:05Z",
}

// Layouts interpreted in the ingest location.
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05.00",
	"2006-01-02T15:04:05.0",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05.00",
	"2006-01-02 15:04:05.0",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02/01/2006 3:04pm",
	"02/01/2006 03:04pm",
	"02/01/2006 3:04 pm",
	"02/01/2006 03:04 pm",
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1_000_000_000_000

// Parse tries several common formats, including integer epoch seconds or
// milliseconds. Timezone-less formats are interpreted in loc (time.Local
// when nil).
func Parse(s string, loc *time.Location) (time.Time, bool) {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return time.Time{}, false
	}

	// Integer epochs first; they are common in exports and fail every layout.
	if n, err := strconv.ParseInt(ss, 10, 64); err == nil {
		if n > epochMillisThreshold {
			return time.UnixMilli(n).In(locOrLocal(loc)), true
		}
		return time.Unix(n, 0).In(locOrLocal(loc)), true
	}

	if t, ok := ParseDate(ss, loc); ok {
		return t, true
	}
	return time.Time{}, false
}

// ParseDate is Parse without the integer epoch forms, for values that must
// look like a date to count as one.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return time.Time{}, false
	}
	// Every supported layout starts with a digit.
	if ss[0] < '0' || ss[0] > '9' {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, ss); err == nil {
			return t, true
		}
	}

	loc = locOrLocal(loc)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, ss, loc); err == nil {
			return t, true
		}
	}

	// No format matched
	return time.Time{}, false
}

// ParseTimestampMillis is Parse returning epoch milliseconds.
func ParseTimestampMillis(s string, loc *time.Location) (int64, bool) {
	t, ok := Parse(s, loc)
	if !ok {
		return 0, false
	}
	return t.UnixMilli(), true
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// DefaultDisplayPattern is the display pattern used when none is configured.
const DefaultDisplayPattern = "yyyy-MM-dd HH:mm:ss"

var patternReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
	"SSS", "000",
	"zzz", "MST",
)

// LayoutFromPattern converts a display pattern such as "yyyy-MM-dd HH:mm:ss"
// to a Go time layout.
func LayoutFromPattern(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultDisplayPattern
	}
	return patternReplacer.Replace(pattern)
}

// Format renders t in loc using a display pattern.
func Format(t time.Time, loc *time.Location, pattern string) string {
	return t.In(locOrLocal(loc)).Format(LayoutFromPattern(pattern))
}
