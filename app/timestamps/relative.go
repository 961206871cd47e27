package timestamps

import (
	"strconv"
	"strings"
	"time"
)

// ParseFlexibleTime parses absolute timestamps or relative phrases such as
// "now", "15m ago" or "2 days", using loc for timezone-less absolute formats.
// Relative phrases count back from now.
func ParseFlexibleTime(s string, now time.Time, loc *time.Location) (time.Time, bool) {
	ss := strings.TrimSpace(strings.ToLower(s))
	if ss == "" {
		return time.Time{}, false
	}
	if ss == "now" {
		return now, true
	}
	if t, ok := Parse(s, loc); ok {
		return t, true
	}

	ss = strings.TrimSpace(strings.TrimSuffix(ss, "ago"))
	numStr := ""
	unitStr := ""
	parts := strings.Fields(ss)
	if len(parts) >= 2 {
		numStr = parts[0]
		unitStr = parts[1]
	} else {
		for i, r := range ss {
			if r < '0' || r > '9' {
				numStr = ss[:i]
				unitStr = ss[i:]
				break
			}
		}
		if numStr == "" {
			return time.Time{}, false
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	unit, ok := relativeUnit(strings.TrimSpace(unitStr))
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-time.Duration(n) * unit), true
}

func relativeUnit(u string) (time.Duration, bool) {
	switch u {
	case "s", "sec", "secs", "second", "seconds":
		return time.Second, true
	case "m", "min", "mins", "minute", "minutes":
		return time.Minute, true
	case "h", "hr", "hrs", "hour", "hours":
		return time.Hour, true
	case "d", "day", "days":
		return 24 * time.Hour, true
	case "w", "wk", "wks", "week", "weeks":
		return 7 * 24 * time.Hour, true
	case "mo", "mon", "month", "months":
		return 30 * 24 * time.Hour, true
	case "y", "yr", "yrs", "year", "years":
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
