package timestamps

import (
	"strings"
	"time"
)

// GetLocationForTZ resolves a timezone name to a *time.Location. Supports "Local", "UTC", and IANA TZ names.
// Unknown names fall back to time.Local.
func GetLocationForTZ(name string) *time.Location {
	tzName := strings.TrimSpace(name)
	switch strings.ToUpper(tzName) {
	case "", "LOCAL":
		return time.Local
	case "UTC":
		return time.UTC
	default:
		if l, err := time.LoadLocation(tzName); err == nil {
			return l
		}
		return time.Local
	}
}

// ValidTZ reports whether name resolves to a known location.
func ValidTZ(name string) bool {
	tzName := strings.TrimSpace(name)
	switch strings.ToUpper(tzName) {
	case "", "LOCAL", "UTC":
		return true
	}
	_, err := time.LoadLocation(tzName)
	return err == nil
}

// GetIngestTimezoneWithOverride returns the effective ingest timezone
// If override is non-empty, uses that; otherwise falls back to def
func GetIngestTimezoneWithOverride(override, def string) *time.Location {
	if strings.TrimSpace(override) != "" {
		return GetLocationForTZ(override)
	}
	return GetLocationForTZ(def)
}
