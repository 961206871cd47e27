package table

import (
	"strings"

	"gridview/app/cache"
	"gridview/app/query"
	"gridview/app/window"
)

// Mode selects how the processed result is presented
type Mode int

const (
	ModePaged Mode = iota
	ModeVirtual
)

// String returns the string representation of Mode
func (m Mode) String() string {
	if m == ModeVirtual {
		return "virtual"
	}
	return "paged"
}

// ParseMode accepts "paged" and "virtual"
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paged", "page", "":
		return ModePaged, true
	case "virtual", "scroll":
		return ModeVirtual, true
	default:
		return ModePaged, false
	}
}

// Options configures a Table
type Options struct {
	PageSize       int     // Rows per page in paged mode; <= 0 shows everything on one page
	RowHeight      float64 // Height of one row in virtual mode
	ViewportHeight float64 // Height of the scroll container in virtual mode
	Overscan       int     // Extra rows rendered at each viewport edge
	Mode           Mode

	Cache       query.CacheConfig
	SharedCache *cache.Cache // Optional; a private cache is created when nil
	Logger      cache.Logger
}

// DefaultOptions returns the options a table uses without user settings
func DefaultOptions() Options {
	return Options{
		PageSize:       25,
		RowHeight:      1,
		ViewportHeight: 20,
		Overscan:       window.DefaultOverscan,
		Mode:           ModePaged,
		Cache:          query.DefaultCacheConfig(),
	}
}
