package cache

import (
	"strings"
)

// Keys are '|'-separated segments, each "name:value", e.g.
// "table:1f..|snapshot:gen-3|search:\"bo\"|filter:..|sort:age:asc".

// IsCacheKeyPrefix checks if prefixKey is a segment-aligned prefix of fullKey
func IsCacheKeyPrefix(prefixKey, fullKey string) bool {
	if !strings.HasPrefix(fullKey, prefixKey) {
		return false
	}
	remainder := strings.TrimPrefix(fullKey, prefixKey)
	return remainder == "" || strings.HasPrefix(remainder, "|")
}

// ExtractStageNameFromKey returns the name of the last segment of a key,
// which is the stage that produced the cached value.
func ExtractStageNameFromKey(key string) string {
	idx := strings.LastIndex(key, "|")
	last := key[idx+1:]
	if name, _, ok := strings.Cut(last, ":"); ok {
		return name
	}
	return ""
}

// JoinKey appends segment to key with the separator
func JoinKey(key, segment string) string {
	if key == "" {
		return segment
	}
	return key + "|" + segment
}
