package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gridview/app/cache"
)

// Key format:
// "table:<ns>|snapshot:<key>|search:<term>|filter:<conds>|sort:<field>:<dir>"
// Each stage appends its own segment to the key of the stages before it, so a
// stage key is always a prefix of the full pipeline key.

// SnapshotCacheKey is the prefix shared by every key computed from one snapshot.
func SnapshotCacheKey(namespace, snapshotKey string) string {
	return fmt.Sprintf("table:%s|snapshot:%s", namespace, snapshotKey)
}

// BuildCacheKey creates a cache key from the snapshot and the pipeline stages
func BuildCacheKey[R any](namespace, snapshotKey string, stages []PipelineStage[R]) string {
	key := SnapshotCacheKey(namespace, snapshotKey)
	for _, stage := range stages {
		if stage.CanCache() {
			key = cache.JoinKey(key, stage.Name()+":"+stage.CacheKey())
		}
	}
	return key
}

// filtersKey renders the active conditions in field order so that states
// listing the same conditions in a different order share a key.
func filtersKey(conditions []FilterCondition) string {
	active := make([]FilterCondition, 0, len(conditions))
	for _, cond := range conditions {
		if cond.Active() {
			active = append(active, cond)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Field < active[j].Field
	})

	parts := make([]string, len(active))
	for i, cond := range active {
		parts[i] = fmt.Sprintf("%s:%s:%s", strconv.Quote(cond.Field), cond.Operator, operandKey(cond.Operand))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func operandKey(v any) string {
	switch x := v.(type) {
	case time.Time:
		return "t" + strconv.FormatInt(x.UnixNano(), 10)
	case string:
		return strconv.Quote(x)
	}
	if list, ok := asList(v); ok {
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = operandKey(item)
		}
		return "(" + strings.Join(items, " ") + ")"
	}
	return fmt.Sprintf("%T=%v", v, v)
}
