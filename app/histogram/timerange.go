package histogram

import (
	"context"
	"time"

	"gridview/app/query"
)

// TimestampMillis reads a cell as epoch milliseconds. Only time values count;
// a column of epoch numbers is converted to dates by the loader.
func TimestampMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil {
			return 0, false
		}
		return t.UnixMilli(), true
	}
	return 0, false
}

// GetDataTimeRange returns the min/max timestamps of records and how many
// carry one.
func GetDataTimeRange[R any](ctx context.Context, records []R, get func(R) any) (minTs, maxTs int64, count int, err error) {
	for i, rec := range records {
		// Check for cancellation every 1000 rows
		if i%1000 == 0 {
			select {
			case <-ctx.Done():
				return 0, 0, 0, ctx.Err()
			default:
			}
		}
		ms, ok := TimestampMillis(get(rec))
		if !ok {
			continue
		}
		if count == 0 {
			minTs, maxTs = ms, ms
		} else {
			minTs = min(minTs, ms)
			maxTs = max(maxTs, ms)
		}
		count++
	}
	return minTs, maxTs, count, nil
}

// BoundsFromFilters derives the histogram range from the date conditions on
// field: greaterThan sets the start, lessThan the end and between both.
func BoundsFromFilters(conditions []query.FilterCondition, field string) Bounds {
	var b Bounds
	for _, cond := range conditions {
		if cond.Field != field || !cond.Active() {
			continue
		}
		switch cond.Operator {
		case query.OpGreaterThan:
			b.After = millisOf(cond.Operand)
		case query.OpLessThan:
			b.Before = millisOf(cond.Operand)
		case query.OpBetween:
			if pair, ok := cond.Operand.([]any); ok && len(pair) == 2 {
				b.After = millisOf(pair[0])
				b.Before = millisOf(pair[1])
			}
		}
	}
	return b
}

func millisOf(v any) *int64 {
	ms, ok := TimestampMillis(v)
	if !ok {
		return nil
	}
	return &ms
}
