// Package histogram counts the records of a result set per time bucket.
package histogram

import (
	"context"
	"fmt"
)

// DefaultMaxBuckets bounds the bucket count when the caller does not
const DefaultMaxBuckets = 100

// Build creates histogram buckets over the time values get reads from
// records. A non-positive bucketSeconds picks a size from the data range so
// that at most maxBuckets buckets are produced. Bounds, when set, fix the
// range the buckets cover.
func Build[R any](ctx context.Context, records []R, get func(R) any, bounds Bounds, bucketSeconds, maxBuckets int) (*Response, error) {
	if len(records) == 0 {
		return &Response{Buckets: []Bucket{}}, nil
	}
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxBuckets
	}

	minTs, maxTs, valid, err := GetDataTimeRange(ctx, records, get)
	if err != nil {
		return nil, err
	}
	if valid == 0 {
		return &Response{Buckets: []Bucket{}, Skipped: len(records)}, fmt.Errorf("no valid timestamps found in %d rows", len(records))
	}

	if bucketSeconds <= 0 {
		bucketSeconds = CalculateOptimalBucketSize(minTs, maxTs, bounds, maxBuckets)
	}
	bucketMs := int64(bucketSeconds) * 1000

	// Single pass: count per bucket start
	counts := map[int64]int{}
	for i, rec := range records {
		if i%1000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if ms, ok := TimestampMillis(get(rec)); ok {
			counts[floorDiv(ms, bucketMs)*bucketMs]++
		}
	}

	// Filter boundaries, when present, replace the data range
	histogramStart, histogramEnd := minTs, maxTs
	if bounds.After != nil {
		histogramStart = *bounds.After
	}
	if bounds.Before != nil {
		histogramEnd = *bounds.Before
	}

	start := floorDiv(histogramStart, bucketMs) * bucketMs
	end := floorDiv(histogramEnd, bucketMs) * bucketMs

	buckets := []Bucket{}
	for t := start; t <= end; t += bucketMs {
		buckets = append(buckets, Bucket{Start: t, Count: counts[t]})
	}

	return &Response{
		Buckets:       buckets,
		MinTs:         histogramStart,
		MaxTs:         histogramEnd,
		BucketSeconds: bucketSeconds,
		Skipped:       len(records) - valid,
	}, nil
}

// floorDiv rounds toward negative infinity so that pre-1970 times land in
// the bucket that starts before them.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
