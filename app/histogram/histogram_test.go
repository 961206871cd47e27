package histogram

import (
	"context"
	"testing"
	"time"

	"gridview/app/query"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func events() []query.Record {
	return []query.Record{
		{"ts": at("2024-01-01T00:00:10Z")},
		{"ts": at("2024-01-01T00:00:50Z")},
		{"ts": at("2024-01-01T00:02:05Z")},
		{"ts": nil},
		{"ts": "not a time"},
	}
}

func TestChooseBucketSizeForSpan(t *testing.T) {
	tests := []struct {
		span       int64
		maxBuckets int
		expected   int
	}{
		{0, 100, 1},
		{100, 100, 1},
		{101, 100, 2},
		{3600, 100, 60},
		{86400, 100, 30 * 60},
		{86400, 0, 30 * 60},
		{1 << 40, 10, 50 * 12 * 30 * 24 * 60 * 60},
	}
	for _, tt := range tests {
		if got := ChooseBucketSizeForSpan(tt.span, tt.maxBuckets); got != tt.expected {
			t.Errorf("ChooseBucketSizeForSpan(%d, %d) = %d, expected %d", tt.span, tt.maxBuckets, got, tt.expected)
		}
	}
}

func TestBuildCountsPerBucket(t *testing.T) {
	resp, err := Build(context.Background(), events(), query.Field("ts"), Bounds{}, 60, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 0, 1}
	if len(resp.Buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(want), len(resp.Buckets), resp.Buckets)
	}
	base := at("2024-01-01T00:00:00Z").UnixMilli()
	for i, b := range resp.Buckets {
		if b.Start != base+int64(i)*60_000 {
			t.Errorf("bucket %d starts at %d, expected %d", i, b.Start, base+int64(i)*60_000)
		}
		if b.Count != want[i] {
			t.Errorf("bucket %d count = %d, expected %d", i, b.Count, want[i])
		}
	}
	if resp.Skipped != 2 {
		t.Errorf("skipped = %d, expected 2", resp.Skipped)
	}
	if resp.BucketSeconds != 60 {
		t.Errorf("bucket seconds = %d, expected 60", resp.BucketSeconds)
	}
}

func TestBuildPicksBucketSize(t *testing.T) {
	resp, err := Build(context.Background(), events(), query.Field("ts"), Bounds{}, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 115s span in at most 10 buckets
	if resp.BucketSeconds != 30 {
		t.Errorf("bucket seconds = %d, expected 30", resp.BucketSeconds)
	}
	total := 0
	for _, b := range resp.Buckets {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("counted %d records, expected 3", total)
	}
}

func TestBuildUsesFilterBounds(t *testing.T) {
	after := at("2023-12-31T23:58:00Z")
	conds := []query.FilterCondition{
		{Field: "ts", Operator: query.OpGreaterThan, Operand: after},
		{Field: "other", Operator: query.OpLessThan, Operand: at("2025-01-01T00:00:00Z")},
	}
	bounds := BoundsFromFilters(conds, "ts")
	if bounds.After == nil || *bounds.After != after.UnixMilli() {
		t.Fatalf("after = %v, expected %d", bounds.After, after.UnixMilli())
	}
	if bounds.Before != nil {
		t.Fatalf("before should be unset, got %d", *bounds.Before)
	}

	resp, err := Build(context.Background(), events(), query.Field("ts"), bounds, 60, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Buckets) != 5 {
		t.Fatalf("expected 5 buckets from the filter start, got %d", len(resp.Buckets))
	}
	if resp.MinTs != after.UnixMilli() {
		t.Errorf("minTs = %d, expected %d", resp.MinTs, after.UnixMilli())
	}
	if resp.Buckets[0].Count != 0 || resp.Buckets[2].Count != 2 {
		t.Errorf("unexpected counts: %+v", resp.Buckets)
	}
}

func TestBoundsFromBetween(t *testing.T) {
	lo, hi := at("2024-01-01T00:00:00Z"), at("2024-01-02T00:00:00Z")
	bounds := BoundsFromFilters([]query.FilterCondition{
		{Field: "ts", Operator: query.OpBetween, Operand: []any{lo, hi}},
	}, "ts")
	if bounds.After == nil || bounds.Before == nil {
		t.Fatal("expected both bounds")
	}
	if *bounds.After != lo.UnixMilli() || *bounds.Before != hi.UnixMilli() {
		t.Errorf("bounds = %d..%d", *bounds.After, *bounds.Before)
	}
}

func TestBuildWithoutTimestamps(t *testing.T) {
	records := []query.Record{{"ts": "x"}, {"ts": 5}}
	resp, err := Build(context.Background(), records, query.Field("ts"), Bounds{}, 0, 0)
	if err == nil {
		t.Fatal("expected error for a column without time values")
	}
	if resp == nil || resp.Skipped != 2 {
		t.Errorf("expected skipped count of 2, got %+v", resp)
	}

	resp, err = Build(context.Background(), []query.Record{}, query.Field("ts"), Bounds{}, 0, 0)
	if err != nil || len(resp.Buckets) != 0 {
		t.Errorf("empty input: %+v, %v", resp, err)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, events(), query.Field("ts"), Bounds{}, 60, 0); err == nil {
		t.Fatal("expected context error")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, expected int64 }{
		{7, 2, 3},
		{-7, 2, -4},
		{-6, 2, -3},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.expected {
			t.Errorf("floorDiv(%d, %d) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
