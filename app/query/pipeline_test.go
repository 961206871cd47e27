package query

import (
	"errors"
	"reflect"
	"testing"

	"gridview/app/cache"
)

func TestRun_Scenarios(t *testing.T) {
	schema := peopleSchema(t)

	tests := []struct {
		name     string
		state    QueryState
		expected []int
	}{
		{
			name:     "sort by age ascending is stable",
			state:    NewQueryState().WithSort("age", SortAsc),
			expected: []int{2, 3, 1},
		},
		{
			name:     "filter age greater than 25",
			state:    NewQueryState().WithFilter(FilterCondition{Field: "age", Operator: OpGreaterThan, Operand: 25}),
			expected: []int{1},
		},
		{
			name:     "search a",
			state:    NewQueryState().WithSearchTerm("a"),
			expected: []int{2},
		},
		{
			name: "search then filter then sort",
			state: NewQueryState().
				WithSearchTerm("i").
				WithFilter(FilterCondition{Field: "age", Operator: OpLessThan, Operand: 40}).
				WithSort("name", SortDesc),
			expected: []int{3},
		},
		{
			name:     "empty state keeps input order",
			state:    NewQueryState(),
			expected: []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(people(), schema, tt.state)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got := ids(result); !equalInts(got, tt.expected) {
				t.Errorf("Run = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRun_InvalidColumns(t *testing.T) {
	name := RecordColumn("name", "Name", FilterText)
	locked := RecordColumn("secret", "Secret", FilterText)
	locked.Filterable = false
	locked.Sortable = false
	schema, err := NewSchema([]Column[Record]{name, locked})
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	tests := []struct {
		name  string
		state QueryState
		field string
	}{
		{"unknown filter field", NewQueryState().WithFilter(FilterCondition{Field: "nope", Operator: OpEquals, Operand: "x"}), "nope"},
		{"filter on non-filterable", NewQueryState().WithFilter(FilterCondition{Field: "secret", Operator: OpEquals, Operand: "x"}), "secret"},
		{"unknown sort field", NewQueryState().WithSort("nope", SortAsc), "nope"},
		{"sort on non-sortable", NewQueryState().WithSort("secret", SortDesc), "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run([]Record{{"name": "a"}}, schema, tt.state)
			var colErr *InvalidColumnError
			if !errors.As(err, &colErr) {
				t.Fatalf("expected *InvalidColumnError, got %v", err)
			}
			if colErr.Field != tt.field {
				t.Errorf("error field = %q, expected %q", colErr.Field, tt.field)
			}
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	schema := eventsSchema(t)
	state := NewQueryState().
		WithSearchTerm("o").
		WithSort("when", SortDesc)

	first, err := Run(events(), schema, state)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := Run(events(), schema, state)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Run not idempotent: %v vs %v", ids(first), ids(second))
	}
}

func TestQueryPipeline_MemoHit(t *testing.T) {
	schema := peopleSchema(t)
	c := cache.NewCache(4)
	pipeline := NewQueryPipeline(schema, c, "t1", DefaultCacheConfig())
	snap := NewSnapshot(people())
	state := NewQueryState().WithSort("age", SortAsc)

	fresh, err := pipeline.Execute(snap, state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if fresh.Cached {
		t.Fatal("first execution should not be cached")
	}

	memo, err := pipeline.Execute(snap, state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !memo.Cached {
		t.Fatal("second execution should be served from the cache")
	}
	if !reflect.DeepEqual(memo.Records, fresh.Records) {
		t.Errorf("memo hit differs from fresh run: %v vs %v", ids(memo.Records), ids(fresh.Records))
	}

	// The page is not part of the key.
	paged, err := pipeline.Execute(snap, state.WithPage(3))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !paged.Cached {
		t.Error("changing only the page should reuse the cached result")
	}

	// Filter order does not matter either.
	a := NewQueryState().
		WithFilter(FilterCondition{Field: "age", Operator: OpEquals, Operand: 25}).
		WithFilter(FilterCondition{Field: "name", Operator: OpContains, Operand: "m"})
	b := NewQueryState().
		WithFilter(FilterCondition{Field: "name", Operator: OpContains, Operand: "m"}).
		WithFilter(FilterCondition{Field: "age", Operator: OpEquals, Operand: 25})
	if _, err := pipeline.Execute(snap, a); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	res, err := pipeline.Execute(snap, b)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Cached {
		t.Error("equivalent filter sets should share a cache entry")
	}
}

func TestQueryPipeline_NewSnapshotMisses(t *testing.T) {
	schema := peopleSchema(t)
	c := cache.NewCache(4)
	pipeline := NewQueryPipeline(schema, c, "t1", DefaultCacheConfig())
	state := NewQueryState().WithSearchTerm("b")

	first := NewSnapshot(people())
	if _, err := pipeline.Execute(first, state); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	updated := append(people(), Record{"id": 4, "name": "Bea", "age": 41})
	res, err := pipeline.Execute(NewSnapshot(updated), state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Cached {
		t.Fatal("a new snapshot must not reuse results of the old one")
	}
	if got := ids(res.Records); !equalInts(got, []int{1, 4}) {
		t.Errorf("expected [1 4], got %v", got)
	}

	if removed := pipeline.Invalidate(first.Key); removed != 1 {
		t.Errorf("expected 1 invalidated entry, got %d", removed)
	}
}

func TestQueryPipeline_StageCache(t *testing.T) {
	schema := peopleSchema(t)
	c := cache.NewCache(16)
	pipeline := NewQueryPipeline(schema, c, "t1", CacheConfigFromSettings(true, true, 16))
	snap := NewKeyedSnapshot("hash-1", people())

	base := NewQueryState().
		WithSearchTerm("b").
		WithFilter(FilterCondition{Field: "age", Operator: OpGreaterThan, Operand: 10})

	if _, err := pipeline.Execute(snap, base.WithSort("age", SortAsc)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	before := c.GetCacheStats().StageHits

	res, err := pipeline.Execute(snap, base.WithSort("age", SortDesc))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Cached {
		t.Fatal("different sort should not be a full pipeline hit")
	}
	if after := c.GetCacheStats().StageHits; after != before+1 {
		t.Errorf("expected one stage hit for the searched+filtered prefix, got %d", after-before)
	}

	fresh, err := Run(people(), schema, base.WithSort("age", SortDesc))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(res.Records, fresh) {
		t.Errorf("stage-cached result differs from fresh run: %v vs %v", ids(res.Records), ids(fresh))
	}
}

func TestQueryPipeline_NilCache(t *testing.T) {
	schema := peopleSchema(t)
	pipeline := NewQueryPipeline[Record](schema, nil, "t1", DefaultCacheConfig())
	snap := NewSnapshot(people())

	for i := 0; i < 2; i++ {
		res, err := pipeline.Execute(snap, NewQueryState())
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if res.Cached {
			t.Fatal("nil cache must never report a hit")
		}
	}
}

func TestBuildCacheKey(t *testing.T) {
	schema := peopleSchema(t)
	state := NewQueryState().
		WithSearchTerm("a|b").
		WithFilter(FilterCondition{Field: "age", Operator: OpIn, Operand: []any{25, "30"}}).
		WithSort("name", SortDesc)

	key := BuildCacheKey("t1", "gen-1", StagesFor(schema, state))
	expected := `table:t1|snapshot:gen-1|search:"a|b"|filter:["age":in:(int=25 "30")]|sort:"name":desc`
	if key != expected {
		t.Errorf("BuildCacheKey = %s\nexpected        %s", key, expected)
	}

	if !cache.IsCacheKeyPrefix(SnapshotCacheKey("t1", "gen-1"), key) {
		t.Error("pipeline key should start with the snapshot prefix")
	}
	if cache.IsCacheKeyPrefix(SnapshotCacheKey("t1", "gen-"), key) {
		t.Error("prefix match must be segment aligned")
	}
}
