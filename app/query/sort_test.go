package query

import (
	"reflect"
	"testing"
	"time"
)

func TestSortRecords_StableAscDesc(t *testing.T) {
	schema := peopleSchema(t)
	age, _ := schema.Column("age")

	// Ascending
	t.Run("Ascending", func(t *testing.T) {
		output := SortRecords(people(), age, SortAsc)
		// Amy and Cid share age 25 and keep their input order
		if got := ids(output); !equalInts(got, []int{2, 3, 1}) {
			t.Errorf("Expected order [2 3 1], got %v", got)
		}
	})

	// Descending flips present values but ties keep input order
	t.Run("Descending", func(t *testing.T) {
		output := SortRecords(people(), age, SortDesc)
		if got := ids(output); !equalInts(got, []int{1, 2, 3}) {
			t.Errorf("Expected order [1 2 3], got %v", got)
		}
	})
}

func TestSortRecords_TimestampAscDesc(t *testing.T) {
	schema := eventsSchema(t)
	when, _ := schema.Column("when")

	t.Run("Ascending", func(t *testing.T) {
		output := SortRecords(events(), when, SortAsc)
		// oldest first, records without a time at the end in input order
		if got := ids(output); !equalInts(got, []int{2, 4, 1, 3, 5}) {
			t.Errorf("Expected order [2 4 1 3 5], got %v", got)
		}
	})

	t.Run("Descending", func(t *testing.T) {
		output := SortRecords(events(), when, SortDesc)
		// newest first, missing times still last
		if got := ids(output); !equalInts(got, []int{1, 4, 2, 3, 5}) {
			t.Errorf("Expected order [1 4 2 3 5], got %v", got)
		}
	})
}

func TestSortRecords_MixedValues(t *testing.T) {
	schema := eventsSchema(t)
	score, _ := schema.Column("score")

	// score: 7.5, nil, 2, 7.5, "n/a". Numbers compare numerically, the
	// string compares by string form, nil goes last.
	output := SortRecords(events(), score, SortAsc)
	got := ids(output)
	if got[len(got)-1] != 2 {
		t.Errorf("nil score should sort last, got %v", got)
	}
	if got[0] != 3 {
		t.Errorf("lowest score should sort first, got %v", got)
	}
	// the two 7.5 scores keep input order
	first, second := -1, -1
	for i, id := range got {
		if id == 1 {
			first = i
		}
		if id == 4 {
			second = i
		}
	}
	if first > second {
		t.Errorf("equal scores lost input order: %v", got)
	}
}

func TestSortRecords_DoesNotMutateInput(t *testing.T) {
	schema := peopleSchema(t)
	name, _ := schema.Column("name")

	input := people()
	_ = SortRecords(input, name, SortAsc)
	if got := ids(input); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("input was reordered: %v", got)
	}
}

// A column mixing numbers and strings must sort the same way whatever the
// input order.
func TestSortRecords_MixedNumbersAndStrings(t *testing.T) {
	col := RecordColumn("v", "V", FilterText)
	orders := [][]any{
		{9, 10, "5"},
		{"5", 10, 9},
		{10, "5", 9},
	}
	for _, values := range orders {
		records := make([]Record, len(values))
		for i, v := range values {
			records[i] = Record{"v": v}
		}
		sorted := SortRecords(records, col, SortAsc)
		got := []any{sorted[0]["v"], sorted[1]["v"], sorted[2]["v"]}
		want := []any{9, 10, "5"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("input %v sorted to %v, want %v", values, got, want)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{1, 2, -1},
		{2.5, 2, 1},
		{int64(3), 3.0, 0},
		{"10", "9", -1}, // strings compare as strings
		{"b", "a", 1},
		{true, false, 1},
		{10, "5", -1}, // numbers rank before other values
		{"5", 9, 1},
		{time.Unix(0, 0), 5, 1},
		{time.Unix(0, 0), "a", -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
