package query

import (
	"testing"
	"time"
)

func people() []Record {
	return []Record{
		{"id": 1, "name": "Bob", "age": 30},
		{"id": 2, "name": "Amy", "age": 25},
		{"id": 3, "name": "Cid", "age": 25},
	}
}

func peopleSchema(t *testing.T) *Schema[Record] {
	t.Helper()
	id := RecordColumn("id", "ID", FilterNumber)
	id.Searchable = false
	age := RecordColumn("age", "Age", FilterNumber)
	age.Searchable = false
	schema, err := NewSchema([]Column[Record]{id, RecordColumn("name", "Name", FilterText), age})
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}
	return schema
}

// events has missing values and dates for sort and filter tests.
func events() []Record {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }
	return []Record{
		{"id": 1, "msg": "log3", "when": day(3), "score": 7.5},
		{"id": 2, "msg": "log1", "when": day(1), "score": nil},
		{"id": 3, "msg": "no time", "when": nil, "score": 2},
		{"id": 4, "msg": "log2", "when": day(2), "score": 7.5},
		{"id": 5, "msg": "also no time", "when": nil, "score": "n/a"},
	}
}

func eventsSchema(t *testing.T) *Schema[Record] {
	t.Helper()
	schema, err := NewSchema([]Column[Record]{
		RecordColumn("id", "", FilterNumber),
		RecordColumn("msg", "Message", FilterText),
		RecordColumn("when", "When", FilterDate),
		RecordColumn("score", "Score", FilterNumber),
	})
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}
	return schema
}

func ids(records []Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r["id"].(int)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
