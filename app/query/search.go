package query

import "strings"

// Search keeps records where any searchable column contains term,
// case-insensitively. An empty term returns records itself.
func Search[R any](records []R, term string, schema *Schema[R]) []R {
	if term == "" {
		return records
	}

	needle := strings.ToLower(term)
	cols := schema.Searchable()

	var matched []R
	for _, rec := range records {
		for _, col := range cols {
			if strings.Contains(strings.ToLower(Stringify(col.Get(rec))), needle) {
				matched = append(matched, rec)
				break
			}
		}
	}
	if matched == nil {
		matched = []R{}
	}
	return matched
}
