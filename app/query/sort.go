package query

import "sort"

// SortRecords returns a sorted copy of records ordered by col.
//
// Missing values go to the end regardless of direction and keep their input
// order; direction only flips comparisons between present values. The sort is
// stable, so equal keys keep their relative input order in both directions.
func SortRecords[R any](records []R, col Column[R], dir SortDirection) []R {
	// Decorate once so the getter runs n times, not n log n times.
	type keyed struct {
		rec     R
		key     any
		missing bool
	}

	items := make([]keyed, len(records))
	for i, rec := range records {
		v := col.Get(rec)
		items[i] = keyed{rec: rec, key: v, missing: isNull(v)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		// Handle missing values - they go to the end regardless of sort direction
		if a.missing || b.missing {
			return !a.missing && b.missing
		}

		cmp := Compare(a.key, b.key)
		if dir == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	sorted := make([]R, len(items))
	for i, it := range items {
		sorted[i] = it.rec
	}
	return sorted
}
