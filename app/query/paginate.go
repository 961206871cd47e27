package query

// Page is one page of a result set
type Page[R any] struct {
	Records    []R
	TotalPages int
	Page       int
	PageSize   int
	Total      int
}

// TotalPages returns max(1, ceil(total/pageSize)). A non-positive page size
// means a single page holding everything.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage moves page into [1, TotalPages(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(total, pageSize); page > last {
		return last
	}
	return page
}

// Paginate slices records[(page-1)*pageSize : page*pageSize], intersected
// with the valid range. Pages outside [1, TotalPages] are empty; the page
// number is reported as given.
func Paginate[R any](records []R, page, pageSize int) Page[R] {
	total := len(records)
	result := Page[R]{
		TotalPages: TotalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
	}

	if pageSize <= 0 {
		if page == 1 {
			result.Records = records
		} else {
			result.Records = []R{}
		}
		return result
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if page < 1 || start >= total {
		result.Records = []R{}
		return result
	}
	if end > total {
		end = total
	}
	result.Records = records[start:end:end]
	return result
}
