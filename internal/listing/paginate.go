package listing

// Paginate cuts page (1-based) of size records. Pages past the end are empty.
func Paginate[T any](records []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(records)
	// Compare before multiplying so a huge page cannot overflow.
	startIdx := total
	if page-1 < (total+size-1)/size {
		startIdx = (page - 1) * size
	}
	endIdx := startIdx + size
	if endIdx > total {
		endIdx = total
	}

	items := make([]T, endIdx-startIdx)
	copy(items, records[startIdx:endIdx])

	p := Page[T]{
		Items:      items,
		Total:      total,
		TotalPages: (total + size - 1) / size,
		Page:       page,
		PageSize:   size,
		To:         endIdx,
	}
	if len(items) > 0 {
		p.From = startIdx + 1
	}
	return p
}
