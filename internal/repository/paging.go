package repository

// paginate returns the window [page*size, page*size+size) of items, clamped
// to the slice bounds. A page past the end yields an empty slice, not an
// error.
func paginate[T any](items []T, page, size int) []T {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}

	start := page * size
	if start >= len(items) {
		return []T{}
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
