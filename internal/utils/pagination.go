package utils

import (
	"strconv"
)

// ParsePage parses a 1-based page number query parameter, defaulting to 1
func ParsePage(raw string) int {
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePageSize parses a page size query parameter. Zero means "use the
// configured default"; the service clamps against the configured maximum.
func ParsePageSize(raw string) int {
	if raw == "" {
		return 0
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return 0
	}
	return size
}

// PageOffset converts a 1-based page number into a row offset
func PageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// TotalPages calculates the number of pages needed to hold total items
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
