package utils

import (
	"net/http"
	"strconv"
)

// DefaultPageSize is the default number of items per page
const DefaultPageSize = 20

// MaxPageSize is the maximum number of items per page
const MaxPageSize = 100

// Page is a limit/offset window over a newest-first listing.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParsePage reads limit and offset from the query string. Out of range
// values are clamped: limit to [1, MaxPageSize], offset to >= 0.
func ParsePage(r *http.Request) Page {
	q := r.URL.Query()
	return NormalizePage(
		parseIntQuery(q.Get("limit"), DefaultPageSize),
		parseIntQuery(q.Get("offset"), 0),
	)
}

// NormalizePage clamps limit and offset into their valid ranges.
func NormalizePage(limit, offset int) Page {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

func parseIntQuery(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
