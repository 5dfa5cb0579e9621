package pagination

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// DefaultPageSize is the fixed storefront page size.
const DefaultPageSize = 5

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// maxOffset bounds the row offset a page may reach. It fits a Postgres
// integer and cannot overflow int.
const maxOffset = math.MaxInt32

// New builds Params for a 1-based page. Pages below 1 are clamped to 1 and a
// non-positive perPage falls back to DefaultPageSize. Pages whose offset
// would exceed maxOffset are clamped to the last page that does not.
func New(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if last := maxOffset/perPage + 1; page > last {
		page = last
	}
	return Params{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}
}

// ParsePage coerces a raw page value. Absent, non-numeric and non-positive
// input all yield page 1 rather than an error.
func ParsePage(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// FromRequest reads the page number from the named query parameter.
func FromRequest(r *http.Request, param string, perPage int) Params {
	return New(ParsePage(r.URL.Query().Get(param)), perPage)
}

// TotalPages returns ceil(totalCount / perPage).
func TotalPages(totalCount, perPage int) int {
	if perPage < 1 || totalCount <= 0 {
		return 0
	}
	pages := totalCount / perPage
	if totalCount%perPage > 0 {
		pages++
	}
	return pages
}
