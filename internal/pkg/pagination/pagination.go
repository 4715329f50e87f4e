package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/response"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// FromContext reads page and per_page (or size) from the query string,
// clamping size to MaxSize. defaultSize applies when neither is given.
func FromContext(c *gin.Context, defaultSize int) Query {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	page := parseIntOr(c.Query("page"), DefaultPage)
	raw := c.Query("per_page")
	if raw == "" {
		raw = c.Query("size")
	}
	size := parseIntOr(raw, defaultSize)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Query{Page: page, Size: size}
}

// Meta builds response pagination from a total count and the page count
// reported by the source. totalPages <= 0 is derived from total.
func Meta(q Query, total int64, totalPages int) response.Pagination {
	if totalPages <= 0 {
		totalPages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPages,
		Size:        q.Size,
		HasNextPage: q.Page < totalPages,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
