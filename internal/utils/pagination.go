package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationParams clamps page and size to the allowed range.
func NewPaginationParams(page, size int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}
	return PaginationParams{
		Page:   page,
		Limit:  size,
		Offset: (page - 1) * size,
	}
}

// GetPaginationParams reads page and page_size from the query string.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	return NewPaginationParams(page, size)
}

// Response builds the pagination metadata for total items.
func (p PaginationParams) Response(total int64) PaginationResponse {
	pages := 0
	if p.Limit > 0 {
		pages = int(total) / p.Limit
		if int(total)%p.Limit > 0 {
			pages++
		}
	}
	return PaginationResponse{
		Page:       p.Page,
		PageSize:   p.Limit,
		TotalCount: total,
		TotalPages: pages,
	}
}

// Window returns the [start, end) slice bounds of this page over n items.
func (p PaginationParams) Window(n int) (int, int) {
	if p.Limit <= 0 {
		return 0, n
	}
	start := p.Offset
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
